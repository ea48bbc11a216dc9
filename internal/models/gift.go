package models

// Gift ledger directions. Every transfer writes one row per side so a
// user's history is a single indexed query.
const (
	GiftSent     = "sent"
	GiftReceived = "received"
)

// GiftRecord is one side of an E-COIN transfer.
type GiftRecord struct {
	Base
	UserID    string `json:"-"         gorm:"index;not null"`
	PeerID    string `json:"peer_id"   gorm:"not null"`
	Amount    int64  `json:"amount"    gorm:"not null"`
	Direction string `json:"direction" gorm:"type:varchar(16);not null"`
}

func (GiftRecord) TableName() string { return "gift_records" }
