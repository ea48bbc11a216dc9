package models

// MessageModel is a direct message between two users. When Encrypted is
// true, Body holds an iv:ciphertext payload instead of plaintext.
type MessageModel struct {
	Base
	FromID    string `json:"from_id"   gorm:"index;not null"`
	ToID      string `json:"to_id"     gorm:"index;not null"`
	Body      string `json:"body"      gorm:"type:longtext"`
	Encrypted bool   `json:"-"`
}

func (MessageModel) TableName() string { return "messages" }
