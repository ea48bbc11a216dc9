package models

// IPBanModel blocks an address before authentication runs.
type IPBanModel struct {
	Base
	IP        string `json:"ip"         gorm:"uniqueIndex;not null"`
	Reason    string `json:"reason"`
	CreatedBy string `json:"created_by"`
}

func (IPBanModel) TableName() string { return "ip_bans" }
