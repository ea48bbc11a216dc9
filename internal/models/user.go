package models

import "time"

// StartingCoins is credited to every new account.
const StartingCoins int64 = 100

// UserModel represents a registered account.
type UserModel struct {
	Base
	Username     string     `json:"username"     gorm:"uniqueIndex;not null"`
	DisplayName  string     `json:"display_name"`
	Bio          string     `json:"bio"          gorm:"type:text"`
	Password     string     `json:"-"            gorm:"not null"`
	Coins        int64      `json:"coins"        gorm:"not null;default:0"`
	Banned       bool       `json:"banned"`
	IsAdmin      bool       `json:"is_admin"`
	IsDeveloper  bool       `json:"is_developer"`
	IsVerified   bool       `json:"is_verified"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastLoginIP  string     `json:"-"`
}

func (UserModel) TableName() string { return "users" }

// CanAdmin is the console predicate. Both flags are required: promotion
// goes developer first, then admin, and neither alone opens the door.
func (u *UserModel) CanAdmin() bool {
	return u.IsDeveloper && u.IsAdmin
}

// PublicProfile is the view of a user safe to show to anyone.
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	IsAdmin     bool   `json:"is_admin"`
	IsVerified  bool   `json:"is_verified"`
}

func (u *UserModel) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		IsAdmin:     u.IsAdmin,
		IsVerified:  u.IsVerified,
	}
}
