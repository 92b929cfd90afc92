// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User represents a storefront customer identified by their chat platform id
type User struct {
	ID           int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username     string          `gorm:"size:100" json:"username,omitempty"`
	FirstName    string          `gorm:"size:100;not null" json:"first_name"`
	LastName     string          `gorm:"size:100" json:"last_name,omitempty"`
	PhotoURL     string          `gorm:"size:500" json:"photo_url,omitempty"`
	Email        string          `gorm:"size:255" json:"email,omitempty"`
	Phone        string          `gorm:"size:20" json:"phone,omitempty"`
	LanguageCode string          `gorm:"size:10" json:"language_code,omitempty"`
	Balance      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	IsAdmin      bool            `gorm:"default:false" json:"is_admin"`
	LastLoginAt  *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// GetDisplayName returns display name (full name or @username)
func (u *User) GetDisplayName() string {
	fullName := u.GetFullName()
	if fullName != "" {
		return fullName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return ""
}
