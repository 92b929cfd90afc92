// internal/domain/promo/entity.go
package promo

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("promo code not found")
	ErrInactive  = errors.New("promo code is not active")
	ErrExpired   = errors.New("promo code has expired")
	ErrExhausted = errors.New("promo code usage limit reached")
)

// PromoCode grants a percentage discount on an order
type PromoCode struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Code            string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountPercent int        `gorm:"not null" json:"discount_percent"`
	MaxUses         int        `gorm:"default:0" json:"max_uses"`
	UsedCount       int        `gorm:"default:0" json:"used_count"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"-"`
}

// TableName overrides
func (PromoCode) TableName() string { return "promo_codes" }

// NormalizeCode makes codes case-insensitive
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckUsable reports why the code cannot be applied at now, or nil.
// MaxUses of zero means unlimited.
func (p *PromoCode) CheckUsable(now time.Time) error {
	if !p.IsActive {
		return ErrInactive
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return ErrExpired
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return ErrExhausted
	}
	return nil
}

// Discount returns the discount amount for subtotal, rounded to kopecks
func (p *PromoCode) Discount(subtotal decimal.Decimal) decimal.Decimal {
	percent := p.DiscountPercent
	if percent <= 0 {
		return decimal.Zero
	}
	if percent > 100 {
		percent = 100
	}
	return subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2)
}
