// internal/domain/payment/entity.go
package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/donate-storefront/internal/domain/order"
)

// Method describes a way to pay offered at checkout
type Method struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
	IsAvailable bool   `json:"is_available"`
}

const (
	MethodCard   = "card"
	MethodWallet = "wallet"
)

// Methods returns the payment methods offered by the shop
func Methods() []Method {
	return []Method{
		{ID: MethodCard, Name: "Банковская карта", Icon: "credit-card", Description: "Visa, MasterCard, МИР", IsAvailable: true},
		{ID: MethodWallet, Name: "Электронный кошелек", Icon: "wallet", Description: "ЮMoney, QIWI, WebMoney", IsAvailable: true},
	}
}

// MethodIDs returns the ids of the available payment methods
func MethodIDs() []string {
	ids := make([]string, 0, 2)
	for _, m := range Methods() {
		if m.IsAvailable {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Payment represents a payment transaction for an order
type Payment struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	OrderID       uint                `gorm:"not null;index" json:"order_id"`
	UserID        int64               `gorm:"not null;index" json:"user_id"`
	PaymentMethod string              `gorm:"not null;size:50" json:"payment_method"`
	Amount        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string              `gorm:"size:3;default:'RUB'" json:"currency"`
	Status        order.PaymentStatus `gorm:"not null;size:20" json:"status"`
	ProcessedAt   *time.Time          `json:"processed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"-"`
}

// TableName overrides
func (Payment) TableName() string { return "payments" }

// CreateRequest represents a payment attempt for an order
type CreateRequest struct {
	OrderID uint            `json:"order_id" binding:"required"`
	Method  string          `json:"method" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
}
