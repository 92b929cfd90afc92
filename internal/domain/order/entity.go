// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusError      Status = "error"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled, StatusError:
		return true
	}
	return false
}

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order represents a placed order
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderNumber    string          `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID         int64           `gorm:"not null;index" json:"user_id"`
	Status         Status          `gorm:"not null;default:'pending';size:20" json:"status"`
	PaymentMethod  string          `gorm:"not null;size:50" json:"payment_method"`
	PaymentStatus  PaymentStatus   `gorm:"not null;default:'pending';size:20" json:"payment_status"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	PromoCode      string          `gorm:"size:50" json:"promo_code,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relationships
	Items         []Item          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// Item represents one product line of an order
type Item struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	GameID     uint            `gorm:"not null" json:"game_id"`
	Name       string          `gorm:"not null;size:255" json:"name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
}

// StatusHistory tracks order status changes
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null;size:20" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy int64     `gorm:"index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (Item) TableName() string          { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }

// ItemCount returns the total number of units in the order
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// IsFinal reports whether no further status changes are expected
func (o *Order) IsFinal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// ItemRequest is one cart line sent at checkout
type ItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1,max=99"`
	Price     decimal.Decimal `json:"price"`
}

// CreateRequest represents order creation data
type CreateRequest struct {
	Items         []ItemRequest   `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	PromoCode     *string         `json:"promo_code"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page      int    `form:"page" json:"page,omitempty"`
	Limit     int    `form:"limit" json:"limit,omitempty"`
	Status    Status `form:"status" json:"status,omitempty"`
	UserID    int64  `form:"user_id" json:"user_id,omitempty"`
	SortBy    string `form:"sort_by" json:"sort_by,omitempty"`
	SortOrder string `form:"sort_order" json:"sort_order,omitempty"`
}

// StatusUpdateRequest represents an admin status change
type StatusUpdateRequest struct {
	Status  Status `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending: {
			StatusProcessing,
			StatusCancelled,
			StatusError,
		},
		StatusProcessing: {
			StatusCompleted,
			StatusCancelled,
			StatusError,
		},
		StatusError: {
			StatusPending,
			StatusProcessing,
			StatusCancelled,
		},
	}

	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}
