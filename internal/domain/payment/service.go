// internal/domain/payment/service.go
package payment

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/donate-storefront/internal/domain/order"
)

var (
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrAmountMismatch    = errors.New("payment amount does not match order total")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrOrderClosed       = errors.New("order can no longer be paid")
)

// Service settles order payments
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new payment service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// CreatePayment records a payment for the user's order and marks the order paid.
// The shop has no external gateway, so an accepted payment settles immediately.
func (s *Service) CreatePayment(userID int64, req *CreateRequest) (*Payment, error) {
	if !isAvailable(req.Method) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	var payment Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return order.ErrNotFound
			}
			return fmt.Errorf("failed to get order: %w", err)
		}

		if o.PaymentStatus == order.PaymentStatusPaid {
			return ErrAlreadyPaid
		}
		if o.Status != order.StatusPending && o.Status != order.StatusError {
			return ErrOrderClosed
		}
		if !req.Amount.IsZero() && !req.Amount.Equal(o.TotalPrice) {
			return fmt.Errorf("%w: expected %s", ErrAmountMismatch, o.TotalPrice)
		}

		now := s.now().UTC()
		payment = Payment{
			OrderID:       o.ID,
			UserID:        userID,
			PaymentMethod: req.Method,
			Amount:        o.TotalPrice,
			Currency:      "RUB",
			Status:        order.PaymentStatusPaid,
			ProcessedAt:   &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		updates := map[string]interface{}{
			"payment_status": order.PaymentStatusPaid,
			"payment_method": req.Method,
			"status":         order.StatusProcessing,
		}
		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order payment: %w", err)
		}

		history := order.StatusHistory{
			OrderID:   o.ID,
			Status:    order.StatusProcessing,
			Comment:   "Payment received",
			CreatedBy: userID,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func isAvailable(method string) bool {
	for _, m := range Methods() {
		if m.ID == method {
			return m.IsAvailable
		}
	}
	return false
}
