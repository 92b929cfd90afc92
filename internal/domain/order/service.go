// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/pkg/format"
)

// MaxItemQuantity bounds the quantity of a single order line
const MaxItemQuantity = 99

var (
	ErrNotFound                 = errors.New("order not found")
	ErrEmptyOrder               = errors.New("order has no items")
	ErrInvalidQuantity          = errors.New("item quantity out of range")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrProductUnavailable       = errors.New("product is not available")
	ErrPriceChanged             = errors.New("order total does not match current prices")
	ErrInvalidTransition        = errors.New("invalid status transition")
)

// Service handles order business logic
type Service struct {
	db             *gorm.DB
	catalog        *catalog.Service
	promos         *promo.Service
	paymentMethods map[string]bool
	now            func() time.Time
}

// NewService creates a new order service accepting the given payment method ids
func NewService(db *gorm.DB, catalogService *catalog.Service, promoService *promo.Service, paymentMethods []string) *Service {
	methods := make(map[string]bool, len(paymentMethods))
	for _, m := range paymentMethods {
		methods[m] = true
	}

	return &Service{
		db:             db,
		catalog:        catalogService,
		promos:         promoService,
		paymentMethods: methods,
		now:            time.Now,
	}
}

// Page represents one page of an order list
type Page struct {
	Orders []Order
	Total  int64
	Page   int
	Limit  int
}

// TotalPages returns the number of pages needed for the whole list
func (p *Page) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// CreateOrder validates the checkout request against current prices and places the order
func (s *Service) CreateOrder(userID int64, req *CreateRequest) (*Order, error) {
	lines, err := mergeItems(req.Items)
	if err != nil {
		return nil, err
	}

	if !s.paymentMethods[req.PaymentMethod] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, req.PaymentMethod)
	}

	productIDs := make([]uint, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.catalog.GetProductsByIDs(productIDs)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, catalog.ErrNotFound)
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("%s: %w", product.Name, ErrProductUnavailable)
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, Item{
			ProductID:  product.ID,
			GameID:     product.GameID,
			Name:       product.Name,
			Quantity:   line.Quantity,
			Price:      product.Price,
			TotalPrice: lineTotal,
		})
	}

	// A zero total means the client did not send one
	if !req.TotalAmount.IsZero() && !req.TotalAmount.Equal(subtotal) {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrPriceChanged, subtotal, req.TotalAmount)
	}

	now := s.now().UTC()
	order := Order{
		OrderNumber:   format.OrderNumber(now),
		UserID:        userID,
		Status:        StatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: PaymentStatusPending,
		Subtotal:      subtotal,
		TotalPrice:    subtotal,
		Items:         items,
		StatusHistory: []StatusHistory{{
			Status:    StatusPending,
			Comment:   "Order created",
			CreatedBy: userID,
			CreatedAt: now,
		}},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.PromoCode != nil && strings.TrimSpace(*req.PromoCode) != "" {
			code, err := s.promos.Redeem(tx, *req.PromoCode)
			if err != nil {
				return err
			}
			order.PromoCode = code.Code
			order.DiscountAmount = code.Discount(subtotal)
			order.TotalPrice = subtotal.Sub(order.DiscountAmount)
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(order.ID)
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *ListRequest) (*Page, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{})

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID != 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query = query.Preload("Items").Order(buildOrderClause(req.SortBy, req.SortOrder))
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &Page{
		Orders: orders,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

// GetUserOrders retrieves all orders of a user, newest first
func (s *Service) GetUserOrders(userID int64) ([]Order, error) {
	orders := make([]Order, 0)
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(id uint) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&order)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &order, nil
}

// GetUserOrder retrieves an order only if it belongs to userID
func (s *Service) GetUserOrder(userID int64, id uint) (*Order, error) {
	order, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

// UpdateStatus moves an order to a new status and records the change
func (s *Service) UpdateStatus(orderID uint, req *StatusUpdateRequest, updatedBy int64) (*Order, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, req.Status)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		if !CanTransition(order.Status, req.Status) {
			return fmt.Errorf("%w from %s to %s", ErrInvalidTransition, order.Status, req.Status)
		}

		if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := StatusHistory{
			OrderID:   orderID,
			Status:    req.Status,
			Comment:   req.Comment,
			CreatedBy: updatedBy,
			CreatedAt: s.now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(orderID)
}

// mergeItems folds repeated product lines together and checks quantities
func mergeItems(items []ItemRequest) ([]ItemRequest, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	merged := make([]ItemRequest, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d quantity %d", ErrInvalidQuantity, item.ProductID, item.Quantity)
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	for _, item := range merged {
		if item.Quantity > MaxItemQuantity {
			return nil, fmt.Errorf("%w: product %d quantity %d", ErrInvalidQuantity, item.ProductID, item.Quantity)
		}
	}
	return merged, nil
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":  true,
		"updated_at":  true,
		"total_price": true,
		"status":      true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id DESC", sortBy, sortOrder)
}
