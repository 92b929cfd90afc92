package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/payment"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
)

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req order.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid order data")
		return
	}

	created, err := h.orders.CreateOrder(userID, &req)
	if err != nil {
		h.failErr(c, err, "Failed to create order")
		return
	}

	logger.Purchase(h.log.WithField("user_id", userID), created.OrderNumber, created.TotalPrice.String())
	ok(c, http.StatusCreated, created)
}

// GetOrder handles GET /orders/:id. Admins may read any order.
func (h *Handler) GetOrder(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}

	var (
		o   *order.Order
		err error
	)
	if middleware.IsAdminFromContext(c) {
		o, err = h.orders.GetOrder(id)
	} else {
		userID, _ := middleware.GetUserIDFromContext(c)
		o, err = h.orders.GetUserOrder(userID, id)
	}
	if err != nil {
		h.failErr(c, err, "Failed to retrieve order")
		return
	}
	ok(c, http.StatusOK, o)
}

// ApplyPromoCode handles POST /promo-codes/apply
func (h *Handler) ApplyPromoCode(c *gin.Context) {
	var req promo.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Promo code is required")
		return
	}

	p, err := h.promos.Apply(req.Code)
	if err != nil {
		h.failErr(c, err, "Failed to apply promo code")
		return
	}
	ok(c, http.StatusOK, p)
}

// CreatePayment handles POST /payments
func (h *Handler) CreatePayment(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req payment.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid payment data")
		return
	}

	p, err := h.payments.CreatePayment(userID, &req)
	if err != nil {
		h.failErr(c, err, "Failed to process payment")
		return
	}
	ok(c, http.StatusCreated, p)
}

// GetPaymentMethods handles GET /payments/methods
func (h *Handler) GetPaymentMethods(c *gin.Context) {
	ok(c, http.StatusOK, payment.Methods())
}
