package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/payment"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/pkg/format"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/pkg/validation"
	"github.com/your-org/donate-storefront/internal/store"
)

// CheckoutRequest is the body of POST /app/checkout
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	PromoCode     string `json:"promo_code"`
}

// GetCheckout handles GET /app/checkout
func (h *Handler) GetCheckout(c *gin.Context) {
	s := session(c)
	st := s.Store.Snapshot()
	if len(st.Cart) == 0 {
		redirect(c, http.StatusOK, "/cart", notify(NotifyInfo, i18n.T("cart.empty")))
		return
	}

	methods := payment.Methods()
	if resp := s.API.GetPaymentMethods(c.Request.Context()); resp.Success && len(resp.Data) > 0 {
		methods = resp.Data
	}

	view := cartView(st)
	view["title"] = i18n.T("checkout.title")
	view["paymentMethods"] = methods
	ok(c, view)
}

// Checkout handles POST /app/checkout: the optional promo code is checked,
// the order is placed from the cart and a payment is opened for it.
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	s := session(c)
	ctx := c.Request.Context()
	log := h.logFor(c)

	st := s.Store.Snapshot()
	if len(st.Cart) == 0 {
		redirect(c, http.StatusBadRequest, "/cart", notify(NotifyError, i18n.T("cart.empty")))
		return
	}

	subtotal := st.CartTotal()
	fields := map[string]interface{}{"amount": subtotal, "method": req.PaymentMethod}
	if !h.validate(c, validation.PaymentSchema, fields) {
		return
	}

	var promoCode *string
	if req.PromoCode != "" {
		code := promo.NormalizeCode(req.PromoCode)
		if !h.validate(c, validation.PromoCodeSchema, map[string]interface{}{"code": code}) {
			return
		}
		if err := s.API.ApplyPromoCode(ctx, code).Err(); err != nil {
			failErr(c, err, "checkout.promoFailed")
			return
		}
		promoCode = &code
	}

	// The order holds the cart as read above and CreateOrder empties the
	// current cart, so lines added by a concurrent request are dropped.
	created, err := s.Store.CreateOrder(ctx, order.CreateRequest{
		Items:         orderItems(st.Cart),
		PaymentMethod: req.PaymentMethod,
		PromoCode:     promoCode,
		TotalAmount:   subtotal,
	})
	if err != nil {
		failErr(c, err, "checkout.orderFailed")
		return
	}

	data := gin.H{
		"order":     created,
		"totalText": format.Price(created.TotalPrice),
	}

	paid := s.API.CreatePayment(ctx, payment.CreateRequest{
		OrderID: created.ID,
		Method:  req.PaymentMethod,
		Amount:  created.TotalPrice,
	})
	if err := paid.Err(); err != nil {
		// the order exists; payment can be retried from the order history
		logger.WithCategory(log, logger.CategoryPurchase).WithError(err).WithField("order_number", created.OrderNumber).Warn("Payment was not opened")
		respond(c, http.StatusCreated, Response{
			Success:      true,
			Data:         data,
			Notification: notify(NotifyWarning, i18n.T("paymentStatus.failed")),
			Redirect:     "/profile",
		})
		return
	}
	data["payment"] = paid.Data

	logger.WithCategory(log, logger.CategoryPurchase).WithFields(logrus.Fields{
		"order_number": created.OrderNumber,
		"method":       req.PaymentMethod,
	}).Info("Checkout completed")

	respond(c, http.StatusCreated, Response{
		Success:      true,
		Data:         data,
		Notification: notify(NotifySuccess, i18n.T("checkout.orderConfirmed")),
		Redirect:     "/profile",
	})
}

func orderItems(cart []store.CartItem) []order.ItemRequest {
	items := make([]order.ItemRequest, 0, len(cart))
	for _, item := range cart {
		items = append(items, order.ItemRequest{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		})
	}
	return items
}
