package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/pkg/format"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/store"
)

// AddToCartRequest is the body of POST /app/cart
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartRequest is the body of PUT /app/cart/:productId
type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type cartLine struct {
	store.CartItem
	PriceText string `json:"priceText"`
	TotalText string `json:"totalText"`
}

func cartView(st store.State) gin.H {
	lines := make([]cartLine, 0, len(st.Cart))
	for _, item := range st.Cart {
		lines = append(lines, cartLine{
			CartItem:  item,
			PriceText: format.Price(item.Product.Price),
			TotalText: format.Price(item.LineTotal()),
		})
	}

	view := gin.H{
		"items":     lines,
		"total":     st.CartTotal(),
		"totalText": format.Price(st.CartTotal()),
		"count":     st.CartItemCount(),
	}
	if len(lines) == 0 {
		view["empty"] = gin.H{
			"title":       i18n.T("cart.empty"),
			"description": i18n.T("cart.emptyDesc"),
		}
	}
	return view
}

// GetCart handles GET /app/cart
func (h *Handler) GetCart(c *gin.Context) {
	ok(c, cartView(session(c).Store.Snapshot()))
}

// AddToCart handles POST /app/cart. The product is read from the upstream API
// so the cart holds the current price.
func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	s := session(c)
	ctx := c.Request.Context()

	resp := s.API.GetProduct(ctx, req.ProductID)
	if err := resp.Err(); err != nil {
		failErr(c, err, "products.loadError")
		return
	}
	if !resp.Data.IsAvailable {
		fail(c, http.StatusBadRequest, i18n.T("products.outOfStock"))
		return
	}

	before := s.Store.Snapshot().CartQuantity(req.ProductID)
	quantity, err := s.Store.AddToCart(ctx, resp.Data, req.Quantity)
	if err != nil {
		failErr(c, err, "errors.validationError")
		return
	}

	n := notify(NotifySuccess, i18n.T("products.addedToCart", i18n.Params{"count": req.Quantity}))
	if quantity < before+req.Quantity {
		n = notify(NotifyWarning, i18n.T("cart.maxQuantity", i18n.Params{"max": quantity}))
		logger.WithCategory(h.logFor(c), logger.CategoryValidation).WithFields(logrus.Fields{
			"product_id": req.ProductID,
			"requested":  before + req.Quantity,
		}).Warn("Cart quantity clamped")
	}

	respond(c, http.StatusOK, Response{Success: true, Data: cartView(s.Store.Snapshot()), Notification: n})
}

// UpdateCartItem handles PUT /app/cart/:productId; zero or less removes the entry
func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	s := session(c)
	quantity := s.Store.UpdateCartItemQuantity(c.Request.Context(), productID, *req.Quantity)

	message := i18n.T("cart.updated")
	if quantity == 0 {
		message = i18n.T("cart.itemRemoved")
	}
	okNotify(c, http.StatusOK, cartView(s.Store.Snapshot()), message)
}

// RemoveCartItem handles DELETE /app/cart/:productId
func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}

	s := session(c)
	s.Store.RemoveFromCart(c.Request.Context(), productID)
	okNotify(c, http.StatusOK, cartView(s.Store.Snapshot()), i18n.T("cart.itemRemoved"))
}

// ClearCart handles DELETE /app/cart
func (h *Handler) ClearCart(c *gin.Context) {
	s := session(c)
	s.Store.ClearCart(c.Request.Context())
	logger.UserAction(h.logFor(c), "clear cart", nil)
	okNotify(c, http.StatusOK, cartView(s.Store.Snapshot()), i18n.T("cart.cleared"))
}
