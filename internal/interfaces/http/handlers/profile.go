package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/domain/user"
	"github.com/your-org/donate-storefront/internal/pkg/format"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/pkg/validation"
)

// recentOrders is how many orders the profile page lists
const recentOrders = 5

// PromoRequest is the body of POST /app/profile/promo
type PromoRequest struct {
	Code string `json:"code"`
}

// GetProfile handles GET /app/profile
func (h *Handler) GetProfile(c *gin.Context) {
	s := session(c)
	ctx := c.Request.Context()

	resp := s.API.GetUserProfile(ctx)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	profile := resp.Data
	s.Store.SetUser(ctx, profile)

	if err := s.Store.FetchOrders(ctx); err != nil {
		h.logFor(c).WithError(err).Warn("Order history unavailable")
	}
	orders := s.Store.Snapshot().Orders

	recent := orders
	if len(recent) > recentOrders {
		recent = recent[:recentOrders]
	}

	view := gin.H{
		"user":         profile,
		"fullName":     profile.GetFullName(),
		"balanceText":  format.Price(profile.Balance),
		"orders":       recent,
		"orderCount":   len(orders),
		"totalSpent":   format.Price(totalSpent(orders)),
		"isAdmin":      profile.IsAdmin,
		"topUpMessage": i18n.T("profile.topUpSoon"),
	}
	if len(orders) == 0 {
		view["emptyOrders"] = i18n.T("profile.orderHistoryEmpty")
	}
	ok(c, view)
}

// UpdateProfile handles PUT /app/profile. Only the fields present in the body
// are validated and sent.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req user.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	fields := req.Fields()
	if len(fields) == 0 {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	if !h.validatePresent(c, validation.UserSchema, fields) {
		return
	}

	s := session(c)
	ctx := c.Request.Context()
	resp := s.API.UpdateUserProfile(ctx, req)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	s.Store.SetUser(ctx, resp.Data)

	logger.UserAction(h.logFor(c), "update profile", logrus.Fields{"fields": len(fields)})
	okNotify(c, http.StatusOK, resp.Data, i18n.T("profile.updated"))
}

// ApplyPromo handles POST /app/profile/promo
func (h *Handler) ApplyPromo(c *gin.Context) {
	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	code := promo.NormalizeCode(req.Code)
	if code == "" {
		fail(c, http.StatusBadRequest, i18n.T("checkout.promoRequired"))
		return
	}
	if !h.validate(c, validation.PromoCodeSchema, map[string]interface{}{"code": code}) {
		return
	}

	resp := session(c).API.ApplyPromoCode(c.Request.Context(), code)
	if err := resp.Err(); err != nil {
		failErr(c, err, "checkout.promoFailed")
		return
	}

	logger.UserAction(h.logFor(c), "apply promo code", logrus.Fields{"code": code})
	okNotify(c, http.StatusOK, resp.Data, i18n.T("checkout.promoApplied"))
}

func totalSpent(orders []order.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status != order.StatusCancelled {
			total = total.Add(o.TotalPrice)
		}
	}
	return total
}
