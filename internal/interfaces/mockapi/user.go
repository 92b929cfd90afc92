package mockapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/domain/user"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/donate-storefront/internal/pkg/validation"
)

var profileValidator = validation.New(validation.UserSchema)

// GetProfile handles GET /user/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	u, err := h.users.GetProfile(userID)
	if err != nil {
		h.failErr(c, err, "Failed to retrieve profile")
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateProfile handles PUT /user/profile. Only the fields present are validated and changed.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req user.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	var problems []string
	for field, value := range req.Fields() {
		problems = append(problems, profileValidator.ValidateField(field, value)...)
	}
	if len(problems) > 0 {
		fail(c, http.StatusBadRequest, strings.Join(problems, "; "))
		return
	}

	u, err := h.users.UpdateProfile(userID, &req)
	if err != nil {
		h.failErr(c, err, "Failed to update profile")
		return
	}
	ok(c, http.StatusOK, u)
}

// GetUserOrders handles GET /user/orders
func (h *Handler) GetUserOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orders, err := h.orders.GetUserOrders(userID)
	if err != nil {
		h.failErr(c, err, "Failed to retrieve orders")
		return
	}
	ok(c, http.StatusOK, orders)
}
