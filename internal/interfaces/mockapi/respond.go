package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/payment"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/domain/upload"
	"github.com/your-org/donate-storefront/internal/domain/user"
	"github.com/your-org/donate-storefront/internal/platform"
)

func ok[T any](c *gin.Context, status int, data T) {
	c.JSON(status, api.OK(data))
}

func okMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, api.Response[api.Empty]{Success: true, Message: message})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, api.Response[api.Empty]{Success: false, Error: message})
}

// statusFor maps domain sentinel errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, promo.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, platform.ErrEmptyInitData),
		errors.Is(err, platform.ErrMissingHash),
		errors.Is(err, platform.ErrInvalidSignature),
		errors.Is(err, platform.ErrExpiredInitData),
		errors.Is(err, platform.ErrMissingUser):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrPriceChanged),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, payment.ErrOrderClosed),
		errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict

	case errors.Is(err, upload.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, catalog.ErrInvalidFilter),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrUnsupportedPaymentMethod),
		errors.Is(err, order.ErrProductUnavailable),
		errors.Is(err, promo.ErrInactive),
		errors.Is(err, promo.ErrExpired),
		errors.Is(err, promo.ErrExhausted),
		errors.Is(err, payment.ErrUnsupportedMethod),
		errors.Is(err, payment.ErrAmountMismatch),
		errors.Is(err, upload.ErrExtensionBlocked),
		errors.Is(err, upload.ErrEmptyFile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// failErr writes the error envelope; server errors are logged and not echoed
func (h *Handler) failErr(c *gin.Context, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error(action)
		fail(c, status, action)
		return
	}
	fail(c, status, err.Error())
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
