package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/validation"
)

// HeaderShellReload tells the shell to reload the mini-app
const HeaderShellReload = "X-Shell-Reload"

// Notification types shown by the shell
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyWarning = "warning"
	NotifyInfo    = "info"
)

// Notification is a toast the shell displays
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Response is the envelope of every storefront view
type Response struct {
	Success      bool          `json:"success"`
	Data         interface{}   `json:"data,omitempty"`
	Error        string        `json:"error,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Redirect     string        `json:"redirect,omitempty"`
}

func notify(kind, message string) *Notification {
	return &Notification{Type: kind, Message: message}
}

// respond writes the envelope, flagging a pending shell reload first
func respond(c *gin.Context, status int, resp Response) {
	if session, ok := middleware.GetSession(c); ok && session.Store.ConsumeReload() {
		c.Header(HeaderShellReload, "1")
	}
	c.JSON(status, resp)
}

func abort(c *gin.Context, status int, resp Response) {
	respond(c, status, resp)
	c.Abort()
}

func ok(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, Response{Success: true, Data: data})
}

func okNotify(c *gin.Context, status int, data interface{}, message string) {
	respond(c, status, Response{Success: true, Data: data, Notification: notify(NotifySuccess, message)})
}

func fail(c *gin.Context, status int, message string) {
	respond(c, status, Response{Error: message, Notification: notify(NotifyError, message)})
}

func redirect(c *gin.Context, status int, to string, n *Notification) {
	resp := Response{Redirect: to, Notification: n}
	if n != nil && n.Type == NotifyError {
		resp.Error = n.Message
	}
	resp.Success = status < http.StatusBadRequest
	respond(c, status, resp)
}

// invalid reports rejected form input with the per-field messages as data
func invalid(c *gin.Context, result validation.Result) {
	message := i18n.T("errors.validationError")
	if len(result.Errors) > 0 {
		message = result.Errors[0]
	}
	respond(c, http.StatusBadRequest, Response{
		Data:         gin.H{"fields": result.Fields},
		Error:        message,
		Notification: notify(NotifyError, message),
	})
}

// failErr translates an upstream failure into a view response. Unauthorized
// failures send the shell back to the start page.
func failErr(c *gin.Context, err error, fallbackKey string) {
	var (
		status  int
		message string
		to      string
	)

	switch api.KindOf(err) {
	case api.KindUnauthorized:
		status, message, to = http.StatusUnauthorized, i18n.T("errors.unauthorized"), "/"
	case api.KindNotFound:
		status, message = http.StatusNotFound, i18n.T("errors.notFound")
	case api.KindValidation:
		status, message = http.StatusBadRequest, upstreamMessage(err, fallbackKey)
	case api.KindNetwork:
		status, message = http.StatusBadGateway, i18n.T("errors.networkError")
	case api.KindServer, api.KindDecode:
		status, message = http.StatusBadGateway, i18n.T("errors.serverError")
	default:
		status, message = http.StatusInternalServerError, i18n.T(fallbackKey)
	}

	respond(c, status, Response{Error: message, Notification: notify(NotifyError, message), Redirect: to})
}

func upstreamMessage(err error, fallbackKey string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return i18n.T(fallbackKey)
}

// NotFound answers unknown paths by sending the shell home
func NotFound(c *gin.Context) {
	redirect(c, http.StatusNotFound, "/", nil)
}
