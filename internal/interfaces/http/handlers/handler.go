// Package handlers implements the storefront views. Each view reads or
// mutates the caller's session store and answers with the Response envelope
// the mini-app shell renders.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/donate-storefront/internal/pkg/format"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/pkg/pdf"
	"github.com/your-org/donate-storefront/internal/store"
)

// Handler serves every storefront view
type Handler struct {
	config   *config.Config
	receipts *pdf.Service
	logs     *logger.Buffer
	log      logrus.FieldLogger
}

// NewHandler creates the view handler. logs may be nil when no buffer is kept.
func NewHandler(cfg *config.Config, logs *logger.Buffer, log logrus.FieldLogger) *Handler {
	return &Handler{
		config:   cfg,
		receipts: pdf.NewService(cfg.Receipt),
		logs:     logs,
		log:      log,
	}
}

// session returns the caller's session; Session middleware guarantees one
func session(c *gin.Context) *store.Session {
	s, _ := middleware.GetSession(c)
	return s
}

func (h *Handler) logFor(c *gin.Context) logrus.FieldLogger {
	log := h.log.WithField(middleware.ContextRequestID, c.GetString(middleware.ContextRequestID))
	if s, ok := middleware.GetSession(c); ok {
		log = log.WithField("session_id", s.ID)
	}
	return log
}

// RequireAuth sends signed out sessions to the start page
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := middleware.GetSession(c)
		if !ok || !s.Store.Snapshot().IsAuthenticated {
			message := i18n.T("errors.unauthorized")
			abort(c, http.StatusUnauthorized, Response{Error: message, Notification: notify(NotifyError, message), Redirect: "/"})
			return
		}
		c.Next()
	}
}

// RequireAdmin sends sessions without the admin flag to their profile
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := middleware.GetSession(c)
		if !ok || !s.Store.Snapshot().IsAdmin() {
			message := i18n.T("errors.forbidden")
			abort(c, http.StatusForbidden, Response{Error: message, Notification: notify(NotifyError, message), Redirect: "/profile"})
			return
		}
		c.Next()
	}
}

// stateView is a state snapshot with the derived cart figures
type stateView struct {
	store.State
	IsAdmin       bool            `json:"isAdmin"`
	CartTotal     decimal.Decimal `json:"cartTotal"`
	CartTotalText string          `json:"cartTotalText"`
	CartItemCount int             `json:"cartItemCount"`
}

func newStateView(st store.State) stateView {
	total := st.CartTotal()
	return stateView{
		State:         st,
		IsAdmin:       st.IsAdmin(),
		CartTotal:     total,
		CartTotalText: format.Price(total),
		CartItemCount: st.CartItemCount(),
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return 0, false
	}
	return uint(id), true
}
