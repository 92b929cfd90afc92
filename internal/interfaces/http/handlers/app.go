package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/platform"
	"github.com/your-org/donate-storefront/internal/store"
	"github.com/your-org/donate-storefront/internal/theme"
)

const eventsHeartbeat = 30 * time.Second

// Bootstrap handles POST /app/bootstrap with the shell's launch payload
func (h *Handler) Bootstrap(c *gin.Context) {
	var payload platform.LaunchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	s := session(c)
	s.Store.SetBridge(platform.NewWebApp(payload))
	err := s.Store.Bootstrap(c.Request.Context())

	st := s.Store.Snapshot()
	data := gin.H{
		"state":          newStateView(st),
		"themeVariables": theme.Variables(st.Theme, payload.ThemeParams),
	}

	if err != nil {
		// the public catalog stays usable while signed out
		logger.WithCategory(h.logFor(c), logger.CategoryAuth).WithError(err).Warn("Bootstrap finished without a session")
		respond(c, http.StatusOK, Response{
			Success:      true,
			Data:         data,
			Notification: notify(NotifyWarning, i18n.T("errors.unauthorized")),
		})
		return
	}

	logger.WithCategory(h.logFor(c), logger.CategoryNavigation).WithField("platform", payload.Platform).Info("Mini-app launched")
	ok(c, data)
}

// State handles GET /app/state
func (h *Handler) State(c *gin.Context) {
	ok(c, newStateView(session(c).Store.Snapshot()))
}

// Events handles GET /app/events, streaming every state change as a
// server-sent "state" event. Slow readers only see the latest state.
func (h *Handler) Events(c *gin.Context) {
	s := session(c)

	updates := make(chan store.State, 1)
	cancel := s.Store.Subscribe(func(st store.State) {
		select {
		case updates <- st:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- st
		}
	})
	defer cancel()

	heartbeat := time.NewTicker(eventsHeartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("state", newStateView(s.Store.Snapshot()))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case st := <-updates:
			c.SSEvent("state", newStateView(st))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// ToggleTheme handles POST /app/theme/toggle
func (h *Handler) ToggleTheme(c *gin.Context) {
	s := session(c)
	t := s.Store.ToggleTheme(c.Request.Context())
	ok(c, gin.H{
		"theme":          t,
		"themeVariables": theme.Variables(t, s.Store.Bridge().ThemeParams()),
	})
}

// SetTheme handles PUT /app/theme
func (h *Handler) SetTheme(c *gin.Context) {
	var t theme.Theme
	if err := c.ShouldBindJSON(&t); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	s := session(c)
	if err := s.Store.SetTheme(c.Request.Context(), t); err != nil {
		failErr(c, err, "errors.validationError")
		return
	}
	ok(c, gin.H{
		"theme":          t,
		"themeVariables": theme.Variables(t, s.Store.Bridge().ThemeParams()),
	})
}

// Logout handles POST /app/logout
func (h *Handler) Logout(c *gin.Context) {
	session(c).Store.Logout(c.Request.Context())
	logger.UserAction(h.logFor(c), "logout", nil)
	redirect(c, http.StatusOK, "/", notify(NotifySuccess, i18n.T("profile.loggedOut")))
}
