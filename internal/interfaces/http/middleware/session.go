package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/donate-storefront/internal/store"
)

const (
	ContextSession  = "session"
	HeaderSessionID = "X-Session-ID"
	CookieSession   = "sid"
)

// Session resolves the shell session from the X-Session-ID header or the sid
// cookie, issuing a new id when neither carries a valid one.
func Session(manager *store.Manager, ttl time.Duration, secure bool) gin.HandlerFunc {
	sameSite := http.SameSiteLaxMode
	if secure {
		// the mini-app runs inside the chat client's iframe
		sameSite = http.SameSiteNoneMode
	}

	return func(c *gin.Context) {
		id := c.GetHeader(HeaderSessionID)
		if id == "" {
			id, _ = c.Cookie(CookieSession)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		session, err := manager.Get(c.Request.Context(), id)
		if err != nil {
			abortJSON(c, http.StatusServiceUnavailable, "Session unavailable")
			return
		}

		c.SetSameSite(sameSite)
		c.SetCookie(CookieSession, id, int(ttl.Seconds()), "/", "", secure, true)
		c.Header(HeaderSessionID, id)
		c.Set(ContextSession, session)
		c.Next()
	}
}

// GetSession returns the session resolved by Session
func GetSession(c *gin.Context) (*store.Session, bool) {
	value, exists := c.Get(ContextSession)
	if !exists {
		return nil, false
	}
	session, ok := value.(*store.Session)
	return session, ok
}
