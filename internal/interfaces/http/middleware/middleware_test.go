package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{Secret: "test-secret-that-is-long-enough-123456", AccessTokenExpiry: time.Hour},
	})
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndAdminMiddleware(t *testing.T) {
	jwtManager := testJWT()
	r := gin.New()
	r.Use(AuthMiddleware(jwtManager))
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetUserIDFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	r.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer junk"}).Code)

	userToken, err := jwtManager.GenerateToken(42, false)
	require.NoError(t, err)
	w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + userToken})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + userToken}).Code)

	adminToken, err := jwtManager.GenerateToken(1, true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + adminToken}).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.SecurityConfig{
		CORSAllowedOrigins: []string{"https://web.telegram.org", "*.example.com"},
		CORSAllowedMethods: []string{"GET"},
	}, "X-Shell-Reload"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", map[string]string{"Origin": "https://web.telegram.org"})
	assert.Equal(t, "https://web.telegram.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Shell-Reload", w.Header().Get("Access-Control-Expose-Headers"))

	w = perform(r, http.MethodGet, "/", map[string]string{"Origin": "https://shop.example.com"})
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/", map[string]string{"Origin": "https://evil.test"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodOptions, "/", nil).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := perform(r, http.MethodGet, "/", nil)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	const given = "4f1e9c0a-8a52-4c1b-9b7e-7a4c1f0d2e11"
	w = perform(r, http.MethodGet, "/", map[string]string{HeaderRequestID: given})
	assert.Equal(t, given, w.Body.String())
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusGatewayTimeout, perform(r, http.MethodGet, "/slow", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/fast", nil).Code)
}
