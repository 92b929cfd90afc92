package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstream is a canned version of the REST API
type upstream struct {
	mu            sync.Mutex
	isAdmin       bool
	profileStatus int
	orders        int
}

func (u *upstream) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/telegram", func(c *gin.Context) {
		u.mu.Lock()
		defer u.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"token": "session-token",
			"user":  gin.H{"id": 7, "first_name": "Ivan", "last_name": "Petrov", "is_admin": u.isAdmin},
		}})
	})
	api.GET("/games", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{
			{"id": 1, "name": "PUBG Mobile", "is_popular": true},
			{"id": 2, "name": "Genshin Impact", "is_popular": true},
			{"id": 3, "name": "Brawl Stars"},
		}})
	})
	api.GET("/games/popular", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{{"id": 1, "name": "PUBG Mobile", "is_popular": true}}})
	})
	api.GET("/games/:id", func(c *gin.Context) {
		if c.Param("id") != "1" {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Game not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": 1, "name": "PUBG Mobile"}})
	})
	api.GET("/games/:id/categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{
			{"id": 1, "game_id": 1, "name": "UC"},
			{"id": 2, "game_id": 1, "name": "Royale Pass"},
		}})
	})
	api.GET("/games/:id/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"data": []gin.H{
				{"id": 10, "game_id": 1, "category_id": 1, "name": "60 UC", "price": 99, "is_available": true},
				{"id": 11, "game_id": 1, "category_id": 2, "name": "Royale Pass", "price": 799, "is_available": true},
				{"id": 12, "game_id": 1, "category_id": 2, "name": "Elite Pass Plus", "price": 1999, "is_available": true},
			},
			"total": 3, "page": 1, "limit": 20, "total_pages": 1,
		}})
	})
	api.GET("/products/:id", func(c *gin.Context) {
		switch c.Param("id") {
		case "10":
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": 10, "game_id": 1, "category_id": 1, "name": "60 UC", "price": 100, "is_available": true}})
		case "13":
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": 13, "game_id": 1, "category_id": 1, "name": "Sold out", "price": 50, "is_available": false}})
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
		}
	})
	api.GET("/user/profile", func(c *gin.Context) {
		u.mu.Lock()
		status := u.profileStatus
		u.mu.Unlock()
		if status == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": 7, "first_name": "Ivan", "last_name": "Petrov", "balance": 0}})
	})
	api.GET("/user/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{}})
	})
	api.POST("/orders", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer session-token" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required"})
			return
		}
		u.mu.Lock()
		u.orders++
		u.mu.Unlock()
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
			"id": 5, "order_number": "ORD-1", "status": "pending", "payment_method": "card",
			"payment_status": "pending", "subtotal": 200, "total_price": 200,
		}})
	})
	api.POST("/payments", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"id": 1, "order_id": 5, "method": "card", "amount": 200}})
	})
	api.POST("/promo-codes/apply", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "promo code has expired"})
	})
	return r
}

func (u *upstream) set(fn func(u *upstream)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u)
}

func (u *upstream) orderCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.orders
}

type envelope struct {
	Success      bool                   `json:"success"`
	Data         json.RawMessage        `json:"data"`
	Error        string                 `json:"error"`
	Notification *handlers.Notification `json:"notification"`
	Redirect     string                 `json:"redirect"`
}

type harness struct {
	t        *testing.T
	router   *gin.Engine
	upstream *upstream
	session  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	up := &upstream{}
	upstreamServer := httptest.NewServer(up.router())
	t.Cleanup(upstreamServer.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	buffer := logger.NewBuffer(100, nil)
	log.AddHook(buffer)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "Donate Storefront", Environment: "test"},
		Server: config.ServerConfig{WriteTimeout: 5 * time.Second},
		Store:  config.StoreConfig{MaxCartQuantity: 99, SessionTTL: time.Hour},
		Upload: config.UploadConfig{MaxSize: 1 << 20},
	}

	manager := store.NewManager(func(_ context.Context, id string) (*store.Session, error) {
		return store.NewSession(id, store.SessionConfig{
			BaseURL:     upstreamServer.URL + "/api",
			Timeout:     2 * time.Second,
			Logger:      log,
			MaxQuantity: cfg.Store.MaxCartQuantity,
		}), nil
	})

	server := NewServer(cfg, manager, nil, buffer, log)
	return &harness{t: t, router: server.Router(), upstream: up}
}

func (h *harness) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if h.session != "" {
		req.Header.Set(middleware.HeaderSessionID, h.session)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	if id := w.Header().Get(middleware.HeaderSessionID); id != "" {
		h.session = id
	}

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (h *harness) bootstrap() {
	h.t.Helper()
	w, env := h.do(http.MethodPost, "/app/bootstrap", gin.H{
		"init_data":    `user={"id":7,"first_name":"Ivan"}&auth_date=1700000000&hash=abc`,
		"color_scheme": "dark",
	})
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	require.True(h.t, env.Success)
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(http.MethodGet, "/app/nowhere", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/", env.Redirect)
	assert.False(t, env.Success)
}

func TestSessionIsKeptAcrossRequests(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(http.MethodPost, "/app/theme/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, h.session)

	_, env := h.do(http.MethodGet, "/app/state", nil)
	var state struct {
		Theme struct {
			Mode string `json:"mode"`
		} `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, "dark", state.Theme.Mode)
}

func TestBootstrapSignsIn(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	_, env := h.do(http.MethodGet, "/app/state", nil)
	var state struct {
		IsAuthenticated bool `json:"isAuthenticated"`
		Games           []struct {
			Name string `json:"name"`
		} `json:"games"`
		PopularGames []struct{} `json:"popularGames"`
		Theme        struct {
			Mode string `json:"mode"`
		} `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.True(t, state.IsAuthenticated)
	assert.Len(t, state.Games, 3)
	assert.Len(t, state.PopularGames, 1)
	assert.Equal(t, "dark", state.Theme.Mode)
}

func TestBootstrapWithoutInitDataStaysPublic(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(http.MethodPost, "/app/bootstrap", gin.H{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Notification)
	assert.Equal(t, handlers.NotifyWarning, env.Notification.Type)

	w, _ = h.do(http.MethodGet, "/app/games", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccountViewsRequireAuth(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/app/cart", "/app/checkout", "/app/profile", "/app/orders"} {
		w, env := h.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "/", env.Redirect, path)
	}
}

func TestAdminViewsRequireAdmin(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	w, env := h.do(http.MethodGet, "/app/admin/logs", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/profile", env.Redirect)
}

func TestAdminLogsView(t *testing.T) {
	h := newHarness(t)
	h.upstream.set(func(u *upstream) { u.isAdmin = true })
	h.bootstrap()

	w, env := h.do(http.MethodGet, "/app/admin/logs?category="+logger.CategoryAuth, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entries []logger.Entry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.Equal(t, logger.CategoryAuth, entry.Category)
	}

	w, _ = h.do(http.MethodGet, "/app/admin/logs?level=loud", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	w, env := h.do(http.MethodPost, "/app/cart", gin.H{"product_id": 10, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, env.Notification)
	assert.Equal(t, handlers.NotifySuccess, env.Notification.Type)

	var cart struct {
		Count int     `json:"count"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, 200.0, cart.Total)

	_, env = h.do(http.MethodPost, "/app/cart", gin.H{"product_id": 10, "quantity": 98})
	require.NotNil(t, env.Notification)
	assert.Equal(t, handlers.NotifyWarning, env.Notification.Type)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Equal(t, 99, cart.Count)

	_, env = h.do(http.MethodPut, "/app/cart/10", gin.H{"quantity": 0})
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Equal(t, 0, cart.Count)
	assert.Equal(t, i18n.T("cart.itemRemoved"), env.Notification.Message)
}

func TestCartRejectsUnavailableProduct(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	w, env := h.do(http.MethodPost, "/app/cart", gin.H{"product_id": 13, "quantity": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, i18n.T("products.outOfStock"), env.Error)
}

func TestCheckoutPlacesOrder(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	w, env := h.do(http.MethodGet, "/app/checkout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/cart", env.Redirect)

	h.do(http.MethodPost, "/app/cart", gin.H{"product_id": 10, "quantity": 2})

	w, env = h.do(http.MethodPost, "/app/checkout", gin.H{"payment_method": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, h.upstream.orderCount())

	w, env = h.do(http.MethodPost, "/app/checkout", gin.H{"payment_method": "card", "promo_code": "old1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "promo code has expired", env.Error)
	assert.Zero(t, h.upstream.orderCount())

	w, env = h.do(http.MethodPost, "/app/checkout", gin.H{"payment_method": "card"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/profile", env.Redirect)
	assert.Equal(t, i18n.T("checkout.orderConfirmed"), env.Notification.Message)
	assert.Equal(t, 1, h.upstream.orderCount())

	_, env = h.do(http.MethodGet, "/app/cart", nil)
	var cart struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Zero(t, cart.Count)
}

func TestUpstreamUnauthorizedRequestsReload(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()
	h.do(http.MethodPost, "/app/cart", gin.H{"product_id": 10, "quantity": 1})
	h.upstream.set(func(u *upstream) { u.profileStatus = http.StatusUnauthorized })

	w, env := h.do(http.MethodGet, "/app/profile", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "1", w.Header().Get(handlers.HeaderShellReload))
	assert.Equal(t, "/", env.Redirect)

	w, _ = h.do(http.MethodGet, "/app/state", nil)
	assert.Empty(t, w.Header().Get(handlers.HeaderShellReload))

	_, env = h.do(http.MethodGet, "/app/state", nil)
	var state struct {
		IsAuthenticated bool `json:"isAuthenticated"`
		CartItemCount   int  `json:"cartItemCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, 1, state.CartItemCount)
}

func TestGameDetailsFiltersProducts(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(http.MethodGet, "/app/games/1?category_id=2&sort_by=price&sort_order=desc", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view struct {
		Products []struct {
			ID uint `json:"id"`
		} `json:"products"`
		Categories []struct{} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Products, 2)
	assert.Equal(t, uint(12), view.Products[0].ID)
	assert.Equal(t, uint(11), view.Products[1].ID)
	assert.Len(t, view.Categories, 2)

	w, _ = h.do(http.MethodGet, "/app/games/1?min_price=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = h.do(http.MethodGet, "/app/games/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/", env.Redirect)
}

func TestGamesSearch(t *testing.T) {
	h := newHarness(t)

	_, env := h.do(http.MethodGet, "/app/games?search=pubg", nil)
	var view struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 1, view.Count)
}

func TestProductNotFoundRedirectsHome(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(http.MethodGet, "/app/products/404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/", env.Redirect)
	require.NotNil(t, env.Notification)
	assert.Equal(t, i18n.T("products.notFound"), env.Notification.Message)
}

func TestEventsStreamStateChanges(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/app/state", nil)

	server := httptest.NewServer(h.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/app/events", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.HeaderSessionID, h.session)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	nextData := func() string {
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data:") {
				return line
			}
		}
		return ""
	}

	assert.Contains(t, nextData(), `"mode":"light"`)

	h.do(http.MethodPost, "/app/theme/toggle", nil)
	assert.Contains(t, nextData(), `"mode":"dark"`)
}
