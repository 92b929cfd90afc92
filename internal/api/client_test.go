package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *MemoryTokens) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := &MemoryTokens{}
	return NewClient(Options{BaseURL: server.URL + "/api/", Tokens: tokens}), tokens
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestGetGamesAttachesBearerToken(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/games", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":1,"name":"PUBG Mobile","is_popular":true}]}`)
	})
	require.NoError(t, tokens.SaveToken(context.Background(), "secret"))

	resp := client.GetGames(context.Background())

	require.True(t, resp.Success)
	require.NoError(t, resp.Err())
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "PUBG Mobile", resp.Data[0].Name)
}

func TestNoTokenNoAuthorizationHeader(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})

	assert.True(t, client.GetPopularGames(context.Background()).Success)
}

func TestGetProductsSendsFilters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/games/3/products", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("category_id"))
		assert.Equal(t, "price", r.URL.Query().Get("sort_by"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"data":[{"id":9,"price":149.5}],"total":1,"page":1,"limit":20,"total_pages":1}}`)
	})

	resp := client.GetProducts(context.Background(), 3, catalog.FilterOptions{CategoryID: 5, SortBy: catalog.SortByPrice})

	require.True(t, resp.Success)
	require.Len(t, resp.Data.Data, 1)
	assert.True(t, resp.Data.Data[0].Price.Equal(decimal.RequireFromString("149.5")))
	assert.Equal(t, 1, resp.Data.TotalPages)
}

func TestUnauthorizedClearsTokenAndNotifies(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":"token expired"}`)
	})
	require.NoError(t, tokens.SaveToken(context.Background(), "stale"))

	notified := 0
	client.SetOnUnauthorized(func() { notified++ })

	resp := client.GetUserOrders(context.Background())

	assert.False(t, resp.Success)
	assert.Equal(t, KindUnauthorized, resp.Kind)
	assert.Equal(t, "token expired", resp.Error)
	assert.Equal(t, 1, notified)

	token, _ := tokens.LoadToken(context.Background())
	assert.Empty(t, token)
}

func TestStatusKinds(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   Kind
		msg    string
	}{
		{http.StatusNotFound, `{"success":false,"error":"Товар не найден"}`, KindNotFound, "Товар не найден"},
		{http.StatusBadRequest, `{"success":false,"message":"bad input"}`, KindValidation, "bad input"},
		{http.StatusInternalServerError, `<html>oops</html>`, KindServer, "Internal Server Error"},
		{http.StatusForbidden, `{"success":false,"error":"admin only"}`, KindUnauthorized, "admin only"},
	}

	for _, tt := range tests {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tt.status, tt.body)
		})

		resp := client.GetProduct(context.Background(), 1)

		assert.False(t, resp.Success)
		assert.Equal(t, tt.kind, resp.Kind, "status %d", tt.status)
		assert.Equal(t, tt.msg, resp.Error)
		assert.Equal(t, tt.status, resp.StatusCode)

		var apiErr *Error
		require.True(t, errors.As(resp.Err(), &apiErr))
		assert.Equal(t, tt.kind, apiErr.Kind)
	}
}

func TestUndecodableSuccessBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	})

	resp := client.GetGames(context.Background())

	assert.False(t, resp.Success)
	assert.Equal(t, KindDecode, resp.Kind)
}

func TestEnvelopeFailureOn200(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false}`)
	})

	resp := client.GetGames(context.Background())

	assert.False(t, resp.Success)
	assert.Equal(t, KindValidation, resp.Kind)
	assert.NotEmpty(t, resp.Error)
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	resp := client.GetGames(context.Background())

	assert.False(t, resp.Success)
	assert.Equal(t, KindNetwork, resp.Kind)
	assert.True(t, IsKind(resp.Err(), KindNetwork))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client := NewClient(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	resp := client.GetGames(context.Background())

	assert.False(t, resp.Success)
	assert.Equal(t, KindNetwork, resp.Kind)
}

func TestCreateOrderBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "card", body["payment_method"])
		assert.Nil(t, body["promo_code"])
		assert.Equal(t, 250.0, body["total_amount"])

		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":77,"status":"pending","total_price":250}}`)
	})

	resp := client.CreateOrder(context.Background(), order.CreateRequest{
		Items:         []order.ItemRequest{{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(100)}},
		PaymentMethod: "card",
		TotalAmount:   decimal.NewFromInt(250),
	})

	require.True(t, resp.Success)
	assert.Equal(t, uint(77), resp.Data.ID)
	assert.Equal(t, order.StatusPending, resp.Data.Status)
}

func TestUploadFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "banner.png", header.Filename)
		assert.Equal(t, "png-bytes", string(content))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"url":"http://cdn/banner.png"}}`)
	})

	resp := client.UploadFile(context.Background(), "banner.png", strings.NewReader("png-bytes"))

	require.True(t, resp.Success)
	assert.Equal(t, "http://cdn/banner.png", resp.Data.URL)
}

func TestResponseErr(t *testing.T) {
	assert.NoError(t, OK(1).Err())

	err := Fail[int](KindNotFound, 404, "missing").Err()
	assert.EqualError(t, err, "not_found (404): missing")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
