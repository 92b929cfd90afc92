package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/payment"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/domain/user"
)

// AuthRequest is the body of the authentication exchange
type AuthRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// AuthResult is returned by a successful authentication exchange
type AuthResult struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// UploadResult is returned by the file upload endpoint
type UploadResult struct {
	URL string `json:"url"`
}

// StatusRequest is the body of an order status change
type StatusRequest struct {
	Status order.Status `json:"status"`
}

// Authenticate exchanges platform init data for a session token
func (c *Client) Authenticate(ctx context.Context, initData string) *Response[AuthResult] {
	return do[AuthResult](ctx, c, request{method: http.MethodPost, path: "/auth/telegram", body: AuthRequest{InitData: initData}})
}

// Games

func (c *Client) GetGames(ctx context.Context) *Response[[]catalog.Game] {
	return do[[]catalog.Game](ctx, c, request{method: http.MethodGet, path: "/games"})
}

func (c *Client) GetPopularGames(ctx context.Context) *Response[[]catalog.Game] {
	return do[[]catalog.Game](ctx, c, request{method: http.MethodGet, path: "/games/popular"})
}

func (c *Client) GetGame(ctx context.Context, id uint) *Response[catalog.Game] {
	return do[catalog.Game](ctx, c, request{method: http.MethodGet, path: "/games/" + itoa(id)})
}

// Categories

func (c *Client) GetCategories(ctx context.Context, gameID uint) *Response[[]catalog.Category] {
	return do[[]catalog.Category](ctx, c, request{method: http.MethodGet, path: "/games/" + itoa(gameID) + "/categories"})
}

// Products

func (c *Client) GetProducts(ctx context.Context, gameID uint, filters catalog.FilterOptions) *Response[Paginated[catalog.Product]] {
	return do[Paginated[catalog.Product]](ctx, c, request{
		method: http.MethodGet,
		path:   "/games/" + itoa(gameID) + "/products",
		query:  filters.Values(),
	})
}

func (c *Client) GetProduct(ctx context.Context, id uint) *Response[catalog.Product] {
	return do[catalog.Product](ctx, c, request{method: http.MethodGet, path: "/products/" + itoa(id)})
}

// Users

func (c *Client) GetUserProfile(ctx context.Context) *Response[user.User] {
	return do[user.User](ctx, c, request{method: http.MethodGet, path: "/user/profile"})
}

func (c *Client) UpdateUserProfile(ctx context.Context, req user.ProfileUpdateRequest) *Response[user.User] {
	return do[user.User](ctx, c, request{method: http.MethodPut, path: "/user/profile", body: req})
}

func (c *Client) GetUserOrders(ctx context.Context) *Response[[]order.Order] {
	return do[[]order.Order](ctx, c, request{method: http.MethodGet, path: "/user/orders"})
}

// Orders

func (c *Client) CreateOrder(ctx context.Context, req order.CreateRequest) *Response[order.Order] {
	return do[order.Order](ctx, c, request{method: http.MethodPost, path: "/orders", body: req})
}

func (c *Client) GetOrder(ctx context.Context, id uint) *Response[order.Order] {
	return do[order.Order](ctx, c, request{method: http.MethodGet, path: "/orders/" + itoa(id)})
}

// Promo codes

func (c *Client) ApplyPromoCode(ctx context.Context, code string) *Response[promo.PromoCode] {
	return do[promo.PromoCode](ctx, c, request{method: http.MethodPost, path: "/promo-codes/apply", body: promo.ApplyRequest{Code: code}})
}

// Payments

func (c *Client) CreatePayment(ctx context.Context, req payment.CreateRequest) *Response[payment.Payment] {
	return do[payment.Payment](ctx, c, request{method: http.MethodPost, path: "/payments", body: req})
}

func (c *Client) GetPaymentMethods(ctx context.Context) *Response[[]payment.Method] {
	return do[[]payment.Method](ctx, c, request{method: http.MethodGet, path: "/payments/methods"})
}

// Admin

func (c *Client) AdminCreateGame(ctx context.Context, req catalog.GameRequest) *Response[catalog.Game] {
	return do[catalog.Game](ctx, c, request{method: http.MethodPost, path: "/admin/games", body: req})
}

func (c *Client) AdminUpdateGame(ctx context.Context, id uint, req catalog.GameRequest) *Response[catalog.Game] {
	return do[catalog.Game](ctx, c, request{method: http.MethodPut, path: "/admin/games/" + itoa(id), body: req})
}

func (c *Client) AdminDeleteGame(ctx context.Context, id uint) *Response[Empty] {
	return do[Empty](ctx, c, request{method: http.MethodDelete, path: "/admin/games/" + itoa(id)})
}

func (c *Client) AdminCreateCategory(ctx context.Context, req catalog.CategoryRequest) *Response[catalog.Category] {
	return do[catalog.Category](ctx, c, request{method: http.MethodPost, path: "/admin/categories", body: req})
}

func (c *Client) AdminUpdateCategory(ctx context.Context, id uint, req catalog.CategoryRequest) *Response[catalog.Category] {
	return do[catalog.Category](ctx, c, request{method: http.MethodPut, path: "/admin/categories/" + itoa(id), body: req})
}

func (c *Client) AdminDeleteCategory(ctx context.Context, id uint) *Response[Empty] {
	return do[Empty](ctx, c, request{method: http.MethodDelete, path: "/admin/categories/" + itoa(id)})
}

func (c *Client) AdminCreateProduct(ctx context.Context, req catalog.ProductRequest) *Response[catalog.Product] {
	return do[catalog.Product](ctx, c, request{method: http.MethodPost, path: "/admin/products", body: req})
}

func (c *Client) AdminUpdateProduct(ctx context.Context, id uint, req catalog.ProductUpdateRequest) *Response[catalog.Product] {
	return do[catalog.Product](ctx, c, request{method: http.MethodPut, path: "/admin/products/" + itoa(id), body: req})
}

func (c *Client) AdminDeleteProduct(ctx context.Context, id uint) *Response[Empty] {
	return do[Empty](ctx, c, request{method: http.MethodDelete, path: "/admin/products/" + itoa(id)})
}

func (c *Client) AdminGetOrders(ctx context.Context, filters order.ListRequest) *Response[Paginated[order.Order]] {
	return do[Paginated[order.Order]](ctx, c, request{method: http.MethodGet, path: "/admin/orders", query: orderFilters(filters)})
}

func (c *Client) AdminUpdateOrderStatus(ctx context.Context, id uint, status order.Status) *Response[order.Order] {
	return do[order.Order](ctx, c, request{
		method: http.MethodPut,
		path:   "/admin/orders/" + itoa(id) + "/status",
		body:   StatusRequest{Status: status},
	})
}

// UploadFile sends a file as multipart form data under the "file" field
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) *Response[UploadResult] {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return Fail[UploadResult](KindValidation, 0, fmt.Sprintf("failed to prepare upload: %v", err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return Fail[UploadResult](KindValidation, 0, fmt.Sprintf("failed to read upload: %v", err))
	}
	if err := form.Close(); err != nil {
		return Fail[UploadResult](KindValidation, 0, fmt.Sprintf("failed to prepare upload: %v", err))
	}

	return do[UploadResult](ctx, c, request{
		method:      http.MethodPost,
		path:        "/upload",
		rawBody:     &buf,
		contentType: form.FormDataContentType(),
	})
}

func orderFilters(f order.ListRequest) url.Values {
	values := url.Values{}
	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		values.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		values.Set("status", string(f.Status))
	}
	if f.UserID != 0 {
		values.Set("user_id", strconv.FormatInt(f.UserID, 10))
	}
	if f.SortBy != "" {
		values.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		values.Set("sort_order", f.SortOrder)
	}
	return values
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
