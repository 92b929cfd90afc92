package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/upload"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
)

// Games

func (h *Handler) CreateGame(c *gin.Context) {
	var req catalog.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid game data")
		return
	}
	game, err := h.catalog.CreateGame(&req)
	if err != nil {
		h.failErr(c, err, "Failed to create game")
		return
	}
	ok(c, http.StatusCreated, game)
}

func (h *Handler) UpdateGame(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req catalog.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid game data")
		return
	}
	game, err := h.catalog.UpdateGame(id, &req)
	if err != nil {
		h.failErr(c, err, "Failed to update game")
		return
	}
	ok(c, http.StatusOK, game)
}

func (h *Handler) DeleteGame(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteGame(id); err != nil {
		h.failErr(c, err, "Failed to delete game")
		return
	}
	okMessage(c, "Game deleted")
}

// Categories

func (h *Handler) CreateCategory(c *gin.Context) {
	var req catalog.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid category data")
		return
	}
	category, err := h.catalog.CreateCategory(&req)
	if err != nil {
		h.failErr(c, err, "Failed to create category")
		return
	}
	ok(c, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req catalog.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid category data")
		return
	}
	category, err := h.catalog.UpdateCategory(id, &req)
	if err != nil {
		h.failErr(c, err, "Failed to update category")
		return
	}
	ok(c, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteCategory(id); err != nil {
		h.failErr(c, err, "Failed to delete category")
		return
	}
	okMessage(c, "Category deleted")
}

// Products

func (h *Handler) CreateProduct(c *gin.Context) {
	var req catalog.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid product data")
		return
	}
	product, err := h.catalog.CreateProduct(&req)
	if err != nil {
		h.failErr(c, err, "Failed to create product")
		return
	}
	ok(c, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req catalog.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid product data")
		return
	}
	product, err := h.catalog.UpdateProduct(id, &req)
	if err != nil {
		h.failErr(c, err, "Failed to update product")
		return
	}
	ok(c, http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteProduct(id); err != nil {
		h.failErr(c, err, "Failed to delete product")
		return
	}
	okMessage(c, "Product deleted")
}

// Orders

// GetAllOrders handles GET /admin/orders
func (h *Handler) GetAllOrders(c *gin.Context) {
	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid filters")
		return
	}

	page, err := h.orders.GetOrders(&req)
	if err != nil {
		h.failErr(c, err, "Failed to retrieve orders")
		return
	}

	ok(c, http.StatusOK, api.Paginated[order.Order]{
		Data:       page.Orders,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(),
	})
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}

	var req order.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		fail(c, http.StatusBadRequest, "Invalid status")
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(c)
	o, err := h.orders.UpdateStatus(id, &req, adminID)
	if err != nil {
		h.failErr(c, err, "Failed to update order status")
		return
	}
	ok(c, http.StatusOK, o)
}

// Upload handles POST /upload
func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	adminID, _ := middleware.GetUserIDFromContext(c)
	stored, err := h.uploads.Upload(&upload.Request{
		File:       file,
		Filename:   header.Filename,
		Size:       header.Size,
		UploadedBy: adminID,
	})
	if err != nil {
		h.failErr(c, err, "Failed to upload file")
		return
	}
	ok(c, http.StatusCreated, api.UploadResult{URL: stored.URL})
}
