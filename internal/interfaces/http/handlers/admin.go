package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/pkg/format"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/pkg/validation"
)

// validate runs schema over data and writes the failure response
func (h *Handler) validate(c *gin.Context, schema validation.Schema, data map[string]interface{}) bool {
	result := validation.New(schema).Validate(data)
	if result.IsValid {
		return true
	}
	for name, errs := range result.Fields {
		logger.ValidationError(h.logFor(c), name, errs)
	}
	invalid(c, result)
	return false
}

// validatePresent checks only the fields present in data
func (h *Handler) validatePresent(c *gin.Context, schema validation.Schema, data map[string]interface{}) bool {
	v := validation.New(schema)
	result := validation.Result{IsValid: true, Errors: []string{}, Fields: map[string][]string{}}
	for name, value := range data {
		if errs := v.ValidateField(name, value); len(errs) > 0 {
			result.IsValid = false
			result.Errors = append(result.Errors, errs...)
			result.Fields[name] = errs
		}
	}
	if result.IsValid {
		return true
	}
	for name, errs := range result.Fields {
		logger.ValidationError(h.logFor(c), name, errs)
	}
	invalid(c, result)
	return false
}

func (h *Handler) adminAction(c *gin.Context, action string, fields logrus.Fields) {
	logger.UserAction(h.logFor(c), "admin: "+action, fields)
}

// refreshGames reloads the cached game lists after a catalog change
func refreshGames(c *gin.Context) {
	s := session(c)
	_ = s.Store.FetchGames(c.Request.Context())
	_ = s.Store.FetchPopularGames(c.Request.Context())
}

// Games

// AdminGames handles GET /app/admin/games
func (h *Handler) AdminGames(c *gin.Context) {
	s := session(c)
	if err := s.Store.FetchGames(c.Request.Context()); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	ok(c, s.Store.Snapshot().Games)
}

func gameFields(req catalog.GameRequest) map[string]interface{} {
	return map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"image_url":   req.ImageURL,
	}
}

// CreateGame handles POST /app/admin/games
func (h *Handler) CreateGame(c *gin.Context) {
	var req catalog.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}
	if !h.validate(c, validation.GameSchema, gameFields(req)) {
		return
	}

	resp := session(c).API.AdminCreateGame(c.Request.Context(), req)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	refreshGames(c)
	h.adminAction(c, "create game", logrus.Fields{"game_id": resp.Data.ID})
	okNotify(c, http.StatusCreated, resp.Data, i18n.T("admin.created"))
}

// UpdateGame handles PUT /app/admin/games/:id
func (h *Handler) UpdateGame(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req catalog.GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}
	if !h.validate(c, validation.GameSchema, gameFields(req)) {
		return
	}

	resp := session(c).API.AdminUpdateGame(c.Request.Context(), id, req)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	refreshGames(c)
	h.adminAction(c, "update game", logrus.Fields{"game_id": id})
	okNotify(c, http.StatusOK, resp.Data, i18n.T("admin.updated"))
}

// DeleteGame handles DELETE /app/admin/games/:id
func (h *Handler) DeleteGame(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := session(c).API.AdminDeleteGame(c.Request.Context(), id).Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	refreshGames(c)
	h.adminAction(c, "delete game", logrus.Fields{"game_id": id})
	okNotify(c, http.StatusOK, nil, i18n.T("admin.deleted"))
}

// Categories

func categoryFields(req catalog.CategoryRequest) map[string]interface{} {
	return map[string]interface{}{
		"name":   req.Name,
		"gameId": int64(req.GameID),
	}
}

// CreateCategory handles POST /app/admin/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req catalog.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}
	if !h.validate(c, validation.CategorySchema, categoryFields(req)) {
		return
	}

	resp := session(c).API.AdminCreateCategory(c.Request.Context(), req)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	h.adminAction(c, "create category", logrus.Fields{"category_id": resp.Data.ID})
	okNotify(c, http.StatusCreated, resp.Data, i18n.T("admin.created"))
}

// UpdateCategory handles PUT /app/admin/categories/:id
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req catalog.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}
	if !h.validate(c, validation.CategorySchema, categoryFields(req)) {
		return
	}

	resp := session(c).API.AdminUpdateCategory(c.Request.Context(), id, req)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	h.adminAction(c, "update category", logrus.Fields{"category_id": id})
	okNotify(c, http.StatusOK, resp.Data, i18n.T("admin.updated"))
}

// DeleteCategory handles DELETE /app/admin/categories/:id
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := session(c).API.AdminDeleteCategory(c.Request.Context(), id).Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	h.adminAction(c, "delete category", logrus.Fields{"category_id": id})
	okNotify(c, http.StatusOK, nil, i18n.T("admin.deleted"))
}

// Products

// CreateProduct handles POST /app/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req catalog.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}
	fields := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"image_url":   req.ImageURL,
		"categoryId":  int64(req.CategoryID),
		"gameId":      int64(req.GameID),
	}
	if !h.validate(c, validation.ProductSchema, fields) {
		return
	}

	resp := session(c).API.AdminCreateProduct(c.Request.Context(), req)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	h.adminAction(c, "create product", logrus.Fields{"product_id": resp.Data.ID})
	okNotify(c, http.StatusCreated, resp.Data, i18n.T("admin.created"))
}

// UpdateProduct handles PUT /app/admin/products/:id; absent fields are kept
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req catalog.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.CategoryID != nil {
		fields["categoryId"] = int64(*req.CategoryID)
	}
	if !h.validatePresent(c, validation.ProductSchema, fields) {
		return
	}

	resp := session(c).API.AdminUpdateProduct(c.Request.Context(), id, req)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	h.adminAction(c, "update product", logrus.Fields{"product_id": id})
	okNotify(c, http.StatusOK, resp.Data, i18n.T("admin.updated"))
}

// DeleteProduct handles DELETE /app/admin/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := session(c).API.AdminDeleteProduct(c.Request.Context(), id).Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	h.adminAction(c, "delete product", logrus.Fields{"product_id": id})
	okNotify(c, http.StatusOK, nil, i18n.T("admin.deleted"))
}

// Orders

// AdminOrders handles GET /app/admin/orders
func (h *Handler) AdminOrders(c *gin.Context) {
	var filters order.ListRequest
	if err := c.ShouldBindQuery(&filters); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}
	if filters.Status != "" && !filters.Status.Valid() {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	resp := session(c).API.AdminGetOrders(c.Request.Context(), filters)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}

	page := resp.Data
	lines := make([]orderLine, 0, len(page.Data))
	for _, o := range page.Data {
		lines = append(lines, newOrderLine(o))
	}
	ok(c, gin.H{
		"orders":      lines,
		"total":       page.Total,
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": page.TotalPages,
	})
}

// UpdateOrderStatus handles PUT /app/admin/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req order.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	resp := session(c).API.AdminUpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.generic")
		return
	}
	h.adminAction(c, "update order status", logrus.Fields{"order_id": id, "status": req.Status})
	okNotify(c, http.StatusOK, newOrderLine(resp.Data), i18n.T("admin.updated"))
}

// Upload handles POST /app/admin/upload, forwarding the "file" form field
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.required"))
		return
	}
	if max := h.config.Upload.MaxSize; max > 0 && header.Size > max {
		fail(c, http.StatusRequestEntityTooLarge, i18n.T("admin.tooLarge", i18n.Params{"max": format.FileSize(max)}))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.logFor(c).WithError(err).Error("Failed to open uploaded file")
		fail(c, http.StatusBadRequest, i18n.T("errors.invalidImage"))
		return
	}
	defer file.Close()

	resp := session(c).API.UploadFile(c.Request.Context(), header.Filename, file)
	if err := resp.Err(); err != nil {
		failErr(c, err, "errors.invalidImage")
		return
	}
	h.adminAction(c, "upload", logrus.Fields{"file": header.Filename, "size": header.Size})
	okNotify(c, http.StatusCreated, resp.Data, i18n.T("admin.uploaded"))
}

// Logs

// Logs handles GET /app/admin/logs?level=&category=&limit=
func (h *Handler) Logs(c *gin.Context) {
	if h.logs == nil {
		ok(c, []logger.Entry{})
		return
	}

	var filter logger.Filter
	if raw := c.Query("level"); raw != "" {
		level, err := logrus.ParseLevel(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
			return
		}
		filter.Level = &level
	}
	filter.Category = c.Query("category")
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
			return
		}
		filter.Limit = limit
	}

	ok(c, h.logs.Entries(filter))
}

// ClearLogs handles DELETE /app/admin/logs
func (h *Handler) ClearLogs(c *gin.Context) {
	if h.logs != nil {
		if err := h.logs.Clear(c.Request.Context()); err != nil {
			h.logFor(c).WithError(err).Warn("Failed to clear persisted logs")
		}
	}
	okNotify(c, http.StatusOK, nil, i18n.T("admin.deleted"))
}

// ExportLogs handles GET /app/admin/logs/export
func (h *Handler) ExportLogs(c *gin.Context) {
	body := []byte("[]")
	if h.logs != nil {
		exported, err := h.logs.Export()
		if err != nil {
			h.logFor(c).WithError(err).Error("Failed to export logs")
			fail(c, http.StatusInternalServerError, i18n.T("errors.generic"))
			return
		}
		body = exported
	}

	filename := fmt.Sprintf("app-logs-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/json", body)
}
