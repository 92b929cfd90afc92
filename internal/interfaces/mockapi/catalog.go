package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/domain/catalog"
)

// GetGames handles GET /games
func (h *Handler) GetGames(c *gin.Context) {
	games, err := h.catalog.GetGames()
	if err != nil {
		h.failErr(c, err, "Failed to retrieve games")
		return
	}
	ok(c, http.StatusOK, games)
}

// GetPopularGames handles GET /games/popular
func (h *Handler) GetPopularGames(c *gin.Context) {
	games, err := h.catalog.GetPopularGames()
	if err != nil {
		h.failErr(c, err, "Failed to retrieve games")
		return
	}
	ok(c, http.StatusOK, games)
}

// GetGame handles GET /games/:id
func (h *Handler) GetGame(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	game, err := h.catalog.GetGame(id)
	if err != nil {
		h.failErr(c, err, "Failed to retrieve game")
		return
	}
	ok(c, http.StatusOK, game)
}

// GetCategories handles GET /games/:id/categories
func (h *Handler) GetCategories(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	categories, err := h.catalog.GetCategories(id)
	if err != nil {
		h.failErr(c, err, "Failed to retrieve categories")
		return
	}
	ok(c, http.StatusOK, categories)
}

// GetProducts handles GET /games/:id/products
func (h *Handler) GetProducts(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}

	var filters catalog.FilterOptions
	if err := c.ShouldBindQuery(&filters); err != nil {
		fail(c, http.StatusBadRequest, "Invalid filters")
		return
	}

	page, err := h.catalog.GetProducts(id, filters)
	if err != nil {
		h.failErr(c, err, "Failed to retrieve products")
		return
	}

	ok(c, http.StatusOK, api.Paginated[catalog.Product]{
		Data:       page.Products,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(),
	})
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	product, err := h.catalog.GetProduct(id)
	if err != nil {
		h.failErr(c, err, "Failed to retrieve product")
		return
	}
	ok(c, http.StatusOK, product)
}
