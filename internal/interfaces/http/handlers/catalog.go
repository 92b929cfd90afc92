package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/pkg/format"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
)

// Home handles GET /app/home
func (h *Handler) Home(c *gin.Context) {
	s := session(c)
	err := s.Store.FetchPopularGames(c.Request.Context())
	st := s.Store.Snapshot()
	if err != nil && len(st.PopularGames) == 0 {
		failErr(c, err, "errors.generic")
		return
	}

	data := gin.H{
		"title":        i18n.T("home.title"),
		"subtitle":     i18n.T("home.subtitle"),
		"popularTitle": i18n.T("home.popularGames"),
		"popularGames": st.PopularGames,
	}
	if err != nil {
		// the previous list is still shown
		respond(c, http.StatusOK, Response{Success: true, Data: data, Notification: notify(NotifyWarning, i18n.T("errors.networkError"))})
		return
	}
	ok(c, data)
}

// Games handles GET /app/games?search=
func (h *Handler) Games(c *gin.Context) {
	s := session(c)
	err := s.Store.FetchGames(c.Request.Context())
	st := s.Store.Snapshot()
	if err != nil && len(st.Games) == 0 {
		failErr(c, err, "errors.generic")
		return
	}

	search := strings.TrimSpace(c.Query("search"))
	games := catalog.FilterGames(st.Games, search)

	data := gin.H{
		"title":   i18n.T("catalog.title"),
		"search":  search,
		"games":   games,
		"count":   len(games),
		"summary": i18n.T("catalog.foundGames", i18n.Params{"count": len(games)}),
	}
	if len(games) == 0 && search != "" {
		data["empty"] = gin.H{
			"title":       i18n.T("catalog.nothingFound"),
			"description": i18n.T("catalog.nothingFoundDesc", i18n.Params{"query": search}),
		}
	}

	if search != "" {
		logger.UserAction(h.logFor(c), "search games", logrus.Fields{"query": search, "results": len(games)})
	}
	ok(c, data)
}

// GameDetails handles GET /app/games/:id. Products are fetched unfiltered and
// narrowed with the category, price, search and sort query parameters.
func (h *Handler) GameDetails(c *gin.Context) {
	gameID, valid := paramID(c, "id")
	if !valid {
		return
	}

	var filters catalog.FilterOptions
	if err := c.ShouldBindQuery(&filters); err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}
	query, err := filters.Query()
	if err != nil {
		fail(c, http.StatusBadRequest, i18n.T("errors.validationError"))
		return
	}

	s := session(c)
	ctx := c.Request.Context()

	var (
		wg                         sync.WaitGroup
		gameResp                   *api.Response[catalog.Game]
		productsErr, categoriesErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		gameResp = s.API.GetGame(ctx, gameID)
	}()
	go func() {
		defer wg.Done()
		productsErr = s.Store.FetchProducts(ctx, gameID, catalog.FilterOptions{})
	}()
	go func() {
		defer wg.Done()
		categoriesErr = s.Store.FetchCategories(ctx, gameID)
	}()
	wg.Wait()

	if err := gameResp.Err(); err != nil {
		if api.IsKind(err, api.KindNotFound) {
			redirect(c, http.StatusNotFound, "/", notify(NotifyError, i18n.T("errors.notFound")))
			return
		}
		failErr(c, err, "errors.generic")
		return
	}
	if productsErr != nil {
		failErr(c, productsErr, "products.loadError")
		return
	}
	if categoriesErr != nil {
		h.logFor(c).WithError(categoriesErr).Warn("Categories unavailable")
	}

	st := s.Store.Snapshot()
	products := catalog.FilterProducts(st.Products, query)

	ok(c, gin.H{
		"game":       gameResp.Data,
		"categories": st.Categories,
		"products":   products,
		"count":      len(products),
		"summary":    i18n.T("catalog.foundProducts", i18n.Params{"count": len(products)}),
		"filters":    filters,
	})
}

// ProductDetails handles GET /app/products/:id
func (h *Handler) ProductDetails(c *gin.Context) {
	productID, valid := paramID(c, "id")
	if !valid {
		return
	}

	s := session(c)
	resp := s.API.GetProduct(c.Request.Context(), productID)
	if err := resp.Err(); err != nil {
		if api.IsKind(err, api.KindNotFound) {
			redirect(c, http.StatusNotFound, "/", notify(NotifyError, i18n.T("products.notFound")))
			return
		}
		failErr(c, err, "products.loadError")
		return
	}

	product := resp.Data
	logger.WithCategory(h.logFor(c), logger.CategoryNavigation).WithField("product_id", product.ID).Info("Product viewed")

	ok(c, gin.H{
		"product":      product,
		"priceText":    format.Price(product.Price),
		"ratingText":   format.Rating(product.Rating),
		"reviewsText":  format.ReviewsCount(product.ReviewsCount),
		"inCart":       s.Store.Snapshot().CartQuantity(product.ID),
		"maxQuantity":  h.config.Store.MaxCartQuantity,
		"isAvailable":  product.IsAvailable,
		"availability": availability(product),
	})
}

func availability(p catalog.Product) string {
	if p.IsAvailable {
		return ""
	}
	return i18n.T("products.outOfStock")
}
