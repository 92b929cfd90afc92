// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
)

// SetupAppRoutes sets up the shell lifecycle routes
func SetupAppRoutes(rg *gin.RouterGroup, h *handlers.Handler, timeout time.Duration) {
	// the event stream outlives the request timeout
	rg.GET("/events", h.Events)

	app := rg.Group("")
	app.Use(middleware.Timeout(timeout))
	{
		app.POST("/bootstrap", h.Bootstrap)
		app.GET("/state", h.State)
		app.POST("/theme/toggle", h.ToggleTheme)
		app.PUT("/theme", h.SetTheme)
		app.POST("/logout", h.Logout)
	}
}

// SetupCatalogRoutes sets up the public catalog views
func SetupCatalogRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	rg.GET("/home", h.Home)
	rg.GET("/games", h.Games)
	rg.GET("/games/:id", h.GameDetails)
	rg.GET("/products/:id", h.ProductDetails)
}

// SetupAccountRoutes sets up the views that need a signed in session
func SetupAccountRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	account := rg.Group("")
	account.Use(h.RequireAuth())
	{
		account.GET("/cart", h.GetCart)
		account.POST("/cart", h.AddToCart)
		account.DELETE("/cart", h.ClearCart)
		account.PUT("/cart/:productId", h.UpdateCartItem)
		account.DELETE("/cart/:productId", h.RemoveCartItem)

		account.GET("/checkout", h.GetCheckout)
		account.POST("/checkout", h.Checkout)

		account.GET("/profile", h.GetProfile)
		account.PUT("/profile", h.UpdateProfile)
		account.POST("/profile/promo", h.ApplyPromo)

		account.GET("/orders", h.Orders)
		account.GET("/orders/:id/receipt", h.Receipt)
	}
}

// SetupAdminRoutes sets up the admin views
func SetupAdminRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	admin := rg.Group("/admin")
	admin.Use(h.RequireAuth(), h.RequireAdmin())
	{
		admin.GET("/games", h.AdminGames)
		admin.POST("/games", h.CreateGame)
		admin.PUT("/games/:id", h.UpdateGame)
		admin.DELETE("/games/:id", h.DeleteGame)

		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)

		admin.GET("/orders", h.AdminOrders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)

		admin.POST("/upload", h.Upload)

		admin.GET("/logs", h.Logs)
		admin.DELETE("/logs", h.ClearLogs)
		admin.GET("/logs/export", h.ExportLogs)
	}
}

// SetupRoutes sets up every storefront view under rg
func SetupRoutes(rg *gin.RouterGroup, h *handlers.Handler, timeout time.Duration) {
	SetupAppRoutes(rg, h, timeout)

	views := rg.Group("")
	views.Use(middleware.Timeout(timeout))
	SetupCatalogRoutes(views, h)
	SetupAccountRoutes(views, h)
	SetupAdminRoutes(views, h)
}
