package mockapi

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/donate-storefront/internal/pkg/auth"
)

// SetupRoutes registers every upstream endpoint under rg
func SetupRoutes(rg *gin.RouterGroup, h *Handler, cfg *config.Config) {
	requireAuth := middleware.AuthMiddleware(auth.NewJWTManager(cfg))

	rg.POST("/auth/telegram", h.Authenticate)

	games := rg.Group("/games")
	{
		games.GET("", h.GetGames)
		games.GET("/popular", h.GetPopularGames)
		games.GET("/:id", h.GetGame)
		games.GET("/:id/categories", h.GetCategories)
		games.GET("/:id/products", h.GetProducts)
	}
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/payments/methods", h.GetPaymentMethods)

	protected := rg.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/user/profile", h.GetProfile)
		protected.PUT("/user/profile", h.UpdateProfile)
		protected.GET("/user/orders", h.GetUserOrders)

		protected.POST("/orders", h.CreateOrder)
		protected.GET("/orders/:id", h.GetOrder)

		protected.POST("/promo-codes/apply", h.ApplyPromoCode)
		protected.POST("/payments", h.CreatePayment)
	}

	admin := rg.Group("")
	admin.Use(requireAuth, middleware.AdminMiddleware())
	{
		admin.POST("/admin/games", h.CreateGame)
		admin.PUT("/admin/games/:id", h.UpdateGame)
		admin.DELETE("/admin/games/:id", h.DeleteGame)

		admin.POST("/admin/categories", h.CreateCategory)
		admin.PUT("/admin/categories/:id", h.UpdateCategory)
		admin.DELETE("/admin/categories/:id", h.DeleteCategory)

		admin.POST("/admin/products", h.CreateProduct)
		admin.PUT("/admin/products/:id", h.UpdateProduct)
		admin.DELETE("/admin/products/:id", h.DeleteProduct)

		admin.GET("/admin/orders", h.GetAllOrders)
		admin.PUT("/admin/orders/:id/status", h.UpdateOrderStatus)

		admin.POST("/upload", h.Upload)
	}
}
