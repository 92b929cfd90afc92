// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/donate-storefront/internal/interfaces/http/routes"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/store"
)

// Server represents the storefront HTTP server
type Server struct {
	config      *config.Config
	manager     *store.Manager
	redisClient *redis.Client
	logs        *logger.Buffer
	log         logrus.FieldLogger
	httpServer  *http.Server
	startedAt   time.Time
}

// NewServer creates a new storefront server. redisClient and logs may be nil,
// which disables rate limiting and the admin log view.
func NewServer(cfg *config.Config, manager *store.Manager, redisClient *redis.Client, logs *logger.Buffer, log logrus.FieldLogger) *Server {
	return &Server{
		config:      cfg,
		manager:     manager,
		redisClient: redisClient,
		logs:        logs,
		log:         log,
		startedAt:   time.Now(),
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(s.log))
	engine.Use(middleware.CORS(s.config.Security, handlers.HeaderShellReload, middleware.HeaderSessionID))
	engine.Use(middleware.SecurityHeaders(s.config.App.Name))
	if s.redisClient != nil && s.config.Security.RateLimitPerMinute > 0 {
		engine.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, s.redisClient, s.log))
	}
	engine.Use(middleware.RequestSizeLimit(s.config.Upload.MaxSize + 1<<20))

	engine.GET("/health", s.healthCheck)
	engine.GET("/ready", s.readinessCheck)

	app := engine.Group("/app")
	app.Use(middleware.Session(s.manager, s.config.Store.SessionTTL, s.config.IsProduction()))
	routes.SetupRoutes(app, handlers.NewHandler(s.config, s.logs, s.log), s.config.Server.WriteTimeout)

	engine.NoRoute(handlers.NotFound)

	return engine
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.httpServer = &http.Server{
		Addr:        ":" + s.config.Server.Port,
		Handler:     s.Router(),
		ReadTimeout: s.config.Server.ReadTimeout,
		IdleTimeout: s.config.Server.IdleTimeout,
		// no WriteTimeout: /app/events streams; views are bounded by the timeout middleware
	}

	log.Printf("🚀 Storefront starting on port %s", s.config.Server.Port)
	log.Printf("🌐 Views: http://localhost:%s/app", s.config.Server.Port)
	log.Printf("🔗 Upstream API: %s", s.config.Upstream.BaseURL)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down storefront...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	log.Println("✅ Storefront stopped gracefully")
	return nil
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	if s.redisClient != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "redis ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"sessions":  s.manager.Len(),
	})
}
