// Package mockapi is a local implementation of the upstream donate shop REST
// API, backed by PostgreSQL. The storefront talks to it over HTTP exactly as it
// would to the production backend.
package mockapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/interfaces/http/middleware"
)

// Server represents the upstream API server
type Server struct {
	config     *config.Config
	db         *gorm.DB
	log        logrus.FieldLogger
	httpServer *http.Server
}

// NewServer creates a new upstream API server
func NewServer(cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) *Server {
	return &Server{config: cfg, db: db, log: log}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(s.log))
	engine.Use(middleware.CORS(s.config.Security))
	engine.Use(middleware.SecurityHeaders(s.config.App.Name + " API"))
	engine.Use(middleware.RequestSizeLimit(s.config.Upload.MaxSize + 1<<20))
	engine.Use(middleware.Timeout(s.config.Server.WriteTimeout))

	engine.GET("/health", s.healthCheck)
	engine.Static("/uploads", s.config.Upload.LocalPath)

	SetupRoutes(engine.Group("/api"), NewHandler(s.config, s.db, s.log), s.config)

	engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Endpoint not found")
	})

	return engine
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.MockAPIPort,
		Handler:      s.Router(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 Upstream API starting on port %s", s.config.Server.MockAPIPort)
	log.Printf("🌐 API Base URL: http://localhost:%s/api", s.config.Server.MockAPIPort)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down upstream API...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	log.Println("✅ Upstream API stopped gracefully")
	return nil
}

func (s *Server) healthCheck(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}
