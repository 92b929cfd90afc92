// cmd/storefront/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/donate-storefront/internal/config"
	redisinfra "github.com/your-org/donate-storefront/internal/infrastructure/redis"
	"github.com/your-org/donate-storefront/internal/interfaces/http"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/store"
)

const (
	pruneInterval = 10 * time.Minute
	sessionIdle   = time.Hour
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	appLog := logger.New(cfg.Logging)

	// Connect to Redis
	redisClient, err := redisinfra.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}

	// Log buffer survives restarts through Redis
	logs := logger.NewBuffer(cfg.Store.LogBufferSize, redisinfra.NewLogSink(redisClient, cfg.Store.LogBufferSize))
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := logs.Restore(restoreCtx); err != nil {
		log.Printf("Warning: log buffer restore failed: %v", err)
	}
	restoreCancel()
	appLog.AddHook(logs)

	manager := store.NewManager(func(ctx context.Context, id string) (*store.Session, error) {
		state := redisinfra.NewSessionState(redisClient, id, cfg.Store.SessionTTL)
		return store.NewSession(id, store.SessionConfig{
			BaseURL:     cfg.Upstream.BaseURL,
			Timeout:     cfg.Upstream.Timeout,
			Persister:   state,
			Tokens:      state,
			Logger:      appLog,
			MaxQuantity: cfg.Store.MaxCartQuantity,
		}), nil
	})

	stopPrune := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := manager.Prune(sessionIdle); n > 0 {
					appLog.WithField("sessions", n).Info("Pruned idle sessions")
				}
			case <-stopPrune:
				return
			}
		}
	}()

	log.Println("✅ All systems operational!")

	server := http.NewServer(cfg, manager, redisClient.GetClient(), logs, appLog)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")
	close(stopPrune)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}
