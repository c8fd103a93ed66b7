package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/api"
	"github.com/murmurapp/murmur/internal/cache"
	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/pkg/config"
	"github.com/murmurapp/murmur/pkg/logging"
	"github.com/murmurapp/murmur/pkg/telemetry"
)

// seedCategories is the fixed category set inserted on first boot
var seedCategories = []models.Category{
	{Name: "general", Title: "General", Description: "Anything goes"},
	{Name: "confessions", Title: "Confessions", Description: "Things you would never say out loud", IsSensitive: true},
	{Name: "advice", Title: "Advice", Description: "Ask for and give advice"},
	{Name: "work", Title: "Work", Description: "Office life, careers and coworkers"},
	{Name: "relationships", Title: "Relationships", Description: "Dating, friendship and family"},
	{Name: "random", Title: "Random", Description: "Shower thoughts and everything else"},
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Murmur API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to the database and apply the schema
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	categories := db.NewCategoryRepository(db.NewRepository(database.DB))
	if err := categories.Seed(seedCtx, seedCategories); err != nil {
		seedCancel()
		logger.Fatal("Failed to seed categories", zap.Error(err))
	}
	seedCancel()

	// Connect to Redis; a missing URL means no caching and no event stream
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := api.NewRouter(database, redisCache, cfg)
	router.SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
