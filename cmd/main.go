package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/internal/catalog"
	"catalog-service/internal/handler"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/store"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/pkg/media"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.InitLogger(appConfig)
	defer log.Sync()

	log.Info("Starting catalog-service", appConfig.LogConfig()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize JWT utility
	jwtutil.Initialize(appConfig.JWT.SigningKey, appConfig.JWT.ExpirationHours)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize storage
	var persister store.Persister = store.NopPersister{}
	if appConfig.DB.Enabled {
		db, err := database.InitDB(appConfig, log)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		persister = database.NewPersister(db, log)
		log.Info("Database connection established")
	} else {
		log.Warn("Database disabled, catalog is held in memory only")
	}

	catalogStore := store.New(persister, log)
	if err := catalogStore.Load(ctx); err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}

	resolver, err := media.NewResolver(appConfig.Media.BaseURL)
	if err != nil {
		log.Fatal("Invalid media configuration", zap.Error(err))
	}
	service := catalog.NewService(catalogStore, resolver, log)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: appConfig.Server.RequestTimeout,
	}))
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	// Routes
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.Health)

	api := e.Group("/api", mid.IdentityMiddleware)
	handler.NewCatalogHandler(service).Register(api)

	// Start server
	go func() {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
