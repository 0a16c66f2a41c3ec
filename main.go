package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SigNoz/store-api-go/internal/api"
	"github.com/SigNoz/store-api-go/internal/db"
	"github.com/SigNoz/store-api-go/internal/metrics"
	"github.com/SigNoz/store-api-go/internal/services"
	"github.com/SigNoz/store-api-go/pkg/config"
)

func main() {
	cfg := config.LoadConfig()

	ctx := context.Background()
	appMetrics, shutdownMetrics, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			log.Printf("Error shutting down meter provider: %v", err)
		}
	}()

	dsn := cfg.GetDSN()
	if cfg.RunMigrations {
		if err := db.RunMigrations(dsn); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	database, err := db.NewDB(dsn, cfg.OTELServiceName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	productService := services.NewProductService(database, appMetrics)
	cartService := services.NewCartService(database, appMetrics)
	favoriteService := services.NewFavoriteService(database, appMetrics)

	app := api.NewApp(cfg, database, appMetrics, productService, cartService, favoriteService)

	if cfg.AllowsAnyOrigin() {
		log.Println("Warning: CORS allows any origin; set CORS_ALLOW_ORIGINS outside local development")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      app.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.AppPort)
		if cfg.OTELMetricsEnabled {
			log.Printf("OTLP endpoint: %s", cfg.OTELExporterOTLPEndpoint)
		}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
