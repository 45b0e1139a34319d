// Package main is the entry point for the Pneutrack API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"pneutrack/internal/domain/auth"
	"pneutrack/internal/domain/billing"
	"pneutrack/internal/domain/catalogs/client"
	"pneutrack/internal/domain/catalogs/prestation"
	"pneutrack/internal/domain/catalogs/product"
	"pneutrack/internal/domain/scheduling"
	v1 "pneutrack/internal/infrastructure/http/v1"
	"pneutrack/internal/infrastructure/storage/postgres"
	"pneutrack/internal/infrastructure/storage/postgres/auth_repo"
	"pneutrack/internal/infrastructure/storage/postgres/catalog_repo"
	"pneutrack/internal/infrastructure/storage/postgres/document_repo"
	"pneutrack/pkg/logger"
	"pneutrack/pkg/numerator"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting pneutrack server")

	// --- Database connection ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Numerator ---
	numeratorService := numerator.New(pool.Pool)

	// --- JWT / Auth ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtConfig := auth.DefaultJWTConfig(jwtSecret)
	if ttl := getEnvDuration("JWT_ACCESS_TTL", 0); ttl > 0 {
		jwtConfig.AccessTokenTTL = ttl
	}
	jwtService := auth.NewJWTService(jwtConfig)

	userRepo := auth_repo.NewUserRepo(txManager)
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Catalog repositories and services ---
	clientRepo := catalog_repo.NewClientRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	prestationRepo := catalog_repo.NewPrestationRepo(txManager)

	clientService := client.NewService(clientRepo, txManager, numeratorService)
	productService := product.NewService(productRepo, txManager, numeratorService)
	prestationService := prestation.NewService(prestationRepo, txManager, numeratorService)

	// --- Document repositories and services ---
	appointmentRepo := document_repo.NewAppointmentRepo(txManager)
	invoiceRepo := document_repo.NewInvoiceRepo(txManager)

	schedulingService := scheduling.NewService(
		appointmentRepo,
		userRepo,
		clientRepo,
		numeratorService,
		txManager,
		scheduling.DefaultHours(),
	)

	vatRate := billing.DefaultVATRate
	if v := os.Getenv("VAT_RATE"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			log.Fatalw("invalid VAT_RATE", "value", v, "error", err)
		}
		vatRate = parsed
	}

	billingService := billing.NewService(
		invoiceRepo,
		productRepo,
		prestationRepo,
		clientRepo,
		userRepo,
		schedulingService,
		numeratorService,
		txManager,
		vatRate,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:              pool,
		Logger:            log,
		JWTValidator:      jwtService,
		AuthService:       authService,
		ClientService:     clientService,
		ProductService:    productService,
		PrestationService: prestationService,
		BillingService:    billingService,
		SchedulingService: schedulingService,
		SecureCookies:     getEnv("SECURE_COOKIES", "false") == "true",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
