// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"pneutrack/internal/domain/auth"
	"pneutrack/internal/domain/billing"
	"pneutrack/internal/domain/catalogs/client"
	"pneutrack/internal/domain/catalogs/prestation"
	"pneutrack/internal/domain/catalogs/product"
	"pneutrack/internal/domain/scheduling"
	"pneutrack/internal/infrastructure/http/v1/handlers"
	"pneutrack/internal/infrastructure/http/v1/middleware"
	"pneutrack/internal/infrastructure/storage/postgres"
	"pneutrack/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Services
	AuthService       *auth.Service
	ClientService     *client.Service
	ProductService    *product.Service
	PrestationService *prestation.Service
	BillingService    *billing.Service
	SchedulingService *scheduling.Service

	// SecureCookies enables the Secure flag on session cookies (behind TLS)
	SecureCookies bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService, cfg.SecureCookies)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- CLIENTS ---
	{
		handler := handlers.NewClientHandler(baseHandler, cfg.ClientService)
		RegisterCatalogRoutes(catalogs.Group("/clients"), handler)
	}

	// --- PRODUCTS (tyres) ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.ProductService)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler)
	}

	// --- PRESTATIONS (workshop services) ---
	{
		handler := handlers.NewPrestationHandler(baseHandler, cfg.PrestationService)
		RegisterCatalogRoutes(catalogs.Group("/prestations"), handler)
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/documents")
	baseHandler := handlers.NewBaseHandler()

	// --- INVOICES / QUOTES ---
	{
		handler := handlers.NewInvoiceHandler(baseHandler, cfg.BillingService)
		handler.RegisterRoutes(docsGroup.Group("/invoices"))
	}

	// --- APPOINTMENTS ---
	{
		handler := handlers.NewAppointmentHandler(baseHandler, cfg.SchedulingService)
		handler.RegisterRoutes(docsGroup.Group("/appointments"))
	}
}
