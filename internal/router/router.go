package router

import (
	"context"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/access"
	"github.com/Safwa9amar/safwanPos-sub000/internal/config"
	"github.com/Safwa9amar/safwanPos-sub000/internal/handler"
	"github.com/Safwa9amar/safwanPos-sub000/internal/middleware"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"
	"github.com/Safwa9amar/safwanPos-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the lifetime of background housekeeping such as rate limiter purges.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimiter := middleware.NewRateLimiter("api", 1000, time.Minute) // 1000 req/min per IP
	loginLimiter := middleware.NewRateLimiter("login", 5, time.Minute)
	apiLimiter.StartPurge(ctx, 5*time.Minute)
	loginLimiter.StartPurge(ctx, 5*time.Minute)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())
	r.Use(middleware.Gate(cfg.JWTSecret, access.NewGate(access.DefaultRules)))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	barcodeCache := repository.NewBarcodeCache(rdb, cfg.BarcodeCacheTTL)
	draftStore := repository.NewDraftStore(rdb, cfg.CartDraftTTL)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, tenantRepo, cfg.JWTSecret, cfg.TokenTTL())
	productSvc := service.NewProductService(productRepo, barcodeCache)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo, barcodeCache)
	saleSvc := service.NewSaleService(saleRepo, productRepo, movementRepo, barcodeCache, dispatcher, service.SaleOptions{
		PriceSource:    cfg.PriceSource,
		BusinessName:   cfg.BusinessName,
		PDFStoragePath: cfg.PDFStoragePath,
	})
	cartSvc := service.NewCartService(draftStore, productSvc, saleSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, cfg.CookieSecure)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc)
	cartsH := handler.NewCartsHandler(cartSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	// Role checks per path prefix live in access.DefaultRules; RequireRole narrows single routes.

	r.GET("/health", handler.Health(db, rdb))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/logout", authH.Logout)
	}

	api.GET("/billing/status", authH.BillingStatus)

	sales := api.Group("/sales")
	{
		sales.POST("", salesH.CompleteSale)
		sales.GET("", salesH.ListSales)
		sales.GET("/:id", salesH.GetSale)
		sales.GET("/:id/receipt.pdf", salesH.Receipt)
	}

	products := api.Group("/products")
	{
		products.GET("", productsH.List)
		products.GET("/barcode/:barcode", productsH.GetByBarcode)
		products.GET("/:id", productsH.GetByID)

		// Catalog writes: admin and manager only
		writes := products.Group("", middleware.RequireRole(access.RoleAdmin, access.RoleManager))
		writes.POST("", productsH.Create)
		writes.PUT("/:id", productsH.Update)
		writes.DELETE("/:id", productsH.Deactivate)
		writes.PATCH("/:id/reactivate", productsH.Reactivate)
	}

	inventory := api.Group("/inventory")
	{
		inventory.PATCH("/products/:id/stock", inventoryH.AdjustStock)
		inventory.GET("/movements", inventoryH.ListMovements)
	}

	carts := api.Group("/carts")
	{
		carts.GET("", cartsH.Get)
		carts.PUT("", cartsH.Replace)
		carts.POST("/:name/actions", cartsH.Apply)
		carts.POST("/:name/checkout", cartsH.Checkout)
		carts.DELETE("/:name", cartsH.Remove)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
