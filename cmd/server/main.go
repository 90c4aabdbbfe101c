package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	inventoryapp "github.com/retailerp/backend/internal/application/inventory"
	salesapp "github.com/retailerp/backend/internal/application/sales"
	sequenceapp "github.com/retailerp/backend/internal/application/sequence"
	transferapp "github.com/retailerp/backend/internal/application/transfer"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/infrastructure/auth"
	"github.com/retailerp/backend/internal/infrastructure/cache"
	"github.com/retailerp/backend/internal/infrastructure/config"
	"github.com/retailerp/backend/internal/infrastructure/logger"
	"github.com/retailerp/backend/internal/infrastructure/persistence"
	"github.com/retailerp/backend/internal/interfaces/http/handler"
	"github.com/retailerp/backend/internal/interfaces/http/middleware"
	"github.com/retailerp/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Retail ERP Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)

	// Transaction scopes, one per application service
	sequenceScope := persistence.NewGormSequenceScope(db.DB)
	inventoryScope := persistence.NewGormInventoryScope(db.DB)
	salesScope := persistence.NewGormSalesScope(db.DB)
	transferScope := persistence.NewGormTransferScope(db.DB)

	// Initialize application services
	sequenceService := sequenceapp.NewService(sequenceScope, storeRepo)
	inventoryService := inventoryapp.NewService(inventoryScope, stockRepo, productRepo, storeRepo)
	salesService := salesapp.NewService(salesScope, productRepo, storeRepo)
	transferService := transferapp.NewService(transferScope, productRepo, storeRepo, stockRepo)

	// Duplicate submission protection for sales
	if cfg.Idempotency.Enabled {
		idempotencyCfg := shared.IdempotencyConfig{
			TTL:     cfg.Idempotency.TTL,
			Enabled: true,
		}
		switch cfg.Idempotency.Backend {
		case "redis":
			store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.Error("Error closing Redis connection", zap.Error(err))
				}
			}()
			salesService.SetIdempotencyStore(store, idempotencyCfg)
			log.Info("Idempotency store initialized", zap.String("backend", "redis"))
		default:
			salesService.SetIdempotencyStore(cache.NewMemoryIdempotencyStore(), idempotencyCfg)
			log.Info("Idempotency store initialized", zap.String("backend", "memory"))
		}
	}

	// JWT service for request authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	sequenceHandler := handler.NewSequenceHandler(sequenceService)
	stockHandler := handler.NewStockHandler(inventoryService)
	salesHandler := handler.NewSalesHandler(salesService)
	transferHandler := handler.NewTransferHandler(transferService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so every later stage can tag
	// its output, recovery before logging so panics are still logged.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning, no auth)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Sequence domain (invoice numbering)
	sequenceRoutes := router.NewDomainGroup("sequence", "/sequences")
	sequenceRoutes.POST("/next", sequenceHandler.NextNumber)
	sequenceRoutes.GET("/current", sequenceHandler.CurrentValue)
	sequenceRoutes.POST("/validate", sequenceHandler.Validate)
	sequenceRoutes.POST("/reset", sequenceHandler.Reset)

	// Stock ledger domain
	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.GET("", stockHandler.GetStock)
	stockRoutes.GET("/location", stockHandler.ListByLocation)
	stockRoutes.POST("/receive", stockHandler.Receive)

	// Sales domain
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.POST("", salesHandler.Create)
	salesRoutes.GET("/:id", salesHandler.Get)
	salesRoutes.POST("/:id/refund", salesHandler.Refund)
	salesRoutes.POST("/:id/cancel", salesHandler.Cancel)

	// Transfer domain
	transferRoutes := router.NewDomainGroup("transfer", "/transfers")
	transferRoutes.POST("", transferHandler.Create)
	transferRoutes.GET("", transferHandler.List)
	transferRoutes.POST("/quick", transferHandler.QuickTransfer)
	transferRoutes.GET("/:id", transferHandler.Get)
	transferRoutes.POST("/:id/decide", transferHandler.Decide)
	transferRoutes.POST("/:id/execute", transferHandler.Execute)
	transferRoutes.POST("/:id/cancel", transferHandler.Cancel)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(sequenceRoutes).
		Register(stockRoutes).
		Register(salesRoutes).
		Register(transferRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness plus database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
