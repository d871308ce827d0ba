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

	accessapp "github.com/voyago/backend/internal/application/access"
	billingapp "github.com/voyago/backend/internal/application/billing"
	identityapp "github.com/voyago/backend/internal/application/identity"
	ledgerapp "github.com/voyago/backend/internal/application/ledger"
	partnerapp "github.com/voyago/backend/internal/application/partner"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/infrastructure/auth"
	"github.com/voyago/backend/internal/infrastructure/cache"
	"github.com/voyago/backend/internal/infrastructure/config"
	"github.com/voyago/backend/internal/infrastructure/logger"
	"github.com/voyago/backend/internal/infrastructure/persistence"
	"github.com/voyago/backend/internal/interfaces/http/handler"
	"github.com/voyago/backend/internal/interfaces/http/middleware"
	"github.com/voyago/backend/internal/interfaces/http/router"
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

	log.Info("Starting Voyago backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Agency context cache: Redis when reachable, in-process otherwise
	var contextCache accessapp.AgencyContextCache
	redisCache, err := cache.NewRedisAgencyContextCache(cfg.Redis, cfg.Cache)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory agency context cache", zap.Error(err))
		contextCache = cache.NewInMemoryAgencyContextCache(cfg.Cache.AgencyContextTTL)
	} else {
		contextCache = redisCache
	}

	// Repositories
	agencyRepo := persistence.NewGormAgencyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	operationRepo := persistence.NewGormOperationRepository(db.DB)
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	partnerScope := persistence.NewGormPartnerTransactionScope(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, agencyRepo, jwtService, log)
	moduleService := accessapp.NewModuleService(module.Default(), agencyRepo, contextCache, log)
	caisseService := ledgerapp.NewCaisseService(operationRepo, log)
	paymentService := billingapp.NewPaymentService(billingScope, log)
	supplierService := partnerapp.NewSupplierService(partnerScope, log)
	clientService := partnerapp.NewClientService(partnerScope, log)

	// HTTP layer
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}

	engine := router.New(router.Dependencies{
		Logger:        log,
		JWTService:    jwtService,
		ModuleService: moduleService,
		CORS:          corsConfig,
		Auth:          handler.NewAuthHandler(authService),
		Modules:       handler.NewModuleHandler(moduleService),
		Caisse:        handler.NewCaisseHandler(caisseService),
		Payments:      handler.NewPaymentHandler(paymentService),
		Supplier:      handler.NewSupplierHandler(supplierService),
		Client:        handler.NewClientHandler(clientService),
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxy configuration", zap.Error(err))
		}
	}

	// Readiness includes a database ping
	engine.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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
