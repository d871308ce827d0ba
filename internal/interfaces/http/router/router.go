package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accessapp "github.com/voyago/backend/internal/application/access"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/infrastructure/auth"
	"github.com/voyago/backend/internal/infrastructure/logger"
	"github.com/voyago/backend/internal/interfaces/http/handler"
	"github.com/voyago/backend/internal/interfaces/http/middleware"
)

// Dependencies carries everything the HTTP layer needs
type Dependencies struct {
	Logger        *zap.Logger
	JWTService    *auth.JWTService
	ModuleService *accessapp.ModuleService
	CORS          middleware.CORSConfig

	Auth     *handler.AuthHandler
	Modules  *handler.ModuleHandler
	Caisse   *handler.CaisseHandler
	Payments *handler.PaymentHandler
	Supplier *handler.SupplierHandler
	Client   *handler.ClientHandler
}

// New builds the gin engine with all middleware and routes registered
func New(deps Dependencies) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(deps.CORS))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: deps.JWTService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: deps.Logger,
	}))

	registerAuthRoutes(api, deps)
	registerModuleRoutes(api, deps)
	registerCaisseRoutes(api, deps)
	registerInvoiceRoutes(api, deps)
	registerPartnerRoutes(api, deps)

	return engine
}

func registerAuthRoutes(api *gin.RouterGroup, deps Dependencies) {
	group := api.Group("/auth")
	group.POST("/login", deps.Auth.Login)
	group.POST("/refresh", deps.Auth.Refresh)
	group.GET("/profile", deps.Auth.Profile)
	group.POST("/change-password", deps.Auth.ChangePassword)
}

func registerModuleRoutes(api *gin.RouterGroup, deps Dependencies) {
	group := api.Group("/modules")
	group.GET("", deps.Modules.List)
	group.POST("/request", middleware.RequireAgencyRole(), deps.Modules.Request)

	admin := group.Group("", middleware.RequireSuperadmin())
	admin.POST("/approve", deps.Modules.Approve)
	admin.POST("/reject", deps.Modules.Reject)
	admin.POST("/deactivate", deps.Modules.Deactivate)
}

func registerCaisseRoutes(api *gin.RouterGroup, deps Dependencies) {
	group := api.Group("/caisse")

	read := middleware.RequireModule(deps.ModuleService, module.Caisse, "read")
	create := middleware.RequireModule(deps.ModuleService, module.Caisse, "create")

	group.GET("/operations", read, deps.Caisse.List)
	group.GET("/operations/:id", read, deps.Caisse.Get)
	group.POST("/operations", create, deps.Caisse.Record)
	group.POST("/operations/:id/cancel", create, deps.Caisse.Cancel)
	group.GET("/balance", read, deps.Caisse.Balance)
	group.GET("/report", middleware.RequireModule(deps.ModuleService, module.Rapports, "read"), deps.Caisse.Report)
}

func registerInvoiceRoutes(api *gin.RouterGroup, deps Dependencies) {
	group := api.Group("/invoices")

	read := middleware.RequireModule(deps.ModuleService, module.Factures, "read")
	update := middleware.RequireModule(deps.ModuleService, module.Factures, "update")

	group.GET("/:id", read, deps.Payments.GetInvoice)
	group.POST("/:id/payments/full", update, deps.Payments.PayFull)
	group.POST("/:id/payments/partial", update, deps.Payments.PayPartial)
	group.POST("/:id/credit-notes", update, deps.Payments.CreditNote)
	group.POST("/:id/refunds", update, deps.Payments.Refund)
}

func registerPartnerRoutes(api *gin.RouterGroup, deps Dependencies) {
	suppliers := api.Group("/suppliers")
	suppliers.Use(middleware.RequireModuleForMethod(deps.ModuleService, module.Fournisseurs))
	suppliers.GET("", deps.Supplier.List)
	suppliers.GET("/:id", deps.Supplier.Get)
	suppliers.POST("", deps.Supplier.Create)
	suppliers.POST("/:id/debts", deps.Supplier.RecordDebt)
	suppliers.POST("/:id/payments", deps.Supplier.Pay)

	clients := api.Group("/clients")
	clients.Use(middleware.RequireModuleForMethod(deps.ModuleService, module.Clients))
	clients.GET("", deps.Client.List)
	clients.GET("/:id", deps.Client.Get)
	clients.POST("", deps.Client.Create)
	clients.POST("/:id/recharges", deps.Client.Recharge)
}
