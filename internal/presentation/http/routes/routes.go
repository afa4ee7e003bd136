package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/config"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Product  *handler.ProductHandler
	Table    *handler.TableHandler
	Customer *handler.CustomerHandler
	Order    *handler.OrderHandler
	Kitchen  *handler.KitchenHandler
	StockIn  *handler.StockHandler
	StockOut *handler.StockHandler
	Package  *handler.PackageHandler
	Printer  *handler.PrinterHandler
	Events   *handler.EventsHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Log             *logger.Logger
	// RateLimiter is created from Cfg.RateLimit when nil
	RateLimiter *middleware.SubjectRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewSubjectRateLimiter(middleware.RateLimiterConfigFor(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTManager))
	v1.Use(rateLimiter.Middleware())
	{
		// websocket connections outlive any request timeout
		v1.GET("/events/ws", h.Events.Stream)

		api := v1.Group("")
		api.Use(middleware.TimeoutMiddleware(deps.Cfg.App.RequestTimeout))
		registerProtectedRoutes(api, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	backOffice := middleware.RequireRole(utils.RoleStaff, utils.RoleManager)
	idempotent := func(required bool) gin.HandlerFunc {
		return middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:     deps.IdempotencyRepo,
			TTL:      deps.Cfg.App.IdempotencyTTL,
			Log:      deps.Log,
			Required: required,
		})
	}

	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", backOffice, h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", backOffice, h.Product.Update)
	}

	tables := protected.Group("/tables")
	{
		tables.GET("", h.Table.List)
		tables.POST("", backOffice, h.Table.Create)
	}

	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
	}

	orders := protected.Group("/orders")
	{
		orders.GET("", h.Order.List)
		// Registers retry on flaky connections; a replay returns the first response
		orders.POST("", idempotent(true), h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.PUT("/:id", h.Order.Update)
		orders.DELETE("/:id", h.Order.Delete)
		orders.POST("/:id/settle", idempotent(false), h.Order.Settle)
		orders.POST("/:id/cancel", h.Order.Cancel)
	}

	kitchen := protected.Group("/kitchen-orders")
	{
		kitchen.GET("", h.Kitchen.List)
		kitchen.POST("", idempotent(false), h.Kitchen.Create)
		kitchen.DELETE("/served", backOffice, h.Kitchen.ClearServed)
		kitchen.POST("/auto-serve/:order_id", h.Kitchen.AutoServe)
		kitchen.GET("/:id", h.Kitchen.Get)
		kitchen.PUT("/:id/status", h.Kitchen.UpdateStatus)
		kitchen.PUT("/:id/items", h.Kitchen.UpdateItems)
		kitchen.POST("/:id/print", h.Printer.PrintKitchenOrder)
	}

	registerStockRoutes(protected.Group("/stock-in", backOffice), h.StockIn, idempotent(false))
	registerStockRoutes(protected.Group("/stock-out", backOffice), h.StockOut, idempotent(false))

	packages := protected.Group("/packages")
	{
		packages.GET("", h.Package.List)
		packages.GET("/for-service", h.Package.ForService)
		packages.POST("/:id/use", h.Package.Use)
		packages.POST("/:id/return", h.Package.Return)
	}

	protected.GET("/printer/status", h.Printer.GetStatus)
}

func registerStockRoutes(group *gin.RouterGroup, h *handler.StockHandler, idempotent gin.HandlerFunc) {
	group.GET("", h.List)
	group.POST("", idempotent, h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}
