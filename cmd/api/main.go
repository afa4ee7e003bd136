package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/event"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/database"
	"github.com/sangkips/pos-api/internal/infrastructure/events"
	"github.com/sangkips/pos-api/internal/infrastructure/memory"
	"github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/scheduler"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/internal/presentation/http/routes"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/printer"
	"github.com/sangkips/pos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	boot := log.Component("main")

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(cfg, log)
	if err != nil {
		boot.WithError(err).Fatal("failed to open store")
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.Issuer)

	bus := events.NewBus(cfg.Events.SubscriberBuffer, log)
	rt := service.Runtime{Tx: repos.Transactor, Events: bus, Log: log}

	// Initialize services
	catalogueService := service.NewCatalogueService(rt, repos)
	stockService := service.NewStockService(rt, repos.Products, repos.StockReceipts)
	kitchenService := service.NewKitchenService(rt, repos.KitchenOrders, repos.Orders, repos.Tables)
	packageService := service.NewPackageService(rt, repos.Packages, repos.Products)
	orderService := service.NewOrderService(rt, repos, stockService, kitchenService, packageService)

	if n, err := catalogueService.SeedTables(ctx, cfg.App.SeedTables); err != nil {
		boot.WithError(err).Warn("failed to seed tables")
	} else if n > 0 {
		boot.WithField("tables", n).Info("seeded dining tables")
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.DevicePath, cfg.Printer.Address)
	if err != nil {
		boot.WithError(err).Warn("failed to initialize printer, tickets will not be printed")
		thermalPrinter = printer.NewNullPrinter()
	}
	printerService := service.NewPrinterService(rt, thermalPrinter, repos.KitchenOrders, repos.Tables, service.PrinterOptions{
		Type:  cfg.Printer.Type,
		Title: cfg.Printer.Title,
		Width: cfg.Printer.PaperWidth,
	})
	if cfg.Printer.AutoPrint {
		sub := bus.Subscribe(0, event.KitchenOrderCreated)
		defer sub.Close()
		go printerService.Run(ctx, sub.C())
	}

	jobs := scheduler.New(log, time.Minute)
	for _, job := range []scheduler.Job{
		{
			Name: "clear-served-kitchen-orders",
			Spec: cfg.Scheduler.ClearServedSpec,
			Run: func(ctx context.Context) error {
				_, err := kitchenService.ClearServed(ctx)
				return err
			},
		},
		{
			Name: "purge-idempotency-keys",
			Spec: cfg.Scheduler.IdempotencyCleanSpec,
			Run: func(ctx context.Context) error {
				_, err := repos.Idempotency.DeleteExpired(ctx, time.Now())
				return err
			},
		},
	} {
		if err := jobs.Add(job); err != nil {
			boot.WithError(err).WithField("job", job.Name).Fatal("failed to schedule job")
		}
	}
	jobs.Start()

	handlers := &routes.Handlers{
		Product:  handler.NewProductHandler(catalogueService),
		Table:    handler.NewTableHandler(catalogueService),
		Customer: handler.NewCustomerHandler(catalogueService),
		Order:    handler.NewOrderHandler(orderService),
		Kitchen:  handler.NewKitchenHandler(kitchenService),
		StockIn:  handler.NewStockHandler(stockService, enum.ReceiptKindIn),
		StockOut: handler.NewStockHandler(stockService, enum.ReceiptKindOut),
		Package:  handler.NewPackageHandler(packageService),
		Printer:  handler.NewPrinterHandler(printerService),
		Events:   handler.NewEventsHandler(bus, log, cfg.CORS.AllowedOrigins),
	}

	rateLimiter := middleware.NewSubjectRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repos.Idempotency,
		Log:             log,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		boot.WithField("port", port).WithField("env", cfg.App.Env).Infof("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			boot.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	boot.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		boot.WithError(err).Warn("http shutdown")
	}
	jobs.Stop(shutdownCtx)
}

// openStore connects the configured persistence engine
func openStore(cfg *config.Config, log *logger.Logger) (*domainRepo.Repositories, error) {
	entry := log.Component("store")

	if cfg.Store.UsesMemoryStore() {
		var opts []memory.Option
		if cfg.Store.SnapshotPath != "" {
			opts = append(opts, memory.WithSnapshotPath(cfg.Store.SnapshotPath))
		}
		store, err := memory.New(log, opts...)
		if err != nil {
			return nil, err
		}
		entry.WithField("snapshot", cfg.Store.SnapshotPath).Info("using in-memory store")
		return store.Repositories(), nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, entry)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, entry); err != nil {
		return nil, err
	}
	return repository.NewRepositories(db), nil
}
