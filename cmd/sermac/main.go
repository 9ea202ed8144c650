package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sermac/ledger/internal/app"
	"github.com/sermac/ledger/internal/catalog"
	"github.com/sermac/ledger/internal/inventory"
	"github.com/sermac/ledger/internal/platform/cache"
	"github.com/sermac/ledger/internal/platform/db"
	"github.com/sermac/ledger/internal/reporting"
	"github.com/sermac/ledger/internal/sales"
	"github.com/sermac/ledger/internal/schema"
	"github.com/sermac/ledger/internal/sequence"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Schema must be in place before anything else runs. Any DDL failure
	// here is fatal.
	schemaManager := schema.NewManager(pool, logger)
	if err := schemaManager.Ensure(ctx); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Reports degrade to uncached reads when Redis is unreachable.
	var reportCache *reporting.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, statement cache disabled", slog.Any("error", err))
	} else {
		reportCache = reporting.NewCache(redisClient, cfg.ReportCacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, inventory.ServiceConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	counterService := sequence.NewService(sequence.NewSQLStore(pool))
	counterHandler := sequence.NewHandler(logger, counterService)

	reportingRepo := reporting.NewRepository(pool)
	reportingService := reporting.NewService(reportingRepo, reportCache, logger)
	reportingHandler := reporting.NewHandler(logger, reportingService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, counterService, reportingService, logger, sales.ServiceConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	salesHandler := sales.NewHandler(logger, salesService)

	schemaHandler := schema.NewHandler(logger, schemaManager)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalogHandler,
		InventoryHandler: inventoryHandler,
		SalesHandler:     salesHandler,
		ReportingHandler: reportingHandler,
		SequenceHandler:  counterHandler,
		SchemaHandler:    schemaHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
