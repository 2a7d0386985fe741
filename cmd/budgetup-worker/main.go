package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetup/internal/amqp"
	"budgetup/internal/backend"
	"budgetup/internal/cache"
	"budgetup/internal/cli"
	"budgetup/internal/config"
	"budgetup/internal/currency"
	"budgetup/internal/log"
	"budgetup/internal/sheets"
	gsheet "budgetup/internal/sheets/google"
	"budgetup/internal/sheets/memory"
	"budgetup/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger(nil).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)

	logger.Info("Starting budgetup-worker", log.FieldOperation, log.OpStartup)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	exporter, err := newExporter(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	// The worker converts with its own facade: it never changes the
	// preference, so no store is attached.
	converter := currency.NewService(nil,
		currency.WithRateCache(cache.NewTTLCache[float64](cache.WithTTL(cfg.CacheTTL), cache.WithMaxSize(cfg.CacheMaxSize))),
		currency.WithFormatCache(cache.NewTTLCache[string](cache.WithTTL(cfg.CacheTTL), cache.WithMaxSize(cfg.CacheMaxSize))),
		currency.WithLocale(cfg.DefaultLocale),
		currency.WithLogger(logger))
	caches := cache.NewManager(logger)
	caches.Register(converter.Caches()...)
	caches.StartCleanup(cfg.CacheSweepInterval)
	defer caches.Stop()

	exportWorker := worker.NewExportWorker(worker.StoreLoader(res.Persister), converter, exporter, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming currency change messages",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		err := amqpClient.ConsumeCurrencyChanged(gctx, exportWorker.HandleCurrencyChanged)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		_ = amqpClient.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}

// newExporter returns the Google Sheets exporter, or an in-memory one that
// only logs when no spreadsheet is configured.
func newExporter(cfg *config.Config, logger *log.Logger) (sheets.LedgerExporter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, ledgers kept in memory")
		return memory.New(), nil
	}
	exp, err := gsheet.NewExporter(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return exp, nil
}
