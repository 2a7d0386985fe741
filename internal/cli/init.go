// Package cli provides common CLI initialization utilities.
// This package consolidates the wiring shared by cmd/budgetup and
// cmd/budgetup-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetup/internal/backend"
	"budgetup/internal/cache"
	"budgetup/internal/config"
	"budgetup/internal/currency"
	"budgetup/internal/log"
	"budgetup/internal/store"
)

// SetupLogger builds the application logger from cfg and installs it as
// the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Output = os.Stderr
	if cfg != nil {
		lc.Level = log.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// OpenStore creates the configured persistence backend and opens the
// financial store on top of it. The returned cleanup closes the backend.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (*store.Store, backend.CleanupFunc, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(ctx, res.Persister, store.WithLogger(logger))
	if err != nil {
		_ = res.Close()
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return st, res.Close, nil
}

// NewCurrencyService wires the currency facade to st with caches sized
// from cfg. The returned manager sweeps both caches once started.
func NewCurrencyService(cfg *config.Config, st *store.Store, logger *log.Logger) (*currency.Service, *cache.Manager) {
	rateCache := cache.NewTTLCache[float64](cache.WithTTL(cfg.CacheTTL), cache.WithMaxSize(cfg.CacheMaxSize))
	fmtCache := cache.NewTTLCache[string](cache.WithTTL(cfg.CacheTTL), cache.WithMaxSize(cfg.CacheMaxSize))

	svc := currency.NewService(st,
		currency.WithRateCache(rateCache),
		currency.WithFormatCache(fmtCache),
		currency.WithLocale(cfg.DefaultLocale),
		currency.WithLogger(logger),
	)

	mgr := cache.NewManager(logger)
	mgr.Register(svc.Caches()...)
	return svc, mgr
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
