package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budgetup/internal/amqp"
	"budgetup/internal/currency"
	apphttp "budgetup/internal/http"
	"budgetup/internal/log"
	"budgetup/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return runServe(ctx, a)
			})
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	a.caches.StartCleanup(a.cfg.CacheSweepInterval)
	defer a.caches.Stop()

	warmed := a.currency.Preload(a.currency.ActiveCurrency(), currency.DefaultPreloadTargets)
	a.logger.Debug("Rate cache preloaded", log.FieldCount, warmed)

	if a.cfg.AMQPEnabled() {
		publisher := services.NewCurrencyPublisher(dialPublisher(a), a.logger)
		publisher.Attach(a.currency.Bus())
		defer func() {
			if err := publisher.Close(); err != nil {
				a.logger.Warn("Failed to close currency publisher", log.FieldError, err)
			}
		}()
	}

	srv := apphttp.NewServer(":"+a.cfg.Port, a.store, a.currency, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Starting budgetup server",
			"port", a.cfg.Port,
			"backend", a.cfg.DataBackend,
			log.FieldCurrency, string(a.currency.ActiveCurrency()),
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		a.logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
		return nil
	})
	return g.Wait()
}

// dialPublisher connects to the broker. A broker that is down at startup
// leaves the publisher nil so currency changes are still applied locally.
func dialPublisher(a *app) services.Publisher {
	client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
	if err != nil {
		a.logger.Warn("AMQP unavailable, currency changes will not be published", log.FieldError, err)
		return nil
	}
	a.logger.Info("AMQP publisher connected", "exchange", a.cfg.AMQPExchange, "queue", a.cfg.AMQPQueue)
	return client
}
