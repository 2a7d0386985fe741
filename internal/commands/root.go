// Package commands holds the budgetup cobra command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetup/internal/cache"
	"budgetup/internal/cli"
	"budgetup/internal/config"
	"budgetup/internal/currency"
	"budgetup/internal/log"
	"budgetup/internal/store"
)

// Version is set at build time with -ldflags "-X budgetup/internal/commands.Version=...".
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "budgetup",
		Short:   "Multi-currency personal finance tracker",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newConvertCommand(),
		newFormatCommand(),
		newSetCurrencyCommand(),
		newSummaryCommand(),
		newMigrateCommand(),
		newResetCommand(),
		newSampleCommand(),
		newCurrenciesCommand(),
	)

	return rootCmd
}

// app is the wiring every command shares: config, logger, the opened store
// and the currency facade on top of it.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	store    *store.Store
	currency *currency.Service
	caches   *cache.Manager
	cleanup  func() error
}

func openApp(ctx context.Context) (*app, error) {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)

	st, cleanup, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	svc, mgr := cli.NewCurrencyService(cfg, st, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		currency: svc,
		caches:   mgr,
		cleanup:  cleanup,
	}, nil
}

func (a *app) Close() {
	if a.cleanup == nil {
		return
	}
	if err := a.cleanup(); err != nil {
		a.logger.Warn("Failed to close backend", log.FieldError, err)
	}
}

// withApp opens the app for the duration of run.
func withApp(cmd *cobra.Command, run func(*app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return run(a)
}
