package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budgetup/internal/core"
)

func newSummaryCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show record counts and totals in the active currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				summary := a.store.Summary()
				totals := a.currency.CalculateTotals(a.store.Snapshot().Transactions)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(struct {
						Summary core.DataSummary `json:"summary"`
						Totals  core.Totals      `json:"totals"`
					}{summary, totals})
				}
				return printSummary(cmd.OutOrStdout(), a, summary, totals)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func printSummary(w io.Writer, a *app, s core.DataSummary, t core.Totals) error {
	format := func(v float64) string { return a.currency.FormatIn(v, t.Currency, "") }
	_, err := fmt.Fprintf(w,
		"Currency:            %s\n"+
			"Transactions:        %d\n"+
			"Savings goals:       %d\n"+
			"Savings entries:     %d\n"+
			"Group goals:         %d\n"+
			"Group contributions: %d\n"+
			"Budget categories:   %d\n"+
			"Migration version:   %d\n"+
			"Income:              %s\n"+
			"Expenses:            %s\n"+
			"Balance:             %s\n",
		t.Currency, s.Transactions, s.SavingsGoals, s.SavingsEntries, s.GroupGoals,
		s.GroupContributions, s.BudgetCategories, s.MigrationVersion,
		format(t.Income), format(t.Expenses), format(t.Balance))
	return err
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run the multi-currency data migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				report, err := a.store.MigrateNow(cmd.Context())
				if err != nil {
					return fmt.Errorf("migrating: %w", err)
				}
				if !report.Changed() {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "Already at version %d\n", report.To)
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Migrated v%d -> v%d: %d currencies filled, %d original amounts filled\n",
					report.From, report.To, report.CurrencyFilled, report.OriginalFilled)
				return err
			})
		},
	}
}

func newResetCommand() *cobra.Command {
	var financial, preferences bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete stored data",
		Long:  "Delete stored data. Without flags every record and the preferences are removed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				what, reset := "all data", a.store.ResetAll
				switch {
				case financial:
					what, reset = "financial data", a.store.ResetFinancialData
				case preferences:
					what, reset = "user preferences", a.store.ResetUserPreferences
				}
				if err := reset(cmd.Context()); err != nil {
					return fmt.Errorf("resetting %s: %w", what, err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", what)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&financial, "financial", false, "remove records but keep preferences")
	cmd.Flags().BoolVar(&preferences, "preferences", false, "remove preferences but keep records")
	cmd.MarkFlagsMutuallyExclusive("financial", "preferences")

	return cmd
}

func newSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Add sample records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.store.AddSampleData(cmd.Context()); err != nil {
					return fmt.Errorf("adding sample data: %w", err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Added sample data: %d transactions\n", a.store.Summary().Transactions)
				return err
			})
		},
	}
}
