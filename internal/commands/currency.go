package commands

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetup/internal/core"
)

func newConvertCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert an amount between two currencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[0], err)
			}
			return withApp(cmd, func(a *app) error {
				fromCode, toCode, err := resolvePair(a, from, to)
				if err != nil {
					return err
				}
				svc := a.currency
				converted := svc.ConvertBetween(amount, fromCode, toCode)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (rate %s)\n",
					svc.FormatIn(amount, fromCode, ""),
					svc.FormatIn(converted, toCode, ""),
					strconv.FormatFloat(svc.Rate(fromCode, toCode), 'f', -1, 64))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source currency (default: active currency)")
	cmd.Flags().StringVar(&to, "to", "", "target currency (default: active currency)")

	return cmd
}

func resolvePair(a *app, from, to string) (core.Code, core.Code, error) {
	active := a.currency.ActiveCurrency()
	fromCode, err := codeOrDefault(from, active)
	if err != nil {
		return "", "", fmt.Errorf("--from: %w", err)
	}
	toCode, err := codeOrDefault(to, active)
	if err != nil {
		return "", "", fmt.Errorf("--to: %w", err)
	}
	return fromCode, toCode, nil
}

func codeOrDefault(s string, def core.Code) (core.Code, error) {
	if s == "" {
		return def, nil
	}
	return core.ParseCode(s)
}

func newFormatCommand() *cobra.Command {
	var code, locale string

	cmd := &cobra.Command{
		Use:   "format <amount>",
		Short: "Render an amount in a currency and locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[0], err)
			}
			return withApp(cmd, func(a *app) error {
				c, err := codeOrDefault(code, a.currency.ActiveCurrency())
				if err != nil {
					return fmt.Errorf("--currency: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), a.currency.FormatIn(amount, c, locale))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&code, "currency", "", "currency code (default: active currency)")
	cmd.Flags().StringVar(&locale, "locale", "", "BCP 47 locale (default: DEFAULT_LOCALE)")

	return cmd
}

func newSetCurrencyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-currency <code>",
		Short: "Change the preferred display currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				old := a.currency.ActiveCurrency()
				if !a.currency.SetActiveCurrency(cmd.Context(), args[0]) {
					return errors.New(a.currency.Error())
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Currency changed: %s -> %s\n", old, a.currency.ActiveCurrency())
				return err
			})
		},
	}
}

func newCurrenciesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tSYMBOL\tNAME\tCOUNTRY")
			for _, c := range core.Currencies() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Code, c.Symbol, c.Name, c.Country)
			}
			return tw.Flush()
		},
	}
}
