// Package migration lifts persisted financial state to the current schema.
//
// Schema versions:
//
//	V0  records have no currency field
//	V1  every record carries a currency, filled from the default
//	V2  every record carries originalAmount; migrationVersion is stored
//
// Each step checks field presence rather than trusting the version tag, so
// running Migrate on data that is already current changes nothing.
package migration

import (
	"fmt"

	"budgetup/internal/core"
)

const (
	V0      = 0
	V1      = 1
	V2      = 2
	Current = V2
)

// Report summarises one Migrate call.
type Report struct {
	From           int `json:"from"`
	To             int `json:"to"`
	CurrencyFilled int `json:"currencyFilled"`
	OriginalFilled int `json:"originalFilled"`
}

// Changed reports whether the migrated state differs from its input and
// therefore needs saving.
func (r Report) Changed() bool {
	return r.From != r.To || r.CurrencyFilled > 0 || r.OriginalFilled > 0
}

func (r Report) String() string {
	return fmt.Sprintf("v%d -> v%d (currency filled: %d, originalAmount filled: %d)",
		r.From, r.To, r.CurrencyFilled, r.OriginalFilled)
}

// Migrate returns a copy of state lifted to Current. The input is not
// modified.
//
// Records without a currency get defaultCurrency; when that is empty the
// user preference is used, then core.DefaultCurrency. A record that already
// has a currency keeps it. Records without an originalAmount get their
// amount; savings goals without a target are left alone.
//
// A state tagged with a version newer than Current keeps its tag.
func Migrate(state core.FinancialState, defaultCurrency core.Code) (core.FinancialState, Report) {
	out := state.Clone()
	rep := Report{From: state.MigrationVersion, To: state.MigrationVersion}

	if defaultCurrency == "" {
		defaultCurrency = state.PreferredCurrency()
	}

	// V0 -> V1
	rep.CurrencyFilled += fillCurrency(out.Transactions, defaultCurrency)
	rep.CurrencyFilled += fillCurrency(out.SavingsGoals, defaultCurrency)
	rep.CurrencyFilled += fillCurrency(out.SavingsEntries, defaultCurrency)
	rep.CurrencyFilled += fillCurrency(out.GroupGoals, defaultCurrency)
	rep.CurrencyFilled += fillCurrency(out.GroupContributions, defaultCurrency)
	rep.CurrencyFilled += fillCurrency(out.BudgetCategories, defaultCurrency)

	// V1 -> V2
	rep.OriginalFilled += fillOriginal(out.Transactions)
	rep.OriginalFilled += fillOriginal(out.SavingsGoals)
	rep.OriginalFilled += fillOriginal(out.SavingsEntries)
	rep.OriginalFilled += fillOriginal(out.GroupGoals)
	rep.OriginalFilled += fillOriginal(out.GroupContributions)
	rep.OriginalFilled += fillOriginal(out.BudgetCategories)

	if out.MigrationVersion < Current {
		out.MigrationVersion = Current
		rep.To = Current
	}
	return out, rep
}

// NeedsMigration reports whether state is tagged older than Current.
func NeedsMigration(state core.FinancialState) bool {
	return state.MigrationVersion < Current
}

func fillCurrency[T any, P interface {
	*T
	core.Monetary
}](records []T, code core.Code) int {
	n := 0
	for i := range records {
		r := P(&records[i])
		if r.CurrencyCode() == "" {
			r.SetCurrency(code)
			n++
		}
	}
	return n
}

func fillOriginal[T any, P interface {
	*T
	core.Monetary
}](records []T) int {
	n := 0
	for i := range records {
		r := P(&records[i])
		if r.HasOriginalAmount() {
			continue
		}
		if amount, ok := r.BaseAmount(); ok {
			r.SetOriginalAmount(amount)
			n++
		}
	}
	return n
}
