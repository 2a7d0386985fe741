package migration

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/internal/core"
)

var genCurrencies = []core.Code{"", "", "USD", "EUR", "GBP", "GHS", "JPY"}

// stateGen builds random blobs mixing records with and without currency,
// with and without original amounts, across every collection.
type stateGen struct{ r *rand.Rand }

func (g stateGen) code() core.Code { return genCurrencies[g.r.IntN(len(genCurrencies))] }

func (g stateGen) amount() float64 { return float64(1+g.r.IntN(100000)) / 100 }

func (g stateGen) original() *float64 {
	if g.r.IntN(2) == 0 {
		return nil
	}
	return core.Float(g.amount())
}

func (g stateGen) n() int { return g.r.IntN(5) }

func (g stateGen) state() core.FinancialState {
	s := core.EmptyState()
	s.MigrationVersion = g.r.IntN(4)
	if g.r.IntN(3) > 0 {
		s.UserPreferences = &core.UserPreferences{Name: "u", Currency: g.code()}
	}
	for i := range g.n() {
		s.Transactions = append(s.Transactions, core.Transaction{
			ID: fmt.Sprint("t", i), Type: core.Expense, Amount: g.amount(),
			Currency: g.code(), OriginalAmount: g.original(), Date: day,
		})
	}
	for i := range g.n() {
		goal := core.SavingsGoal{
			ID: fmt.Sprint("g", i), Currency: g.code(), OriginalAmount: g.original(),
			StartDate: day, EndDate: day.AddDate(1, 0, 0),
		}
		if g.r.IntN(2) == 0 {
			goal.TargetAmount = core.Float(g.amount())
		}
		s.SavingsGoals = append(s.SavingsGoals, goal)
	}
	for i := range g.n() {
		s.SavingsEntries = append(s.SavingsEntries, core.SavingsEntry{
			ID: fmt.Sprint("e", i), Amount: g.amount(), Currency: g.code(), OriginalAmount: g.original(), Date: day,
		})
	}
	for i := range g.n() {
		s.GroupGoals = append(s.GroupGoals, core.GroupGoal{
			ID: fmt.Sprint("gg", i), TargetAmount: g.amount(), Currency: g.code(), OriginalAmount: g.original(),
			Participants: []string{"a", "b"}, CreatedBy: "a",
		})
	}
	for i := range g.n() {
		s.GroupContributions = append(s.GroupContributions, core.GroupContribution{
			ID: fmt.Sprint("c", i), GroupID: "gg0", Amount: g.amount(), Currency: g.code(), OriginalAmount: g.original(), Date: day,
		})
	}
	for i := range g.n() {
		s.BudgetCategories = append(s.BudgetCategories, core.BudgetCategory{
			ID: fmt.Sprint("b", i), BudgetedAmount: g.amount(), Currency: g.code(), OriginalAmount: g.original(),
			Month: 1 + g.r.IntN(12), Year: 2024,
		})
	}
	return s
}

// monetary lists every record of s in collection order.
func monetary(s *core.FinancialState) []core.Monetary {
	var out []core.Monetary
	for i := range s.Transactions {
		out = append(out, &s.Transactions[i])
	}
	for i := range s.SavingsGoals {
		out = append(out, &s.SavingsGoals[i])
	}
	for i := range s.SavingsEntries {
		out = append(out, &s.SavingsEntries[i])
	}
	for i := range s.GroupGoals {
		out = append(out, &s.GroupGoals[i])
	}
	for i := range s.GroupContributions {
		out = append(out, &s.GroupContributions[i])
	}
	for i := range s.BudgetCategories {
		out = append(out, &s.BudgetCategories[i])
	}
	return out
}

func TestMigrate_Properties(t *testing.T) {
	g := stateGen{r: rand.New(rand.NewPCG(20240601, 7))}

	for i := range 500 {
		in := g.state()
		before := in.Clone()
		d1, d2 := g.code(), g.code()

		once, _ := Migrate(in, d1)
		twice, rep := Migrate(once, d2)

		require.Equal(t, once, twice, "case %d: second run changed the state", i)
		require.False(t, rep.Changed(), "case %d: second run reported changes: %s", i, rep)
		require.Equal(t, before, in, "case %d: input mutated", i)

		inRecs, outRecs := monetary(&in), monetary(&once)
		require.Len(t, outRecs, len(inRecs))
		for j, src := range inRecs {
			got := outRecs[j]
			if c := src.CurrencyCode(); c != "" {
				assert.Equal(t, c, got.CurrencyCode(), "case %d record %d: currency rewritten", i, j)
			}
			assert.NotEmpty(t, got.CurrencyCode(), "case %d record %d", i, j)
			if _, ok := got.BaseAmount(); ok {
				assert.True(t, got.HasOriginalAmount(), "case %d record %d: originalAmount missing", i, j)
			} else {
				assert.Equal(t, src.HasOriginalAmount(), got.HasOriginalAmount(), "case %d record %d: goal without target", i, j)
			}
		}
		assert.GreaterOrEqual(t, once.MigrationVersion, Current)
	}
}
