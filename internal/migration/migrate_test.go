package migration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/internal/core"
)

var day = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// legacyState is a v0 blob: no currencies, no original amounts.
func legacyState() core.FinancialState {
	s := core.EmptyState()
	s.Transactions = []core.Transaction{
		{ID: "t1", Type: core.Income, Amount: 200, Description: "Salary", Category: "Work", Date: day},
		{ID: "t2", Type: core.Expense, Amount: 35.5, Currency: "GBP", Description: "Lunch", Category: "Food", Date: day},
	}
	s.SavingsGoals = []core.SavingsGoal{
		{ID: "g1", Title: "Car", TargetAmount: core.Float(5000), StartDate: day, EndDate: day.AddDate(1, 0, 0)},
		{ID: "g2", Title: "Open ended", StartDate: day, EndDate: day.AddDate(1, 0, 0)},
	}
	s.SavingsEntries = []core.SavingsEntry{
		{ID: "e1", GoalID: "g1", Amount: 100, Description: "First", Date: day},
	}
	s.GroupGoals = []core.GroupGoal{
		{ID: "gg1", Name: "Trip", TargetAmount: 900, Participants: []string{"Ama", "Kofi"}, CreatedBy: "Ama"},
	}
	s.GroupContributions = []core.GroupContribution{
		{ID: "c1", GroupID: "gg1", Amount: 50, ParticipantName: "Kofi", Date: day},
	}
	s.BudgetCategories = []core.BudgetCategory{
		{ID: "b1", Name: "Food", BudgetedAmount: 300, Month: 6, Year: 2024},
	}
	return s
}

func TestMigrate_FillsCurrencyAndOriginalAmount(t *testing.T) {
	s := core.EmptyState()
	s.Transactions = []core.Transaction{{ID: "t1", Type: core.Income, Amount: 200}}

	out, rep := Migrate(s, "EUR")

	require.Len(t, out.Transactions, 1)
	tx := out.Transactions[0]
	assert.Equal(t, core.Code("EUR"), tx.Currency)
	require.NotNil(t, tx.OriginalAmount)
	assert.Equal(t, 200.0, *tx.OriginalAmount)
	assert.Equal(t, Current, out.MigrationVersion)
	assert.Equal(t, Report{From: V0, To: V2, CurrencyFilled: 1, OriginalFilled: 1}, rep)
}

func TestMigrate_KeepsExistingCurrency(t *testing.T) {
	s := core.EmptyState()
	s.Transactions = []core.Transaction{{ID: "t1", Amount: 10, Currency: "GBP"}}

	out, _ := Migrate(s, "USD")

	assert.Equal(t, core.Code("GBP"), out.Transactions[0].Currency)
}

func TestMigrate_KeepsExistingOriginalAmount(t *testing.T) {
	s := core.EmptyState()
	s.Transactions = []core.Transaction{{ID: "t1", Amount: 10, Currency: "GHS", OriginalAmount: core.Float(7)}}

	out, rep := Migrate(s, "USD")

	assert.Equal(t, 7.0, *out.Transactions[0].OriginalAmount)
	assert.Equal(t, 0, rep.OriginalFilled)
}

func TestMigrate_DefaultCurrencyResolution(t *testing.T) {
	tests := []struct {
		name  string
		prefs *core.UserPreferences
		def   core.Code
		want  core.Code
	}{
		{"explicit default wins", &core.UserPreferences{Currency: "NGN"}, "EUR", "EUR"},
		{"preference when no default", &core.UserPreferences{Currency: "NGN"}, "", "NGN"},
		{"USD without preference", nil, "", "USD"},
		{"USD with empty preference", &core.UserPreferences{Name: "x"}, "", "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := core.EmptyState()
			s.UserPreferences = tt.prefs
			s.Transactions = []core.Transaction{{ID: "t1", Amount: 1}}

			out, _ := Migrate(s, tt.def)
			assert.Equal(t, tt.want, out.Transactions[0].Currency)
		})
	}
}

func TestMigrate_AllCollections(t *testing.T) {
	out, rep := Migrate(legacyState(), "GHS")

	assert.Equal(t, core.Code("GHS"), out.Transactions[0].Currency)
	assert.Equal(t, core.Code("GBP"), out.Transactions[1].Currency)
	assert.Equal(t, core.Code("GHS"), out.SavingsGoals[0].Currency)
	assert.Equal(t, core.Code("GHS"), out.SavingsGoals[1].Currency)
	assert.Equal(t, core.Code("GHS"), out.SavingsEntries[0].Currency)
	assert.Equal(t, core.Code("GHS"), out.GroupGoals[0].Currency)
	assert.Equal(t, core.Code("GHS"), out.GroupContributions[0].Currency)
	assert.Equal(t, core.Code("GHS"), out.BudgetCategories[0].Currency)

	assert.Equal(t, 5000.0, *out.SavingsGoals[0].OriginalAmount)
	assert.Nil(t, out.SavingsGoals[1].OriginalAmount, "goal without target has nothing to backfill")
	assert.Equal(t, 100.0, *out.SavingsEntries[0].OriginalAmount)
	assert.Equal(t, 900.0, *out.GroupGoals[0].OriginalAmount)
	assert.Equal(t, 50.0, *out.GroupContributions[0].OriginalAmount)
	assert.Equal(t, 300.0, *out.BudgetCategories[0].OriginalAmount)

	assert.Equal(t, 7, rep.CurrencyFilled)
	assert.Equal(t, 7, rep.OriginalFilled)
}

func TestMigrate_Idempotent(t *testing.T) {
	once, first := Migrate(legacyState(), "EUR")
	twice, second := Migrate(once, "EUR")

	assert.Equal(t, once, twice)
	assert.True(t, first.Changed())
	assert.False(t, second.Changed())
	assert.Equal(t, Report{From: Current, To: Current}, second)
}

func TestMigrate_IdempotentUnderDifferentDefault(t *testing.T) {
	once, _ := Migrate(legacyState(), "EUR")
	again, _ := Migrate(once, "JPY")

	assert.Equal(t, once, again)
}

func TestMigrate_DoesNotMutateInput(t *testing.T) {
	in := legacyState()
	_, _ = Migrate(in, "EUR")

	assert.Equal(t, legacyState(), in)
	assert.Empty(t, in.Transactions[0].Currency)
	assert.Nil(t, in.Transactions[0].OriginalAmount)
	assert.Equal(t, V0, in.MigrationVersion)
}

func TestMigrate_FromV1(t *testing.T) {
	s := core.EmptyState()
	s.MigrationVersion = V1
	s.BudgetCategories = []core.BudgetCategory{{ID: "b1", BudgetedAmount: 80, Currency: "INR"}}

	out, rep := Migrate(s, "USD")

	assert.Equal(t, core.Code("INR"), out.BudgetCategories[0].Currency)
	assert.Equal(t, 80.0, *out.BudgetCategories[0].OriginalAmount)
	assert.Equal(t, V1, rep.From)
	assert.Equal(t, V2, rep.To)
}

func TestMigrate_FutureVersionKept(t *testing.T) {
	s := core.EmptyState()
	s.MigrationVersion = Current + 1

	out, rep := Migrate(s, "USD")

	assert.Equal(t, Current+1, out.MigrationVersion)
	assert.False(t, rep.Changed())
}

func TestNeedsMigration(t *testing.T) {
	assert.True(t, NeedsMigration(core.FinancialState{}))
	assert.False(t, NeedsMigration(core.FinancialState{MigrationVersion: Current}))
}

func TestReport_String(t *testing.T) {
	r := Report{From: 0, To: 2, CurrencyFilled: 3, OriginalFilled: 4}
	assert.Equal(t, "v0 -> v2 (currency filled: 3, originalAmount filled: 4)", r.String())
}
