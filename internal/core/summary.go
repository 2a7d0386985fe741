package core

// Totals is an income/expense/balance triple expressed in one currency.
type Totals struct {
	Currency Code    `json:"currency"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// DataSummary counts the records held by the store.
type DataSummary struct {
	Transactions       int              `json:"transactions"`
	SavingsGoals       int              `json:"savingsGoals"`
	SavingsEntries     int              `json:"savingsEntries"`
	GroupGoals         int              `json:"groupGoals"`
	GroupContributions int              `json:"groupContributions"`
	BudgetCategories   int              `json:"budgetCategories"`
	UserPreferences    *UserPreferences `json:"userPreferences"`
	MigrationVersion   int              `json:"migrationVersion"`
}

// Summarize counts the records of s.
func (s FinancialState) Summarize() DataSummary {
	sum := DataSummary{
		Transactions:       len(s.Transactions),
		SavingsGoals:       len(s.SavingsGoals),
		SavingsEntries:     len(s.SavingsEntries),
		GroupGoals:         len(s.GroupGoals),
		GroupContributions: len(s.GroupContributions),
		BudgetCategories:   len(s.BudgetCategories),
		MigrationVersion:   s.MigrationVersion,
	}
	if s.UserPreferences != nil {
		p := *s.UserPreferences
		sum.UserPreferences = &p
	}
	return sum
}
