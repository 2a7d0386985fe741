package store

import (
	"github.com/shopspring/decimal"

	"budgetup/internal/core"
)

// The totals below add raw amounts as stored, whatever their currency.
// Converted totals are computed by the currency service.

func (s *Store) TotalIncome() float64 {
	return s.sumTransactions(core.Income)
}

func (s *Store) TotalExpenses() float64 {
	return s.sumTransactions(core.Expense)
}

// AvailableBalance is income minus expenses.
func (s *Store) AvailableBalance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	income := sumWhere(s.state.Transactions, func(t core.Transaction) (float64, bool) {
		return t.Amount, t.Type == core.Income
	})
	expenses := sumWhere(s.state.Transactions, func(t core.Transaction) (float64, bool) {
		return t.Amount, t.Type == core.Expense
	})
	f, _ := income.Sub(expenses).Float64()
	return f
}

// TotalSavings adds every savings entry.
func (s *Store) TotalSavings() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, _ := sumWhere(s.state.SavingsEntries, func(e core.SavingsEntry) (float64, bool) {
		return e.Amount, true
	}).Float64()
	return f
}

// TransactionsByCategory groups transactions by category in insertion order.
func (s *Store) TransactionsByCategory() map[string][]core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]core.Transaction)
	for _, t := range s.state.Transactions {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}

// SavingsProgress returns the percentage of the goal target saved so far,
// capped at 100. Unknown goals and goals without a target report 0.
func (s *Store) SavingsProgress(goalID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.state.SavingsGoals {
		if g.ID != goalID {
			continue
		}
		if g.TargetAmount == nil || *g.TargetAmount == 0 {
			return 0
		}
		saved := sumWhere(s.state.SavingsEntries, func(e core.SavingsEntry) (float64, bool) {
			return e.Amount, e.GoalID == goalID
		})
		return progress(saved, *g.TargetAmount)
	}
	return 0
}

// GroupSavingsProgress is SavingsProgress for a group goal.
func (s *Store) GroupSavingsProgress(groupID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.state.GroupGoals {
		if g.ID != groupID {
			continue
		}
		if g.TargetAmount == 0 {
			return 0
		}
		contributed := sumWhere(s.state.GroupContributions, func(c core.GroupContribution) (float64, bool) {
			return c.Amount, c.GroupID == groupID
		})
		return progress(contributed, g.TargetAmount)
	}
	return 0
}

func (s *Store) sumTransactions(kind core.TransactionType) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, _ := sumWhere(s.state.Transactions, func(t core.Transaction) (float64, bool) {
		return t.Amount, t.Type == kind
	}).Float64()
	return f
}

func sumWhere[T any](records []T, pick func(T) (float64, bool)) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if v, ok := pick(r); ok {
			total = total.Add(decimal.NewFromFloat(v))
		}
	}
	return total
}

func progress(done decimal.Decimal, target float64) float64 {
	pct, _ := done.Div(decimal.NewFromFloat(target)).Mul(decimal.NewFromInt(100)).Float64()
	return min(pct, 100)
}
