package store

import (
	"context"
	"fmt"
	"slices"

	"budgetup/internal/core"
)

// prepare fills the fields an add action owns: currency from the active
// preference and originalAmount from the amount as entered.
func prepare[P core.Monetary](r P, def core.Code) {
	if r.CurrencyCode() == "" {
		r.SetCurrency(def)
	}
	if !r.HasOriginalAmount() {
		if amount, ok := r.BaseAmount(); ok {
			r.SetOriginalAmount(amount)
		}
	}
}

// updateIn applies fn to the record with the given id, lets keep restore the
// fields an update may not change, validates and stores the result.
func updateIn[T any](records []T, id string, idOf func(*T) string, fn func(*T), keep func(old, upd *T)) (T, error) {
	var zero T
	i := slices.IndexFunc(records, func(r T) bool { return idOf(&r) == id })
	if i < 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	upd := records[i]
	fn(&upd)
	keep(&records[i], &upd)
	if err := core.Validate(upd); err != nil {
		return zero, err
	}
	records[i] = upd
	return upd, nil
}

func deleteIn[T any](records []T, id string, idOf func(*T) string) ([]T, error) {
	i := slices.IndexFunc(records, func(r T) bool { return idOf(&r) == id })
	if i < 0 {
		return records, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return slices.Delete(records, i, i+1), nil
}

// keepMonetary restores currency and originalAmount when the update did not
// set them.
func keepMonetary[P core.Monetary](old, upd P) {
	if upd.CurrencyCode() == "" {
		upd.SetCurrency(old.CurrencyCode())
	}
	if !upd.HasOriginalAmount() && old.HasOriginalAmount() {
		if amount, ok := originalOf(old); ok {
			upd.SetOriginalAmount(amount)
		}
	}
}

func originalOf(r core.Monetary) (float64, bool) {
	switch v := r.(type) {
	case *core.Transaction:
		return deref(v.OriginalAmount)
	case *core.SavingsGoal:
		return deref(v.OriginalAmount)
	case *core.SavingsEntry:
		return deref(v.OriginalAmount)
	case *core.GroupGoal:
		return deref(v.OriginalAmount)
	case *core.GroupContribution:
		return deref(v.OriginalAmount)
	case *core.BudgetCategory:
		return deref(v.OriginalAmount)
	}
	return 0, false
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func txID(t *core.Transaction) string { return t.ID }
func goalID(g *core.SavingsGoal) string { return g.ID }
func entryID(e *core.SavingsEntry) string { return e.ID }
func groupID(g *core.GroupGoal) string { return g.ID }
func contribID(c *core.GroupContribution) string { return c.ID }
func budgetID(b *core.BudgetCategory) string { return b.ID }

// Transactions

func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	err := s.mutate(ctx, "add_transaction", func(st *core.FinancialState) error {
		tx.ID = s.newID()
		tx.UserID = core.DemoUserID
		tx.CreatedAt = s.now()
		prepare(&tx, st.PreferredCurrency())
		if err := core.Validate(tx); err != nil {
			return err
		}
		st.Transactions = append(st.Transactions, tx)
		return nil
	})
	return tx, err
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, fn func(*core.Transaction)) (core.Transaction, error) {
	var out core.Transaction
	err := s.mutate(ctx, "update_transaction", func(st *core.FinancialState) error {
		var err error
		out, err = updateIn(st.Transactions, id, txID, fn, func(old, upd *core.Transaction) {
			upd.ID, upd.UserID, upd.CreatedAt = old.ID, old.UserID, old.CreatedAt
			keepMonetary(old, upd)
		})
		return err
	})
	return out, err
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_transaction", func(st *core.FinancialState) error {
		var err error
		st.Transactions, err = deleteIn(st.Transactions, id, txID)
		return err
	})
}

// Savings goals

func (s *Store) AddSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	err := s.mutate(ctx, "add_savings_goal", func(st *core.FinancialState) error {
		now := s.now()
		g.ID = s.newID()
		g.UserID = core.DemoUserID
		g.CreatedAt, g.UpdatedAt = now, now
		prepare(&g, st.PreferredCurrency())
		if err := core.Validate(g); err != nil {
			return err
		}
		st.SavingsGoals = append(st.SavingsGoals, g)
		return nil
	})
	return g, err
}

func (s *Store) UpdateSavingsGoal(ctx context.Context, id string, fn func(*core.SavingsGoal)) (core.SavingsGoal, error) {
	var out core.SavingsGoal
	err := s.mutate(ctx, "update_savings_goal", func(st *core.FinancialState) error {
		var err error
		out, err = updateIn(st.SavingsGoals, id, goalID, fn, func(old, upd *core.SavingsGoal) {
			upd.ID, upd.UserID, upd.CreatedAt = old.ID, old.UserID, old.CreatedAt
			upd.UpdatedAt = s.now()
			keepMonetary(old, upd)
		})
		return err
	})
	return out, err
}

// DeleteSavingsGoal removes the goal and every entry recorded against it.
func (s *Store) DeleteSavingsGoal(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_savings_goal", func(st *core.FinancialState) error {
		var err error
		if st.SavingsGoals, err = deleteIn(st.SavingsGoals, id, goalID); err != nil {
			return err
		}
		st.SavingsEntries = slices.DeleteFunc(st.SavingsEntries, func(e core.SavingsEntry) bool {
			return e.GoalID == id
		})
		return nil
	})
}

// Savings entries

func (s *Store) AddSavingsEntry(ctx context.Context, e core.SavingsEntry) (core.SavingsEntry, error) {
	err := s.mutate(ctx, "add_savings_entry", func(st *core.FinancialState) error {
		if e.GoalID != "" && !slices.ContainsFunc(st.SavingsGoals, func(g core.SavingsGoal) bool { return g.ID == e.GoalID }) {
			return fmt.Errorf("savings goal %w: %s", ErrNotFound, e.GoalID)
		}
		e.ID = s.newID()
		e.UserID = core.DemoUserID
		e.CreatedAt = s.now()
		prepare(&e, st.PreferredCurrency())
		if err := core.Validate(e); err != nil {
			return err
		}
		st.SavingsEntries = append(st.SavingsEntries, e)
		return nil
	})
	return e, err
}

func (s *Store) UpdateSavingsEntry(ctx context.Context, id string, fn func(*core.SavingsEntry)) (core.SavingsEntry, error) {
	var out core.SavingsEntry
	err := s.mutate(ctx, "update_savings_entry", func(st *core.FinancialState) error {
		var err error
		out, err = updateIn(st.SavingsEntries, id, entryID, fn, func(old, upd *core.SavingsEntry) {
			upd.ID, upd.UserID, upd.CreatedAt = old.ID, old.UserID, old.CreatedAt
			keepMonetary(old, upd)
		})
		return err
	})
	return out, err
}

func (s *Store) DeleteSavingsEntry(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_savings_entry", func(st *core.FinancialState) error {
		var err error
		st.SavingsEntries, err = deleteIn(st.SavingsEntries, id, entryID)
		return err
	})
}

// Group goals

func (s *Store) AddGroupGoal(ctx context.Context, g core.GroupGoal) (core.GroupGoal, error) {
	err := s.mutate(ctx, "add_group_goal", func(st *core.FinancialState) error {
		now := s.now()
		g.ID = s.newID()
		g.Participants = slices.Clone(g.Participants)
		g.CreatedAt, g.UpdatedAt = now, now
		prepare(&g, st.PreferredCurrency())
		if err := core.Validate(g); err != nil {
			return err
		}
		st.GroupGoals = append(st.GroupGoals, g)
		return nil
	})
	return g, err
}

func (s *Store) UpdateGroupGoal(ctx context.Context, id string, fn func(*core.GroupGoal)) (core.GroupGoal, error) {
	var out core.GroupGoal
	err := s.mutate(ctx, "update_group_goal", func(st *core.FinancialState) error {
		var err error
		out, err = updateIn(st.GroupGoals, id, groupID, fn, func(old, upd *core.GroupGoal) {
			upd.ID, upd.CreatedAt = old.ID, old.CreatedAt
			upd.UpdatedAt = s.now()
			keepMonetary(old, upd)
		})
		return err
	})
	return out, err
}

// DeleteGroupGoal removes the group goal and all of its contributions.
func (s *Store) DeleteGroupGoal(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_group_goal", func(st *core.FinancialState) error {
		var err error
		if st.GroupGoals, err = deleteIn(st.GroupGoals, id, groupID); err != nil {
			return err
		}
		st.GroupContributions = slices.DeleteFunc(st.GroupContributions, func(c core.GroupContribution) bool {
			return c.GroupID == id
		})
		return nil
	})
}

// Group contributions

func (s *Store) AddGroupContribution(ctx context.Context, c core.GroupContribution) (core.GroupContribution, error) {
	err := s.mutate(ctx, "add_group_contribution", func(st *core.FinancialState) error {
		if c.GroupID != "" && !slices.ContainsFunc(st.GroupGoals, func(g core.GroupGoal) bool { return g.ID == c.GroupID }) {
			return fmt.Errorf("group goal %w: %s", ErrNotFound, c.GroupID)
		}
		now := s.now()
		c.ID = s.newID()
		c.CreatedAt = now
		if c.Time == "" {
			c.Time = now.Format("15:04")
		}
		prepare(&c, st.PreferredCurrency())
		if err := core.Validate(c); err != nil {
			return err
		}
		st.GroupContributions = append(st.GroupContributions, c)
		return nil
	})
	return c, err
}

func (s *Store) UpdateGroupContribution(ctx context.Context, id string, fn func(*core.GroupContribution)) (core.GroupContribution, error) {
	var out core.GroupContribution
	err := s.mutate(ctx, "update_group_contribution", func(st *core.FinancialState) error {
		var err error
		out, err = updateIn(st.GroupContributions, id, contribID, fn, func(old, upd *core.GroupContribution) {
			upd.ID, upd.CreatedAt = old.ID, old.CreatedAt
			keepMonetary(old, upd)
		})
		return err
	})
	return out, err
}

func (s *Store) DeleteGroupContribution(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_group_contribution", func(st *core.FinancialState) error {
		var err error
		st.GroupContributions, err = deleteIn(st.GroupContributions, id, contribID)
		return err
	})
}

// Budget categories

func (s *Store) AddBudgetCategory(ctx context.Context, b core.BudgetCategory) (core.BudgetCategory, error) {
	err := s.mutate(ctx, "add_budget_category", func(st *core.FinancialState) error {
		now := s.now()
		b.ID = s.newID()
		b.UserID = core.DemoUserID
		b.CreatedAt, b.UpdatedAt = now, now
		prepare(&b, st.PreferredCurrency())
		if err := core.Validate(b); err != nil {
			return err
		}
		st.BudgetCategories = append(st.BudgetCategories, b)
		return nil
	})
	return b, err
}

func (s *Store) UpdateBudgetCategory(ctx context.Context, id string, fn func(*core.BudgetCategory)) (core.BudgetCategory, error) {
	var out core.BudgetCategory
	err := s.mutate(ctx, "update_budget_category", func(st *core.FinancialState) error {
		var err error
		out, err = updateIn(st.BudgetCategories, id, budgetID, fn, func(old, upd *core.BudgetCategory) {
			upd.ID, upd.UserID, upd.CreatedAt = old.ID, old.UserID, old.CreatedAt
			upd.UpdatedAt = s.now()
			keepMonetary(old, upd)
		})
		return err
	})
	return out, err
}

func (s *Store) DeleteBudgetCategory(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_budget_category", func(st *core.FinancialState) error {
		var err error
		st.BudgetCategories, err = deleteIn(st.BudgetCategories, id, budgetID)
		return err
	})
}
