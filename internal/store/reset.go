package store

import (
	"context"
	"fmt"
	"time"

	"budgetup/internal/core"
	"budgetup/internal/log"
	"budgetup/internal/migration"
)

// ResetAll deletes the persisted blob and empties the in-memory state.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete %s: %w", s.key, err)
	}
	s.state = core.EmptyState()
	s.state.MigrationVersion = migration.Current

	s.logger.InfoContext(ctx, "All data reset", log.FieldOperation, log.OpReset, log.FieldKey, s.key)
	return nil
}

// ResetFinancialData drops every record but keeps preferences and the
// migration version.
func (s *Store) ResetFinancialData(ctx context.Context) error {
	err := s.mutate(ctx, log.OpReset, func(st *core.FinancialState) error {
		empty := core.EmptyState()
		empty.UserPreferences = st.UserPreferences
		empty.MigrationVersion = st.MigrationVersion
		*st = empty
		return nil
	})
	if err == nil {
		s.logger.InfoContext(ctx, "Financial data reset, preferences kept")
	}
	return err
}

// ResetUserPreferences clears preferences and keeps the records.
func (s *Store) ResetUserPreferences(ctx context.Context) error {
	err := s.mutate(ctx, log.OpReset, func(st *core.FinancialState) error {
		st.UserPreferences = nil
		return nil
	})
	if err == nil {
		s.logger.InfoContext(ctx, "User preferences reset")
	}
	return err
}

// Summary counts the stored records.
func (s *Store) Summary() core.DataSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Summarize()
}

// MigrateNow runs the migration pipeline on the current state and persists
// the result if anything changed. It is the same pipeline Open runs.
func (s *Store) MigrateNow(ctx context.Context) (migration.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	migrated, rep := migration.Migrate(s.state, "")
	if !rep.Changed() {
		return rep, nil
	}
	if err := s.write(ctx, migrated); err != nil {
		return rep, err
	}
	s.state = migrated
	s.logger.InfoContext(ctx, "Migration applied",
		log.FieldOperation, log.OpMigrate,
		"report", rep.String())
	return rep, nil
}

// AddSampleData stores a demo user with a few transactions, a savings goal
// and one entry towards it.
func (s *Store) AddSampleData(ctx context.Context) error {
	if err := s.SetUserPreferences(ctx, core.UserPreferences{
		Name:            "Test User",
		Currency:        "USD",
		IsSetupComplete: true,
	}); err != nil {
		return err
	}

	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	samples := []core.Transaction{
		{Type: core.Income, Amount: 5000, Currency: "USD", Description: "Monthly Salary", Category: "Salary", Date: day(time.January, 15)},
		{Type: core.Expense, Amount: 1200, Currency: "USD", Description: "Rent Payment", Category: "Housing & Rent", Date: day(time.January, 1)},
		{Type: core.Expense, Amount: 300, Currency: "USD", Description: "Groceries", Category: "Food & Dining", Date: day(time.January, 10)},
		{Type: core.Income, Amount: 800, Currency: "EUR", Description: "Freelance Work", Category: "Freelance", Date: day(time.January, 20)},
	}
	for _, tx := range samples {
		if _, err := s.AddTransaction(ctx, tx); err != nil {
			return fmt.Errorf("add sample transaction: %w", err)
		}
	}

	goal, err := s.AddSavingsGoal(ctx, core.SavingsGoal{
		Title:        "Emergency Fund",
		TargetAmount: core.Float(10000),
		Currency:     "USD",
		StartDate:    day(time.January, 1),
		EndDate:      day(time.December, 31),
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("add sample goal: %w", err)
	}

	if _, err := s.AddSavingsEntry(ctx, core.SavingsEntry{
		GoalID:      goal.ID,
		Amount:      500,
		Currency:    "USD",
		Description: "Monthly savings",
		Date:        day(time.January, 15),
	}); err != nil {
		return fmt.Errorf("add sample entry: %w", err)
	}

	s.logger.InfoContext(ctx, "Sample data added")
	return nil
}
