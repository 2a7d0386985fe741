package core

import (
	"slices"
	"time"
)

// DemoUserID is assigned to records that carry a user id; the app is single-user.
const DemoUserID = "demo-user"

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	UserPreferences struct {
		Name            string `json:"name"`
		Currency        Code   `json:"currency" validate:"required,currency"`
		IsSetupComplete bool   `json:"isSetupComplete"`
	}

	Transaction struct {
		ID             string          `json:"id"`
		UserID         string          `json:"userId"`
		Type           TransactionType `json:"type" validate:"required,oneof=income expense"`
		Amount         float64         `json:"amount" validate:"gt=0"`
		Currency       Code            `json:"currency,omitempty" validate:"omitempty,currency"`
		OriginalAmount *float64        `json:"originalAmount,omitempty"`
		Description    string          `json:"description" validate:"required,max=200"`
		Category       string          `json:"category" validate:"required"`
		Date           time.Time       `json:"date" validate:"required"`
		CreatedAt      time.Time       `json:"createdAt"`
	}

	SavingsGoal struct {
		ID             string    `json:"id"`
		UserID         string    `json:"userId"`
		Title          string    `json:"title" validate:"required,max=100"`
		TargetAmount   *float64  `json:"targetAmount,omitempty" validate:"omitempty,gt=0"`
		Currency       Code      `json:"currency,omitempty" validate:"omitempty,currency"`
		OriginalAmount *float64  `json:"originalAmount,omitempty"`
		StartDate      time.Time `json:"startDate" validate:"required"`
		EndDate        time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
		IsActive       bool      `json:"isActive"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	SavingsEntry struct {
		ID             string    `json:"id"`
		UserID         string    `json:"userId"`
		GoalID         string    `json:"goalId,omitempty"`
		Amount         float64   `json:"amount" validate:"gt=0"`
		Currency       Code      `json:"currency,omitempty" validate:"omitempty,currency"`
		OriginalAmount *float64  `json:"originalAmount,omitempty"`
		Description    string    `json:"description" validate:"required,max=200"`
		Date           time.Time `json:"date" validate:"required"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	GroupGoal struct {
		ID             string    `json:"id"`
		Name           string    `json:"name" validate:"required,max=100"`
		Description    string    `json:"description,omitempty" validate:"max=500"`
		TargetAmount   float64   `json:"targetAmount" validate:"gt=0"`
		Currency       Code      `json:"currency,omitempty" validate:"omitempty,currency"`
		OriginalAmount *float64  `json:"originalAmount,omitempty"`
		Participants   []string  `json:"participants" validate:"min=1,dive,required"`
		CreatedBy      string    `json:"createdBy" validate:"required"`
		IsActive       bool      `json:"isActive"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	GroupContribution struct {
		ID              string    `json:"id"`
		GroupID         string    `json:"groupId" validate:"required"`
		Amount          float64   `json:"amount" validate:"gt=0"`
		Currency        Code      `json:"currency,omitempty" validate:"omitempty,currency"`
		OriginalAmount  *float64  `json:"originalAmount,omitempty"`
		ParticipantName string    `json:"participantName" validate:"required,max=100"`
		ParticipantID   string    `json:"participantId,omitempty"`
		Date            time.Time `json:"date" validate:"required"`
		Time            string    `json:"time"`
		Description     string    `json:"description,omitempty" validate:"max=200"`
		CreatedAt       time.Time `json:"createdAt"`
	}

	BudgetCategory struct {
		ID             string    `json:"id"`
		UserID         string    `json:"userId"`
		Name           string    `json:"name" validate:"required,max=50"`
		BudgetedAmount float64   `json:"budgetedAmount" validate:"gt=0"`
		SpentAmount    float64   `json:"spentAmount" validate:"gte=0"`
		Currency       Code      `json:"currency,omitempty" validate:"omitempty,currency"`
		OriginalAmount *float64  `json:"originalAmount,omitempty"`
		Month          int       `json:"month" validate:"min=1,max=12"`
		Year           int       `json:"year" validate:"min=2020,max=2100"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	// FinancialState is the whole persisted record set.
	FinancialState struct {
		UserPreferences    *UserPreferences    `json:"userPreferences"`
		Transactions       []Transaction       `json:"transactions"`
		SavingsGoals       []SavingsGoal       `json:"savingsGoals"`
		SavingsEntries     []SavingsEntry      `json:"savingsEntries"`
		GroupGoals         []GroupGoal         `json:"groupGoals"`
		GroupContributions []GroupContribution `json:"groupContributions"`
		BudgetCategories   []BudgetCategory    `json:"budgetCategories"`
		MigrationVersion   int                 `json:"migrationVersion"`
	}
)

// Float returns a pointer to v, for optional amount fields.
func Float(v float64) *float64 { return &v }

// EmptyState returns a state with non-nil collections.
func EmptyState() FinancialState {
	return FinancialState{
		Transactions:       []Transaction{},
		SavingsGoals:       []SavingsGoal{},
		SavingsEntries:     []SavingsEntry{},
		GroupGoals:         []GroupGoal{},
		GroupContributions: []GroupContribution{},
		BudgetCategories:   []BudgetCategory{},
	}
}

// PreferredCurrency returns the preference currency or DefaultCurrency.
func (s FinancialState) PreferredCurrency() Code {
	if s.UserPreferences != nil && s.UserPreferences.Currency != "" {
		return s.UserPreferences.Currency
	}
	return DefaultCurrency
}

// Clone returns a copy that shares no mutable memory with s.
func (s FinancialState) Clone() FinancialState {
	out := FinancialState{
		Transactions:       cloneRecords(s.Transactions),
		SavingsGoals:       cloneRecords(s.SavingsGoals),
		SavingsEntries:     cloneRecords(s.SavingsEntries),
		GroupGoals:         cloneRecords(s.GroupGoals),
		GroupContributions: cloneRecords(s.GroupContributions),
		BudgetCategories:   cloneRecords(s.BudgetCategories),
		MigrationVersion:   s.MigrationVersion,
	}
	if s.UserPreferences != nil {
		p := *s.UserPreferences
		out.UserPreferences = &p
	}
	for i := range out.GroupGoals {
		out.GroupGoals[i].Participants = slices.Clone(out.GroupGoals[i].Participants)
	}
	return out
}

// Normalize replaces nil collections with empty ones so the blob always
// carries arrays.
func (s *FinancialState) Normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.SavingsGoals == nil {
		s.SavingsGoals = []SavingsGoal{}
	}
	if s.SavingsEntries == nil {
		s.SavingsEntries = []SavingsEntry{}
	}
	if s.GroupGoals == nil {
		s.GroupGoals = []GroupGoal{}
	}
	if s.GroupContributions == nil {
		s.GroupContributions = []GroupContribution{}
	}
	if s.BudgetCategories == nil {
		s.BudgetCategories = []BudgetCategory{}
	}
}

// cloneRecords copies a slice of records. Optional amounts are pointers but
// they are only ever replaced, never written through, so a shallow element
// copy is enough.
func cloneRecords[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
