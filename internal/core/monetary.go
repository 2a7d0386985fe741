package core

// Monetary is implemented by every persisted record that carries an amount.
// BaseAmount reports the amount that OriginalAmount should mirror; ok is
// false for records with no amount yet (a savings goal without a target).
type Monetary interface {
	CurrencyCode() Code
	SetCurrency(Code)
	BaseAmount() (amount float64, ok bool)
	HasOriginalAmount() bool
	SetOriginalAmount(float64)
}

var (
	_ Monetary = (*Transaction)(nil)
	_ Monetary = (*SavingsGoal)(nil)
	_ Monetary = (*SavingsEntry)(nil)
	_ Monetary = (*GroupGoal)(nil)
	_ Monetary = (*GroupContribution)(nil)
	_ Monetary = (*BudgetCategory)(nil)
)

func (t *Transaction) CurrencyCode() Code { return t.Currency }
func (t *Transaction) SetCurrency(c Code) { t.Currency = c }
func (t *Transaction) BaseAmount() (float64, bool) { return t.Amount, true }
func (t *Transaction) HasOriginalAmount() bool { return t.OriginalAmount != nil }
func (t *Transaction) SetOriginalAmount(v float64) { t.OriginalAmount = Float(v) }

func (g *SavingsGoal) CurrencyCode() Code { return g.Currency }
func (g *SavingsGoal) SetCurrency(c Code) { g.Currency = c }
func (g *SavingsGoal) BaseAmount() (float64, bool) {
	if g.TargetAmount == nil {
		return 0, false
	}
	return *g.TargetAmount, true
}
func (g *SavingsGoal) HasOriginalAmount() bool { return g.OriginalAmount != nil }
func (g *SavingsGoal) SetOriginalAmount(v float64) { g.OriginalAmount = Float(v) }

func (e *SavingsEntry) CurrencyCode() Code { return e.Currency }
func (e *SavingsEntry) SetCurrency(c Code) { e.Currency = c }
func (e *SavingsEntry) BaseAmount() (float64, bool) { return e.Amount, true }
func (e *SavingsEntry) HasOriginalAmount() bool { return e.OriginalAmount != nil }
func (e *SavingsEntry) SetOriginalAmount(v float64) { e.OriginalAmount = Float(v) }

func (g *GroupGoal) CurrencyCode() Code { return g.Currency }
func (g *GroupGoal) SetCurrency(c Code) { g.Currency = c }
func (g *GroupGoal) BaseAmount() (float64, bool) { return g.TargetAmount, true }
func (g *GroupGoal) HasOriginalAmount() bool { return g.OriginalAmount != nil }
func (g *GroupGoal) SetOriginalAmount(v float64) { g.OriginalAmount = Float(v) }

func (c *GroupContribution) CurrencyCode() Code { return c.Currency }
func (c *GroupContribution) SetCurrency(code Code) { c.Currency = code }
func (c *GroupContribution) BaseAmount() (float64, bool) { return c.Amount, true }
func (c *GroupContribution) HasOriginalAmount() bool { return c.OriginalAmount != nil }
func (c *GroupContribution) SetOriginalAmount(v float64) { c.OriginalAmount = Float(v) }

func (b *BudgetCategory) CurrencyCode() Code { return b.Currency }
func (b *BudgetCategory) SetCurrency(c Code) { b.Currency = c }
func (b *BudgetCategory) BaseAmount() (float64, bool) { return b.BudgetedAmount, true }
func (b *BudgetCategory) HasOriginalAmount() bool { return b.OriginalAmount != nil }
func (b *BudgetCategory) SetOriginalAmount(v float64) { b.OriginalAmount = Float(v) }
