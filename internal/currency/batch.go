package currency

import (
	"github.com/shopspring/decimal"

	"budgetup/internal/cache"
	"budgetup/internal/core"
	"budgetup/internal/log"
)

var (
	// DefaultPreloadTargets are warmed at startup.
	DefaultPreloadTargets = []core.Code{"USD", "EUR", "GBP", "GHS", "NGN"}
	// ExtendedPreloadTargets add the other regions the rate table covers.
	ExtendedPreloadTargets = append(append([]core.Code{}, DefaultPreloadTargets...), "INR", "BRL", "MXN")
)

// Amount is a value in a given currency. An empty Currency means the active
// currency.
type Amount struct {
	Value    float64   `json:"amount"`
	Currency core.Code `json:"currency,omitempty"`
}

// ConvertBatch converts every amount into the active currency.
func (s *Service) ConvertBatch(amounts []Amount) []float64 {
	active := s.ActiveCurrency()
	out := make([]float64, len(amounts))
	for i, a := range amounts {
		out[i] = s.ConvertBetween(a.Value, source([]core.Code{a.Currency}, active), active)
	}
	return out
}

// FormatBatch converts and formats every amount in the active currency.
func (s *Service) FormatBatch(amounts []Amount) []string {
	active := s.ActiveCurrency()
	out := make([]string, len(amounts))
	for i, a := range amounts {
		v := s.ConvertBetween(a.Value, source([]core.Code{a.Currency}, active), active)
		out[i] = s.FormatIn(v, active, s.locale)
	}
	return out
}

// Preload caches both directions of base <-> target for every target and
// returns the number of rates now cached for those pairs.
func (s *Service) Preload(base core.Code, targets []core.Code) int {
	n := 0
	for _, t := range targets {
		if t == base {
			continue
		}
		for _, pair := range [2][2]core.Code{{base, t}, {t, base}} {
			if _, ok := s.rate(pair[0], pair[1]); ok {
				n++
			}
		}
	}
	s.logger.Debug("Rates preloaded",
		log.FieldCurrency, string(base),
		log.FieldCount, n)
	return n
}

// ClearCache empties both caches. Observed values do not change.
func (s *Service) ClearCache() {
	s.rateCache.Clear()
	s.fmtCache.Clear()
	s.logger.Debug("Currency caches cleared")
}

// CacheStats describes both caches.
type CacheStats struct {
	Conversion cache.Stats `json:"conversion"`
	Format     cache.Stats `json:"format"`
	TotalSize  int         `json:"totalSize"`
	MaxSize    int         `json:"maxSize"`
}

func (s *Service) CacheStats() CacheStats {
	conv := s.rateCache.Stats()
	fmtStats := s.fmtCache.Stats()
	return CacheStats{
		Conversion: conv,
		Format:     fmtStats,
		TotalSize:  conv.Size + fmtStats.Size,
		MaxSize:    conv.MaxSize + fmtStats.MaxSize,
	}
}

// CalculateTotals sums income and expenses in the active currency,
// converting each transaction from its own currency.
func (s *Service) CalculateTotals(txs []core.Transaction) core.Totals {
	active := s.ActiveCurrency()
	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		v := decimal.NewFromFloat(s.ConvertBetween(tx.Amount, source([]core.Code{tx.Currency}, active), active))
		switch tx.Type {
		case core.Income:
			income = income.Add(v)
		case core.Expense:
			expenses = expenses.Add(v)
		}
	}
	in, _ := income.Float64()
	out, _ := expenses.Float64()
	bal, _ := income.Sub(expenses).Float64()
	return core.Totals{Currency: active, Income: in, Expenses: out, Balance: bal}
}
