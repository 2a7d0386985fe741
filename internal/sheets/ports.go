package sheets

import (
	"context"
	"time"

	"budgetup/internal/core"
)

// LedgerRow is one transaction as it appears in an exported ledger.
type LedgerRow struct {
	Date             time.Time
	Description      string
	Category         string
	Type             core.TransactionType
	OriginalAmount   float64
	OriginalCurrency core.Code
	ConvertedAmount  float64
	Formatted        string
}

// Ledger is every transaction converted into one currency.
type Ledger struct {
	Currency    core.Code
	GeneratedAt time.Time
	Rows        []LedgerRow
}

// Ports for outbound adapters.
type (
	// LedgerExporter replaces the exported ledger with a new one.
	LedgerExporter interface {
		ExportLedger(ctx context.Context, ledger Ledger) error
	}
)
