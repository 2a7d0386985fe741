// Package memory records exported ledgers in process.
package memory

import (
	"context"
	"slices"
	"sync"

	ports "budgetup/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	ledgers []ports.Ledger
	err     error
}

var _ ports.LedgerExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// FailWith makes every following export return err. A nil err clears it.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// ExportLedger stores a copy of ledger.
func (e *Exporter) ExportLedger(_ context.Context, ledger ports.Ledger) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	ledger.Rows = slices.Clone(ledger.Rows)
	e.ledgers = append(e.ledgers, ledger)
	return nil
}

// Exports returns every stored ledger in export order.
func (e *Exporter) Exports() []ports.Ledger {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.ledgers)
}

// Last returns the most recent ledger.
func (e *Exporter) Last() (ports.Ledger, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.ledgers) == 0 {
		return ports.Ledger{}, false
	}
	return e.ledgers[len(e.ledgers)-1], true
}
