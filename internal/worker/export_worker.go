package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"budgetup/internal/amqp"
	"budgetup/internal/core"
	"budgetup/internal/log"
	"budgetup/internal/sheets"
	"budgetup/internal/store"
)

// StateLoader returns the current persisted state.
type StateLoader func(ctx context.Context) (core.FinancialState, error)

// Converter is the part of the currency facade the worker needs.
type Converter interface {
	ConvertBetween(amount float64, from, to core.Code) float64
	FormatIn(amount float64, code core.Code, locale string) string
}

// ExportWorker rebuilds the exported ledger whenever the display currency
// changes.
type ExportWorker struct {
	load     StateLoader
	convert  Converter
	exporter sheets.LedgerExporter
	logger   *log.Logger
	now      func() time.Time
}

func NewExportWorker(load StateLoader, convert Converter, exporter sheets.LedgerExporter, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		load:     load,
		convert:  convert,
		exporter: exporter,
		logger:   log.OrDefault(logger).WithComponent(log.ComponentWorker),
		now:      time.Now,
	}
}

// StoreLoader reads the blob on p for every call so each message sees what
// the API process last saved. It never writes; the API's store is the only
// writer.
func StoreLoader(p store.Persister) StateLoader {
	return func(ctx context.Context) (core.FinancialState, error) {
		return store.Read(ctx, p, store.BlobKey)
	}
}

// HandleCurrencyChanged processes a single currency change message from AMQP.
// A message naming an unsupported currency is logged and dropped.
func (w *ExportWorker) HandleCurrencyChanged(ctx context.Context, msg *amqp.CurrencyChangedMessage) error {
	target, err := core.ParseCode(string(msg.NewCurrency))
	if err != nil {
		w.logger.WarnContext(ctx, "Dropping currency change for unsupported currency",
			log.FieldNewCurr, msg.NewCurrency, log.FieldError, err)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing currency change message",
		log.FieldOldCurr, msg.OldCurrency,
		log.FieldNewCurr, target)

	state, err := w.load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	ledger := w.BuildLedger(state, target)
	if err := w.exporter.ExportLedger(ctx, ledger); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}

	w.logger.InfoContext(ctx, "Ledger exported",
		log.FieldCurrency, target, log.FieldCount, len(ledger.Rows))
	return nil
}

// BuildLedger converts every transaction of state into target, oldest first.
func (w *ExportWorker) BuildLedger(state core.FinancialState, target core.Code) sheets.Ledger {
	fallback := state.PreferredCurrency()
	rows := make([]sheets.LedgerRow, 0, len(state.Transactions))
	for _, tx := range state.Transactions {
		from := tx.Currency
		if from == "" {
			from = fallback
		}
		converted := core.Round2(w.convert.ConvertBetween(tx.Amount, from, target))
		rows = append(rows, sheets.LedgerRow{
			Date:             tx.Date,
			Description:      tx.Description,
			Category:         tx.Category,
			Type:             tx.Type,
			OriginalAmount:   tx.Amount,
			OriginalCurrency: from,
			ConvertedAmount:  converted,
			Formatted:        w.convert.FormatIn(converted, target, ""),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return sheets.Ledger{Currency: target, GeneratedAt: w.now(), Rows: rows}
}
