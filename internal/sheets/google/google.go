// Package google exports ledgers to a Google spreadsheet using service
// account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetup/internal/log"
	ports "budgetup/internal/sheets"
)

// Header is the first row written to the ledger sheet.
var Header = []any{"Date", "Description", "Category", "Type", "Original Amount", "Original Currency", "Amount", "Formatted", "Currency"}

// Config selects the spreadsheet and credentials. CredentialsJSON wins over
// CredentialsFile when both are set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
	now           func() time.Time
}

// Ensure interface conformance
var _ ports.LedgerExporter = (*Exporter)(nil)

// NewExporter creates an exporter authenticated with the service account in cfg.
func NewExporter(ctx context.Context, cfg Config, logger *log.Logger) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger = log.OrDefault(logger).WithComponent(log.ComponentSheets)

	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Exporter {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Ledger"
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetName,
		logger:        log.OrDefault(logger).WithComponent(log.ComponentSheets),
		now:           time.Now,
	}
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// SheetName returns the sheet the ledger for year is written to.
func (e *Exporter) SheetName(year int) string {
	return yearPrefixedName(e.sheetBase, year)
}

// ExportLedger clears the ledger sheet and writes the header plus one row
// per transaction.
func (e *Exporter) ExportLedger(ctx context.Context, ledger ports.Ledger) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	generated := ledger.GeneratedAt
	if generated.IsZero() {
		generated = e.now()
	}
	sheet := e.SheetName(generated.Year())

	clearRange := fmt.Sprintf("%s!A:I", sheet)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", clearRange, err)
	}

	values := ledgerValues(ledger)
	dataRange := fmt.Sprintf("%s!A1:I%d", sheet, len(values))
	vr := &gsheet.ValueRange{Values: values}
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	e.logger.InfoContext(ctx, "Exported ledger",
		log.FieldOperation, log.OpExport,
		log.FieldCurrency, ledger.Currency,
		log.FieldCount, len(ledger.Rows),
		"range", dataRange)
	return nil
}

func ledgerValues(ledger ports.Ledger) [][]any {
	values := make([][]any, 0, len(ledger.Rows)+1)
	values = append(values, Header)
	for _, r := range ledger.Rows {
		values = append(values, []any{
			r.Date.Format("2006-01-02"),
			r.Description,
			r.Category,
			string(r.Type),
			r.OriginalAmount,
			string(r.OriginalCurrency),
			r.ConvertedAmount,
			r.Formatted,
			string(ledger.Currency),
		})
	}
	return values
}

// yearPrefixedName returns "<year> <base>" unless base already starts with
// a four digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
