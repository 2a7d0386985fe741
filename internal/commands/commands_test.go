package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/internal/core"
)

// setupEnv points every command at a fresh file backend.
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("DATA_FILE_PATH", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEFAULT_LOCALE", "en-US")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
}

func runBudgetup(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvert(t *testing.T) {
	setupEnv(t)

	out, err := runBudgetup(t, "convert", "100", "--from", "usd", "--to", "EUR")
	require.NoError(t, err)
	assert.Contains(t, out, "€85.00")
	assert.Contains(t, out, "rate 0.85")
}

func TestConvert_InvalidInput(t *testing.T) {
	setupEnv(t)

	_, err := runBudgetup(t, "convert", "abc")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = runBudgetup(t, "convert", "1", "--to", "XXX")
	assert.ErrorIs(t, err, core.ErrInvalidCurrency)

	_, err = runBudgetup(t, "convert")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	setupEnv(t)

	out, err := runBudgetup(t, "format", "42.5", "--currency", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "€42.50\n", out)
}

func TestSetCurrency_Persists(t *testing.T) {
	setupEnv(t)

	out, err := runBudgetup(t, "set-currency", "ghs")
	require.NoError(t, err)
	assert.Equal(t, "Currency changed: USD -> GHS\n", out)

	out, err = runBudgetup(t, "summary", "--json")
	require.NoError(t, err)
	var got struct {
		Totals core.Totals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, core.Code("GHS"), got.Totals.Currency)
}

func TestSetCurrency_Invalid(t *testing.T) {
	setupEnv(t)

	_, err := runBudgetup(t, "set-currency", "XYZ")
	require.Error(t, err)
	assert.Equal(t, "Invalid currency code: XYZ", err.Error())
}

func TestSampleSummaryAndReset(t *testing.T) {
	setupEnv(t)

	out, err := runBudgetup(t, "sample")
	require.NoError(t, err)
	assert.Equal(t, "Added sample data: 4 transactions\n", out)

	out, err = runBudgetup(t, "summary", "--json")
	require.NoError(t, err)
	var got struct {
		Summary core.DataSummary `json:"summary"`
		Totals  core.Totals      `json:"totals"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4, got.Summary.Transactions)
	assert.Equal(t, 2, got.Summary.MigrationVersion)
	assert.InDelta(t, 5944, got.Totals.Income, 0.001)
	assert.InDelta(t, 1500, got.Totals.Expenses, 0.001)

	out, err = runBudgetup(t, "reset", "--financial")
	require.NoError(t, err)
	assert.Equal(t, "Reset financial data\n", out)

	out, err = runBudgetup(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Transactions:        0")
	assert.Contains(t, out, "Currency:            USD")
}

func TestReset_FlagsAreExclusive(t *testing.T) {
	setupEnv(t)

	_, err := runBudgetup(t, "reset", "--financial", "--preferences")
	assert.Error(t, err)
}

func TestMigrate_AlreadyCurrent(t *testing.T) {
	setupEnv(t)

	out, err := runBudgetup(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "Already at version 2\n", out)
}

func TestCurrencies(t *testing.T) {
	setupEnv(t)

	out, err := runBudgetup(t, "currencies")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
	for _, c := range core.Currencies() {
		assert.Contains(t, out, string(c.Code))
	}
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("DATA_BACKEND", "postgres")

	_, err := runBudgetup(t, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend")
}
