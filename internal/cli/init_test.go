package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/internal/config"
	"budgetup/internal/core"
	"budgetup/internal/log"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataBackend:        backend,
		SQLiteDBPath:       filepath.Join(dir, "budgetup.db"),
		DataFilePath:       dir,
		DefaultLocale:      "en-US",
		CacheTTL:           5 * time.Minute,
		CacheMaxSize:       1000,
		CacheSweepInterval: time.Minute,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

func TestOpenStore_FileBackendPersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "file")

	st, cleanup, err := OpenStore(ctx, log.Discard(), cfg)
	require.NoError(t, err)
	_, err = st.SetPreferredCurrency(ctx, core.Code("EUR"))
	require.NoError(t, err)
	require.NoError(t, cleanup())

	st, cleanup, err = OpenStore(ctx, log.Discard(), cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, core.Code("EUR"), st.DefaultCurrency())
}

func TestOpenStore_InvalidBackend(t *testing.T) {
	_, _, err := OpenStore(context.Background(), log.Discard(), testConfig(t, "sheets"))
	assert.Error(t, err)
}

func TestNewCurrencyService_UsesStorePreference(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "memory")

	st, cleanup, err := OpenStore(ctx, log.Discard(), cfg)
	require.NoError(t, err)
	defer cleanup()

	svc, mgr := NewCurrencyService(cfg, st, log.Discard())
	assert.Equal(t, core.DefaultCurrency, svc.ActiveCurrency())

	require.True(t, svc.SetActiveCurrency(ctx, "GHS"))
	assert.Equal(t, core.Code("GHS"), st.DefaultCurrency())
	assert.Equal(t, 0, mgr.Sweep())
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
