package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/internal/config"
	"budgetup/internal/log"
	"budgetup/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.ErrorContains(t, err, "invalid backend type in config: sheets")

	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataFilePath: "/tmp/x", SQLiteDBPath: "/tmp/db"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: FileBackend, SQLiteDBPath: "/tmp/db", DataDirectory: "/tmp/x"}, cfg)
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{Type: "postgres"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.NoError(t, Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}.Validate())
	assert.NoError(t, Config{Type: FileBackend}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "file", "memory"}, GetBackendTypeStrings())
}

func TestFactory_CreateBackend(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(log.Discard())
	dir := t.TempDir()

	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "budgetup.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := factory.CreateBackend(ctx, tt.config)
			require.NoError(t, err)
			defer func() { assert.NoError(t, res.Close()) }()

			_, err = res.Persister.Load(ctx, "missing")
			assert.ErrorIs(t, err, storage.ErrNotFound)

			require.NoError(t, res.Persister.Save(ctx, "k", []byte("v")))
			got, err := res.Persister.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))
		})
	}
}

func TestFactory_InvalidType(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "sheets"})
	assert.ErrorContains(t, err, "invalid backend type")
}

func TestBackendResult_CloseWithoutCleanup(t *testing.T) {
	var r *BackendResult
	assert.NoError(t, r.Close())
	assert.NoError(t, (&BackendResult{}).Close())
}
