package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/internal/log"
)

type persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

func persisters(t *testing.T) map[string]persister {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "budgetup.db"), log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]persister{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestPersisters_RoundTrip(t *testing.T) {
	ctx := context.Background()
	const key = "budgetup-financial-store"

	for name, p := range persisters(t) {
		t.Run(name, func(t *testing.T) {
			_, err := p.Load(ctx, key)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, p.Save(ctx, key, []byte(`{"v":1}`)))
			got, err := p.Load(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":1}`, string(got))

			require.NoError(t, p.Save(ctx, key, []byte(`{"v":2}`)))
			got, err = p.Load(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":2}`, string(got))

			require.NoError(t, p.Delete(ctx, key))
			_, err = p.Load(ctx, key)
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, p.Delete(ctx, key), "deleting a missing key is not an error")
		})
	}
}

func TestPersisters_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()

	for name, p := range persisters(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Save(ctx, "a", []byte("1")))
			require.NoError(t, p.Save(ctx, "b", []byte("2")))

			got, err := p.Load(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "1", string(got))
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	blob := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", blob))
	blob[0] = 'x'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, m.Saves())
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, f.Save(ctx, "budgetup-financial-store", []byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "budgetup-financial-store.json", entries[0].Name())
}

func TestFileStore_SanitizesKeys(t *testing.T) {
	f, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "a_b_c.json", filepath.Base(f.Path("a/b c")))
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budgetup.db")

	s, err := NewSQLiteStore(path, log.Discard())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "k", []byte("persisted")))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, log.Discard())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))
	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}
