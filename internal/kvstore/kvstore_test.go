package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state", "phytocheck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "phytocheck_search_count", "3"))
			v, err := s.Get(ctx, "phytocheck_search_count")
			require.NoError(t, err)
			assert.Equal(t, "3", v)

			require.NoError(t, s.Set(ctx, "phytocheck_search_count", "4"))
			v, err = s.Get(ctx, "phytocheck_search_count")
			require.NoError(t, err)
			assert.Equal(t, "4", v)

			require.NoError(t, s.Delete(ctx, "phytocheck_search_count"))
			_, err = s.Get(ctx, "phytocheck_search_count")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Delete(ctx, "never-existed"))
		})
	}
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "k")
			assert.ErrorIs(t, err, context.Canceled)
			assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
			assert.ErrorIs(t, s.Delete(ctx, "k"), context.Canceled)
		})
	}
}

func TestSQLite_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "phytocheck.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "phytocheck_stock", `[]`))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(ctx, "phytocheck_stock")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)
}
