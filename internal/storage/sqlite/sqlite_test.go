package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregoftheweb/nightland/internal/storage/sqlite"
	"github.com/gregoftheweb/nightland/internal/storage/storagetest"
)

func openKV(t *testing.T, path string) *sqlite.KV {
	t.Helper()
	kv, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

// TestKV verifies the SQLite store honours the KV contract.
func TestKV(t *testing.T) {
	storagetest.Run(t, openKV(t, filepath.Join(t.TempDir(), "saves.db")))
}

// TestKV_PersistsAcrossReopen verifies entries survive closing the database.
func TestKV_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves.db")

	first, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "nightland:save:current:v1", []byte(`{"version":"v1"}`)))
	require.NoError(t, first.Close())

	second := openKV(t, path)
	got, err := second.Get(ctx, "nightland:save:current:v1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":"v1"}`, string(got))
}

// TestKV_PercentPrefix verifies LIKE wildcards in a prefix are matched literally.
func TestKV_PercentPrefix(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t, filepath.Join(t.TempDir(), "saves.db"))

	require.NoError(t, kv.Set(ctx, "50%:a", []byte("x")))
	require.NoError(t, kv.Set(ctx, "500:b", []byte("y")))

	keys, err := kv.Keys(ctx, "50%:")
	require.NoError(t, err)
	assert.Equal(t, []string{"50%:a"}, keys)
}

// TestOpen_BlankPath verifies a blank path is rejected.
func TestOpen_BlankPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "  ")
	assert.Error(t, err)
}
