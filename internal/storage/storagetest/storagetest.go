// Package storagetest holds the behavioural checks every storage.KV
// implementation must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregoftheweb/nightland/internal/storage"
)

// Run exercises kv against the KV contract. kv must start empty.
func Run(t *testing.T, kv storage.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := kv.Get(ctx, "absent")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "a", []byte("one")))
		require.NoError(t, kv.Set(ctx, "a", []byte("two")))
		got, err := kv.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "gone", []byte("x")))
		require.NoError(t, kv.Delete(ctx, "gone"))
		_, err := kv.Get(ctx, "gone")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, kv.Delete(ctx, "gone"))
	})

	t.Run("keys by prefix", func(t *testing.T) {
		for _, k := range []string{"ns:b", "ns:a", "other:c", "ns_:d"} {
			require.NoError(t, kv.Set(ctx, k, []byte("v")))
		}
		keys, err := kv.Keys(ctx, "ns:")
		require.NoError(t, err)
		assert.Equal(t, []string{"ns:a", "ns:b"}, keys)

		none, err := kv.Keys(ctx, "nothing:")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("binary values", func(t *testing.T) {
		val := []byte{0, 1, 2, 255}
		require.NoError(t, kv.Set(ctx, "bin", val))
		got, err := kv.Get(ctx, "bin")
		require.NoError(t, err)
		assert.Equal(t, val, got)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, kv.Ping(ctx))
	})
}
