// Package kvtest holds the behaviour every ports.KeyValueStore backend must share.
package kvtest

import (
	"context"
	"testing"

	"ideaboard/application/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContract verifies that store behaves like a durable single-key record store.
func RunContract(t *testing.T, store ports.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Missing", func(t *testing.T) {
		_, err := store.Get(ctx, "kvtest.missing")
		assert.ErrorIs(t, err, ports.ErrKeyNotFound)
	})

	t.Run("Set_Then_Get", func(t *testing.T) {
		value := []byte(`[{"id":"1","content":"Idea A","x":1,"y":2}]`)
		require.NoError(t, store.Set(ctx, "kvtest.nodes", value))

		got, err := store.Get(ctx, "kvtest.nodes")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("Set_Overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest.overwrite", []byte("first")))
		require.NoError(t, store.Set(ctx, "kvtest.overwrite", []byte("second")))

		got, err := store.Get(ctx, "kvtest.overwrite")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("Empty_Value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest.empty", []byte{}))

		got, err := store.Get(ctx, "kvtest.empty")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Keys_Are_Independent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest.a", []byte("a")))
		require.NoError(t, store.Set(ctx, "kvtest.b", []byte("b")))

		a, err := store.Get(ctx, "kvtest.a")
		require.NoError(t, err)
		b, err := store.Get(ctx, "kvtest.b")
		require.NoError(t, err)
		assert.Equal(t, "a", string(a))
		assert.Equal(t, "b", string(b))
	})
}
