package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests verifying that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	id := "contract-session-" + time.Now().Format("20060102150405.000")

	t.Run("Save and Load", func(t *testing.T) {
		values := map[string]any{
			"user":  "alice",
			"count": 42,
		}

		err := store.Save(ctx, id, values)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "alice", loaded["user"])
		// JSON-backed stores may widen ints to float64; only require presence.
		assert.NotNil(t, loaded["count"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, map[string]any{"user": "bob"}))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "bob", loaded["user"])
		assert.NotContains(t, loaded, "count", "Save should replace previous values")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Touch Non-Existent", func(t *testing.T) {
		err := store.Touch(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, map[string]any{"user": "carol"}))

		err := store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		// Deleting again must not fail.
		assert.NoError(t, store.Delete(ctx, id))
	})
}
