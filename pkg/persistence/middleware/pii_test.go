package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
)

func TestPIIMask_Masking(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	store := middleware.NewPIIMask([]string{"(?i)password", "(?i)ssn"})(backing)

	values := map[string]any{
		"user":     "alice",
		"password": "hunter2",
		"profile": map[string]any{
			"SSN":  "123-45-6789",
			"city": "Lisbon",
		},
	}
	require.NoError(t, store.Save(ctx, "s1", values))

	loaded, err := backing.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded["user"])
	assert.Equal(t, "***", loaded["password"])
	profile := loaded["profile"].(map[string]any)
	assert.Equal(t, "***", profile["SSN"])
	assert.Equal(t, "Lisbon", profile["city"])

	// The caller's map must not be mutated.
	assert.Equal(t, "hunter2", values["password"])
	assert.Equal(t, "123-45-6789", values["profile"].(map[string]any)["SSN"])
}

func TestPIIMask_Chain(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()

	store := middleware.Chain(backing,
		middleware.NewPIIMask([]string{"token"}),
		middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: testKey(9)}),
	)

	require.NoError(t, store.Save(ctx, "s1", map[string]any{"token": "abc", "user": "bob"}))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded["token"], "masking runs before encryption")
	assert.Equal(t, "bob", loaded["user"])
}
