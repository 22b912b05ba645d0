package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryption_Contract(t *testing.T) {
	store := middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})(memory.New())

	ports.RunSessionStoreContract(t, store)
}

func TestEncryption_Roundtrip(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	store := middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})(backing)

	require.NoError(t, store.Save(ctx, "s1", map[string]any{"user": "alice", "token": "secret"}))

	// The backing store must only ever see the opaque envelope.
	raw, err := backing.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, raw, 1)
	assert.Contains(t, raw, "__encrypted__")
	assert.NotContains(t, raw, "token")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded["user"])
	assert.Equal(t, "secret", loaded["token"])
}

func TestEncryption_KeyRotation(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()

	oldStore := middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})(backing)
	require.NoError(t, oldStore.Save(ctx, "s1", map[string]any{"user": "alice"}))

	// A rotated store with the old key as fallback still reads old sessions.
	rotated := middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey:    testKey(2),
		FallbackKeys: [][]byte{testKey(1)},
	})(backing)

	loaded, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded["user"])

	// Without the fallback the session is unreadable.
	stranger := middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey: testKey(3),
	})(backing)
	_, err = stranger.Load(ctx, "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt")
}

func TestEncryption_RejectsPlainSessions(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	require.NoError(t, backing.Save(ctx, "s1", map[string]any{"user": "alice"}))

	store := middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})(backing)

	_, err := store.Load(ctx, "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "envelope")
}

func TestEncryption_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
