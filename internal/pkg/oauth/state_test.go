package oauth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStateStore(t *testing.T) *StateStore {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStateStore(rdb)
}

func TestStateStore_GenerateAndValidate(t *testing.T) {
	store := setupStateStore(t)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "http://localhost:3000/auth/done")
	require.NoError(t, err)
	assert.Len(t, state, 64) // 32 bytes hex encoded

	redirectURI, err := store.ValidateState(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/auth/done", redirectURI)
}

func TestStateStore_StateConsumedAfterValidation(t *testing.T) {
	store := setupStateStore(t)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "http://localhost/cb")
	require.NoError(t, err)

	_, err = store.ValidateState(ctx, state)
	require.NoError(t, err)

	// 重放被拒绝
	_, err = store.ValidateState(ctx, state)
	assert.Error(t, err)
}

func TestStateStore_InvalidState(t *testing.T) {
	store := setupStateStore(t)

	_, err := store.ValidateState(context.Background(), "never-issued")
	assert.Error(t, err)

	_, err = store.ValidateState(context.Background(), "")
	assert.Error(t, err)
}
