package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestQueue_PushPop(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "test_email_queue")
	ctx := context.Background()

	msg := &EmailMessage{
		Kind:     EmailKindVerification,
		To:       "user@example.com",
		Username: "somchai",
		Code:     "abc123",
	}

	require.NoError(t, q.Push(ctx, msg))

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, EmailKindVerification, got.Kind)
	assert.Equal(t, "user@example.com", got.To)
	assert.Equal(t, "abc123", got.Code)
}

func TestQueue_FIFOOrder(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "test_email_queue")
	ctx := context.Background()

	for _, to := range []string{"first@example.com", "second@example.com", "third@example.com"} {
		require.NoError(t, q.Push(ctx, &EmailMessage{Kind: EmailKindWelcome, To: to}))
	}

	for _, want := range []string{"first@example.com", "second@example.com", "third@example.com"} {
		got, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got.To)
	}
}

func TestQueue_PopTimeout(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "test_email_queue")

	got, err := q.Pop(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}
