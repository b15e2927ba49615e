package storage

import (
	"context"
	"testing"
	"time"

	"card_assistant/pkg"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisContextStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	created := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	store := NewRedisContextStore(client, WithKeyPrefix("cardbot:context:"), WithClock(func() time.Time { return created }))

	_, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)
	assert.True(t, mr.Exists("cardbot:context:s1"))
	assert.Equal(t, DefaultContextTTL, mr.TTL("cardbot:context:s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pkg.ActionPaymentConfirmation, got.LastAction)
	assert.True(t, created.Equal(got.CreatedAt))

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestRedisContextStoreExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisContextStore(client)

	_, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)

	mr.FastForward(DefaultContextTTL + time.Second)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisContextStoreClear(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisContextStore(client)

	_, err := store.Set(ctx, "s1", paymentPending())
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "s1"))
	assert.False(t, mr.Exists("context:s1"))

	require.NoError(t, store.Clear(ctx, "unknown"))
}

func TestRedisContextStoreCorruptValue(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisContextStore(client)

	require.NoError(t, mr.Set("context:s1", "{not json"))

	_, err := store.Get(ctx, "s1")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr, _ := setupRedis(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	_, err = NewRedisClient(context.Background(), "")
	assert.Error(t, err)

	_, err = NewRedisClient(context.Background(), "://bad")
	assert.Error(t, err)
}
