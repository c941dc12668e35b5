package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, store.SetPendingIntent(ctx, "s1", "claim_count"))
	got, err = store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "claim_count", got)

	// Sessions are isolated.
	got, err = store.GetPendingIntent(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, store.ClearPendingIntent(ctx, "s1"))
	got, err = store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	// Two racing turns for the same session: the slot is a single value
	// with no version tracking, so whichever write lands last is kept.
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetPendingIntent(ctx, "s1", "claim_count"))
	require.NoError(t, store.SetPendingIntent(ctx, "s1", "claim_list"))

	got, err := store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "claim_list", got)
}

func redisFixture(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), time.Minute, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return mr, store
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, store := redisFixture(t)
	ctx := context.Background()

	got, err := store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, store.SetPendingIntent(ctx, "s1", "claim_count"))
	got, err = store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "claim_count", got)

	assert.True(t, mr.Exists("assist:pending_intent:s1"))

	require.NoError(t, store.ClearPendingIntent(ctx, "s1"))
	got, err = store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRedisStore_EntriesExpire(t *testing.T) {
	mr, store := redisFixture(t)
	ctx := context.Background()

	require.NoError(t, store.SetPendingIntent(ctx, "s1", "claim_count"))

	mr.FastForward(2 * time.Minute)

	got, err := store.GetPendingIntent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestNewRedisStore_BadURL(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	_, err := NewRedisStore(context.Background(), "not-a-url", time.Minute, logger)
	assert.Error(t, err)
}
