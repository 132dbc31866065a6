package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, zap.NewNop()), mr
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	locker, mr := newRedisLocker(t)
	key := LockPrefix + JobScheduledPosts

	lock, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(key))

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists(key))

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ExpiredLockDoesNotReleaseNewHolder(t *testing.T) {
	ctx := context.Background()
	locker, mr := newRedisLocker(t)
	key := LockPrefix + JobDailyAnalytics

	stale, ok, err := locker.TryLock(ctx, key, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	current, err := mr.Get(key)
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	after, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, current, after)
}

func TestRedisLocker_ConnectionError(t *testing.T) {
	locker, mr := newRedisLocker(t)
	mr.Close()

	_, ok, err := locker.TryLock(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	a, ok, err := locker.TryLock(ctx, "a", 0)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = locker.TryLock(ctx, "a", 0)
	assert.False(t, ok)

	_, ok, _ = locker.TryLock(ctx, "b", 0)
	assert.True(t, ok, "keys are independent")

	require.NoError(t, a.Release(ctx))
	_, ok, _ = locker.TryLock(ctx, "a", 0)
	assert.True(t, ok)
}
