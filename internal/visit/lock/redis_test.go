package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "visitflow/pkg/domain"
	"visitflow/pkg/platform/sentinel"
)

func setupRedisLock(t *testing.T, opts ...RedisOption) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewRedis(client, append([]RedisOption{WithRetryInterval(5 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	return mr, l
}

func TestNewRedis_RequiresClient(t *testing.T) {
	_, err := NewRedis(nil)
	require.Error(t, err)
}

func TestRedis_LockAndRelease(t *testing.T) {
	mr, l := setupRedisLock(t)
	visitor := id.NewVisitorID()

	unlock, err := l.Lock(context.Background(), visitor)
	require.NoError(t, err)
	assert.True(t, mr.Exists(defaultKeyPrefix+visitor.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, visitor)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists(defaultKeyPrefix+visitor.String()))

	again, err := l.Lock(context.Background(), visitor)
	require.NoError(t, err)
	again()
}

func TestRedis_ReleaseKeepsForeignToken(t *testing.T) {
	mr, l := setupRedisLock(t, WithTTL(time.Second))
	visitor := id.NewVisitorID()
	key := defaultKeyPrefix + visitor.String()

	unlock, err := l.Lock(context.Background(), visitor)
	require.NoError(t, err)

	// The lease expired and another holder took over.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(key, "someone-else"))

	unlock()
	value, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestRedis_UnavailableBackend(t *testing.T) {
	mr, l := setupRedisLock(t)
	mr.Close()

	_, err := l.Lock(context.Background(), id.NewVisitorID())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestRedis_KeyPrefixOption(t *testing.T) {
	mr, l := setupRedisLock(t, WithKeyPrefix("test:"))
	visitor := id.NewVisitorID()

	unlock, err := l.Lock(context.Background(), visitor)
	require.NoError(t, err)
	defer unlock()
	assert.True(t, mr.Exists("test:"+visitor.String()))
}

func TestRedis_LeaseRenewedWhileHeld(t *testing.T) {
	mr, l := setupRedisLock(t, WithTTL(300*time.Millisecond))
	visitor := id.NewVisitorID()
	key := defaultKeyPrefix + visitor.String()

	unlock, err := l.Lock(context.Background(), visitor)
	require.NoError(t, err)

	// Advance well past the TTL in steps shorter than it, letting the holder renew in between.
	for range 5 {
		mr.FastForward(200 * time.Millisecond)
		require.True(t, mr.Exists(key), "lease expired while still held")
		require.Eventually(t, func() bool {
			return mr.TTL(key) > 200*time.Millisecond
		}, time.Second, 5*time.Millisecond, "lease was not renewed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, visitor)
	require.ErrorIs(t, err, context.DeadlineExceeded, "a second holder must not get the visitor while the first renews")

	unlock()
	assert.False(t, mr.Exists(key))
}

func TestRedis_RenewalStopsAfterUnlock(t *testing.T) {
	mr, l := setupRedisLock(t, WithTTL(90*time.Millisecond))
	visitor := id.NewVisitorID()
	key := defaultKeyPrefix + visitor.String()

	unlock, err := l.Lock(context.Background(), visitor)
	require.NoError(t, err)
	unlock()

	// Another holder takes the key; the released holder must not extend it.
	require.NoError(t, mr.Set(key, "someone-else"))
	mr.SetTTL(key, 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, mr.TTL(key))
}
