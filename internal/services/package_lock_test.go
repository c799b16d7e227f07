package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"app-builder-api/internal/apperrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMutualExclusion(t *testing.T, locker Locker) {
	t.Helper()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "com.acme.app")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	assertMutualExclusion(t, NewLocalLocker())
}

func TestLocalLocker_ContextCanceled(t *testing.T) {
	locker := NewLocalLocker()

	unlock, err := locker.Lock(context.Background(), "com.acme.app")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "com.acme.app")
	assert.ErrorIs(t, err, apperrors.ErrStorage)

	unlock()
	unlock()

	locker.mu.Lock()
	assert.Empty(t, locker.locks)
	locker.mu.Unlock()
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalLocker()

	unlockA, err := locker.Lock(context.Background(), "com.a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx, "com.b")
	require.NoError(t, err)
	unlockB()
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	_, client := newTestRedis(t)
	assertMutualExclusion(t, NewRedisLocker(client, time.Second))
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisLocker(client, time.Second)

	unlock, err := locker.Lock(context.Background(), "com.acme.app")
	require.NoError(t, err)

	// Simulate expiry followed by another holder taking the lock
	mr.Set("package_lock:com.acme.app", "someone-else")
	unlock()

	value, err := mr.Get("package_lock:com.acme.app")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestRedisLocker_ContextCanceled(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisLocker(client, time.Second)

	unlock, err := locker.Lock(context.Background(), "com.acme.app")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "com.acme.app")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}
