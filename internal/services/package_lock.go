package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"app-builder-api/internal/apperrors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes work on a single package across concurrent requests.
// The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

const (
	defaultLockTTL   = 30 * time.Second
	lockPollInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker provides package locks shared by every instance using the
// same Redis.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a Redis backed locker. Locks expire after ttl so a
// crashed holder cannot block a package forever.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Lock polls SET NX until the lock is acquired or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := fmt.Sprintf("package_lock:%s", key)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: acquire lock for %s: %v", apperrors.ErrStorage, key, err)
		}
		if ok {
			return func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				releaseScript.Run(ctx, l.client, []string{redisKey}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: acquire lock for %s: %v", apperrors.ErrStorage, key, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

// LocalLocker provides package locks within a single process
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

// Lock blocks until the lock for key is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &localLock{sem: make(chan struct{}, 1)}
		l.locks[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-lk.sem
				l.unref(key, lk)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, lk)
		return nil, fmt.Errorf("%w: acquire lock for %s: %v", apperrors.ErrStorage, key, ctx.Err())
	}
}

func (l *LocalLocker) unref(key string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
}
