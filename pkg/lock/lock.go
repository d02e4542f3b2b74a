// Package lock serializes work per key, either inside one process or across
// instances through Redis.
package lock

import (
	"context"
	"errors"
	"julekalender_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrLockTimeout = errors.New("lock: timed out waiting for key")

// Locker acquires an exclusive lock for key. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type keyedEntry struct {
	held chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker. Entries are dropped once no goroutine
// holds or waits for them. Wait, when set, bounds how long Lock blocks.
type KeyedMutex struct {
	Wait time.Duration

	mu      sync.Mutex
	entries map[string]*keyedEntry
}

func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{Wait: wait, entries: make(map[string]*keyedEntry)}
}

// Lock blocks until key is free, ctx is done or Wait elapses. Giving up
// after Wait yields ErrLockTimeout; a done ctx yields ctx.Err().
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{held: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	var timeout <-chan time.Time
	if k.Wait > 0 {
		timer := time.NewTimer(k.Wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case e.held <- struct{}{}:
	case <-ctx.Done():
		k.drop(key, e)
		return nil, ctx.Err()
	case <-timeout:
		k.drop(key, e)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.held
			k.drop(key, e)
		})
	}, nil
}

func (k *KeyedMutex) drop(key string, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock. TTL bounds how long a crashed holder can
// block the key; Wait bounds how long Lock polls before giving up.
type RedisLocker struct {
	Redis  *redis.Client
	Prefix string
	TTL    time.Duration
	Wait   time.Duration
	Poll   time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		Redis:  rdb,
		Prefix: prefix,
		TTL:    ttl,
		Wait:   wait,
		Poll:   25 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.Prefix + key
	token := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, l.Wait)
	defer cancel()

	ticker := time.NewTicker(l.Poll)
	defer ticker.Stop()

	for {
		ok, err := l.Redis.SetNX(ctx, redisKey, token, l.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// release drops the key if we still own it. A failed release only costs the
// remaining TTL, so it is logged and not returned.
func (l *RedisLocker) release(redisKey, token string) {
	if err := releaseScript.Run(context.Background(), l.Redis, []string{redisKey}, token).Err(); err != nil {
		logger.Log.Warn("Failed to release lock", zap.String("key", redisKey), zap.Error(err))
	}
}
