package lock

import (
	"context"
	"julekalender_backend/pkg/logger"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex(0)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(context.Background(), "user:1:task:1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := NewKeyedMutex(0)

	unlockA, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := km.Lock(context.Background(), "b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestKeyedMutex_UnlockIsIdempotent(t *testing.T) {
	km := NewKeyedMutex(0)

	unlock, err := km.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	unlock()

	assert.Equal(t, 0, km.Len())

	unlock, err = km.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
}

func TestKeyedMutex_GivesUpAfterWait(t *testing.T) {
	km := NewKeyedMutex(20 * time.Millisecond)

	unlock, err := km.Lock(context.Background(), "k")
	require.NoError(t, err)

	start := time.Now()
	_, err = km.Lock(context.Background(), "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, km.Len())

	unlock()
	assert.Equal(t, 0, km.Len())

	unlock, err = km.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
}

func TestKeyedMutex_HonoursContext(t *testing.T) {
	km := NewKeyedMutex(0)

	unlock, err := km.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := km.Lock(ctx, "k")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Lock ignored a cancelled context")
	}
}

func TestKeyedMutex_HandsOverToWaiter(t *testing.T) {
	km := NewKeyedMutex(time.Second)

	unlock, err := km.Lock(context.Background(), "k")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		next, err := km.Lock(context.Background(), "k")
		if err == nil {
			next()
		}
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never got the lock")
	}
	assert.Equal(t, 0, km.Len())
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisLocker_FailsFastWhenRedisIsDown(t *testing.T) {
	l := NewRedisLocker(unreachableRedis(t), "test:lock:", time.Second, time.Second)

	start := time.Now()
	unlock, err := l.Lock(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
	assert.Nil(t, unlock)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRedisLocker_LogsFailedRelease(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	l := NewRedisLocker(unreachableRedis(t), "test:lock:", time.Second, time.Second)
	l.release("test:lock:k", "token")

	entries := logs.FilterMessage("Failed to release lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "test:lock:k", entries[0].ContextMap()["key"])
}
