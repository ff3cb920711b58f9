package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	t.Run("Should allow one holder per user", func(t *testing.T) {
		locker := NewLocalLocker()
		var inside, maxInside int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(context.Background(), "u")
				if !assert.NoError(t, err) {
					return
				}
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside)
		assert.Empty(t, locker.locks)
	})

	t.Run("Should not block other users", func(t *testing.T) {
		locker := NewLocalLocker()
		unlockA, err := locker.Lock(context.Background(), "a")
		require.NoError(t, err)
		defer unlockA()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		unlockB, err := locker.Lock(ctx, "b")
		require.NoError(t, err)
		unlockB()
	})

	t.Run("Should give up when the context ends", func(t *testing.T) {
		locker := NewLocalLocker()
		unlock, err := locker.Lock(context.Background(), "u")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, "u")
		require.ErrorIs(t, err, context.DeadlineExceeded)

		unlock()
		unlock() // second call is a no-op
		assert.Empty(t, locker.locks)
	})
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := NewRedisLocker(client, 5*time.Second, nil)
	locker.PollInterval = 5 * time.Millisecond
	return locker, mr
}

func TestRedisLocker(t *testing.T) {
	t.Run("Should set and release the lock key", func(t *testing.T) {
		locker, mr := newRedisLocker(t)
		unlock, err := locker.Lock(context.Background(), "user123")
		require.NoError(t, err)
		assert.True(t, mr.Exists("platewise:lock:user:user123"))
		assert.Equal(t, 5*time.Second, mr.TTL("platewise:lock:user:user123"))

		unlock()
		assert.False(t, mr.Exists("platewise:lock:user:user123"))
	})

	t.Run("Should wait for the current holder", func(t *testing.T) {
		locker, _ := newRedisLocker(t)
		unlock, err := locker.Lock(context.Background(), "u")
		require.NoError(t, err)

		acquired := make(chan struct{})
		go func() {
			unlock2, err := locker.Lock(context.Background(), "u")
			if err == nil {
				close(acquired)
				unlock2()
			}
		}()

		select {
		case <-acquired:
			t.Fatal("second holder acquired the lock early")
		case <-time.After(30 * time.Millisecond):
		}
		unlock()
		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("second holder never acquired the lock")
		}
	})

	t.Run("Should time out while the lock is held", func(t *testing.T) {
		locker, _ := newRedisLocker(t)
		unlock, err := locker.Lock(context.Background(), "u")
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, "u")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Should not release a lock taken over after expiry", func(t *testing.T) {
		locker, mr := newRedisLocker(t)
		unlock, err := locker.Lock(context.Background(), "u")
		require.NoError(t, err)

		mr.FastForward(6 * time.Second)
		require.NoError(t, mr.Set("platewise:lock:user:u", "someone-else"))

		unlock()
		got, err := mr.Get("platewise:lock:user:u")
		require.NoError(t, err)
		assert.Equal(t, "someone-else", got)
	})
}
