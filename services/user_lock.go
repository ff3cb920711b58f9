package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"platewise_server/logger"
)

// UserLocker serializes read-modify-write cycles on one user's profile
type UserLocker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

// LocalLocker is a keyed mutex for single-replica deployments
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &localLock{sem: make(chan struct{}, 1)}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, entry)
		return nil, fmt.Errorf("waiting for lock on user: %w", ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(userID, entry)
		})
	}, nil
}

func (l *LocalLocker) release(userID string, entry *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, userID)
	}
}

// Deletes the key only while it still holds our token
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a best-effort distributed lock for multi-replica deployments.
// The TTL bounds how long a crashed holder can block other writers.
type RedisLocker struct {
	Client       redis.UniversalClient
	TTL          time.Duration
	PollInterval time.Duration
	Prefix       string
	Log          *logger.Logger
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisLocker{
		Client:       client,
		TTL:          ttl,
		PollInterval: 25 * time.Millisecond,
		Prefix:       "platewise:lock:user:",
		Log:          log,
	}
}

func (r *RedisLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := r.Prefix + userID
	token := uuid.NewString()

	for {
		ok, err := r.Client.SetNX(ctx, key, token, r.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(r.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("waiting for lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be cancelled here.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseLockScript.Run(releaseCtx, r.Client, []string{key}, token).Err(); err != nil {
				r.Log.Warn("Failed to release user lock", "user_id", userID, "error", err)
			}
		})
	}, nil
}
