package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired means another request holds the doctor's ledger lock.
var ErrLockNotAcquired = errors.New("doctor ledger lock not acquired")

// SlotLocker serializes ledger mutations for a single doctor. All booking
// paths must run their read-check-write cycle inside WithDoctorLock.
type SlotLocker interface {
	WithDoctorLock(ctx context.Context, docID string, fn func(ctx context.Context) error) error
}

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlotLocker creates a locker backed by a per-doctor Redis key, so
// the single-writer discipline holds across multiple API instances.
func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) SlotLocker {
	return &redisSlotLocker{client: client, ttl: ttl}
}

func (l *redisSlotLocker) WithDoctorLock(ctx context.Context, docID string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:doctor:%s", docID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire doctor lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release doctor lock: %w", err)
	}
	return nil
}

// localSlotLocker serializes per-doctor mutations within a single process.
// Suitable for single-instance deployments and tests.
type localSlotLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalSlotLocker creates an in-process SlotLocker.
func NewLocalSlotLocker() SlotLocker {
	return &localSlotLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localSlotLocker) WithDoctorLock(ctx context.Context, docID string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[docID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[docID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}
