package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (SlotLocker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSlotLocker(client, 5*time.Second), mr
}

func TestRedisSlotLockerRuns(t *testing.T) {
	locker, _ := newTestLocker(t)

	ran := false
	err := locker.WithDoctorLock(context.Background(), "doc-1", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRedisSlotLockerContention(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	err := locker.WithDoctorLock(ctx, "doc-1", func(ctx context.Context) error {
		// The lock is held for the duration of fn; a second attempt on the
		// same doctor must be rejected, not queued.
		inner := locker.WithDoctorLock(ctx, "doc-1", func(ctx context.Context) error {
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)

		// A different doctor is independent.
		other := locker.WithDoctorLock(ctx, "doc-2", func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, other)
		return nil
	})
	require.NoError(t, err)
}

func TestRedisSlotLockerReleasesOnReturn(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	wantErr := errors.New("boom")
	err := locker.WithDoctorLock(ctx, "doc-1", func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, mr.Exists("lock:doctor:doc-1"), "lock key is released even on failure")

	err = locker.WithDoctorLock(ctx, "doc-1", func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestLocalSlotLockerSerializes(t *testing.T) {
	locker := NewLocalSlotLocker()
	ctx := context.Background()

	counter := 0
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			_ = locker.WithDoctorLock(ctx, "doc-1", func(ctx context.Context) error {
				counter++
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Equal(t, 10, counter)
}
