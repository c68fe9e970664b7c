package repository

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockLocker) Release(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}

func TestFailoverLocker(t *testing.T) {
	primary := new(mockLocker)
	fallback := NewMemoryLocker()
	logger := zerolog.New(io.Discard)
	locker := NewFailoverLocker(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("TryAcquire", ctx, "a", time.Second).Return("tok-a", true, nil).Once()
		primary.On("Release", ctx, "a", "tok-a").Return(nil).Once()

		token, ok, err := locker.TryAcquire(ctx, "a", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok-a", token)

		require.NoError(t, locker.Release(ctx, "a", token))
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailureUsesFallback", func(t *testing.T) {
		primary.On("TryAcquire", ctx, "b", time.Second).Return("", false, errors.New("redis down")).Once()

		token, ok, err := locker.TryAcquire(ctx, "b", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, locker.isDown.Load())

		// while down the primary is not consulted
		_, ok, err = locker.TryAcquire(ctx, "b", time.Second)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, locker.Release(ctx, "b", token))
		primary.AssertExpectations(t)
	})

	t.Run("Recovery", func(t *testing.T) {
		locker.mu.Lock()
		locker.lastCheck = time.Now().Add(-2 * recoveryInterval)
		locker.mu.Unlock()

		primary.On("TryAcquire", ctx, "c", time.Second).Return("tok-c", true, nil).Once()

		token, ok, err := locker.TryAcquire(ctx, "c", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok-c", token)
		assert.False(t, locker.isDown.Load())
		primary.AssertExpectations(t)
	})
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()

	t.Run("Serializes", func(t *testing.T) {
		locker := NewMemoryLocker()
		var inside, maxInside int32
		var wg sync.WaitGroup

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := WithLock(ctx, locker, "day", time.Second, 2*time.Second, func(context.Context) error {
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					atomic.AddInt32(&inside, -1)
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside)
	})

	t.Run("Timeout", func(t *testing.T) {
		locker := NewMemoryLocker()
		_, ok, _ := locker.TryAcquire(ctx, "busy", time.Minute)
		require.True(t, ok)

		called := false
		err := WithLock(ctx, locker, "busy", time.Second, 50*time.Millisecond, func(context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrLockTimeout)
		assert.False(t, called)
	})

	t.Run("PropagatesError", func(t *testing.T) {
		locker := NewMemoryLocker()
		boom := errors.New("boom")
		err := WithLock(ctx, locker, "x", time.Second, time.Second, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)

		_, ok, _ := locker.TryAcquire(ctx, "x", time.Second)
		assert.True(t, ok, "lease released after fn")
	})
}
