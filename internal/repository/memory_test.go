package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_DropsExpiredLeases(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	for _, key := range []string{"date:2030-06-01", "date:2030-06-02", "date:2030-06-03"} {
		_, ok, err := locker.TryAcquire(ctx, key, time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)
	}
	time.Sleep(5 * time.Millisecond)

	token, ok, err := locker.TryAcquire(ctx, "date:2030-06-04", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	locker.mu.Lock()
	assert.Len(t, locker.leases, 1)
	locker.mu.Unlock()

	_, ok, err = locker.TryAcquire(ctx, "date:2030-06-04", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "date:2030-06-04", token))
	locker.mu.Lock()
	assert.Empty(t, locker.leases)
	locker.mu.Unlock()
}
