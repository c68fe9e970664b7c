package repository

import (
	"context"
	"errors"
	"time"

	"studiodesk/internal/domain"
)

var ErrLockTimeout = errors.New("timed out waiting for lock")

const lockPollInterval = 25 * time.Millisecond

// WithLock runs fn while holding key. It polls until the lease is granted or
// wait elapses. The lease is released with a fresh context so a cancelled
// request does not leave it behind until the TTL.
func WithLock(
	ctx context.Context,
	locker domain.DateLocker,
	key string,
	ttl, wait time.Duration,
	fn func(ctx context.Context) error,
) error {
	deadline := time.Now().Add(wait)
	var token string
	for {
		t, ok, err := locker.TryAcquire(ctx, key, ttl)
		if err != nil {
			return err
		}
		if ok {
			token = t
			break
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = locker.Release(releaseCtx, key, token)
	}()

	return fn(ctx)
}
