package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"studiodesk/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverLocker prefers the primary locker and switches to the fallback
// while the primary errors. Tokens remember which locker issued them.
type FailoverLocker struct {
	primary  domain.DateLocker
	fallback domain.DateLocker
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
	issuedBy  sync.Map // token -> domain.DateLocker
}

func NewFailoverLocker(primary, fallback domain.DateLocker, logger *zerolog.Logger) *FailoverLocker {
	return &FailoverLocker{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverLocker) markDown() {
	f.isDown.Store(true)
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}

func (f *FailoverLocker) shouldRetryPrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) > recoveryInterval {
		f.lastCheck = time.Now()
		return true
	}
	return false
}

func (f *FailoverLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if f.shouldRetryPrimary() {
		token, ok, err := f.primary.TryAcquire(ctx, key, ttl)
		if err == nil {
			if f.isDown.Swap(false) {
				f.logger.Info().Msg("Primary lock store recovered")
			}
			if ok {
				f.issuedBy.Store(token, f.primary)
			}
			return token, ok, nil
		}
		f.logger.Error().Err(err).Msg("Primary lock store failed, falling back to memory")
		f.markDown()
	}

	token, ok, err := f.fallback.TryAcquire(ctx, key, ttl)
	if err == nil && ok {
		f.issuedBy.Store(token, f.fallback)
	}
	return token, ok, err
}

func (f *FailoverLocker) Release(ctx context.Context, key, token string) error {
	v, ok := f.issuedBy.LoadAndDelete(token)
	if !ok {
		return nil
	}
	return v.(domain.DateLocker).Release(ctx, key, token)
}
