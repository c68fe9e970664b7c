package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker is the in-process lease table used when Redis is absent.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]lease
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]lease)}
}

func (m *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.pruneLocked(now)
	if _, ok := m.leases[key]; ok {
		return "", false, nil
	}

	token := uuid.NewString()
	m.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (m *MemoryLocker) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.leases[key]; ok && l.token == token {
		delete(m.leases, key)
	}
	return nil
}

// pruneLocked drops expired leases. The caller holds mu.
func (m *MemoryLocker) pruneLocked(now time.Time) {
	for k, l := range m.leases {
		if !now.Before(l.expiresAt) {
			delete(m.leases, k)
		}
	}
}
