package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// MemorySessionStore is the single-process session store
type MemorySessionStore struct {
	mu    sync.Mutex
	carts map[string]map[string]time.Time // merchant -> session -> flagged at
}

// NewMemorySessionStore creates an in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{carts: make(map[string]map[string]time.Time)}
}

func (s *MemorySessionStore) MarkAbandonedCart(ctx context.Context, merchantID, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, ok := s.carts[merchantID]
	if !ok {
		sessions = make(map[string]time.Time)
		s.carts[merchantID] = sessions
	}
	sessions[sessionID] = at
	return nil
}

func (s *MemorySessionStore) ListAbandonedCarts(ctx context.Context, merchantID string, since time.Time) ([]domain.CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var carts []domain.CartSession
	for sessionID, at := range s.carts[merchantID] {
		if at.Before(since) {
			continue
		}
		carts = append(carts, domain.CartSession{SessionID: sessionID, MerchantID: merchantID, FlaggedAt: at.UTC()})
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].FlaggedAt.Before(carts[j].FlaggedAt) })
	return carts, nil
}

// MemorySyncLock is a process-local per-merchant lock
type MemorySyncLock struct {
	mu   sync.Mutex
	held map[string]time.Time // merchant -> expiry
}

// NewMemorySyncLock creates an in-memory sync lock
func NewMemorySyncLock() *MemorySyncLock {
	return &MemorySyncLock{held: make(map[string]time.Time)}
}

func (l *MemorySyncLock) TryLock(ctx context.Context, merchantID string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if exp, ok := l.held[merchantID]; ok && now.Before(exp) {
		return nil, false, nil
	}
	expiry := now.Add(ttl)
	l.held[merchantID] = expiry

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[merchantID] == expiry {
			delete(l.held, merchantID)
		}
	}
	return release, true, nil
}

// MemoryOutcomeCounter keeps outcome totals in process
type MemoryOutcomeCounter struct {
	mu     sync.Mutex
	totals domain.OutcomeTotals
}

// NewMemoryOutcomeCounter creates an in-memory outcome counter
func NewMemoryOutcomeCounter() *MemoryOutcomeCounter {
	return &MemoryOutcomeCounter{}
}

func (c *MemoryOutcomeCounter) RecordOutcome(ctx context.Context, success bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.totals.Success++
	} else {
		c.totals.Failure++
	}
	return nil
}

func (c *MemoryOutcomeCounter) Totals(ctx context.Context) (domain.OutcomeTotals, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals, nil
}
