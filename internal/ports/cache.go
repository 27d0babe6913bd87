package ports

import (
	"context"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// SessionStore tracks widget sessions flagged as abandoned-cart candidates
type SessionStore interface {
	MarkAbandonedCart(ctx context.Context, merchantID, sessionID string, at time.Time) error
	ListAbandonedCarts(ctx context.Context, merchantID string, since time.Time) ([]domain.CartSession, error)
}

// SyncLock guards a merchant against concurrent catalog syncs across instances
type SyncLock interface {
	// TryLock returns a release func when the lock was acquired, or ok=false when it is held elsewhere
	TryLock(ctx context.Context, merchantID string, ttl time.Duration) (release func(), ok bool, err error)
}

// OutcomeCounter keeps the global chat success/failure totals
type OutcomeCounter interface {
	RecordOutcome(ctx context.Context, success bool) error
	Totals(ctx context.Context) (domain.OutcomeTotals, error)
}
