package ports

import (
	"context"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// ProductRepository defines the interface for catalog persistence
type ProductRepository interface {
	// ListByMerchant returns the merchant's catalog in stored order
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error)

	// ReplaceCatalog atomically swaps the merchant's catalog for products
	ReplaceCatalog(ctx context.Context, merchantID string, products []domain.Product) error

	// InsertMissing inserts products whose URL is not yet stored and returns how many were added
	InsertMissing(ctx context.Context, merchantID string, products []domain.Product) (int, error)
}

// UsageRepository defines the interface for per-month usage counters
type UsageRepository interface {
	// Get returns the stored record for (merchantID, month), nil when absent
	Get(ctx context.Context, merchantID, month string) (*domain.UsageRecord, error)

	// Increment atomically adds to the (merchantID, month) counters, creating the row if needed
	Increment(ctx context.Context, merchantID, month string, tokens, requests int64) (*domain.UsageRecord, error)
}

// FaqRepository defines the interface for FAQ lookup
type FaqRepository interface {
	// List returns FAQ entries in insertion order
	List(ctx context.Context) ([]domain.FaqEntry, error)
}

// ChatLogRepository defines the interface for the append-only chat log
type ChatLogRepository interface {
	Append(ctx context.Context, entry *domain.ChatLogEntry) error
}
