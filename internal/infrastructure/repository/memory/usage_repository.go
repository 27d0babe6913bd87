package memory

import (
	"context"
	"sync"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"
)

type usageKey struct {
	merchantID string
	month      string
}

type usageRepository struct {
	mu      sync.Mutex
	records map[usageKey]domain.UsageRecord
}

// NewUsageRepository creates an in-memory usage repository
func NewUsageRepository() ports.UsageRepository {
	return &usageRepository{records: make(map[usageKey]domain.UsageRecord)}
}

func (r *usageRepository) Get(ctx context.Context, merchantID, month string) (*domain.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[usageKey{merchantID, month}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *usageRepository) Increment(ctx context.Context, merchantID, month string, tokens, requests int64) (*domain.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := usageKey{merchantID, month}
	rec, ok := r.records[key]
	if !ok {
		rec = domain.UsageRecord{MerchantID: merchantID, Month: month}
	}
	rec.Tokens += tokens
	rec.Requests += requests
	r.records[key] = rec
	return &rec, nil
}
