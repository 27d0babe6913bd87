package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"
)

type merchantRepository struct {
	mu        sync.RWMutex
	merchants map[string]domain.Merchant
}

// MerchantRepository is the in-memory merchant store
type MerchantRepository interface {
	ports.MerchantRepository
	Save(ctx context.Context, merchant *domain.Merchant) error
}

// NewMerchantRepository creates an in-memory merchant repository
func NewMerchantRepository() MerchantRepository {
	return &merchantRepository{merchants: make(map[string]domain.Merchant)}
}

// Save inserts or replaces a merchant
func (r *merchantRepository) Save(ctx context.Context, merchant *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := *merchant
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if m.ProductSyncStatus == "" {
		m.ProductSyncStatus = domain.SyncStatusIdle
	}
	r.merchants[m.ID] = m
	return nil
}

func (r *merchantRepository) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *merchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.merchants {
		if m.APIKey != "" && m.APIKey == apiKey {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *merchantRepository) ListSyncable(ctx context.Context) ([]*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Merchant, 0, len(r.merchants))
	for _, m := range r.merchants {
		m := m
		if m.HasStoreIntegration() {
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *merchantRepository) UpdateSyncStatus(ctx context.Context, id string, status domain.SyncStatus, lastSynced *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.merchants[id]
	if !ok {
		return domain.ErrMerchantNotFound
	}
	m.ProductSyncStatus = status
	if lastSynced != nil {
		t := *lastSynced
		m.ProductLastSynced = &t
	}
	m.UpdatedAt = time.Now().UTC()
	r.merchants[id] = m
	return nil
}
