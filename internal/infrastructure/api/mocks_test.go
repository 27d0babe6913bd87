package api

import (
	"context"
	"sync"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"
)

// MockSyncer implements ProductSyncer
type MockSyncer struct {
	mu          sync.Mutex
	Enqueued    []string
	EnqueueFunc func(merchantID string) error
	SyncNowFunc func(ctx context.Context, merchantID string) ([]domain.Product, error)
}

func (m *MockSyncer) Enqueue(merchantID string) error {
	m.mu.Lock()
	m.Enqueued = append(m.Enqueued, merchantID)
	m.mu.Unlock()
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(merchantID)
	}
	return nil
}

func (m *MockSyncer) SyncNow(ctx context.Context, merchantID string) ([]domain.Product, error) {
	if m.SyncNowFunc != nil {
		return m.SyncNowFunc(ctx, merchantID)
	}
	return nil, nil
}

func (m *MockSyncer) enqueued() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Enqueued...)
}

// MockProvider streams a fixed reply
type MockProvider struct {
	Fragments []string
}

func (m *MockProvider) Stream(ctx context.Context, req ports.CompletionRequest) (<-chan ports.StreamEvent, error) {
	events := make(chan ports.StreamEvent, len(m.Fragments))
	for _, f := range m.Fragments {
		events <- ports.StreamEvent{Text: f}
	}
	close(events)
	return events, nil
}

// MockSource implements ports.ProductSource
type MockSource struct {
	Products []domain.Product
	Err      error
}

func (m *MockSource) StoreType() domain.StoreType {
	return domain.StoreTypeShopify
}

func (m *MockSource) FetchProducts(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error) {
	return m.Products, m.Err
}
