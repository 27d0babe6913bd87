package application

import (
	"context"
	"sync"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"
)

// MockSource implements ports.ProductSource
type MockSource struct {
	Type      domain.StoreType
	FetchFunc func(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error)
}

func (m *MockSource) StoreType() domain.StoreType {
	return m.Type
}

func (m *MockSource) FetchProducts(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, merchant)
	}
	return nil, nil
}

// MockRegistry always returns Source, or Err when set
type MockRegistry struct {
	Source ports.ProductSource
	Err    error
}

func (m *MockRegistry) SourceFor(merchant *domain.Merchant) (ports.ProductSource, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Source, nil
}

// RecordingMetrics implements ports.Metrics and remembers every call
type RecordingMetrics struct {
	mu        sync.Mutex
	Chats     []string
	FastPaths []string
	Syncs     []string
}

func (m *RecordingMetrics) ChatCompleted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chats = append(m.Chats, outcome)
}

func (m *RecordingMetrics) FastPathHit(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FastPaths = append(m.FastPaths, kind)
}

func (m *RecordingMetrics) SyncFinished(storeType, status string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Syncs = append(m.Syncs, storeType+":"+status)
}

// MockProvider implements ports.LLMProvider by replaying Events
type MockProvider struct {
	Events    []ports.StreamEvent
	StreamErr error
	// Block keeps the stream open after Events until ctx is cancelled
	Block bool

	mu       sync.Mutex
	Requests []ports.CompletionRequest
}

func (m *MockProvider) Stream(ctx context.Context, req ports.CompletionRequest) (<-chan ports.StreamEvent, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.StreamErr != nil {
		return nil, m.StreamErr
	}

	ch := make(chan ports.StreamEvent)
	go func() {
		defer close(ch)
		for _, ev := range m.Events {
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
		if m.Block {
			<-ctx.Done()
		}
	}()
	return ch, nil
}

func (m *MockProvider) LastRequest() ports.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return ports.CompletionRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}
