package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"
)

// FaqRepository is the in-memory FAQ store
type FaqRepository interface {
	ports.FaqRepository
	Add(ctx context.Context, question, answer string) (*domain.FaqEntry, error)
}

type faqRepository struct {
	mu      sync.RWMutex
	entries []domain.FaqEntry
}

// NewFaqRepository creates an in-memory FAQ repository
func NewFaqRepository() FaqRepository {
	return &faqRepository{}
}

// Add appends a FAQ; questions are unique
func (r *faqRepository) Add(ctx context.Context, question, answer string) (*domain.FaqEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Question == question {
			return nil, fmt.Errorf("faq %q already exists", question)
		}
	}
	entry := domain.FaqEntry{
		ID:        strconv.Itoa(len(r.entries) + 1),
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
	r.entries = append(r.entries, entry)
	return &entry, nil
}

func (r *faqRepository) List(ctx context.Context) ([]domain.FaqEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FaqEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}
