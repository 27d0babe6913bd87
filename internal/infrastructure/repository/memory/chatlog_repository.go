package memory

import (
	"context"
	"sync"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// ChatLogRepository is the in-memory append-only chat log
type ChatLogRepository struct {
	mu      sync.RWMutex
	entries []domain.ChatLogEntry
}

// NewChatLogRepository creates an in-memory chat log
func NewChatLogRepository() *ChatLogRepository {
	return &ChatLogRepository{}
}

func (r *ChatLogRepository) Append(ctx context.Context, entry *domain.ChatLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// Entries returns a copy of the log
func (r *ChatLogRepository) Entries() []domain.ChatLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChatLogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
