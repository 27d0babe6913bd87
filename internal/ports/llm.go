package ports

import (
	"context"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// CompletionRequest is a single-turn chat completion
type CompletionRequest struct {
	System  string
	Context string
	Message string
}

// StreamEvent is one fragment of a streamed completion. A non-nil Err ends the stream.
type StreamEvent struct {
	Text string
	Err  *domain.ProviderError
}

// LLMProvider streams completions from a chat model.
// The returned channel is closed when the stream ends or ctx is cancelled.
type LLMProvider interface {
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error)
}
