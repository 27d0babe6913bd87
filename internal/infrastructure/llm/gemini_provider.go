package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultGeminiModel is used when LLM_PROVIDER=gemini and no model is set
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider streams completions from Google Gemini
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

// NewGeminiProvider creates a Gemini streaming provider
func NewGeminiProvider(ctx context.Context, apiKey, model string, logger zerolog.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model, logger: logger}, nil
}

func (p *GeminiProvider) Stream(ctx context.Context, req ports.CompletionRequest) (<-chan ports.StreamEvent, error) {
	// GenerativeModel is mutable; one per request keeps concurrent chats apart
	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemMessage(req))},
	}
	iter := model.GenerateContentStream(ctx, genai.Text(req.Message))

	events := make(chan ports.StreamEvent)
	go func() {
		defer close(events)
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				send(ctx, events, ports.StreamEvent{Err: classifyGeminiError(err)})
				return
			}
			text := extractText(resp)
			if text == "" {
				continue
			}
			if !send(ctx, events, ports.StreamEvent{Text: text}) {
				return
			}
		}
	}()
	return events, nil
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}

func classifyGeminiError(err error) *domain.ProviderError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &domain.ProviderError{Kind: kindForStatus(gerr.Code), Err: err}
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return &domain.ProviderError{Kind: domain.ProviderErrorAuth, Err: err}
		case codes.ResourceExhausted:
			return &domain.ProviderError{Kind: domain.ProviderErrorRateLimit, Err: err}
		}
	}
	return &domain.ProviderError{Kind: domain.ProviderErrorOther, Err: err}
}
