package llm

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL points the OpenAI-compatible client at OpenRouter
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "deepseek/deepseek-chat-v3-0324:free"
)

// OpenAIProvider streams completions from any OpenAI-compatible endpoint
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIProvider creates an OpenAI-compatible streaming provider
func NewOpenAIProvider(apiKey, baseURL, model string, logger zerolog.Logger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (p *OpenAIProvider) Stream(ctx context.Context, req ports.CompletionRequest) (<-chan ports.StreamEvent, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:  p.model,
		Stream: true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Message},
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	events := make(chan ports.StreamEvent)
	go func() {
		defer close(events)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				send(ctx, events, ports.StreamEvent{Err: classifyOpenAIError(err)})
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !send(ctx, events, ports.StreamEvent{Text: resp.Choices[0].Delta.Content}) {
				return
			}
		}
	}()
	return events, nil
}

func classifyOpenAIError(err error) *domain.ProviderError {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return &domain.ProviderError{Kind: kindForStatus(status), Err: err}
}

func kindForStatus(status int) domain.ProviderErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ProviderErrorAuth
	case http.StatusTooManyRequests:
		return domain.ProviderErrorRateLimit
	default:
		return domain.ProviderErrorOther
	}
}

// systemMessage joins the persona and the grounding context into one system turn
func systemMessage(req ports.CompletionRequest) string {
	if req.Context == "" {
		return req.System
	}
	return req.System + "\n\n" + req.Context
}

// send delivers ev unless ctx is done first
func send(ctx context.Context, ch chan<- ports.StreamEvent, ev ports.StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
