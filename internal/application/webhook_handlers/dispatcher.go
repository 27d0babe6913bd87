package webhook_handlers

import (
	"context"
	"fmt"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/rs/zerolog"
)

// Handler processes webhook events for the topics it accepts
type Handler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// Dispatcher routes a webhook event to every handler that accepts its topic
type Dispatcher struct {
	handlers []Handler
	logger   zerolog.Logger
}

// NewDispatcher creates a new webhook dispatcher
func NewDispatcher(logger zerolog.Logger, handlers ...Handler) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
		logger:   logger,
	}
}

// Dispatch runs the matching handlers and reports whether any accepted the topic
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	handled := false
	for _, h := range d.handlers {
		if !h.CanHandle(event.Topic) {
			continue
		}
		handled = true
		if err := h.Handle(ctx, event); err != nil {
			return true, fmt.Errorf("failed to handle %s webhook: %w", event.Topic, err)
		}
	}

	if !handled {
		d.logger.Debug().
			Str("topic", event.Topic).
			Str("merchantId", event.MerchantID).
			Msg("No handler for webhook topic")
	}
	return handled, nil
}
