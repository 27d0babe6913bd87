package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/rs/zerolog"
)

// SyncEnqueuer schedules a background catalog sync
type SyncEnqueuer interface {
	Enqueue(merchantID string) error
}

// ProductHandler resyncs the merchant catalog when Shopify reports a product change
type ProductHandler struct {
	syncs  SyncEnqueuer
	logger zerolog.Logger
}

// NewProductHandler creates a new product webhook handler
func NewProductHandler(syncs SyncEnqueuer, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		syncs:  syncs,
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ProductHandler) CanHandle(topic string) bool {
	return topic == "products/create" ||
		topic == "products/update" ||
		topic == "products/delete"
}

// Handle processes a product webhook event
func (h *ProductHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var product struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Handle string `json:"handle"`
	}
	if err := json.Unmarshal(event.Payload, &product); err != nil {
		return fmt.Errorf("failed to parse product webhook payload: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Str("merchantId", event.MerchantID).
		Int64("productId", product.ID).
		Str("title", product.Title).
		Msg("Product changed, scheduling catalog resync")

	if err := h.syncs.Enqueue(event.MerchantID); err != nil {
		return fmt.Errorf("failed to enqueue catalog sync: %w", err)
	}
	return nil
}
