package webhook_handlers

import (
	"context"
	"fmt"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler resets the sync state of a merchant whose Shopify app was removed.
// The stored catalog is kept; onboarding decides what happens to the merchant.
type AppUninstalledHandler struct {
	merchants ports.MerchantRepository
	logger    zerolog.Logger
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(merchants ports.MerchantRepository, logger zerolog.Logger) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		merchants: merchants,
		logger:    logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle processes an app uninstalled webhook event
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	if err := h.merchants.UpdateSyncStatus(ctx, event.MerchantID, domain.SyncStatusIdle, nil); err != nil {
		return fmt.Errorf("failed to reset sync status: %w", err)
	}

	h.logger.Info().
		Str("shop", event.Shop).
		Str("merchantId", event.MerchantID).
		Msg("Shopify app uninstalled, sync status reset")
	return nil
}
