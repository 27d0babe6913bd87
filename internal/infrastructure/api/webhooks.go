package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Dayzcorp/seep-global/internal/application"
	"github.com/Dayzcorp/seep-global/internal/application/webhook_handlers"
	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxWebhookBodyBytes caps Shopify payloads; large product updates stay well under it
const maxWebhookBodyBytes = 2 << 20

// WebhookHandler receives Shopify webhooks for a single merchant
type WebhookHandler struct {
	merchants  *application.MerchantService
	shopify    ports.ShopifyClient
	dispatcher *webhook_handlers.Dispatcher
	logger     zerolog.Logger
}

// NewWebhookHandler creates a new Shopify webhook endpoint
func NewWebhookHandler(
	merchants *application.MerchantService,
	shopify ports.ShopifyClient,
	dispatcher *webhook_handlers.Dispatcher,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		merchants:  merchants,
		shopify:    shopify,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	merchantID := chi.URLParam(r, "merchantId")
	if merchantID == "" {
		http.Error(w, "merchantId is required", http.StatusBadRequest)
		return
	}

	merchant, err := h.merchants.GetMerchant(ctx, merchantID)
	if err != nil {
		h.logger.Error().Err(err).Str("merchantId", merchantID).Msg("Failed to get merchant for webhook")
		writeError(w, err)
		return
	}

	secret := merchant.Credentials.WebhookSecret
	if secret == "" {
		h.logger.Warn().Str("merchantId", merchantID).Msg("Webhook secret not configured")
		http.Error(w, "Webhook secret not configured", http.StatusBadRequest)
		return
	}

	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn().Str("merchantId", merchantID).Str("topic", topic).Msg("Webhook payload too large")
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Error().Err(err).Msg("Failed to read webhook payload")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(payload))

	if !h.shopify.VerifyWebhook(r, secret) {
		h.logger.Warn().Str("merchantId", merchantID).Str("topic", topic).Msg("Webhook signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	shop := r.Header.Get("X-Shopify-Shop-Domain")
	if shop == "" {
		shop = merchant.StoreDomain
	}

	event := &domain.WebhookEvent{
		Topic:      topic,
		Shop:       shop,
		MerchantID: merchant.ID,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}

	handled, err := h.dispatcher.Dispatch(ctx, event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("merchantId", merchantID).
			Msg("Failed to dispatch webhook event")
		// 500 makes Shopify retry the delivery
		http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{
		"received": true,
		"handled":  handled,
	})
}
