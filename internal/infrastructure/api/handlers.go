package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Dayzcorp/seep-global/internal/application"
	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/rs/zerolog"
)

const (
	maxChatBodyBytes    = 64 << 10
	abandonedCartWindow = 24 * time.Hour
	syncStatusQueued    = "queued"
	syncStatusSuccess   = "success"
)

// ProductSyncer runs catalog syncs through the background worker
type ProductSyncer interface {
	Enqueue(merchantID string) error
	SyncNow(ctx context.Context, merchantID string) ([]domain.Product, error)
}

// Handlers serves the widget and merchant API
type Handlers struct {
	chat      *application.ChatService
	catalog   *application.CatalogService
	merchants *application.MerchantService
	syncs     ProductSyncer
	logger    zerolog.Logger
}

// NewHandlers creates the API handlers
func NewHandlers(
	chat *application.ChatService,
	catalog *application.CatalogService,
	merchants *application.MerchantService,
	syncs ProductSyncer,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		chat:      chat,
		catalog:   catalog,
		merchants: merchants,
		syncs:     syncs,
		logger:    logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type productView struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	URL         string `json:"url"`
	Image       string `json:"image"`
}

type syncResponse struct {
	Status   string        `json:"status"`
	Count    int           `json:"count"`
	Products []productView `json:"products"`
}

type rescrapeResponse struct {
	Status string `json:"status"`
	Added  int    `json:"added"`
}

type abandonedCartsResponse struct {
	Since    time.Time            `json:"since"`
	Sessions []domain.CartSession `json:"sessions"`
}

func toProductViews(products []domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			URL:         p.URL,
			Image:       p.ImageURL,
		})
	}
	return views
}

// Chat streams the assistant reply as text/plain
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "request body must be JSON"})
		return
	}

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = r.Header.Get("Origin")
	}

	session, err := h.chat.Open(ctx, application.ChatRequest{
		MerchantID: domain.GetMerchantIDFromContext(ctx),
		SessionID:  domain.GetSessionIDFromContext(ctx),
		Message:    body.Message,
		Referer:    referer,
	})
	if err != nil {
		h.logger.Warn().Err(err).
			Str("merchantId", domain.GetMerchantIDFromContext(ctx)).
			Msg("Chat request rejected")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	emit := func(text string) error {
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	if err := session.Stream(ctx, emit); err != nil {
		h.logger.Debug().Err(err).
			Str("merchantId", domain.GetMerchantIDFromContext(ctx)).
			Msg("Chat stream ended early")
	}
}

// SyncProducts refreshes the merchant's catalog. With ?async=true the sync is
// queued and 202 is returned immediately.
func (h *Handlers) SyncProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID := domain.GetMerchantIDFromContext(ctx)

	if _, err := h.merchants.GetMerchant(ctx, merchantID); err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("async") == "true" {
		if err := h.syncs.Enqueue(merchantID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, syncResponse{Status: syncStatusQueued, Products: []productView{}})
		return
	}

	products, err := h.syncs.SyncNow(ctx, merchantID)
	if err != nil {
		h.logger.Error().Err(err).Str("merchantId", merchantID).Msg("Product sync failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Status:   syncStatusSuccess,
		Count:    len(products),
		Products: toProductViews(products),
	})
}

// RescrapeProducts fetches the catalog again and adds only products not seen before
func (h *Handlers) RescrapeProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID := domain.GetMerchantIDFromContext(ctx)

	added, err := h.catalog.Rescrape(ctx, merchantID)
	if err != nil {
		h.logger.Error().Err(err).Str("merchantId", merchantID).Msg("Product rescrape failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rescrapeResponse{Status: syncStatusSuccess, Added: added})
}

// ListProducts returns the stored catalog
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.catalog.ListProducts(ctx, domain.GetMerchantIDFromContext(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductViews(products))
}

// GetUsage returns the current month's usage against the plan limit
func (h *Handlers) GetUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.merchants.GetUsage(ctx, domain.GetMerchantIDFromContext(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListAbandonedCarts returns sessions flagged with cart intent in the last 24 hours
func (h *Handlers) ListAbandonedCarts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID := domain.GetMerchantIDFromContext(ctx)

	sessions, err := h.chat.AbandonedCarts(ctx, merchantID, abandonedCartWindow)
	if err != nil {
		writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []domain.CartSession{}
	}
	writeJSON(w, http.StatusOK, abandonedCartsResponse{
		Since:    time.Now().UTC().Add(-abandonedCartWindow),
		Sessions: sessions,
	})
}

// GetOutcomes returns the global chat success and failure totals
func (h *Handlers) GetOutcomes(w http.ResponseWriter, r *http.Request) {
	totals, err := h.chat.OutcomeTotals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
