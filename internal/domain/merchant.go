package domain

import (
	"net/url"
	"strings"
	"time"
)

// StoreType identifies which catalog source a merchant's products come from
type StoreType string

const (
	StoreTypeShopify     StoreType = "shopify"
	StoreTypeWooCommerce StoreType = "woocommerce"
	StoreTypeCustomHTML  StoreType = "custom_html"
)

// SyncStatus is the state of the merchant's last catalog sync
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// StoreCredentials holds the secrets used to talk to the merchant's store
type StoreCredentials struct {
	StorefrontToken  string // Shopify Storefront API token
	AdminAccessToken string // Shopify Admin API token (OAuth install)
	WooToken         string // WooCommerce bearer token
	ConsumerKey      string
	ConsumerSecret   string
	WebhookSecret    string // Shopify webhook HMAC secret
}

// Merchant is a tenant owning a store integration and a catalog.
// Its lifecycle is managed by onboarding; this service only reads it and
// updates the product sync fields.
type Merchant struct {
	ID          string           `json:"id"`
	APIKey      string           `json:"-"`
	Plan        string           `json:"plan"`
	StoreType   StoreType        `json:"store_type"`
	StoreDomain string           `json:"store_domain"`
	Credentials StoreCredentials `json:"-"`

	// Legacy integration descriptors written by older onboarding flows
	ProductMethod string `json:"product_method,omitempty"`
	APIType       string `json:"api_type,omitempty"`

	SuggestProducts   bool       `json:"suggest_products"`
	ProductSyncStatus SyncStatus `json:"product_sync_status"`
	ProductLastSynced *time.Time `json:"product_last_synced,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ResolveStoreType returns the catalog source for the merchant, falling back
// to the legacy productMethod and apiType descriptors.
func (m *Merchant) ResolveStoreType() (StoreType, bool) {
	switch StoreType(strings.ToLower(strings.TrimSpace(string(m.StoreType)))) {
	case StoreTypeShopify:
		return StoreTypeShopify, true
	case StoreTypeWooCommerce:
		return StoreTypeWooCommerce, true
	case StoreTypeCustomHTML, "customhtml", "html", "custom":
		return StoreTypeCustomHTML, true
	}

	switch strings.ToLower(strings.TrimSpace(m.ProductMethod)) {
	case "shopify":
		return StoreTypeShopify, true
	case "woocommerce":
		return StoreTypeWooCommerce, true
	case "scrape", "html":
		return StoreTypeCustomHTML, true
	}

	switch strings.ToLower(strings.TrimSpace(m.APIType)) {
	case "shopify":
		return StoreTypeShopify, true
	case "woocommerce":
		return StoreTypeWooCommerce, true
	}

	return "", false
}

// HasStoreIntegration reports whether the merchant can be synced at all
func (m *Merchant) HasStoreIntegration() bool {
	_, ok := m.ResolveStoreType()
	return ok && NormalizeDomain(m.StoreDomain) != ""
}

// CatalogStale reports whether the catalog has not been synced within maxAge
func (m *Merchant) CatalogStale(now time.Time, maxAge time.Duration) bool {
	if m.ProductLastSynced == nil {
		return true
	}
	return now.Sub(*m.ProductLastSynced) > maxAge
}

// AllowsOrigin reports whether a widget embedded at referer may act for the merchant.
// An empty referer is allowed; anything else must be the store domain or one of its subdomains.
func (m *Merchant) AllowsOrigin(referer string) bool {
	if strings.TrimSpace(referer) == "" {
		return true
	}
	store := NormalizeDomain(m.StoreDomain)
	if store == "" {
		return false
	}
	host := NormalizeDomain(referer)
	if host == "" {
		return false
	}
	return host == store || strings.HasSuffix(host, "."+store)
}

// NormalizeDomain reduces a domain or URL to a lowercase host without
// scheme, port, path or leading "www.".
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
