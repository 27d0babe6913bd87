package catalog

import (
	"errors"
	"testing"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"<p>Nice &amp; warm</p>", "Nice & warm"},
		{"  spaced\n\tout   text ", "spaced out text"},
		{"<script>alert(1)</script>Safe", "Safe"},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPriceString(t *testing.T) {
	d := decimal.RequireFromString("3")
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"numeric string", "19.9", "19.90"},
		{"padded string", " 5 ", "5.00"},
		{"non numeric string", "From $10", "From $10"},
		{"float", 3.5, "3.50"},
		{"decimal", d, "3.00"},
		{"decimal pointer", &d, "3.00"},
		{"nil decimal pointer", (*decimal.Decimal)(nil), ""},
		{"int", 7, "7.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := priceString(tt.in); got != tt.want {
				t.Errorf("priceString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegistry_SourceFor(t *testing.T) {
	shopify, _ := NewShopifySource(testOptions(), nil, zerolog.Nop())
	registry := NewRegistry(shopify, NewHTMLSource(testOptions(), zerolog.Nop()))

	tests := []struct {
		name     string
		merchant *domain.Merchant
		want     domain.StoreType
		wantErr  bool
	}{
		{"explicit type", &domain.Merchant{StoreType: domain.StoreTypeShopify}, domain.StoreTypeShopify, false},
		{"legacy scrape method", &domain.Merchant{ProductMethod: "scrape"}, domain.StoreTypeCustomHTML, false},
		{"source not registered", &domain.Merchant{StoreType: domain.StoreTypeWooCommerce}, "", true},
		{"unknown type", &domain.Merchant{StoreType: "magento"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := registry.SourceFor(tt.merchant)
			if tt.wantErr {
				requireSyncError(t, err, domain.SyncErrorConfig)
				if !errors.Is(err, domain.ErrUnsupportedStore) {
					t.Errorf("expected ErrUnsupportedStore, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SourceFor: %v", err)
			}
			if source.StoreType() != tt.want {
				t.Errorf("expected %s source, got %s", tt.want, source.StoreType())
			}
		})
	}
}
