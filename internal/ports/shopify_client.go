package ports

import (
	"context"
	"net/http"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the Shopify Admin API operations used by catalog sync and webhooks
type ShopifyClient interface {
	// GetProducts lists up to limit products using an admin access token
	GetProducts(ctx context.Context, shop string, accessToken string, limit int) ([]shopify.Product, error)

	// VerifyWebhook checks the X-Shopify-Hmac-Sha256 signature against secret
	VerifyWebhook(r *http.Request, secret string) bool
}
