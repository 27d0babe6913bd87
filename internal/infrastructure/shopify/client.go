package shopify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Dayzcorp/seep-global/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	app    goshopify.App
	logger zerolog.Logger
}

// NewClient creates a new Shopify Admin API client adapter
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.ShopifyClient {
	return &client{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		logger: logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Product API

func (c *client) GetProducts(ctx context.Context, shopDomain string, accessToken string, limit int) ([]goshopify.Product, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	products, err := client.Product.List(ctx, goshopify.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	c.logger.Debug().Str("shop", shopDomain).Int("count", len(products)).Msg("Listed admin products")
	return products, nil
}

// Webhooks

func (c *client) VerifyWebhook(r *http.Request, secret string) bool {
	app := c.app
	if secret != "" {
		app.ApiSecret = secret
	}
	if app.ApiSecret == "" {
		return false
	}
	return app.VerifyWebhookRequest(r)
}
