package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/rs/zerolog"
)

type wooProduct struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	Permalink        string `json:"permalink"`
	Price            string `json:"price"`
	Images           []struct {
		Src string `json:"src"`
	} `json:"images"`
}

// WooCommerceSource reads products from the WooCommerce REST API
type WooCommerceSource struct {
	fetch  *fetcher
	logger zerolog.Logger
}

// NewWooCommerceSource creates a WooCommerce product source
func NewWooCommerceSource(opts Options, logger zerolog.Logger) *WooCommerceSource {
	return &WooCommerceSource{
		fetch:  newFetcher(opts, domain.StoreTypeWooCommerce, logger),
		logger: logger,
	}
}

func (s *WooCommerceSource) StoreType() domain.StoreType {
	return domain.StoreTypeWooCommerce
}

func (s *WooCommerceSource) FetchProducts(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error) {
	creds := merchant.Credentials
	if creds.WooToken == "" && (creds.ConsumerKey == "" || creds.ConsumerSecret == "") {
		return nil, s.fetch.configError(fmt.Errorf("woocommerce credentials are not configured"))
	}

	base, err := s.fetch.baseURL(merchant.StoreDomain)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(FirstN))
	if creds.WooToken == "" {
		query.Set("consumer_key", creds.ConsumerKey)
		query.Set("consumer_secret", creds.ConsumerSecret)
	}
	endpoint := base + "/wp-json/wc/v3/products?" + query.Encode()

	body, err := s.fetch.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if creds.WooToken != "" {
			req.Header.Set("Authorization", "Bearer "+creds.WooToken)
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var items []wooProduct
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, s.fetch.parseError(fmt.Errorf("failed to decode woocommerce products: %w", err))
	}
	if len(items) > FirstN {
		items = items[:FirstN]
	}

	products := make([]domain.Product, 0, len(items))
	for _, it := range items {
		desc := it.ShortDescription
		if desc == "" {
			desc = it.Description
		}
		p := domain.Product{
			Title:       cleanText(it.Name),
			Description: cleanText(desc),
			Price:       normalizePrice(it.Price),
			URL:         it.Permalink,
		}
		if len(it.Images) > 0 {
			p.ImageURL = it.Images[0].Src
		}
		products = append(products, p)
	}

	s.logger.Debug().Str("merchantId", merchant.ID).Int("count", len(products)).Msg("Fetched woocommerce products")
	return products, nil
}
