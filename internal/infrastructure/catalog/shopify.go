package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const storefrontAPIVersion = "2023-10"

const storefrontProductsQuery = `query StorefrontProducts {
  products(first: 10) {
    edges {
      node {
        title
        description
        handle
        onlineStoreUrl
        images(first: 1) { edges { node { url } } }
        variants(first: 1) { edges { node { price { amount currencyCode } } } }
      }
    }
  }
}`

type storefrontResponse struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node struct {
					Title          string `json:"title"`
					Description    string `json:"description"`
					Handle         string `json:"handle"`
					OnlineStoreURL string `json:"onlineStoreUrl"`
					Images         struct {
						Edges []struct {
							Node struct {
								URL string `json:"url"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"images"`
					Variants struct {
						Edges []struct {
							Node struct {
								Price struct {
									Amount       string `json:"amount"`
									CurrencyCode string `json:"currencyCode"`
								} `json:"price"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ShopifySource reads products from the Storefront GraphQL API, or from the
// Admin REST API when the merchant only has an admin token.
type ShopifySource struct {
	fetch  *fetcher
	query  string
	admin  ports.ShopifyClient
	logger zerolog.Logger
}

// NewShopifySource creates a Shopify product source. admin may be nil.
func NewShopifySource(opts Options, admin ports.ShopifyClient, logger zerolog.Logger) (*ShopifySource, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "storefront", Input: storefrontProductsQuery})
	if err != nil {
		return nil, fmt.Errorf("invalid storefront query: %w", err)
	}
	if len(doc.Operations) != 1 || doc.Operations[0].Operation != ast.Query {
		return nil, fmt.Errorf("storefront query must contain exactly one query operation")
	}

	return &ShopifySource{
		fetch:  newFetcher(opts, domain.StoreTypeShopify, logger),
		query:  storefrontProductsQuery,
		admin:  admin,
		logger: logger,
	}, nil
}

func (s *ShopifySource) StoreType() domain.StoreType {
	return domain.StoreTypeShopify
}

func (s *ShopifySource) FetchProducts(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error) {
	creds := merchant.Credentials
	if creds.StorefrontToken == "" && creds.AdminAccessToken != "" && s.admin != nil {
		return s.fetchAdmin(ctx, merchant)
	}
	if creds.StorefrontToken == "" {
		return nil, s.fetch.configError(fmt.Errorf("shopify storefront token is not configured"))
	}

	base, err := s.fetch.baseURL(merchant.StoreDomain)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/%s/graphql.json", base, storefrontAPIVersion)

	payload, err := json.Marshal(map[string]string{"query": s.query})
	if err != nil {
		return nil, s.fetch.configError(err)
	}

	body, err := s.fetch.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Storefront-Access-Token", creds.StorefrontToken)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp storefrontResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, s.fetch.parseError(fmt.Errorf("failed to decode storefront response: %w", err))
	}
	if len(resp.Errors) > 0 {
		return nil, s.fetch.parseError(fmt.Errorf("storefront error: %s", resp.Errors[0].Message))
	}

	products := make([]domain.Product, 0, len(resp.Data.Products.Edges))
	for _, edge := range resp.Data.Products.Edges {
		n := edge.Node
		p := domain.Product{
			Title:       cleanText(n.Title),
			Description: cleanText(n.Description),
			URL:         n.OnlineStoreURL,
		}
		if p.URL == "" && n.Handle != "" {
			p.URL = productURL(base, n.Handle)
		}
		if len(n.Images.Edges) > 0 {
			p.ImageURL = n.Images.Edges[0].Node.URL
		}
		if len(n.Variants.Edges) > 0 {
			p.Price = normalizePrice(n.Variants.Edges[0].Node.Price.Amount)
		}
		products = append(products, p)
	}

	s.logger.Debug().Str("merchantId", merchant.ID).Int("count", len(products)).Msg("Fetched storefront products")
	return products, nil
}

func (s *ShopifySource) fetchAdmin(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error) {
	base, err := s.fetch.baseURL(merchant.StoreDomain)
	if err != nil {
		return nil, err
	}
	shop := strings.TrimPrefix(base, s.fetch.opts.Scheme+"://")

	listed, err := s.admin.GetProducts(ctx, shop, merchant.Credentials.AdminAccessToken, FirstN)
	if err != nil {
		return nil, s.fetch.networkError(err)
	}

	products := make([]domain.Product, 0, len(listed))
	for _, sp := range listed {
		p := domain.Product{
			Title:       cleanText(sp.Title),
			Description: cleanText(sp.BodyHTML),
		}
		if sp.Handle != "" {
			p.URL = productURL("https://"+shop, sp.Handle)
		}
		if len(sp.Images) > 0 {
			p.ImageURL = sp.Images[0].Src
		}
		if len(sp.Variants) > 0 {
			p.Price = priceString(sp.Variants[0].Price)
		}
		products = append(products, p)
		if len(products) == FirstN {
			break
		}
	}

	s.logger.Debug().Str("merchantId", merchant.ID).Int("count", len(products)).Msg("Fetched admin products")
	return products, nil
}

func productURL(base, handle string) string {
	return strings.TrimRight(base, "/") + "/products/" + handle
}
