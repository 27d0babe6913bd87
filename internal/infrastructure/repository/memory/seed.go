package memory

import (
	"context"
	"fmt"
	"os"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML fixture loaded into the in-memory backend
type Seed struct {
	Merchants []SeedMerchant `yaml:"merchants"`
	Faqs      []SeedFaq      `yaml:"faqs"`
}

// SeedMerchant describes one merchant in the fixture file
type SeedMerchant struct {
	ID              string `yaml:"id"`
	APIKey          string `yaml:"api_key"`
	Plan            string `yaml:"plan"`
	StoreType       string `yaml:"store_type"`
	StoreDomain     string `yaml:"store_domain"`
	ProductMethod   string `yaml:"product_method"`
	APIType         string `yaml:"api_type"`
	SuggestProducts bool   `yaml:"suggest_products"`
	StorefrontToken string `yaml:"storefront_token"`
	AdminToken      string `yaml:"admin_token"`
	WooToken        string `yaml:"woo_token"`
	ConsumerKey     string `yaml:"consumer_key"`
	ConsumerSecret  string `yaml:"consumer_secret"`
	WebhookSecret   string `yaml:"webhook_secret"`
}

// SeedFaq is one question/answer pair in the fixture file
type SeedFaq struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// LoadSeed reads a seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// Apply writes the seed into the repositories
func (s *Seed) Apply(ctx context.Context, merchants MerchantRepository, faqs FaqRepository) error {
	for _, m := range s.Merchants {
		plan := m.Plan
		if plan == "" {
			plan = "free"
		}
		merchant := &domain.Merchant{
			ID:              m.ID,
			APIKey:          m.APIKey,
			Plan:            plan,
			StoreType:       domain.StoreType(m.StoreType),
			StoreDomain:     m.StoreDomain,
			ProductMethod:   m.ProductMethod,
			APIType:         m.APIType,
			SuggestProducts: m.SuggestProducts,
			Credentials: domain.StoreCredentials{
				StorefrontToken:  m.StorefrontToken,
				AdminAccessToken: m.AdminToken,
				WooToken:         m.WooToken,
				ConsumerKey:      m.ConsumerKey,
				ConsumerSecret:   m.ConsumerSecret,
				WebhookSecret:    m.WebhookSecret,
			},
		}
		if err := merchants.Save(ctx, merchant); err != nil {
			return fmt.Errorf("failed to seed merchant %s: %w", m.ID, err)
		}
	}
	for _, f := range s.Faqs {
		if _, err := faqs.Add(ctx, f.Question, f.Answer); err != nil {
			return fmt.Errorf("failed to seed faq: %w", err)
		}
	}
	return nil
}
