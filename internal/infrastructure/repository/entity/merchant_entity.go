package entity

import (
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// MongoCredentialsDoc represents store credentials embedded in a merchant document
type MongoCredentialsDoc struct {
	StorefrontToken  string `bson:"storefrontToken,omitempty"`
	AdminAccessToken string `bson:"adminAccessToken,omitempty"`
	WooToken         string `bson:"wooToken,omitempty"`
	ConsumerKey      string `bson:"consumerKey,omitempty"`
	ConsumerSecret   string `bson:"consumerSecret,omitempty"`
	WebhookSecret    string `bson:"webhookSecret,omitempty"`
}

// MongoMerchantDoc represents a merchant in MongoDB
type MongoMerchantDoc struct {
	ID                string              `bson:"_id"`
	APIKey            string              `bson:"apiKey,omitempty"`
	Plan              string              `bson:"plan"`
	StoreType         string              `bson:"storeType,omitempty"`
	StoreDomain       string              `bson:"storeDomain,omitempty"`
	Credentials       MongoCredentialsDoc `bson:"credentials"`
	ProductMethod     string              `bson:"productMethod,omitempty"`
	APIType           string              `bson:"apiType,omitempty"`
	SuggestProducts   bool                `bson:"suggestProducts"`
	ProductSyncStatus string              `bson:"productSyncStatus"`
	ProductLastSynced *time.Time          `bson:"productLastSynced,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoMerchantDoc) ToDomain() *domain.Merchant {
	status := domain.SyncStatus(d.ProductSyncStatus)
	if status == "" {
		status = domain.SyncStatusIdle
	}
	plan := d.Plan
	if plan == "" {
		plan = "free"
	}
	return &domain.Merchant{
		ID:          d.ID,
		APIKey:      d.APIKey,
		Plan:        plan,
		StoreType:   domain.StoreType(d.StoreType),
		StoreDomain: d.StoreDomain,
		Credentials: domain.StoreCredentials{
			StorefrontToken:  d.Credentials.StorefrontToken,
			AdminAccessToken: d.Credentials.AdminAccessToken,
			WooToken:         d.Credentials.WooToken,
			ConsumerKey:      d.Credentials.ConsumerKey,
			ConsumerSecret:   d.Credentials.ConsumerSecret,
			WebhookSecret:    d.Credentials.WebhookSecret,
		},
		ProductMethod:     d.ProductMethod,
		APIType:           d.APIType,
		SuggestProducts:   d.SuggestProducts,
		ProductSyncStatus: status,
		ProductLastSynced: d.ProductLastSynced,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// MongoMerchantDocFromDomain converts a domain entity to a MongoDB document
func MongoMerchantDocFromDomain(m *domain.Merchant) *MongoMerchantDoc {
	return &MongoMerchantDoc{
		ID:          m.ID,
		APIKey:      m.APIKey,
		Plan:        m.Plan,
		StoreType:   string(m.StoreType),
		StoreDomain: m.StoreDomain,
		Credentials: MongoCredentialsDoc{
			StorefrontToken:  m.Credentials.StorefrontToken,
			AdminAccessToken: m.Credentials.AdminAccessToken,
			WooToken:         m.Credentials.WooToken,
			ConsumerKey:      m.Credentials.ConsumerKey,
			ConsumerSecret:   m.Credentials.ConsumerSecret,
			WebhookSecret:    m.Credentials.WebhookSecret,
		},
		ProductMethod:     m.ProductMethod,
		APIType:           m.APIType,
		SuggestProducts:   m.SuggestProducts,
		ProductSyncStatus: string(m.ProductSyncStatus),
		ProductLastSynced: m.ProductLastSynced,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
