package ports

import (
	"context"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// MerchantRepository defines the interface for merchant persistence.
// Merchants are created by onboarding; this service reads them and updates sync state.
type MerchantRepository interface {
	// GetByID retrieves a merchant by its ID, nil when absent
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)

	// GetByAPIKey retrieves a merchant by its widget API key, nil when absent
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error)

	// ListSyncable returns merchants with a configured store integration
	ListSyncable(ctx context.Context) ([]*domain.Merchant, error)

	// UpdateSyncStatus sets productSyncStatus and, when lastSynced is non-nil, productLastSynced
	UpdateSyncStatus(ctx context.Context, id string, status domain.SyncStatus, lastSynced *time.Time) error
}
