package ports

import (
	"context"

	"github.com/Dayzcorp/seep-global/internal/domain"
)

// ProductSource fetches a merchant's catalog from one kind of store.
// Implementations return *domain.SyncError on failure.
type ProductSource interface {
	StoreType() domain.StoreType
	FetchProducts(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error)
}

// ProductSourceRegistry selects the source for a merchant
type ProductSourceRegistry interface {
	SourceFor(merchant *domain.Merchant) (ProductSource, error)
}
