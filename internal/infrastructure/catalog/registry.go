package catalog

import (
	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"
)

// Registry dispatches a merchant to its product source by store type
type Registry struct {
	sources map[domain.StoreType]ports.ProductSource
}

// NewRegistry creates a registry over the given sources
func NewRegistry(sources ...ports.ProductSource) *Registry {
	r := &Registry{sources: make(map[domain.StoreType]ports.ProductSource, len(sources))}
	for _, s := range sources {
		r.sources[s.StoreType()] = s
	}
	return r
}

// SourceFor returns the source matching the merchant's store type
func (r *Registry) SourceFor(merchant *domain.Merchant) (ports.ProductSource, error) {
	storeType, ok := merchant.ResolveStoreType()
	if !ok {
		return nil, domain.NewSyncError(domain.SyncErrorConfig, "", domain.ErrUnsupportedStore)
	}
	source, ok := r.sources[storeType]
	if !ok {
		return nil, domain.NewSyncError(domain.SyncErrorConfig, storeType, domain.ErrUnsupportedStore)
	}
	return source, nil
}
