package memory

import (
	"context"
	"sync"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"
)

type productRepository struct {
	mu       sync.RWMutex
	catalogs map[string][]domain.Product // key: merchant ID
}

// NewProductRepository creates an in-memory product repository
func NewProductRepository() ports.ProductRepository {
	return &productRepository{catalogs: make(map[string][]domain.Product)}
}

func (r *productRepository) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog := r.catalogs[merchantID]
	out := make([]domain.Product, len(catalog))
	copy(out, catalog)
	return out, nil
}

func (r *productRepository) ReplaceCatalog(ctx context.Context, merchantID string, products []domain.Product) error {
	catalog := make([]domain.Product, 0, len(products))
	for _, p := range domain.DedupeByURL(products) {
		p.MerchantID = merchantID
		catalog = append(catalog, p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs[merchantID] = catalog
	return nil
}

func (r *productRepository) InsertMissing(ctx context.Context, merchantID string, products []domain.Product) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog := r.catalogs[merchantID]
	seen := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		seen[p.URL] = struct{}{}
	}

	added := 0
	for _, p := range products {
		if p.URL == "" {
			continue
		}
		if _, ok := seen[p.URL]; ok {
			continue
		}
		seen[p.URL] = struct{}{}
		p.MerchantID = merchantID
		catalog = append(catalog, p)
		added++
	}
	r.catalogs[merchantID] = catalog
	return added, nil
}
