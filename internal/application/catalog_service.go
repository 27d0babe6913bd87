package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/rs/zerolog"
)

const statusWriteTimeout = 5 * time.Second

// CatalogService synchronizes merchant catalogs from their store.
// A catalog is only ever replaced wholesale after a successful fetch.
type CatalogService struct {
	merchants ports.MerchantRepository
	products  ports.ProductRepository
	sources   ports.ProductSourceRegistry
	metrics   ports.Metrics
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCatalogService creates a new catalog sync service
func NewCatalogService(
	merchants ports.MerchantRepository,
	products ports.ProductRepository,
	sources ports.ProductSourceRegistry,
	metrics ports.Metrics,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		merchants: merchants,
		products:  products,
		sources:   sources,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger,
	}
}

// SyncByID loads the merchant and syncs its catalog
func (s *CatalogService) SyncByID(ctx context.Context, merchantID string) ([]domain.Product, error) {
	merchant, err := s.getMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return s.Sync(ctx, merchant)
}

// Sync fetches the merchant's products and replaces the stored catalog with them
func (s *CatalogService) Sync(ctx context.Context, merchant *domain.Merchant) ([]domain.Product, error) {
	return s.run(ctx, merchant, "sync", func(products []domain.Product) (int, error) {
		if err := s.products.ReplaceCatalog(ctx, merchant.ID, products); err != nil {
			return 0, fmt.Errorf("failed to replace catalog: %w", err)
		}
		return len(products), nil
	})
}

// Rescrape fetches the merchant's products and inserts only URLs not already stored.
// It returns the number of products added.
func (s *CatalogService) Rescrape(ctx context.Context, merchantID string) (int, error) {
	merchant, err := s.getMerchant(ctx, merchantID)
	if err != nil {
		return 0, err
	}

	added := 0
	_, err = s.run(ctx, merchant, "rescrape", func(products []domain.Product) (int, error) {
		n, err := s.products.InsertMissing(ctx, merchant.ID, products)
		if err != nil {
			return 0, fmt.Errorf("failed to insert products: %w", err)
		}
		added = n
		return n, nil
	})
	return added, err
}

// ListProducts returns the merchant's current catalog
func (s *CatalogService) ListProducts(ctx context.Context, merchantID string) ([]domain.Product, error) {
	products, err := s.products.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) getMerchant(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	if merchant == nil {
		return nil, domain.ErrMerchantNotFound
	}
	return merchant, nil
}

// run drives the idle -> syncing -> success|error state machine around a fetch and a store step
func (s *CatalogService) run(
	ctx context.Context,
	merchant *domain.Merchant,
	op string,
	store func([]domain.Product) (int, error),
) ([]domain.Product, error) {
	start := s.now()
	log := s.logger.With().Str("merchantId", merchant.ID).Str("op", op).Logger()

	if err := s.merchants.UpdateSyncStatus(ctx, merchant.ID, domain.SyncStatusSyncing, nil); err != nil {
		return nil, fmt.Errorf("failed to mark sync started: %w", err)
	}

	storeType := "unknown"
	fail := func(err error) ([]domain.Product, error) {
		s.setStatus(ctx, merchant.ID, domain.SyncStatusError, nil)
		s.observe(storeType, domain.SyncStatusError, start)
		log.Error().Err(err).Str("storeType", storeType).Msg("Catalog sync failed")
		return nil, err
	}

	source, err := s.sources.SourceFor(merchant)
	if err != nil {
		return fail(asSyncError(err, domain.SyncErrorConfig, ""))
	}
	storeType = string(source.StoreType())

	fetched, err := source.FetchProducts(ctx, merchant)
	if err != nil {
		return fail(asSyncError(err, domain.SyncErrorNetwork, source.StoreType()))
	}

	now := s.now().UTC()
	products := make([]domain.Product, 0, len(fetched))
	for _, p := range fetched {
		p.MerchantID = merchant.ID
		if p.ScrapedAt.IsZero() {
			p.ScrapedAt = now
		}
		products = append(products, p)
	}
	products = domain.DedupeByURL(products)

	count, err := store(products)
	if err != nil {
		return fail(err)
	}

	s.setStatus(ctx, merchant.ID, domain.SyncStatusSuccess, &now)
	s.observe(storeType, domain.SyncStatusSuccess, start)
	log.Info().
		Str("storeType", storeType).
		Int("fetched", len(products)).
		Int("count", count).
		Dur("duration", s.now().Sub(start)).
		Msg("Catalog sync completed")
	return products, nil
}

// setStatus writes the final status even when ctx was cancelled mid-sync
func (s *CatalogService) setStatus(ctx context.Context, merchantID string, status domain.SyncStatus, lastSynced *time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()
	if err := s.merchants.UpdateSyncStatus(ctx, merchantID, status, lastSynced); err != nil {
		s.logger.Error().Err(err).
			Str("merchantId", merchantID).
			Str("status", string(status)).
			Msg("Failed to update sync status")
	}
}

func (s *CatalogService) observe(storeType string, status domain.SyncStatus, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.SyncFinished(storeType, string(status), s.now().Sub(start).Seconds())
}

func asSyncError(err error, kind domain.SyncErrorKind, source domain.StoreType) error {
	var syncErr *domain.SyncError
	if errors.As(err, &syncErr) {
		return err
	}
	return domain.NewSyncError(kind, source, err)
}
