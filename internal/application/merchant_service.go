package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/rs/zerolog"
)

// MerchantService resolves widget credentials to merchants and reports their usage
type MerchantService struct {
	merchantRepo ports.MerchantRepository
	ledger       *UsageLedger
	logger       zerolog.Logger
}

// NewMerchantService creates a new merchant service
func NewMerchantService(
	merchantRepo ports.MerchantRepository,
	ledger *UsageLedger,
	logger zerolog.Logger,
) *MerchantService {
	return &MerchantService{
		merchantRepo: merchantRepo,
		ledger:       ledger,
		logger:       logger,
	}
}

// ResolveMerchantID returns the merchant ID for the request credentials.
// An explicit merchant ID wins; otherwise the API key is looked up.
func (s *MerchantService) ResolveMerchantID(ctx context.Context, merchantID, apiKey string) (string, error) {
	if id := strings.TrimSpace(merchantID); id != "" {
		return id, nil
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", domain.ErrMissingMerchant
	}

	merchant, err := s.merchantRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("failed to get merchant by api key: %w", err)
	}
	if merchant == nil {
		s.logger.Warn().Msg("Unknown merchant API key")
		return "", domain.ErrMerchantNotFound
	}
	return merchant.ID, nil
}

// GetMerchant retrieves a merchant by ID
func (s *MerchantService) GetMerchant(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	if merchant == nil {
		return nil, domain.ErrMerchantNotFound
	}
	return merchant, nil
}

// UsageSummary is the current month's usage against the merchant's plan
type UsageSummary struct {
	MerchantID string `json:"merchant_id"`
	Month      string `json:"month"`
	Plan       string `json:"plan"`
	Tokens     int64  `json:"tokens"`
	Requests   int64  `json:"requests"`
	TokenLimit int64  `json:"token_limit"`
	Remaining  int64  `json:"remaining"` // -1 when unlimited
}

// GetUsage returns the merchant's usage for the current month
func (s *MerchantService) GetUsage(ctx context.Context, merchantID string) (*UsageSummary, error) {
	merchant, err := s.GetMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	record, plan, err := s.ledger.CheckQuota(ctx, merchant.ID, merchant.Plan)
	if err != nil && record == nil {
		return nil, err
	}

	remaining := domain.UnlimitedTokens
	if !plan.Unlimited() {
		remaining = plan.TokenLimit - record.Tokens
		if remaining < 0 {
			remaining = 0
		}
	}

	return &UsageSummary{
		MerchantID: merchant.ID,
		Month:      record.Month,
		Plan:       plan.Name,
		Tokens:     record.Tokens,
		Requests:   record.Requests,
		TokenLimit: plan.TokenLimit,
		Remaining:  remaining,
	}, nil
}
