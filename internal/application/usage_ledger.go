package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/ports"

	"github.com/rs/zerolog"
)

// UsageLedger meters tokens and requests per merchant and calendar month.
// Rollover is lazy: a new month simply addresses a new (merchant, month) row.
type UsageLedger struct {
	repo   ports.UsageRepository
	plans  ports.PlanResolver
	now    func() time.Time
	logger zerolog.Logger
}

// NewUsageLedger creates a new usage ledger
func NewUsageLedger(repo ports.UsageRepository, plans ports.PlanResolver, logger zerolog.Logger) *UsageLedger {
	return &UsageLedger{
		repo:   repo,
		plans:  plans,
		now:    time.Now,
		logger: logger,
	}
}

func (l *UsageLedger) month() string {
	return domain.MonthKey(l.now())
}

// GetOrCreate returns the current month's record, creating a zeroed one on first access
func (l *UsageLedger) GetOrCreate(ctx context.Context, merchantID string) (*domain.UsageRecord, error) {
	month := l.month()
	record, err := l.repo.Get(ctx, merchantID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	if record != nil {
		return record, nil
	}

	record, err = l.repo.Increment(ctx, merchantID, month, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage record: %w", err)
	}
	l.logger.Debug().Str("merchantId", merchantID).Str("month", month).Msg("Started usage month")
	return record, nil
}

// CheckQuota returns domain.ErrQuotaExceeded when the merchant has used up its plan
func (l *UsageLedger) CheckQuota(ctx context.Context, merchantID, planName string) (*domain.UsageRecord, domain.Plan, error) {
	plan := l.plans.Resolve(planName)
	record, err := l.GetOrCreate(ctx, merchantID)
	if err != nil {
		return nil, plan, err
	}
	if plan.Exceeded(record.Tokens) {
		l.logger.Info().
			Str("merchantId", merchantID).
			Str("plan", plan.Name).
			Int64("tokens", record.Tokens).
			Int64("limit", plan.TokenLimit).
			Msg("Quota exceeded")
		return record, plan, domain.ErrQuotaExceeded
	}
	return record, plan, nil
}

// AddTokens atomically adds n tokens to the current month
func (l *UsageLedger) AddTokens(ctx context.Context, merchantID string, n int64) error {
	if _, err := l.repo.Increment(ctx, merchantID, l.month(), n, 0); err != nil {
		return fmt.Errorf("failed to add tokens: %w", err)
	}
	return nil
}

// IncrementRequests atomically counts one request in the current month
func (l *UsageLedger) IncrementRequests(ctx context.Context, merchantID string) error {
	if _, err := l.repo.Increment(ctx, merchantID, l.month(), 0, 1); err != nil {
		return fmt.Errorf("failed to increment requests: %w", err)
	}
	return nil
}

// Record counts one finished request and its tokens in a single increment
func (l *UsageLedger) Record(ctx context.Context, merchantID string, tokens int64) error {
	if _, err := l.repo.Increment(ctx, merchantID, l.month(), tokens, 1); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}
