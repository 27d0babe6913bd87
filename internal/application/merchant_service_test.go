package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"
	"github.com/Dayzcorp/seep-global/internal/infrastructure/repository/memory"

	"github.com/rs/zerolog"
)

func newMerchantFixture(t *testing.T) (*MerchantService, *UsageLedger) {
	t.Helper()
	ctx := context.Background()
	merchants := memory.NewMerchantRepository()
	merchants.Save(ctx, &domain.Merchant{ID: "m1", APIKey: "key-1", Plan: "free"})
	merchants.Save(ctx, &domain.Merchant{ID: "m2", APIKey: "key-2", Plan: "enterprise"})

	ledger := newTestLedger(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	return NewMerchantService(merchants, ledger, zerolog.Nop()), ledger
}

func TestMerchantService_ResolveMerchantID(t *testing.T) {
	svc, _ := newMerchantFixture(t)

	tests := []struct {
		name       string
		merchantID string
		apiKey     string
		want       string
		wantErr    error
	}{
		{"explicit id wins", " m9 ", "key-1", "m9", nil},
		{"api key lookup", "", "key-2", "m2", nil},
		{"unknown api key", "", "nope", "", domain.ErrMerchantNotFound},
		{"nothing supplied", "", "  ", "", domain.ErrMissingMerchant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveMerchantID(context.Background(), tt.merchantID, tt.apiKey)
			if !errors.Is(err, tt.wantErr) || got != tt.want {
				t.Errorf("ResolveMerchantID() = (%q, %v), want (%q, %v)", got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestMerchantService_GetUsage(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newMerchantFixture(t)

	ledger.Record(ctx, "m1", 4)
	summary, err := svc.GetUsage(ctx, "m1")
	if err != nil {
		t.Fatalf("GetUsage: %v", err)
	}
	if summary.Month != "2024-06" || summary.Tokens != 4 || summary.Requests != 1 || summary.TokenLimit != 10 || summary.Remaining != 6 {
		t.Errorf("unexpected summary %+v", summary)
	}

	// Over quota still reports usage
	ledger.AddTokens(ctx, "m1", 20)
	summary, err = svc.GetUsage(ctx, "m1")
	if err != nil {
		t.Fatalf("GetUsage over quota: %v", err)
	}
	if summary.Remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", summary.Remaining)
	}

	summary, err = svc.GetUsage(ctx, "m2")
	if err != nil {
		t.Fatalf("GetUsage unlimited: %v", err)
	}
	if summary.Remaining != domain.UnlimitedTokens {
		t.Errorf("expected unlimited remaining, got %d", summary.Remaining)
	}

	if _, err := svc.GetUsage(ctx, "ghost"); !errors.Is(err, domain.ErrMerchantNotFound) {
		t.Errorf("expected ErrMerchantNotFound, got %v", err)
	}
}
