package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPlanExceeded(t *testing.T) {
	free := Plan{Name: "free", TokenLimit: 100}
	if free.Exceeded(99) {
		t.Error("expected 99 of 100 tokens to be within quota")
	}
	if !free.Exceeded(100) {
		t.Error("expected quota to be exceeded at the limit")
	}

	unlimited := Plan{Name: "enterprise", TokenLimit: UnlimitedTokens}
	if !unlimited.Unlimited() || unlimited.Exceeded(1 << 40) {
		t.Error("expected unlimited plan never to be exceeded")
	}
}

func TestMonthKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2024, 3, 1, 5, 0, 0, 0, loc)
	if got := MonthKey(local); got != "2024-02" {
		t.Errorf("MonthKey() = %q, want 2024-02", got)
	}
}

func TestDedupeByURL(t *testing.T) {
	in := []Product{
		{Title: "A", URL: "https://s/a"},
		{Title: "no url"},
		{Title: "B", URL: "https://s/b"},
		{Title: "A again", URL: "https://s/a"},
	}
	out := DedupeByURL(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 products, got %d", len(out))
	}
	if out[0].Title != "A" || out[1].Title != "B" {
		t.Errorf("unexpected order: %q, %q", out[0].Title, out[1].Title)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  hello   there\nworld "); got != 3 {
		t.Errorf("WordCount() = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(\"\") = %d, want 0", got)
	}
}

func TestProviderErrorKindOf(t *testing.T) {
	wrapped := fmt.Errorf("stream: %w", &ProviderError{Kind: ProviderErrorRateLimit, Err: errors.New("429")})
	if got := ProviderErrorKindOf(wrapped); got != ProviderErrorRateLimit {
		t.Errorf("ProviderErrorKindOf() = %v, want rate_limit", got)
	}
	if got := ProviderErrorKindOf(errors.New("boom")); got != ProviderErrorOther {
		t.Errorf("ProviderErrorKindOf() = %v, want other", got)
	}

	sentinels := map[ProviderErrorKind]string{
		ProviderErrorAuth:      "[Invalid API key]",
		ProviderErrorRateLimit: "[Rate limit exceeded]",
		ProviderErrorOther:     "[Error fetching response]",
	}
	for kind, want := range sentinels {
		if got := kind.Sentinel(); got != want {
			t.Errorf("%s.Sentinel() = %q, want %q", kind, got, want)
		}
	}
}

func TestSyncErrorUnwrap(t *testing.T) {
	err := NewSyncError(SyncErrorConfig, StoreTypeShopify, ErrUnsupportedStore)
	if !errors.Is(err, ErrUnsupportedStore) {
		t.Error("expected SyncError to unwrap to its cause")
	}
	var syncErr *SyncError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &syncErr) || syncErr.Kind != SyncErrorConfig {
		t.Error("expected errors.As to find the SyncError")
	}
}
