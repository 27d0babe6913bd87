package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	store.MarkAbandonedCart(ctx, "m1", "old", base.Add(-48*time.Hour))
	store.MarkAbandonedCart(ctx, "m1", "late", base.Add(-time.Hour))
	store.MarkAbandonedCart(ctx, "m1", "early", base.Add(-2*time.Hour))
	store.MarkAbandonedCart(ctx, "m2", "other", base)

	carts, err := store.ListAbandonedCarts(ctx, "m1", base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListAbandonedCarts: %v", err)
	}
	if len(carts) != 2 {
		t.Fatalf("expected 2 carts, got %d", len(carts))
	}
	if carts[0].SessionID != "early" || carts[1].SessionID != "late" {
		t.Errorf("expected oldest first, got %+v", carts)
	}
	if carts[0].MerchantID != "m1" {
		t.Errorf("unexpected merchant %q", carts[0].MerchantID)
	}

	// Re-flagging moves the session forward
	store.MarkAbandonedCart(ctx, "m1", "old", base)
	carts, _ = store.ListAbandonedCarts(ctx, "m1", base.Add(-24*time.Hour))
	if len(carts) != 3 || carts[2].SessionID != "old" {
		t.Errorf("expected re-flagged session last, got %+v", carts)
	}
}

func TestMemorySyncLock(t *testing.T) {
	ctx := context.Background()
	lock := NewMemorySyncLock()

	release, ok, err := lock.TryLock(ctx, "m1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected lock, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := lock.TryLock(ctx, "m1", time.Minute); ok {
		t.Error("expected second lock to fail while held")
	}
	if _, ok, _ := lock.TryLock(ctx, "m2", time.Minute); !ok {
		t.Error("expected locks to be per merchant")
	}

	release()
	if _, ok, _ := lock.TryLock(ctx, "m1", time.Minute); !ok {
		t.Error("expected lock after release")
	}
}

func TestMemorySyncLock_Expiry(t *testing.T) {
	ctx := context.Background()
	lock := NewMemorySyncLock()

	staleRelease, ok, _ := lock.TryLock(ctx, "m1", 10*time.Millisecond)
	if !ok {
		t.Fatal("expected lock")
	}
	time.Sleep(20 * time.Millisecond)

	_, ok, _ = lock.TryLock(ctx, "m1", time.Minute)
	if !ok {
		t.Fatal("expected expired lock to be taken over")
	}

	// The stale holder must not release the new holder's lock
	staleRelease()
	if _, ok, _ := lock.TryLock(ctx, "m1", time.Minute); ok {
		t.Error("expected lock to still be held by the new owner")
	}
}

func TestMemoryOutcomeCounter(t *testing.T) {
	ctx := context.Background()
	counter := NewMemoryOutcomeCounter()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			counter.RecordOutcome(ctx, i%3 != 0)
		}(i)
	}
	wg.Wait()

	totals, err := counter.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.Success != 20 || totals.Failure != 10 {
		t.Errorf("expected 20/10, got %+v", totals)
	}
}
