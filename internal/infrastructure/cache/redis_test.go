package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client, err := NewRedisClient(context.Background(), RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	client.Close()

	mr.Close()
	if _, err := NewRedisClient(context.Background(), RedisOptions{Addr: mr.Addr()}); err == nil {
		t.Error("expected error when redis is unreachable")
	}
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedisSessionStore(client, zerolog.Nop())
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	store.MarkAbandonedCart(ctx, "m1", "ancient", base.Add(-10*24*time.Hour))
	store.MarkAbandonedCart(ctx, "m1", "old", base.Add(-48*time.Hour))
	store.MarkAbandonedCart(ctx, "m1", "late", base.Add(-time.Hour))
	if err := store.MarkAbandonedCart(ctx, "m1", "early", base.Add(-2*time.Hour)); err != nil {
		t.Fatalf("MarkAbandonedCart: %v", err)
	}
	store.MarkAbandonedCart(ctx, "m2", "other", base)

	carts, err := store.ListAbandonedCarts(ctx, "m1", base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListAbandonedCarts: %v", err)
	}
	if len(carts) != 2 {
		t.Fatalf("expected 2 carts, got %+v", carts)
	}
	if carts[0].SessionID != "early" || carts[1].SessionID != "late" {
		t.Errorf("expected oldest first, got %+v", carts)
	}
	if carts[0].MerchantID != "m1" || !carts[0].FlaggedAt.Equal(base.Add(-2*time.Hour)) {
		t.Errorf("unexpected cart %+v", carts[0])
	}

	// Flags older than a week are trimmed on write
	members, err := mr.ZMembers(cartKey("m1"))
	if err != nil {
		t.Fatalf("ZMembers: %v", err)
	}
	for _, m := range members {
		if m == "ancient" {
			t.Error("expected week-old flag to be trimmed")
		}
	}
	if ttl := mr.TTL(cartKey("m1")); ttl != abandonedCartTTL {
		t.Errorf("expected key ttl %v, got %v", abandonedCartTTL, ttl)
	}

	// Re-flagging moves the session forward
	store.MarkAbandonedCart(ctx, "m1", "old", base)
	carts, _ = store.ListAbandonedCarts(ctx, "m1", base.Add(-24*time.Hour))
	if len(carts) != 3 || carts[2].SessionID != "old" {
		t.Errorf("expected re-flagged session last, got %+v", carts)
	}

	carts, err = store.ListAbandonedCarts(ctx, "nobody", base.Add(-24*time.Hour))
	if err != nil || len(carts) != 0 {
		t.Errorf("expected no carts for unknown merchant, got %+v, %v", carts, err)
	}
}

func TestRedisSyncLock(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	lock := NewRedisSyncLock(client, zerolog.Nop())

	release, ok, err := lock.TryLock(ctx, "m1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first lock, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := lock.TryLock(ctx, "m1", time.Minute); ok {
		t.Error("expected second lock to be refused")
	}
	if _, ok, _ := lock.TryLock(ctx, "m2", time.Minute); !ok {
		t.Error("expected locks to be per merchant")
	}

	release()
	if _, ok, _ := lock.TryLock(ctx, "m1", time.Minute); !ok {
		t.Error("expected lock to be free after release")
	}
}

func TestRedisSyncLock_StaleReleaseKeepsNewOwner(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	lock := NewRedisSyncLock(client, zerolog.Nop())
	key := keyPrefix + "sync-lock:m1"

	staleRelease, ok, _ := lock.TryLock(ctx, "m1", time.Second)
	if !ok {
		t.Fatal("expected first lock")
	}
	mr.FastForward(2 * time.Second)

	_, ok, _ = lock.TryLock(ctx, "m1", time.Minute)
	if !ok {
		t.Fatal("expected expired lock to be taken over")
	}
	owner, err := mr.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	staleRelease()
	current, err := mr.Get(key)
	if err != nil {
		t.Fatalf("expected new owner's lock to survive stale release: %v", err)
	}
	if current != owner {
		t.Errorf("expected lock token %q, got %q", owner, current)
	}
	if _, ok, _ := lock.TryLock(ctx, "m1", time.Minute); ok {
		t.Error("expected lock to stay held by the new owner")
	}
}

func TestRedisOutcomeCounter(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	counter := NewRedisOutcomeCounter(client)

	totals, err := counter.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.Success != 0 || totals.Failure != 0 {
		t.Errorf("expected empty totals, got %+v", totals)
	}

	for _, success := range []bool{true, true, false, true, false} {
		if err := counter.RecordOutcome(ctx, success); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
	}

	totals, err = counter.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.Success != 3 || totals.Failure != 2 {
		t.Errorf("expected 3 successes and 2 failures, got %+v", totals)
	}
}
