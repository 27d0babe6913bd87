package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix        = "seep:"
	abandonedCartTTL = 7 * 24 * time.Hour
	outcomesKey      = keyPrefix + "chat:outcomes"
)

// RedisOptions configures the shared redis client
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisSessionStore keeps abandoned-cart flags in one sorted set per merchant, scored by flag time
type RedisSessionStore struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

// NewRedisSessionStore creates a redis backed session store
func NewRedisSessionStore(client redis.UniversalClient, logger zerolog.Logger) *RedisSessionStore {
	return &RedisSessionStore{client: client, logger: logger}
}

func cartKey(merchantID string) string {
	return keyPrefix + "carts:" + merchantID
}

// MarkAbandonedCart flags the session and trims flags older than a week
func (s *RedisSessionStore) MarkAbandonedCart(ctx context.Context, merchantID, sessionID string, at time.Time) error {
	key := cartKey(merchantID)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.Unix()), Member: sessionID})
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(at.Add(-abandonedCartTTL).Unix(), 10))
	pipe.Expire(ctx, key, abandonedCartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to flag abandoned cart: %w", err)
	}
	return nil
}

// ListAbandonedCarts returns sessions flagged at or after since, oldest first
func (s *RedisSessionStore) ListAbandonedCarts(ctx context.Context, merchantID string, since time.Time) ([]domain.CartSession, error) {
	members, err := s.client.ZRangeByScoreWithScores(ctx, cartKey(merchantID), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list abandoned carts: %w", err)
	}

	carts := make([]domain.CartSession, 0, len(members))
	for _, z := range members {
		sessionID, ok := z.Member.(string)
		if !ok {
			continue
		}
		carts = append(carts, domain.CartSession{
			SessionID:  sessionID,
			MerchantID: merchantID,
			FlaggedAt:  time.Unix(int64(z.Score), 0).UTC(),
		})
	}
	return carts, nil
}

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSyncLock is a per-merchant lock shared by every API instance
type RedisSyncLock struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

// NewRedisSyncLock creates a redis backed sync lock
func NewRedisSyncLock(client redis.UniversalClient, logger zerolog.Logger) *RedisSyncLock {
	return &RedisSyncLock{client: client, logger: logger}
}

// TryLock acquires the merchant's lock for ttl without blocking
func (l *RedisSyncLock) TryLock(ctx context.Context, merchantID string, ttl time.Duration) (func(), bool, error) {
	key := keyPrefix + "sync-lock:" + merchantID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn().Err(err).Str("merchantId", merchantID).Msg("Failed to release sync lock")
		}
	}
	return release, true, nil
}

// RedisOutcomeCounter keeps the global chat outcome totals in a hash
type RedisOutcomeCounter struct {
	client redis.UniversalClient
}

// NewRedisOutcomeCounter creates a redis backed outcome counter
func NewRedisOutcomeCounter(client redis.UniversalClient) *RedisOutcomeCounter {
	return &RedisOutcomeCounter{client: client}
}

// RecordOutcome increments the success or failure counter
func (c *RedisOutcomeCounter) RecordOutcome(ctx context.Context, success bool) error {
	field := "failure"
	if success {
		field = "success"
	}
	if err := c.client.HIncrBy(ctx, outcomesKey, field, 1).Err(); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// Totals returns the current counters
func (c *RedisOutcomeCounter) Totals(ctx context.Context) (domain.OutcomeTotals, error) {
	values, err := c.client.HGetAll(ctx, outcomesKey).Result()
	if err != nil {
		return domain.OutcomeTotals{}, fmt.Errorf("failed to get outcomes: %w", err)
	}

	var totals domain.OutcomeTotals
	if v, ok := values["success"]; ok {
		totals.Success, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := values["failure"]; ok {
		totals.Failure, _ = strconv.ParseInt(v, 10, 64)
	}
	return totals, nil
}
