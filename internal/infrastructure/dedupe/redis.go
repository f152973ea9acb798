package dedupe

import (
	"context"
	"fmt"

	"daraja-gateway/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore marks callback deliveries so re-deliveries of the same checkout
// identifier are processed once. Keys expire after the configured TTL, long
// after the provider stops re-delivering.
type RedisStore struct {
	client *redis.Client
	cfg    config.RedisConfig
}

func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: rdb,
		cfg:    cfg,
	}
}

// Ping verifies connectivity at startup.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// FirstDelivery atomically records the checkout identifier with SET NX and
// reports whether it was seen for the first time.
func (r *RedisStore) FirstDelivery(ctx context.Context, checkoutRequestID string) (bool, error) {
	key := fmt.Sprintf("stk:cb:%s", checkoutRequestID)

	set, err := r.client.SetNX(ctx, key, "1", r.cfg.DedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX error: %w", err)
	}

	return set, nil
}

// Release drops the claim on a checkout identifier so a redelivery is
// processed as a first delivery.
func (r *RedisStore) Release(ctx context.Context, checkoutRequestID string) error {
	key := fmt.Sprintf("stk:cb:%s", checkoutRequestID)
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
