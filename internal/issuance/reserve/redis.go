package reserve

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"soulbound/pkg/domain"
)

const keyPrefix = "soulbound:mint:reserve:"

// Redis reserves recipients across service instances with SET NX EX. The
// TTL bounds how long a crashed instance can hold a recipient hostage.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Acquire(ctx context.Context, recipient domain.Address) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+recipient.Hex(), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring mint reservation: %w", err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, recipient domain.Address) error {
	if err := r.client.Del(ctx, keyPrefix+recipient.Hex()).Err(); err != nil {
		return fmt.Errorf("releasing mint reservation: %w", err)
	}
	return nil
}
