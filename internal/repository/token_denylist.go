package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "token:denylist:"

// TokenDenylist 已注销令牌的拒绝名单，条目随令牌自然过期
type TokenDenylist struct {
	Redis *redis.Client
}

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{Redis: rdb}
}

func (d *TokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.Redis.Set(ctx, denylistPrefix+jti, 1, ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.Redis.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
