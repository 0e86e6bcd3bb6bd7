package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of *redis.Client the services rely on.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}
