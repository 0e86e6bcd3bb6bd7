// file: db/redis.go

package db

import (
	"context"
	"fmt"
	"studylab-api/config"
	"studylab-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes and returns a new Redis client.
func ConnectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping Redis")
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("address", cfg.Addr).Info("Redis connection established successfully")
	return rdb, nil
}
