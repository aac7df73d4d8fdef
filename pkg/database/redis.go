package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"wavenote-api/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisEnabled reports whether a Redis host is configured. "disabled"
// switches Redis off explicitly.
func RedisEnabled(cfg *config.RedisConfig) bool {
	return cfg.Host != "" && cfg.Host != "disabled"
}

// NewRedisClient returns (nil, nil) when Redis is not configured. The list
// cache, revoked-token set and rate limiter all live in it.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if !RedisEnabled(cfg) {
		log.Println("Redis is disabled, skipping initialization")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", rdb.Options().Addr, err)
	}

	log.Printf("Redis connected: %s (db %d)", rdb.Options().Addr, cfg.DB)
	return rdb, nil
}
