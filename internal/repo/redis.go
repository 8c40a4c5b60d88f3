package repo

import (
	"FileVault/config"
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// NewRedisClient builds a Redis client and checks it answers.
func NewRedisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// InitRedis initializes the global Redis client.
func InitRedis(ctx context.Context, cfg config.Config) error {
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	Redis = client
	return nil
}
