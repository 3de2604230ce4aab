package redisdb

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
