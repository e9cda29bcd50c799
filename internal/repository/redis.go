// internal/repository/redis.go
package repository

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/net/context"

	"github.com/tikfetch/tiktok-download-service/internal/config"
)

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(cfg *config.Config) *RedisRepository {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &RedisRepository{
		client: rdb,
	}
}

func (r *RedisRepository) GetDirectLink(sourceURL string) (string, error) {
	ctx := context.Background()
	key := fmt.Sprintf("resolve:%s", sourceURL)

	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get cached direct link: %w", err)
	}

	return data, nil
}

func (r *RedisRepository) SetDirectLink(sourceURL, directURL string, expiration time.Duration) error {
	ctx := context.Background()
	key := fmt.Sprintf("resolve:%s", sourceURL)

	err := r.client.Set(ctx, key, directURL, expiration).Err()
	if err != nil {
		return fmt.Errorf("failed to cache direct link: %w", err)
	}

	return nil
}

func (r *RedisRepository) DeleteDirectLink(sourceURL string) error {
	ctx := context.Background()
	key := fmt.Sprintf("resolve:%s", sourceURL)

	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete cached direct link: %w", err)
	}

	return nil
}
