package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss ключ отсутствует в кэше
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository кэш списков ссылок по владельцу
type CacheRepository interface {
	GetOwnerLinks(ctx context.Context, userID string) ([]*models.Link, error)
	SetOwnerLinks(ctx context.Context, userID string, links []*models.Link, ttl time.Duration) error
	InvalidateOwner(ctx context.Context, userID string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

func (r *cacheRepository) GetOwnerLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	data, err := r.redis.Client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var links []*models.Link
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("failed to unmarshal links: %w", err)
	}

	return links, nil
}

func (r *cacheRepository) SetOwnerLinks(ctx context.Context, userID string, links []*models.Link, ttl time.Duration) error {
	data, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to marshal links: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(userID), data, ttl).Err()
}

func (r *cacheRepository) InvalidateOwner(ctx context.Context, userID string) error {
	return r.redis.Client.Del(ctx, r.key(userID)).Err()
}

func (r *cacheRepository) key(userID string) string {
	return "owner_links:" + userID
}
