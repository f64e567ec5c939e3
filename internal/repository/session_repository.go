package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/shortlinks/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound сессия отсутствует или истекла
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository хранилище сессий в Redis.
// Токен непрозрачный, личность лежит значением с TTL.
type SessionRepository interface {
	Create(ctx context.Context, identity *models.Identity, ttl time.Duration) (string, error)
	Get(ctx context.Context, token string) (*models.Identity, error)
	Delete(ctx context.Context, token string) error
}

type sessionRepository struct {
	redis *RedisDB
}

func NewSessionRepository(redis *RedisDB) SessionRepository {
	return &sessionRepository{redis: redis}
}

func (r *sessionRepository) Create(ctx context.Context, identity *models.Identity, ttl time.Duration) (string, error) {
	data, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity: %w", err)
	}

	token := uuid.NewString()
	if err := r.redis.Client.Set(ctx, r.key(token), data, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*models.Identity, error) {
	data, err := r.redis.Client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return &identity, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	return r.redis.Client.Del(ctx, r.key(token)).Err()
}

func (r *sessionRepository) key(token string) string {
	return "session:" + token
}
