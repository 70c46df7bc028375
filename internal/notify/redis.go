// Package notify provides the default implementations of the alert fanout's
// collaborator interfaces: the in-app notification sink and the user
// directory.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// RedisSink writes in-app notification records into the product's
// notification cache. The cache is consumed strictly as a key-value store
// with TTL; the notification center reads and expires entries on its own.
type RedisSink struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(cfg config.RedisConfig, log *slog.Logger) (*RedisSink, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	ttl := cfg.NotificationTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisSink{
		rdb: rdb,
		ttl: ttl,
		log: log.With("component", "redis_notification_sink"),
	}, nil
}

// Create stores one notification record under
// notifications:{companyID}:{userID}:{id} with the configured TTL.
func (s *RedisSink) Create(ctx context.Context, notification models.Notification, companyID, userID string) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	key := fmt.Sprintf("notifications:%s:%s:%s", companyID, userID, uuid.NewString())
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisSink) Close() error {
	return s.rdb.Close()
}
