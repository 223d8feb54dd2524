package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const idempotencyKeyHeader = "Idempotency-Key"

// RedisDeduper stores claimed idempotency keys in Redis so all instances
// reject replayed create requests.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(userID, key string) string {
	return fmt.Sprintf("%s:%s", userID, key)
}

// Add records the key if it does not already exist. It returns true when the
// key was newly added.
func (r *RedisDeduper) Add(ctx context.Context, userID, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(userID, key), 1, r.ttl).Result()
}

// Remove deletes a previously recorded key. It is used when the guarded
// operation fails so the caller may retry.
func (r *RedisDeduper) Remove(ctx context.Context, userID, key string) error {
	return r.client.Del(ctx, r.key(userID, key)).Err()
}

// reserveKey claims the request's Idempotency-Key header for the user.
// duplicate is true when the key was already claimed within the TTL.
func reserveKey(ctx context.Context, c echo.Context, deduper Deduper, userID string) (key string, duplicate bool, err error) {
	if deduper == nil {
		return "", false, nil
	}
	key = strings.TrimSpace(c.Request().Header.Get(idempotencyKeyHeader))
	if key == "" {
		return "", false, nil
	}
	added, err := deduper.Add(ctx, userID, key)
	if err != nil {
		return "", false, err
	}
	return key, !added, nil
}

// releaseKey frees a claimed key after the guarded operation failed.
func releaseKey(deduper Deduper, userID, key string, logger *log.Logger) {
	if deduper == nil || key == "" {
		return
	}
	if err := deduper.Remove(context.Background(), userID, key); err != nil && logger != nil {
		logger.WithError(err).WithField("key", key).Error("idempotency key rollback failed")
	}
}
