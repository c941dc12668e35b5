package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "assist:pending_intent:"

// RedisStore keeps pending-intent slots in Redis so the state survives
// process restarts and is shared across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisStore connects to Redis from a URL (redis://host:port/db) and
// verifies the connection.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration, logger *logrus.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	logger.WithFields(logrus.Fields{
		"addr": opts.Addr,
		"ttl":  ttl,
	}).Info("Session store connected to redis")

	return &RedisStore{client: client, ttl: ttl, log: logger}, nil
}

// GetPendingIntent returns the pending intent for a session, or "".
func (s *RedisStore) GetPendingIntent(ctx context.Context, sessionID string) (string, error) {
	val, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading pending intent: %w", err)
	}
	return val, nil
}

// SetPendingIntent stores the pending intent with the configured TTL.
func (s *RedisStore) SetPendingIntent(ctx context.Context, sessionID, intent string) error {
	if err := s.client.Set(ctx, keyPrefix+sessionID, intent, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing pending intent: %w", err)
	}
	return nil
}

// ClearPendingIntent deletes the pending intent slot.
func (s *RedisStore) ClearPendingIntent(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clearing pending intent: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
