package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const flashKeyPrefix = "storefront:flash:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis", slog.String("addr", addr))

	return NewRedisStoreFromClient(client, ttl), nil
}

func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func flashKey(sessionID string) string {
	return flashKeyPrefix + sessionID
}

// SetFlash stores the flash with the session TTL, replacing any pending one
func (s *RedisStore) SetFlash(ctx context.Context, sessionID string, f Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}

	return s.client.Set(ctx, flashKey(sessionID), data, s.ttl).Err()
}

// PopFlash reads and deletes the flash in one GETDEL round trip
func (s *RedisStore) PopFlash(ctx context.Context, sessionID string) (*Flash, error) {
	val, err := s.client.GetDel(ctx, flashKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var f Flash
	if err := json.Unmarshal([]byte(val), &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flash: %w", err)
	}
	return &f, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
