package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces identity keys
const DefaultRedisPrefix = "ghostwriter:identity:"

// RedisStore keeps identities in redis, keyed by a profile name, so several
// machines sharing a profile resolve to the same player. Redis enforces the
// TTL through key expiry.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisStore creates a store for one profile
func NewRedisStore(client *redis.Client, profile string, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		key:    DefaultRedisPrefix + profile,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// GetOrCreate returns the profile's id, creating it if absent or expired
func (s *RedisStore) GetOrCreate(ctx context.Context) (string, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		r, derr := decodeRecord(data)
		if derr == nil && !r.expired(s.now(), s.ttl) {
			return r.UUID, nil
		}
		if derr != nil {
			s.logger.Warn("identity record corrupt, regenerating", "key", s.key, "error", derr)
		}
		if err := s.client.Del(ctx, s.key).Err(); err != nil {
			return "", fmt.Errorf("drop identity: %w", err)
		}
	case errors.Is(err, redis.Nil):
	default:
		return "", fmt.Errorf("read identity: %w", err)
	}

	r := newRecord(s.now())
	payload, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	created, err := s.client.SetNX(ctx, s.key, payload, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("write identity: %w", err)
	}
	if created {
		return r.UUID, nil
	}

	// another process created it first
	data, err = s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return "", fmt.Errorf("read identity: %w", err)
	}
	existing, err := decodeRecord(data)
	if err != nil {
		return "", err
	}
	return existing.UUID, nil
}
