package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hikari-dev/pjsk-card/internal/domain"
)

const defaultKeyPrefix = "pjsk:session:"

// SessionStore is the redis-backed session tier for multi-instance hosts
// where an in-process map is not enough. It implements the same contract as
// the memory driver; the durable file tier stays the source of truth across
// expiry.
type SessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Option configures the redis session store.
type Option func(*SessionStore)

// WithKeyPrefix overrides the redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *SessionStore) { s.prefix = prefix }
}

// WithTTL sets an expiry on the redis keys. Zero keeps them until the
// durable-tier TTL evicts the session on the next cold read.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) { s.ttl = ttl }
}

func NewSessionStore(client *redis.Client, opts ...Option) *SessionStore {
	s := &SessionStore{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) redisKey(key domain.SessionKey) string {
	return s.prefix + key.String()
}

func (s *SessionStore) Get(ctx context.Context, key domain.SessionKey) (*domain.RenderConfig, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var cfg domain.RenderConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", key, err)
	}
	return &cfg, nil
}

func (s *SessionStore) Set(ctx context.Context, key domain.SessionKey, cfg *domain.RenderConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Exists(ctx context.Context, key domain.SessionKey) (bool, error) {
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}
