package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/storage"
)

// KV stores values under "<namespace>:<session>:<key>" with a TTL that is
// refreshed on every write.
type KV struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewKV creates a KV for one session namespace.
func NewKV(client *redis.Client, namespace, sessionID string, ttl time.Duration) *KV {
	return &KV{
		client: client,
		prefix: namespace + ":" + sessionID + ":",
		ttl:    ttl,
	}
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *KV) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Provider hands out local ("sf:local") and session ("sf:session") KVs
// sharing one client.
type Provider struct {
	client     *redis.Client
	localTTL   time.Duration
	sessionTTL time.Duration
}

// NewProvider creates a Provider.
func NewProvider(client *redis.Client, localTTL, sessionTTL time.Duration) *Provider {
	return &Provider{client: client, localTTL: localTTL, sessionTTL: sessionTTL}
}

func (p *Provider) Local(sessionID string) storage.KV {
	return NewKV(p.client, "sf:local", sessionID, p.localTTL)
}

func (p *Provider) Session(sessionID string) storage.KV {
	return NewKV(p.client, "sf:session", sessionID, p.sessionTTL)
}

func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
