package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kottinov/website-builder/pkg/page"
)

// DefaultRedisPrefix namespaces page keys.
const DefaultRedisPrefix = "wsb:page:"

// Redis keeps each page as one string value.
type Redis struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// OpenRedis connects to the server at url (redis://host:port/db) and checks
// it responds.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	err = retry(ctx, connectAttempts, connectDelay, func() error {
		return transient(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	s := NewRedis(client, prefix)
	s.owned = true
	return s, nil
}

// NewRedis wraps an existing client. The caller keeps ownership of it.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Key returns the redis key holding the page stored under key.
func (s *Redis) Key(key string) string {
	return s.prefix + key
}

func (s *Redis) get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *Redis) put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.Key(key), data, 0).Err()
}

func (s *Redis) Load(ctx context.Context, key string) (*page.Page, error) {
	return loadBlob(ctx, BackendRedis, s, key)
}

func (s *Redis) Save(ctx context.Context, key string, p *page.Page) error {
	return saveBlob(ctx, BackendRedis, s, key, p)
}

func (s *Redis) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*Redis)(nil)
