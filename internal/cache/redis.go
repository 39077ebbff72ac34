package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/ByLCY/justify/layout"
)

// RedisStore keeps results in Redis so several `serve` instances share them.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ Cache = (*RedisStore)(nil)

type Option func(*RedisStore)

// WithTTL sets the expiration of cached results.
func WithTTL(ttl time.Duration) Option {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

const defaultPrefix = "justify:"

// NewRedis connects to the Redis server at address.
func NewRedis(address, password string, db int, opts ...Option) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(rdb, opts...)
}

// NewRedisFromClient creates a store from an existing client.
func NewRedisFromClient(client *backend.Client, opts ...Option) *RedisStore {
	store := &RedisStore{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) key(k string) string {
	return s.prefix + "result:" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (*layout.Result, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: 读取 redis 失败: %w", err)
	}
	res, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, res *layout.Result) error {
	data, err := encode(res)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: 写入 redis 失败: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
