package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// Cache stores JSON-encoded values under a key prefix.
type Cache interface {
	// Get decodes the value at key into dest or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// GetOrSet loads and stores the value on a miss.  Concurrent misses on
	// the same key share one loader call.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	Ping(ctx context.Context) error
}

type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonSerializer) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	serializer Serializer
	group      singleflight.Group
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

func WithSerializer(s Serializer) CacheOption {
	return func(c *redisCache) { c.serializer = s }
}

// NewRedisCache returns a Cache over client.
func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:     client,
		logger:     log.Named("cache"),
		prefix:     "seqprep:",
		defaultTTL: 24 * time.Hour,
		serializer: jsonSerializer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache").WithDetail("key=" + key)
	}
	if err := c.serializer.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail("key=" + key)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail("key=" + key)
	}
	if err := c.client.Set(ctx, c.fullKey(key), string(data), ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache").WithDetail("key=" + key)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	if err := c.client.Del(ctx, fullKeys...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete from cache")
	}
	return nil
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to check cache key")
	}
	return n > 0, nil
}

func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !stderrors.Is(err, ErrCacheMiss) {
		// Read errors degrade to a miss.
		c.logger.Warn("Cache read failed, falling back to loader", logging.String("key", key), logging.Err(err))
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := c.Set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("Failed to set cache in GetOrSet", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	data, err := c.serializer.Marshal(val)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return c.serializer.Unmarshal(data, dest)
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
