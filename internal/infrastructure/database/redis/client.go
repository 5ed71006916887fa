// Package redis backs the encoded-sequence cache with Redis.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeCacheError, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "redis connection failed")
)

// RedisConfig holds connection settings.  Zero durations and sizes are
// replaced by applyDefaults.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// Client wraps a go-redis client and refuses commands after Close.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient connects to cfg.Addr and verifies the connection with PING.
func NewClient(cfg *RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	})

	client := NewClientFrom(rdb, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err).WithDetail("addr=" + cfg.Addr)
	}

	log.Info("Redis client connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return client, nil
}

// NewClientFrom wraps an existing go-redis client without pinging it.
func NewClientFrom(rdb redis.UniversalClient, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, logger: log}
}

func applyDefaults(cfg *RedisConfig) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
}

func (c *Client) Ping(ctx context.Context) error {
	if c.isClosed() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rdb.Close()
	if err == nil {
		c.logger.Info("Closed Redis client")
	} else {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
	}
	return err
}

func (c *Client) GetUnderlyingClient() redis.UniversalClient {
	return c.rdb
}

// Commands

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	if c.isClosed() {
		cmd := redis.NewStringCmd(ctx)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if c.isClosed() {
		cmd := redis.NewStatusCmd(ctx)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.Set(ctx, key, value, expiration)
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		return errorIntCmd(ctx, ErrClientClosed)
	}
	return c.rdb.Del(ctx, keys...)
}

func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		return errorIntCmd(ctx, ErrClientClosed)
	}
	return c.rdb.Exists(ctx, keys...)
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func errorIntCmd(ctx context.Context, err error) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetErr(err)
	return cmd
}
