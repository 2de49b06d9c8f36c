package ratelimit

import (
	"context"
	"fmt"
	"rightfit/pkg/logger"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultPrefix  = "rightfit:ratelimit:"
	defaultTimeout = 250 * time.Millisecond
)

// RedisOptions configures a Redis limiter.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces the counter keys.
	Prefix string
	// Timeout bounds every Redis round trip made by Allow.
	Timeout time.Duration
}

// Redis is a Limiter backed by Redis counters, shared by every replica.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

var _ Limiter = (*Redis)(nil)

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("could not ping redis: %w", err)
	}

	return NewRedisFromClient(client, opts.Prefix, opts.Timeout), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client redis.UniversalClient, prefix string, timeout time.Duration) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Redis{client: client, prefix: prefix, timeout: timeout}
}

func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) Decision {
	unlimited, window := normalize(limit, window)
	if unlimited {
		return Decision{Allowed: true, Limit: limit}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	redisKey := r.prefix + key
	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	// EXPIRE NX sets the window on the first hit and repairs a key left
	// without a TTL, never extending a running window.
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window)
		pttl = pipe.PTTL(ctx, redisKey)

		return nil
	})
	if err != nil {
		logger.Error(ctx, "redis rate limiter error", zap.String("key", redisKey), zap.Error(err))

		return Decision{Allowed: true, Limit: limit}
	}

	count := incr.Val()
	ttl := pttl.Val()
	if ttl <= 0 {
		ttl = window
	}

	return Decision{
		Allowed: int(count) <= limit,
		Count:   int(count),
		Limit:   limit,
		ResetAt: time.Now().Add(ttl),
	}
}

func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("could not close redis client: %w", err)
	}

	return nil
}
