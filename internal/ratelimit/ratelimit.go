// Package ratelimit caps how often a client may start a test generation.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"mocktest-service/internal/logger"
)

var ErrLimited = errors.New("generation rate limit exceeded")

// Counter increments a key and returns the count within the current window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client *redis.Client
}

func (r *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

// NewRedisClient parses a redis:// URI. An empty URI returns nil, which
// disables limiting.
func NewRedisClient(ctx context.Context, uri string, log *logger.Logger) (*redis.Client, error) {
	if uri == "" {
		log.Warn("Redis URI is empty, generation rate limiting is disabled")
		return nil, nil
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid redis uri: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("Error connecting to Redis", "error", err)
	}
	return client, nil
}

// Limiter is a fixed-window counter.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	prefix  string
	log     *logger.Logger
}

func New(client *redis.Client, limit int, window time.Duration, log *logger.Logger) *Limiter {
	var counter Counter
	if client != nil {
		counter = &redisCounter{client: client}
	}
	return NewWithCounter(counter, limit, window, log)
}

func NewWithCounter(counter Counter, limit int, window time.Duration, log *logger.Logger) *Limiter {
	if log == nil {
		log = logger.Nop()
	}
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		prefix:  "mocktest:ratelimit:generation:",
		log:     log,
	}
}

// Allow returns ErrLimited once key exceeds the limit for the window. Counter
// errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	if l == nil || l.counter == nil || l.limit <= 0 {
		return nil
	}
	count, err := l.counter.Incr(ctx, l.prefix+key, l.window)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request", "key", key, "error", err)
		return nil
	}
	if count > int64(l.limit) {
		return fmt.Errorf("%w: %d requests in %s", ErrLimited, count, l.window)
	}
	return nil
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := l.Allow(c.Request.Context(), c.ClientIP()); err != nil {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many test generations, please try again later",
				"error":   "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
