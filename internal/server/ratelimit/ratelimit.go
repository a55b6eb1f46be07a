// Package ratelimit provides per-client rate limiting, in process with
// token buckets or shared across instances through Redis.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Backend decides a single request against an endpoint budget.
type Backend interface {
	Take(ctx context.Context, key string, ec EndpointConfig) (Info, error)
}

// Limiter applies the configured whitelist, blacklist and endpoint budgets.
type Limiter struct {
	config  *Config
	backend Backend
	logger  *zap.Logger
	local   *LocalBackend
}

// NewLimiter creates an in-process limiter.
func NewLimiter(config *Config) *Limiter {
	config = withDefaults(config)
	local := NewLocalBackend(config.CleanupInterval)
	return &Limiter{config: config, backend: local, local: local, logger: zap.NewNop()}
}

// NewRedisLimiter creates a limiter whose counters live in Redis so that
// every instance shares one budget per client. Redis failures let the
// request through.
func NewRedisLimiter(config *Config, client *redis.Client, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		config:  withDefaults(config),
		backend: NewRedisBackend(client, "ratelimit"),
		logger:  logger,
	}
}

func withDefaults(config *Config) *Config {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}
	return config
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(ctx context.Context, clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	bucket := "default"
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	} else {
		bucket = method + " " + endpointConfig.Path
	}

	// Unlimited endpoint (e.g., health check)
	if endpointConfig.Limit <= 0 || endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	info, err := l.backend.Take(ctx, clientID+":"+bucket, *endpointConfig)
	if err != nil {
		l.logger.Warn("rate limit backend failed, allowing request",
			zap.String("client", clientID), zap.Error(err))
		return true, Info{Allowed: true, Limit: endpointConfig.Limit}
	}
	return info.Allowed, info
}

// Stop stops background cleanup.
func (l *Limiter) Stop() {
	if l.local != nil {
		l.local.Stop()
	}
}

// LocalBackend keeps one x/time/rate limiter per key.
type LocalBackend struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	lastAccess map[string]time.Time

	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

// NewLocalBackend starts a backend that forgets keys idle for over an hour,
// checking every cleanupInterval. A non-positive interval disables cleanup.
func NewLocalBackend(cleanupInterval time.Duration) *LocalBackend {
	b := &LocalBackend{
		limiters:   make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
	}
	if cleanupInterval > 0 {
		b.ticker = time.NewTicker(cleanupInterval)
		b.stop = make(chan struct{})
		go b.cleanup()
	}
	return b
}

// Take consumes one token for key.
func (b *LocalBackend) Take(_ context.Context, key string, ec EndpointConfig) (Info, error) {
	now := time.Now()
	burst := ec.Burst
	if burst <= 0 {
		burst = ec.Limit
	}
	perSecond := float64(ec.Limit) / ec.Window.Seconds()

	b.mu.Lock()
	lim, ok := b.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(perSecond), burst)
		b.limiters[key] = lim
	}
	b.lastAccess[key] = now
	b.mu.Unlock()

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     ec.Limit,
		Remaining: max(int(tokens), 0),
		ResetTime: now.Add(secondsToDuration((float64(burst) - tokens) / perSecond)),
	}
	if !allowed {
		info.RetryAfter = secondsToDuration((1 - tokens) / perSecond)
	}
	return info, nil
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func (b *LocalBackend) cleanup() {
	for {
		select {
		case <-b.ticker.C:
			b.evictIdle(time.Now().Add(-time.Hour))
		case <-b.stop:
			return
		}
	}
}

func (b *LocalBackend) evictIdle(cutoff time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, last := range b.lastAccess {
		if last.Before(cutoff) {
			delete(b.limiters, key)
			delete(b.lastAccess, key)
		}
	}
}

// Len reports how many keys are tracked.
func (b *LocalBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.limiters)
}

// Stop stops the cleanup goroutine.
func (b *LocalBackend) Stop() {
	b.once.Do(func() {
		if b.ticker != nil {
			b.ticker.Stop()
		}
		if b.stop != nil {
			close(b.stop)
		}
	})
}

// RedisBackend counts requests in fixed windows stored in Redis. Burst is
// not applied; a window admits Limit requests.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend creates a backend storing counters under prefix.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// Take increments the counter for key in the current window.
func (b *RedisBackend) Take(ctx context.Context, key string, ec EndpointConfig) (Info, error) {
	redisKey := b.prefix + ":" + key

	pipe := b.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Info{}, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	count := incr.Val()
	remainingTTL := ttl.Val()
	if count == 1 || remainingTTL < 0 {
		if err := b.client.PExpire(ctx, redisKey, ec.Window).Err(); err != nil {
			return Info{}, fmt.Errorf("failed to set rate window: %w", err)
		}
		remainingTTL = ec.Window
	}

	allowed := count <= int64(ec.Limit)
	info := Info{
		Allowed:   allowed,
		Limit:     ec.Limit,
		Remaining: max(ec.Limit-int(count), 0),
		ResetTime: time.Now().Add(remainingTTL),
	}
	if !allowed {
		info.RetryAfter = remainingTTL
	}
	return info, nil
}
