// Package ratelimit ограничивает частоту запросов к HTTP API поиска.
// Один поиск на большой сетке может занять минуты, поэтому лимит
// считается на клиента, а не глобально.
package ratelimit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"gridbench/pkg/config"
)

const (
	StrategySlidingWindow = "sliding_window"
	StrategyTokenBucket   = "token_bucket"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var ErrLimiterClosed = errors.New("limiter is closed")

// Limiter ограничитель запросов
type Limiter interface {
	// Allow расходует один запрос из лимита ключа
	Allow(ctx context.Context, key string) (Decision, error)
	// Reset сбрасывает состояние ключа
	Reset(ctx context.Context, key string) error
	Close() error
}

// Decision результат проверки лимита
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Config конфигурация лимитера
type Config struct {
	Requests        int
	Window          time.Duration
	Strategy        string
	Backend         string
	BurstSize       int
	CleanupInterval time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
}

// DefaultConfig 60 запросов в минуту на клиента
func DefaultConfig() *Config {
	return &Config{
		Requests:        60,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		Backend:         BackendMemory,
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// FromConfig переводит секцию rate_limit; пустые поля берутся из DefaultConfig
func FromConfig(cfg config.RateLimitConfig) *Config {
	c := DefaultConfig()
	if cfg.Requests > 0 {
		c.Requests = cfg.Requests
	}
	if cfg.Window > 0 {
		c.Window = cfg.Window
	}
	if cfg.Strategy != "" {
		c.Strategy = cfg.Strategy
	}
	if cfg.Backend != "" {
		c.Backend = cfg.Backend
	}
	if cfg.BurstSize > 0 {
		c.BurstSize = cfg.BurstSize
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	c.RedisAddr = cfg.RedisAddr
	return c
}

// New создаёт лимитер. Неизвестный бэкенд даёт memory.
func New(cfg *Config) (Limiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Backend == BackendRedis {
		return NewRedisLimiter(cfg)
	}
	return NewMemoryLimiter(cfg), nil
}

// ClientKey ключ клиента: первый адрес X-Forwarded-For, затем X-Real-IP, затем RemoteAddr
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return "ip:" + ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return "ip:" + xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return "ip:" + host
	}
	if r.RemoteAddr != "" {
		return "ip:" + r.RemoteAddr
	}
	return "unknown"
}
