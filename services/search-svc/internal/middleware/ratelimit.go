package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"gridbench/pkg/apperror"
	"gridbench/pkg/logger"
	"gridbench/pkg/ratelimit"
)

// RateLimitConfig настройки ограничения запросов
type RateLimitConfig struct {
	Limiter      ratelimit.Limiter
	KeyExtractor func(r *http.Request) string
	ExcludePaths map[string]bool
	Logger       *slog.Logger
}

// RateLimit отклоняет запросы сверх лимита клиента с 429.
// Ошибка лимитера пропускает запрос.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = ratelimit.ClientKey
	}
	if cfg.ExcludePaths == nil {
		cfg.ExcludePaths = map[string]bool{"/health": true, "/metrics": true}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Log
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.ExcludePaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyExtractor(r)
			d, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				cfg.Logger.Warn("Rate limit check failed", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				retry := int(math.Ceil(d.RetryAfter.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				cfg.Logger.Warn("Rate limit exceeded", "key", key, "limit", d.Limit, "retry_after", d.RetryAfter)
				writeError(w, http.StatusTooManyRequests, string(apperror.CodeRateLimited), "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
