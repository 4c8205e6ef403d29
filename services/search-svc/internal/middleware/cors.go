package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"gridbench/pkg/config"
)

// exposedHeaders заголовки лимита, которые браузер должен видеть
var exposedHeaders = []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}

// CORS добавляет заголовки CORS и отвечает на preflight
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	}
	allowedMethods := strings.Join(methods, ", ")
	allowedHeaders := prepareAllowedHeaders(cfg.AllowedHeaders)
	exposed := strings.Join(exposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if allowed := allowedOrigin(cfg, origin); allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				if allowed != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
			w.Header().Set("Access-Control-Expose-Headers", exposed)

			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allowedOrigin значение Access-Control-Allow-Origin или пустая строка.
// С credentials "*" запрещён, поэтому origin возвращается как есть.
func allowedOrigin(cfg config.CORSConfig, origin string) string {
	if origin == "" {
		return ""
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			if cfg.AllowCredentials {
				return origin
			}
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return ""
}

// wildcardHeaders заменяют "*" в allowed_headers: JSON тело, request id и W3C trace context.
var wildcardHeaders = []string{"Accept", "Content-Type", "Origin", "X-Request-ID", "Traceparent", "Tracestate"}

// prepareAllowedHeaders раскрывает "*" и гарантирует Content-Type для JSON тел
func prepareAllowedHeaders(headers []string) string {
	if slices.Contains(headers, "*") {
		return strings.Join(wildcardHeaders, ", ")
	}
	if !slices.ContainsFunc(headers, func(h string) bool { return strings.EqualFold(h, "Content-Type") }) {
		headers = append(slices.Clip(headers), "Content-Type")
	}
	return strings.Join(headers, ", ")
}
