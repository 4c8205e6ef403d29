package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gridbench/pkg/apperror"
	"gridbench/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// Logging пишет одну запись на запрос и кладёт логгер с request_id в контекст
func Logging(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			l := base
			if l == nil {
				l = logger.Log
			}
			l = l.With("request_id", requestID)

			sw := wrap(w)
			next.ServeHTTP(sw, r.WithContext(logger.NewContext(r.Context(), l)))

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"client", r.RemoteAddr,
			}
			switch {
			case sw.status >= http.StatusInternalServerError:
				l.Error("HTTP request failed", fields...)
			case sw.status >= http.StatusBadRequest:
				l.Warn("HTTP request rejected", fields...)
			default:
				l.Info("HTTP request completed", fields...)
			}
		})
	}
}

// Recover превращает panic обработчика в 500
func Recover(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l := base
					if l == nil {
						l = logger.Log
					}
					l.Error("panic in HTTP handler", "panic", rec, "path", r.URL.Path)
					writeError(w, http.StatusInternalServerError, string(apperror.CodeInternal), http.StatusText(http.StatusInternalServerError))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
