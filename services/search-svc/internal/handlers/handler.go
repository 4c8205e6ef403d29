// Package handlers HTTP API сервиса поиска
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gridbench/pkg/apperror"
	"gridbench/pkg/logger"
	"gridbench/pkg/metrics"
	"gridbench/services/search-svc/internal/service"
)

const defaultMaxBodyBytes = 1 << 20

// Handler обработчики /v1
type Handler struct {
	svc          *service.SearchService
	metrics      *metrics.Metrics
	log          *slog.Logger
	version      string
	maxBodyBytes int64
	startedAt    time.Time
}

// Option настраивает Handler
type Option func(*Handler)

// WithMetrics задаёт набор метрик; он же отдаётся на /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithLogger задаёт логгер
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithVersion версия для /health
func WithVersion(v string) Option {
	return func(h *Handler) { h.version = v }
}

// WithMaxBodyBytes ограничение размера тела запроса
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// New создаёт Handler
func New(svc *service.SearchService, opts ...Option) *Handler {
	h := &Handler{
		svc:          svc,
		maxBodyBytes: defaultMaxBodyBytes,
		startedAt:    time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = metrics.Get()
	}
	if h.log == nil {
		h.log = logger.WithService("search-svc")
	}
	return h
}

// Routes регистрирует маршруты
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/search", h.Search)
	mux.HandleFunc("POST /v1/compare", h.Compare)
	mux.HandleFunc("GET /v1/runs", h.ListRuns)
	mux.HandleFunc("GET /v1/runs/{id}", h.GetRun)
	mux.HandleFunc("GET /v1/algorithms", h.Algorithms)
	mux.HandleFunc("GET /v1/algorithms/{name}", h.Algorithm)
	mux.HandleFunc("GET /v1/cache", h.CacheStats)
	mux.HandleFunc("DELETE /v1/cache", h.InvalidateCache)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", h.metrics.Handler())
	return mux
}

// Health статус процесса
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"storage":        "ok",
	}
	status := http.StatusOK
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.Warn("Storage health check failed", "error", err)
		body["status"] = "degraded"
		body["storage"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

// errorBody тело ответа с ошибкой
type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    apperror.ErrorCode `json:"code"`
	Message string             `json:"message"`
	Field   string             `json:"field,omitempty"`
	Details map[string]any     `json:"details,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)

	payload := errorPayload{Code: apperror.Code(err), Message: err.Error()}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		payload.Message = appErr.Message
		payload.Field = appErr.Field
		payload.Details = appErr.Details
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.log).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		payload.Message = http.StatusText(status)
		payload.Details = nil
	}
	writeJSON(w, status, errorBody{Error: payload})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// ответ уже начат, ошибку записи сообщить некуда
	_ = json.NewEncoder(w).Encode(v)
}

// decode читает JSON тело; неизвестные поля запрещены
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.New(apperror.CodeNilInput, "request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.New(apperror.CodeInvalidArgument, "request body too large").
				WithDetails("limit", tooLarge.Limit)
		}
		return apperror.Wrap(err, apperror.CodeInvalidArgument, "malformed JSON: "+err.Error())
	}
	return nil
}
