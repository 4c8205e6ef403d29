package middleware

import (
	"net/http"
	"strings"
	"time"

	"gridbench/pkg/metrics"
)

// Metrics считает запросы и их длительность по маршруту
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			start := time.Now()
			sw := wrap(w)
			next.ServeHTTP(sw, r)
			m.RecordHTTPRequest(r.Method, Route(r.URL.Path), sw.status, time.Since(start))
		})
	}
}

// Route шаблон маршрута для метрик. Идентификаторы схлопываются,
// неизвестные пути попадают в "other".
func Route(path string) string {
	switch path {
	case "/v1/search", "/v1/compare", "/v1/runs", "/v1/algorithms", "/v1/cache", "/health", "/metrics":
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/v1/runs/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/v1/runs/{id}"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/algorithms/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/v1/algorithms/{name}"
	}
	return "other"
}
