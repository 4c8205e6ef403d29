// Package metrics описывает Prometheus-метрики сервиса поиска.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gridbench/pkg/domain"
)

// Metrics контейнер метрик
type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Поиск
	SearchesTotal        *prometheus.CounterVec
	SearchDuration       *prometheus.HistogramVec
	SearchNodesProcessed *prometheus.HistogramVec
	SearchPathCost       *prometheus.HistogramVec
	SearchesInFlight     prometheus.Gauge

	// Эксперименты
	ScenariosTotal   *prometheus.CounterVec
	ScenarioDuration prometheus.Histogram
	VerdictsTotal    *prometheus.CounterVec

	// Кэш результатов
	CacheRequestsTotal *prometheus.CounterVec

	ServiceInfo *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

var (
	defaultMu      sync.Mutex
	defaultMetrics *Metrics
)

// New регистрирует метрики в переданном реестре
func New(reg *prometheus.Registry, namespace, subsystem string) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		SearchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "searches_total",
				Help:      "Completed searches by algorithm and outcome",
			},
			[]string{"algorithm", "outcome"},
		),
		SearchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_duration_seconds",
				Help:      "Wall clock time of a single search",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
			},
			[]string{"algorithm"},
		),
		SearchNodesProcessed: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_nodes_processed",
				Help:      "Nodes popped by A* or expanded by beam search",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 12),
			},
			[]string{"algorithm"},
		),
		SearchPathCost: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_path_cost",
				Help:      "Cost of found paths",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"algorithm"},
		),
		SearchesInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "searches_in_flight",
				Help:      "Searches currently holding a pool slot",
			},
		),

		ScenariosTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "scenarios_total",
				Help:      "Processed experiment scenarios",
			},
			[]string{"status"},
		),
		ScenarioDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "scenario_duration_seconds",
				Help:      "Wall clock time of one scenario: A* plus every beam width",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
			},
		),
		VerdictsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "comparison_verdicts_total",
				Help:      "A* versus beam search comparison verdicts",
			},
			[]string{"verdict"},
		),

		CacheRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "result_cache_requests_total",
				Help:      "Result cache lookups",
			},
			[]string{"result"},
		),

		ServiceInfo: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),

		gatherer: reg,
	}

	reg.MustRegister(NewRuntimeCollector(namespace, subsystem))

	return m
}

// InitMetrics создаёт метрики в новом реестре и делает их глобальными
func InitMetrics(namespace, subsystem string) *Metrics {
	m := New(prometheus.NewRegistry(), namespace, subsystem)

	defaultMu.Lock()
	defaultMetrics = m
	defaultMu.Unlock()

	return m
}

// Get возвращает глобальные метрики, создавая их при первом вызове
func Get() *Metrics {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultMetrics == nil {
		defaultMetrics = New(prometheus.NewRegistry(), "gridbench", "")
	}
	return defaultMetrics
}

// RecordHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSearch записывает итог одного поиска
func (m *Metrics) RecordSearch(r *domain.SearchResult) {
	if r == nil {
		return
	}

	m.SearchesTotal.WithLabelValues(r.Algorithm, string(r.Outcome())).Inc()
	m.SearchDuration.WithLabelValues(r.Algorithm).Observe(r.Elapsed.Seconds())
	m.SearchNodesProcessed.WithLabelValues(r.Algorithm).Observe(float64(r.NodesProcessed))
	if r.Found() {
		m.SearchPathCost.WithLabelValues(r.Algorithm).Observe(float64(r.Cost))
	}
}

// RecordSearchError считает поиски, отклонённые до запуска
func (m *Metrics) RecordSearchError(algorithm string) {
	m.SearchesTotal.WithLabelValues(algorithm, "error").Inc()
}

// RecordScenario считает обработанный сценарий
func (m *Metrics) RecordScenario(failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	m.ScenariosTotal.WithLabelValues(status).Inc()
}

// RecordVerdict считает вердикт сравнения
func (m *Metrics) RecordVerdict(v domain.Verdict) {
	m.VerdictsTotal.WithLabelValues(string(v)).Inc()
}

// RecordCacheLookup считает попадание или промах кэша результатов
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler отдаёт метрики своего реестра
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// StartMetricsServer запускает отдельный HTTP сервер для метрик
func (m *Metrics) StartMetricsServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
