package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"gridbench/pkg/domain"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(prometheus.NewRegistry(), "test", "search")
}

func TestInitMetricsIsGlobal(t *testing.T) {
	m := InitMetrics("test", "global")
	if m == nil {
		t.Fatal("InitMetrics returned nil")
	}
	if Get() != m {
		t.Error("Get() should return metrics set by InitMetrics")
	}
}

func TestGetCreatesOnce(t *testing.T) {
	defaultMu.Lock()
	defaultMetrics = nil
	defaultMu.Unlock()

	m := Get()
	if m == nil || Get() != m {
		t.Error("Get() should return the same instance")
	}
}

func TestRecordSearch(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordSearch(&domain.SearchResult{
		Algorithm:      domain.AlgorithmAStar,
		Path:           []domain.Position{domain.Pos(0, 0), domain.Pos(0, 1)},
		Cost:           1,
		NodesProcessed: 2,
		Elapsed:        time.Millisecond,
	})
	m.RecordSearch(domain.NotFound(domain.AlgorithmBeam, 100, true))
	m.RecordSearch(domain.NotFound(domain.AlgorithmBeam, 3, false))
	m.RecordSearch(nil)
	m.RecordSearchError(domain.AlgorithmBeam)

	checks := []struct {
		alg, outcome string
		want         float64
	}{
		{domain.AlgorithmAStar, "found", 1},
		{domain.AlgorithmBeam, "limit_reached", 1},
		{domain.AlgorithmBeam, "exhausted", 1},
		{domain.AlgorithmBeam, "error", 1},
	}
	for _, c := range checks {
		got := testutil.ToFloat64(m.SearchesTotal.WithLabelValues(c.alg, c.outcome))
		if got != c.want {
			t.Errorf("searches_total{%s,%s} = %v, want %v", c.alg, c.outcome, got, c.want)
		}
	}

	if n := testutil.CollectAndCount(m.SearchPathCost); n != 1 {
		t.Errorf("path cost series = %d, want 1 (only found paths)", n)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordHTTPRequest("POST", "/api/v1/search", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/search", 400, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/search", "400")); got != 1 {
		t.Errorf("http_requests_total{400} = %v", got)
	}
}

func TestExperimentCounters(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordScenario(false)
	m.RecordScenario(false)
	m.RecordScenario(true)
	m.RecordVerdict(domain.VerdictTie)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	if got := testutil.ToFloat64(m.ScenariosTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("scenarios ok = %v", got)
	}
	if got := testutil.ToFloat64(m.VerdictsTotal.WithLabelValues("tie")); got != 1 {
		t.Errorf("verdict tie = %v", got)
	}
	if got := testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache miss = %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := newTestMetrics(t)
	m.SetServiceInfo("1.0.0", "test")
	m.RecordVerdict(domain.VerdictOnlyAStar)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"test_search_service_info",
		`test_search_comparison_verdicts_total{verdict="only_astar"} 1`,
		"test_search_runtime_heap_alloc_bytes",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestTimer(t *testing.T) {
	m := newTestMetrics(t)

	timer := NewTimer(m.ScenarioDuration)
	time.Sleep(5 * time.Millisecond)
	d := timer.ObserveDuration()

	if d < 5*time.Millisecond {
		t.Errorf("duration %v shorter than sleep", d)
	}
	if n := testutil.CollectAndCount(m.ScenarioDuration); n != 1 {
		t.Errorf("expected one observed series, got %d", n)
	}
}

func TestRuntimeCollector(t *testing.T) {
	c := NewRuntimeCollector("test", "rt")
	if n := testutil.CollectAndCount(c); n != 4 {
		t.Errorf("runtime collector produced %d metrics, want 4", n)
	}
}
