package statusserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T, stats StatsFunc) *Server {
	t.Helper()
	s := New("127.0.0.1:0", stats, nil)
	return s
}

func TestHealthzReportsOK(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["ok"] {
		t.Fatalf("expected ok=true, got %v", body)
	}
}

func TestStatsReturnsProvidedSnapshot(t *testing.T) {
	type snap struct {
		Height int64 `json:"height"`
	}
	s := newTestServer(t, func() any { return snap{Height: 42} })

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	var got snap
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Height != 42 {
		t.Fatalf("expected height 42, got %d", got.Height)
	}
}

func TestMetricsExposesRegisteredCollector(t *testing.T) {
	s := newTestServer(t, nil)
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test counter"})
	counter.Inc()
	if err := s.Registry().Register(counter); err != nil {
		t.Fatalf("register: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_total 1") {
		t.Fatalf("expected test_total metric in output, got %q", rec.Body.String())
	}
}
