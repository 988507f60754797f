package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "root", path: "/", want: "/"},
		{name: "health", path: "/health", want: "/health"},
		{name: "metrics", path: "/metrics", want: "/metrics"},
		{name: "voice analytics", path: "/api/voice/analytics", want: "/api/voice/analytics"},
		{name: "voice export", path: "/api/voice/analytics/export", want: "/api/voice/analytics/export"},
		{
			name: "workspace insights",
			path: "/api/workspaces/acme/insights",
			want: "/api/workspaces/{workspace}/insights",
		},
		{
			name: "workspace export",
			path: "/api/workspaces/acme/insights/export",
			want: "/api/workspaces/{workspace}/insights/export",
		},
		{
			name: "lesson insights",
			path: "/api/workspaces/acme/lessons/intro/insights",
			want: "/api/workspaces/{workspace}/lessons/{lesson}/insights",
		},
		{
			name: "lesson export",
			path: "/api/workspaces/acme/lessons/intro/insights/export",
			want: "/api/workspaces/{workspace}/lessons/{lesson}/insights/export",
		},
		{
			name: "unknown workspace subpath",
			path: "/api/workspaces/acme/settings",
			want: "/api/workspaces/{workspace}/unknown",
		},
		{name: "unknown path", path: "/api/other", want: "/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// gatherRequestsTotal returns counter values keyed by "method path status".
func gatherRequestsTotal(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}

	counts := make(map[string]float64)
	for _, family := range families {
		if family.GetName() != MetricHTTPRequestsTotal {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			key := labels["method"] + " " + labels["path"] + " " + labels["status"]
			counts[key] = metric.GetCounter().GetValue()
		}
	}
	return counts
}

func TestHTTPMetrics_RecordsRequests(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("report"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/acme/insights", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	counts := gatherRequestsTotal(t, reg)
	if counts["GET /api/workspaces/{workspace}/insights 200"] != 1 {
		t.Errorf("counts = %v, want normalized path counter at 1", counts)
	}
}

func TestHTTPMetrics_ExcludesProbes(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if counts := gatherRequestsTotal(t, reg); len(counts) != 0 {
		t.Errorf("probe endpoints recorded metrics: %v", counts)
	}
}

func TestHTTPMetrics_StatusLabel(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	handler := HTTPMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/nope/insights", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	counts := gatherRequestsTotal(t, reg)
	if counts["GET /api/workspaces/{workspace}/insights 404"] != 1 {
		t.Errorf("counts = %v, want 404 label", counts)
	}
}

func TestMetricsRegisterGathersAllFamilies(t *testing.T) {
	metrics := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	metrics.ObserveHTTPRequest("GET", "/metrics", "200", 0.01, 0, 128)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}

	want := map[string]bool{
		MetricHTTPRequestDuration:   false,
		MetricHTTPRequestsTotal:     false,
		MetricHTTPRequestSizeBytes:  false,
		MetricHTTPResponseSizeBytes: false,
	}
	for _, family := range families {
		if _, ok := want[family.GetName()]; ok {
			want[family.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not found in gathered metrics", name)
		}
	}
}
