package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gritgym/internal/adapters/http/perf"
)

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}

// captureLogs routes slog output into a buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// TestTiming_RecordsDashboardRoutes records page, API and export requests and
// counts only 5xx responses as failures.
func TestTiming_RecordsDashboardRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		code       int
		wantRecord bool
		wantFailed int
	}{
		{"payments page", "GET", "/payments", http.StatusOK, true, 0},
		{"csv export", "GET", "/payments/export.csv", http.StatusOK, true, 0},
		{"refused approve", "POST", "/api/payments/p1/approve", http.StatusConflict, true, 0},
		{"analytics store down", "GET", "/api/analytics", http.StatusInternalServerError, true, 1},
		{"static asset", "GET", "/static/app.css", http.StatusOK, false, 0},
		{"session socket", "GET", "/ws/session", http.StatusOK, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := perf.NewCollector(16)
			rr := httptest.NewRecorder()
			Timing(collector, time.Second)(statusHandler(tt.code)).ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			if rr.Code != tt.code {
				t.Errorf("status = %d, want %d", rr.Code, tt.code)
			}
			if !tt.wantRecord {
				if n := collector.TotalRecorded(); n != 0 {
					t.Errorf("recorded %d entries for %s", n, tt.path)
				}
				return
			}
			snap := collector.Snapshot(time.Time{}, 5)
			if len(snap.SlowestPaths) != 1 {
				t.Fatalf("paths = %+v", snap.SlowestPaths)
			}
			got := snap.SlowestPaths[0]
			if got.Op != tt.method+" "+tt.path || got.Count != 1 || got.Failures != tt.wantFailed {
				t.Errorf("stat = %+v", got)
			}
		})
	}
}

// TestTiming_SlowThreshold logs at WARN only at or above the threshold.
func TestTiming_SlowThreshold(t *testing.T) {
	tests := []struct {
		name     string
		slow     time.Duration
		sleep    time.Duration
		wantSlow bool
	}{
		{"disabled", 0, 2 * time.Millisecond, false},
		{"under threshold", time.Hour, 0, false},
		{"over threshold", time.Millisecond, 3 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			h := Timing(nil, tt.slow)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(tt.sleep)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/members", nil))

			out := logs.String()
			if got := strings.Contains(out, "slow_request"); got != tt.wantSlow {
				t.Errorf("slow_request logged = %v, want %v: %s", got, tt.wantSlow, out)
			}
			if !strings.Contains(out, "path=/members") {
				t.Errorf("path missing from log: %s", out)
			}
		})
	}
}

// TestTiming_ImplicitOK records 200 when the handler only writes a body.
func TestTiming_ImplicitOK(t *testing.T) {
	collector := perf.NewCollector(4)
	h := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payments":[]}`))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/payments", nil))

	snap := collector.Snapshot(time.Time{}, 1)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Failures != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

// TestTiming_UnwrapsForUpgrade exposes the original writer to ResponseController.
func TestTiming_UnwrapsForUpgrade(t *testing.T) {
	rr := httptest.NewRecorder()
	var inner http.ResponseWriter
	h := Timing(nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := w.(interface{ Unwrap() http.ResponseWriter }); ok {
			inner = u.Unwrap()
		}
	}))
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/analytics", nil))
	if inner != rr {
		t.Error("wrapped writer does not unwrap to the recorder")
	}
}

// TestTiming_PooledWriterResetsStatus keeps one request's status out of the next.
func TestTiming_PooledWriterResetsStatus(t *testing.T) {
	collector := perf.NewCollector(8)
	fail := Timing(collector, 0)(statusHandler(http.StatusBadGateway))
	ok := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 3; i++ {
		fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/notifications/n1/retry", nil))
		ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/notifications", nil))
	}

	snap := collector.Snapshot(time.Time{}, 5)
	for _, s := range snap.SlowestPaths {
		want := 0
		if s.Op == "POST /api/notifications/n1/retry" {
			want = 3
		}
		if s.Count != 3 || s.Failures != want {
			t.Errorf("%s: %+v", s.Op, s)
		}
	}
}

func BenchmarkTiming(b *testing.B) {
	h := Timing(perf.NewCollector(perf.DefaultRingSize), 0)(statusHandler(http.StatusOK))
	req := httptest.NewRequest("GET", "/payments", nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
