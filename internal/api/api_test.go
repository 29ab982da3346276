package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubReporter struct{ degraded bool }

func (s stubReporter) Degraded() bool { return s.degraded }

func TestHealthHandler(t *testing.T) {
	s := NewServer(nil)

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("GET /health body = %q, want OK", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestReadyHandlerReportsDegradation(t *testing.T) {
	cases := []struct {
		name     string
		reporter DegradationReporter
		want     string
	}{
		{"no reporter", nil, "ok"},
		{"healthy store", stubReporter{degraded: false}, "ok"},
		{"degraded store", stubReporter{degraded: true}, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewServer(tc.reporter)
			rec := httptest.NewRecorder()
			s.readyHandler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("GET /ready = %d, want %d", rec.Code, http.StatusOK)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["status"] != tc.want {
				t.Errorf("status = %v, want %s", body["status"], tc.want)
			}
		})
	}
}
