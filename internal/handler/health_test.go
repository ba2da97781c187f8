package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		redisErr   error
		withDB     bool
		dbErr      error
		wantStatus int
		wantState  string
	}{
		{"all healthy", nil, true, nil, http.StatusOK, "ok"},
		{"redis down", errors.New("connection refused"), true, nil, http.StatusServiceUnavailable, "unhealthy"},
		{"postgres down", nil, true, errors.New("dial timeout"), http.StatusServiceUnavailable, "unhealthy"},
		{"postgres not configured", nil, false, nil, http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler()
			h.AddCheck("redis", stubPinger{err: tt.redisErr})
			if tt.withDB {
				h.AddCheck("postgres", stubPinger{err: tt.dbErr})
			} else {
				h.AddCheck("postgres", nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()
			h.Readyz(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantState)
			}
			if !tt.withDB && resp.Checks["postgres"] != "not configured" {
				t.Errorf("postgres check = %q, want not configured", resp.Checks["postgres"])
			}
		})
	}
}
