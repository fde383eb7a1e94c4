package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HammerMeetNail/fittrack/internal/testutil"
)

type stubChecker struct{ err error }

func (s stubChecker) Health(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name      string
		db, redis healthChecker
		wantReady int
		wantState string
		wantOK    bool
	}{
		{name: "all healthy", db: stubChecker{}, redis: stubChecker{}, wantReady: http.StatusOK, wantState: "healthy", wantOK: true},
		{name: "no redis", db: stubChecker{}, wantReady: http.StatusOK, wantState: "healthy", wantOK: true},
		{name: "db down", db: stubChecker{err: errors.New("down")}, redis: stubChecker{}, wantReady: http.StatusServiceUnavailable, wantState: "unhealthy"},
		{name: "redis down", db: stubChecker{}, redis: stubChecker{err: errors.New("down")}, wantReady: http.StatusServiceUnavailable, wantState: "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, tt.redis)

			rr := httptest.NewRecorder()
			handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			testutil.AssertStatusCode(t, rr, http.StatusOK)
			testutil.AssertJSONContains(t, rr.Body.Bytes(), "status", tt.wantState)
			testutil.AssertJSONContains(t, rr.Body.Bytes(), "success", tt.wantOK)

			rr = httptest.NewRecorder()
			handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
			testutil.AssertStatusCode(t, rr, tt.wantReady)
			testutil.AssertJSONContains(t, rr.Body.Bytes(), "success", tt.wantOK)
		})
	}
}

func TestHealthHandler_Live(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(nil, nil).Live(rr, httptest.NewRequest(http.MethodGet, "/live", nil))

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "status", "alive")
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "success", true)
}
