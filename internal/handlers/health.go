package handlers

import (
	"context"
	"net/http"
	"time"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db      healthChecker
	redis   healthChecker
	timeout time.Duration
}

// NewHealthHandler takes the stores the service needs to answer requests.
// redis may be nil when rate limiting runs without it.
func NewHealthHandler(db, redis healthChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, timeout: 2 * time.Second}
}

type HealthResponse struct {
	Envelope
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

type LiveResponse struct {
	Envelope
	Status string `json:"status"`
}

func probe(ctx context.Context, c healthChecker) string {
	if c == nil {
		return ""
	}
	if err := c.Health(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

func (h *HealthHandler) check(r *http.Request) (HealthResponse, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Envelope: ok(""),
		Status:   "healthy",
		Database: probe(ctx, h.db),
		Redis:    probe(ctx, h.redis),
	}
	if resp.Database == "unhealthy" || resp.Redis == "unhealthy" {
		resp.Envelope = Envelope{Success: false, Message: "Service unavailable"}
		resp.Status = "unhealthy"
		return resp, false
	}
	return resp, true
}

// Health always answers 200 and reports the state of each dependency.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp, _ := h.check(r)
	writeJSON(w, http.StatusOK, resp)
}

// Ready answers 503 while any dependency is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp, healthy := h.check(r)
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LiveResponse{Envelope: ok(""), Status: "alive"})
}
