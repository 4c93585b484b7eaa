package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aimeelabs/aimee-backend/internal/memory"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	store memory.Store
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(store memory.Store) *HealthChecker {
	return &HealthChecker{store: store}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")

	// The voice agent treats anything but status == "ok" as down.
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if mode == "extended" {
		checks := make(map[string]string)

		// Confirms the memory file is readable end to end.
		if _, err := h.store.Users(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["memory"] = "unhealthy: " + err.Error()
		} else {
			checks["memory"] = "ok"
		}

		response.Checks = checks

		statusCode := http.StatusOK
		if response.Status != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
		return
	}

	// Basic mode - just return that the server is running
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
