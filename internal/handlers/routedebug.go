package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/router"
	"github.com/aimeelabs/aimee-backend/internal/validation"
)

// RouteDebugHandler exposes a dry-run of routing for a hypothetical input.
// It never executes an agent and is only mounted in debug mode.
type RouteDebugHandler struct {
	router *router.Router
}

// NewRouteDebugHandler creates a new route debug handler
func NewRouteDebugHandler(rt *router.Router) *RouteDebugHandler {
	return &RouteDebugHandler{router: rt}
}

// RegisterRoutes registers debug routes
func (h *RouteDebugHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/aimee-route-debug", h.Inspect).Methods("POST")
}

// RouteDebugRequest asks how an input would be routed
type RouteDebugRequest struct {
	Input   string                      `json:"input"`
	Context *models.ConversationContext `json:"context,omitempty"`
}

// Inspect handles POST /aimee-route-debug
func (h *RouteDebugHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	var req RouteDebugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	req.Input = validation.SanitizeText(req.Input)
	if req.Input == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "input is required")
		return
	}

	report := h.router.Inspect(req.Input, req.Context)
	respondJSON(w, http.StatusOK, report)
}
