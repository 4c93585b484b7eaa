package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/agents"
	"github.com/aimeelabs/aimee-backend/internal/logger"
	"github.com/aimeelabs/aimee-backend/internal/memory"
	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/validation"
)

// ArrivalHandler reacts to the client reporting that the user reached a
// point of interest: it logs the visit (privacy permitting) and produces a
// short narrative about the place.
type ArrivalHandler struct {
	store    memory.Store
	registry *agents.Registry
	logger   *zap.Logger
}

// NewArrivalHandler creates a new arrival handler
func NewArrivalHandler(store memory.Store, registry *agents.Registry, logger *zap.Logger) *ArrivalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArrivalHandler{store: store, registry: registry, logger: logger}
}

// RegisterRoutes registers arrival routes
func (h *ArrivalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/aimee-arrival", h.Arrival).Methods("POST")
}

// ArrivalRequest reports arrival at a marked location. The marker id doubles
// as the visit-log location id.
type ArrivalRequest struct {
	UserID     string           `json:"userId" validate:"required,min=1,max=128"`
	MarkerID   string           `json:"markerId" validate:"required"`
	MarkerName string           `json:"markerName,omitempty"`
	Location   *models.Location `json:"location,omitempty"`
	Mode       string           `json:"mode,omitempty"`
}

// Arrival handles POST /aimee-arrival
func (h *ArrivalHandler) Arrival(w http.ResponseWriter, r *http.Request) {
	var req ArrivalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	req.MarkerName = validation.SanitizeText(req.MarkerName)
	if err := validation.Validate.Struct(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "userId and markerId are required")
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request")
		return
	}
	// Arrivals only happen in motion; idle is not a valid travel mode here.
	if req.Mode != "" && req.Mode != string(models.TripModeDrive) && req.Mode != string(models.TripModeWalk) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "mode must be 'drive' or 'walk'")
		return
	}

	ctx := r.Context()
	revisit := h.isRevisit(r, req.UserID, req.MarkerID)

	visitLogged := false
	canWrite, err := h.store.CanWrite(ctx, req.UserID)
	if err != nil {
		h.logger.Warn("privacy_check_failed", zap.String("user_id", logger.SanitizeUserID(req.UserID)), zap.Error(err))
	}
	if canWrite {
		logged, err := h.store.RecordVisit(ctx, req.UserID, req.MarkerID, req.MarkerName)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to record visit")
			return
		}
		visitLogged = logged
	}

	narrative := h.narrate(r, &req, revisit)

	writeChatResponse(w, ChatResponse{
		Success:  true,
		Agent:    models.AgentHistory,
		Response: narrative,
		Metadata: map[string]any{
			"markerId":    req.MarkerID,
			"visitLogged": visitLogged,
			"revisit":     revisit,
		},
	})
}

// isRevisit checks the stored visit history before the new entry lands.
func (h *ArrivalHandler) isRevisit(r *http.Request, userID, markerID string) bool {
	rec, found, err := h.store.Get(r.Context(), userID)
	if err != nil || !found {
		return false
	}
	for _, v := range rec.VisitHistory {
		if v.LocationID == markerID {
			return true
		}
	}
	return false
}

// narrate asks the history agent for a short piece about the place. Failures
// degrade to a plain greeting; arrival never errors because narration did.
func (h *ArrivalHandler) narrate(r *http.Request, req *ArrivalRequest, revisit bool) string {
	place := req.MarkerName
	if place == "" {
		place = req.MarkerID
	}

	historian, ok := h.registry.Get(models.AgentHistory)
	if !ok {
		return fmt.Sprintf("Welcome to %s.", place)
	}

	input := fmt.Sprintf("Tell me about %s", place)
	if revisit {
		input = fmt.Sprintf("We're back at %s. Share something new about it", place)
	}

	resp, err := historian.Respond(r.Context(), &agents.Request{
		UserID: req.UserID,
		Input:  input,
		Context: &models.ConversationContext{
			Location: req.Location,
			TripMode: models.TripMode(req.Mode),
		},
	})
	if err != nil {
		h.logger.Warn("arrival_narration_failed",
			zap.String("user_id", logger.SanitizeUserID(req.UserID)),
			zap.String("marker_id", req.MarkerID),
			zap.Error(err),
		)
		return fmt.Sprintf("Welcome to %s.", place)
	}
	return resp.Text
}
