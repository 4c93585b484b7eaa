package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/agents"
	"github.com/aimeelabs/aimee-backend/internal/logger"
	"github.com/aimeelabs/aimee-backend/internal/memory"
	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/router"
	"github.com/aimeelabs/aimee-backend/internal/validation"
)

// maxInputLength caps one conversational turn; longer inputs are rejected
// rather than truncated silently.
const maxInputLength = 2000

// ChatHandler handles conversational turns
type ChatHandler struct {
	router   *router.Router
	store    memory.Store
	sessions *SessionTracker
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(rt *router.Router, store memory.Store, sessions *SessionTracker, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{router: rt, store: store, sessions: sessions, logger: logger}
}

// RegisterRoutes registers chat routes
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/aimee-chat", h.Chat).Methods("POST")
}

// ChatRequest represents one conversational turn from a client
type ChatRequest struct {
	UserID  string                      `json:"userId" validate:"required,min=1,max=128"`
	Input   string                      `json:"input" validate:"required"`
	Context *models.ConversationContext `json:"context,omitempty"`
}

// ChatResponse is the envelope returned for every turn
type ChatResponse struct {
	Success  bool           `json:"success"`
	Agent    string         `json:"agent"`
	Response string         `json:"response"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chat handles POST /aimee-chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Input = validation.SanitizeText(req.Input)
	if err := validation.Validate.Struct(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "userId and input are required")
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request")
		return
	}
	if len(req.Input) > maxInputLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "input too long")
		return
	}
	if req.Context != nil && req.Context.TripMode != "" {
		if err := validation.ValidateTripMode(string(req.Context.TripMode)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	requestID := uuid.New().String()
	start := time.Now()

	cctx := h.buildContext(r, &req)
	resp, decision := h.router.Execute(r.Context(), &agents.Request{
		UserID:  req.UserID,
		Input:   req.Input,
		Context: cctx,
	})

	if agents.IsSystemEvent(req.Input) {
		// Session boundaries also reset the in-memory transcript.
		if cctx == nil || !cctx.SessionStart {
			h.sessions.Reset(req.UserID)
		}
	} else {
		h.sessions.Append(req.UserID, "user", req.Input)
		h.sessions.Append(req.UserID, "assistant", resp.Text)
	}

	metadata := map[string]any{
		"requestId":  requestID,
		"confidence": decision.Confidence,
		"rationale":  decision.Rationale,
		"latencyMs":  time.Since(start).Milliseconds(),
	}
	for k, v := range resp.Metadata {
		metadata[k] = v
	}

	h.logger.Info("chat_turn",
		zap.String("request_id", requestID),
		zap.String("user_id", logger.SanitizeUserID(req.UserID)),
		zap.String("agent", decision.Agent),
		zap.Float64("confidence", decision.Confidence),
	)

	writeChatResponse(w, ChatResponse{
		Success:  true,
		Agent:    decision.Agent,
		Response: resp.Text,
		Metadata: metadata,
	})
}

// buildContext merges the caller-supplied context with session transcript
// and stored preferences. Store read failures degrade to a thinner context;
// a turn never fails because enrichment did.
func (h *ChatHandler) buildContext(r *http.Request, req *ChatRequest) *models.ConversationContext {
	cctx := req.Context
	if cctx == nil {
		cctx = &models.ConversationContext{}
	}

	if len(cctx.RecentTurns) == 0 {
		cctx.RecentTurns = h.sessions.Recent(req.UserID)
	}

	if cctx.Preferences == nil {
		rec, found, err := h.store.Get(r.Context(), req.UserID)
		if err != nil {
			h.logger.Warn("context_enrichment_failed",
				zap.String("user_id", logger.SanitizeUserID(req.UserID)),
				zap.Error(err),
			)
		} else if found {
			prefs := rec.Preferences
			cctx.Preferences = &prefs
		}
	}
	return cctx
}

func writeChatResponse(w http.ResponseWriter, resp ChatResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
