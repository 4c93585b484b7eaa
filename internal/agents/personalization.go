package agents

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/memory"
	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/prompts"
	"github.com/aimeelabs/aimee-backend/internal/services/ai"
)

// SystemEventPrefix marks reserved system signals that are not user speech.
const SystemEventPrefix = "[SYSTEM:"

// IsSystemEvent reports whether the input is a reserved system signal.
func IsSystemEvent(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), SystemEventPrefix)
}

var personalCues = []string{
	"my name", "call me", "i prefer", "i like", "i love", "i hate",
	"i don't like", "remember", "favorite", "favourite", "preference",
	"privacy", "don't track", "forget", "stop remembering", "i am", "i'm",
}

var (
	userNamePattern = regexp.MustCompile(`(?i)\b(?:my name is|call me|i am|i'm)\s+([A-Za-z][A-Za-z'\-]*)`)
	interestPattern = regexp.MustCompile(`(?i)\bi (?:like|love|enjoy|am interested in)\s+([a-z][a-z '\-]{1,40})`)
)

var (
	privacyOnCues  = []string{"privacy mode", "don't track", "stop remembering", "forget me"}
	privacyOffCues = []string{"disable privacy", "privacy off", "start remembering", "remember me again"}
)

// PersonalizationAgent learns and recalls user facts. It is the only agent
// that reads and writes the memory store, and it intercepts system session
// events before normal routing applies.
type PersonalizationAgent struct {
	provider ai.CompletionProvider
	prompts  *prompts.Set
	store    memory.Store
	logger   *zap.Logger
}

// NewPersonalizationAgent creates the personalization agent.
func NewPersonalizationAgent(provider ai.CompletionProvider, promptSet *prompts.Set, store memory.Store, logger *zap.Logger) *PersonalizationAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonalizationAgent{provider: provider, prompts: promptSet, store: store, logger: logger}
}

// Name implements Agent.
func (a *PersonalizationAgent) Name() string { return models.AgentPersonalization }

// CanHandle accepts system events and personal statements.
func (a *PersonalizationAgent) CanHandle(input string, cctx *models.ConversationContext) bool {
	if IsSystemEvent(input) {
		return true
	}
	return containsAny(strings.ToLower(input), personalCues)
}

// Confidence implements the deeper estimate used by router fallback polling.
func (a *PersonalizationAgent) Confidence(input string, cctx *models.ConversationContext) float64 {
	if IsSystemEvent(input) {
		return 1.0
	}
	lower := strings.ToLower(input)
	if userNamePattern.MatchString(input) {
		return 0.9
	}
	score := 0.15 * float64(countCues(lower, personalCues))
	if score > 0.8 {
		score = 0.8
	}
	return score
}

// Respond implements Agent.
func (a *PersonalizationAgent) Respond(ctx context.Context, req *Request) (*Response, error) {
	if IsSystemEvent(req.Input) {
		return a.handleSystemEvent(ctx, req)
	}

	if resp, handled, err := a.handlePrivacyCommand(ctx, req); handled {
		return resp, err
	}

	patch := extractPatch(req.Input)

	canWrite, err := a.store.CanWrite(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("privacy check failed: %w", err)
	}

	meta := map[string]any{}
	if !patch.IsEmpty() {
		if canWrite {
			if _, err := a.store.Merge(ctx, req.UserID, patch); err != nil {
				return nil, fmt.Errorf("memory merge failed: %w", err)
			}
			meta["memoryUpdated"] = true
		} else {
			// Long-term writes are gated, but trip-scoped notes stay allowed.
			a.stashTripPreferences(ctx, req.UserID, patch)
			meta["memoryUpdated"] = false
			meta["privacyBlocked"] = true
		}
	}

	text, llmPatch := a.acknowledge(ctx, req, patch)
	if llmPatch != nil && canWrite {
		if _, err := a.store.Merge(ctx, req.UserID, llmPatch); err != nil {
			a.logger.Warn("directive_merge_failed",
				zap.String("user_id", req.UserID),
				zap.Error(err),
			)
		} else {
			meta["memoryUpdated"] = true
		}
	}

	return &Response{Text: text, MemoryPatch: patch, Metadata: meta}, nil
}

// handleSystemEvent produces greetings for session start/reconnect and
// finalizes the active trip on session end. No routing or classification
// applies to these signals.
func (a *PersonalizationAgent) handleSystemEvent(ctx context.Context, req *Request) (*Response, error) {
	lower := strings.ToLower(req.Input)

	rec, found, err := a.store.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("memory read failed: %w", err)
	}
	name := ""
	if found {
		name = rec.Name
	}

	switch {
	case strings.Contains(lower, "session end") || strings.Contains(lower, "ending"):
		tripEnded := false
		if _, err := a.store.EndTrip(ctx, req.UserID); err == nil {
			tripEnded = true
		} else if !errors.Is(err, memory.ErrNoActiveTrip) {
			return nil, fmt.Errorf("trip finalize failed: %w", err)
		}
		text := "Safe travels! I'll be here next time you need me."
		if name != "" {
			text = fmt.Sprintf("Safe travels, %s! I'll be here next time you need me.", name)
		}
		return &Response{
			Text:     text,
			Metadata: map[string]any{"sessionEvent": "session_end", "tripEnded": tripEnded},
		}, nil

	case strings.Contains(lower, "reconnect"):
		text := "Welcome back! Glad you're here again. How can I help?"
		if name != "" {
			text = fmt.Sprintf("Welcome back, %s! Glad you're here again. How can I help?", name)
		}
		return &Response{
			Text:     text,
			Metadata: map[string]any{"sessionEvent": "reconnection", "knownUser": name != ""},
		}, nil

	default: // new session
		var text string
		if name != "" {
			text = fmt.Sprintf("Welcome back, %s! Ready for another adventure?", name)
		} else {
			text = "Hi there! I'm AImee, your tour guide. What should I call you?"
		}
		return &Response{
			Text:     text,
			Metadata: map[string]any{"sessionEvent": "session_start", "knownUser": name != ""},
		}, nil
	}
}

// handlePrivacyCommand toggles privacy mode on explicit request. Returns
// handled=false when the input is not a privacy command.
func (a *PersonalizationAgent) handlePrivacyCommand(ctx context.Context, req *Request) (*Response, bool, error) {
	lower := strings.ToLower(req.Input)

	var enabled bool
	switch {
	case containsAny(lower, privacyOnCues):
		enabled = true
	case containsAny(lower, privacyOffCues):
		enabled = false
	default:
		return nil, false, nil
	}

	settings, err := a.store.SetPrivacy(ctx, req.UserID, &models.PrivacyPatch{Enabled: &enabled})
	if err != nil {
		return nil, true, fmt.Errorf("privacy update failed: %w", err)
	}

	text := "Okay, privacy mode is on. I'll stop saving things about you, though I can still help during this trip."
	if !settings.Enabled {
		text = "Got it, privacy mode is off. I'll remember your preferences again."
	}
	return &Response{
		Text:     text,
		Metadata: map[string]any{"privacyEnabled": settings.Enabled},
	}, true, nil
}

// stashTripPreferences downgrades long-term preference writes to trip-scoped
// temporary preferences while privacy mode is active.
func (a *PersonalizationAgent) stashTripPreferences(ctx context.Context, userID string, patch *models.UserMemoryPatch) {
	if patch.Preferences == nil {
		return
	}
	for _, interest := range patch.Preferences.Interests {
		if err := a.store.AddTemporaryPreference(ctx, userID, interest); err != nil && !errors.Is(err, memory.ErrNoActiveTrip) {
			a.logger.Warn("temporary_preference_failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	for _, rp := range patch.Preferences.RoutePreferences {
		if err := a.store.AddTemporaryPreference(ctx, userID, rp.Type); err != nil && !errors.Is(err, memory.ErrNoActiveTrip) {
			a.logger.Warn("temporary_preference_failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// acknowledge produces the spoken reply, via the LLM when available. Any
// structured memory block the model emits is extracted as a second patch and
// stripped from the display text.
func (a *PersonalizationAgent) acknowledge(ctx context.Context, req *Request, patch *models.UserMemoryPatch) (string, *models.UserMemoryPatch) {
	if a.provider == nil {
		return cannedAck(patch), nil
	}

	system := a.prompts.System(models.AgentPersonalization) + contextNotes(req.Context, "")
	text, err := a.provider.Complete(ctx, system, buildMessages(req))
	if err != nil {
		a.logger.Warn("personalization_completion_failed",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		return cannedAck(patch), nil
	}
	llmPatch, cleaned := parseMemoryDirective(text, a.logger)
	return cleaned, llmPatch
}

func cannedAck(patch *models.UserMemoryPatch) string {
	if patch != nil && patch.Name != nil {
		return fmt.Sprintf("Nice to meet you, %s! I'll remember that.", *patch.Name)
	}
	if patch != nil && !patch.IsEmpty() {
		return "Noted! I'll keep that in mind for your trip."
	}
	return "Tell me a bit about yourself and I'll tailor the tour to you."
}

// extractPatch pulls structured facts out of literal statements: names,
// interests, story-length wishes, and route-style preferences.
func extractPatch(input string) *models.UserMemoryPatch {
	patch := &models.UserMemoryPatch{}
	lower := strings.ToLower(input)

	if m := userNamePattern.FindStringSubmatch(input); m != nil {
		name := capitalize(m[1])
		patch.Name = &name
	}

	if m := interestPattern.FindStringSubmatch(lower); m != nil {
		interest := strings.TrimSpace(m[1])
		if interest != "" && !isPronounOnly(interest) {
			ensurePreferences(patch).Interests = append(patch.Preferences.Interests, interest)
		}
	}

	if sl := extractStoryLength(lower); sl != "" {
		v := sl
		ensurePreferences(patch).StoryLength = &v
	}

	for _, rp := range extractRoutePreferences(lower) {
		ensurePreferences(patch).RoutePreferences = append(patch.Preferences.RoutePreferences, rp)
	}

	return patch
}

func ensurePreferences(patch *models.UserMemoryPatch) *models.PreferencesPatch {
	if patch.Preferences == nil {
		patch.Preferences = &models.PreferencesPatch{}
	}
	return patch.Preferences
}

func extractStoryLength(lower string) models.StoryLength {
	switch {
	case strings.Contains(lower, "keep it short") ||
		strings.Contains(lower, "short stories") ||
		strings.Contains(lower, "keep stories short"):
		return models.StoryLengthShort
	case strings.Contains(lower, "more detail") ||
		strings.Contains(lower, "longer stories") ||
		strings.Contains(lower, "full story"):
		return models.StoryLengthDeep
	}
	return ""
}

func extractRoutePreferences(lower string) []models.RoutePreference {
	var prefs []models.RoutePreference
	if strings.Contains(lower, "scenic") {
		prefs = append(prefs, models.RoutePreference{Type: "scenic", Confidence: models.RouteConfidenceMedium})
	}
	if strings.Contains(lower, "avoid highways") || strings.Contains(lower, "no highways") {
		prefs = append(prefs, models.RoutePreference{Type: "avoid_highways", Confidence: models.RouteConfidenceMedium})
	}
	if strings.Contains(lower, "fastest route") || strings.Contains(lower, "fastest way") {
		prefs = append(prefs, models.RoutePreference{Type: "fastest", Confidence: models.RouteConfidenceMedium})
	}
	return prefs
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// isPronounOnly filters degenerate interest captures like "it" or "them".
func isPronounOnly(s string) bool {
	switch s {
	case "it", "them", "that", "this", "you":
		return true
	}
	return false
}
