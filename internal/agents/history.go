package agents

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/prompts"
	"github.com/aimeelabs/aimee-backend/internal/services/ai"
)

var historyCues = []string{
	"history", "historical", "tell me about", "what happened", "story",
	"who was", "who built", "when was", "founded", "built", "heritage",
	"monument", "marker", "battle", "war", "century", "old", "museum",
}

var historyQuestionPrefixes = []string{"what", "who", "when", "how", "why", "tell me"}

// HistoryAgent narrates the history of places and landmarks.
type HistoryAgent struct {
	provider ai.CompletionProvider
	prompts  *prompts.Set
	logger   *zap.Logger
}

// NewHistoryAgent creates the history agent.
func NewHistoryAgent(provider ai.CompletionProvider, promptSet *prompts.Set, logger *zap.Logger) *HistoryAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryAgent{provider: provider, prompts: promptSet, logger: logger}
}

// Name implements Agent.
func (a *HistoryAgent) Name() string { return models.AgentHistory }

// CanHandle accepts history cues or information-seeking question openings.
func (a *HistoryAgent) CanHandle(input string, cctx *models.ConversationContext) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	if containsAny(lower, historyCues) {
		return true
	}
	for _, prefix := range historyQuestionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Confidence implements the deeper estimate used by router fallback polling.
func (a *HistoryAgent) Confidence(input string, cctx *models.ConversationContext) float64 {
	lower := strings.ToLower(strings.TrimSpace(input))
	score := 0.1 * float64(countCues(lower, historyCues))
	for _, prefix := range historyQuestionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			score += 0.2
			break
		}
	}
	if score > 0.9 {
		score = 0.9
	}
	return score
}

// Respond implements Agent.
func (a *HistoryAgent) Respond(ctx context.Context, req *Request) (*Response, error) {
	if a.provider == nil {
		return &Response{
			Text: "There is a story behind this place, but I can't pull it up right now. Ask me again in a moment.",
		}, nil
	}

	system := a.prompts.System(models.AgentHistory) + contextNotes(req.Context, "") + storyLengthNote(req.Context)
	text, err := a.provider.Complete(ctx, system, buildMessages(req))
	if err != nil {
		return nil, err
	}
	return &Response{Text: text}, nil
}

// storyLengthNote adjusts narration length to the stored preference.
func storyLengthNote(cctx *models.ConversationContext) string {
	if cctx == nil || cctx.Preferences == nil {
		return ""
	}
	switch cctx.Preferences.StoryLength {
	case models.StoryLengthShort:
		return "\nKeep stories to two spoken sentences."
	case models.StoryLengthDeep:
		return "\nThe user enjoys depth; a longer story with detail is welcome."
	default:
		return ""
	}
}
