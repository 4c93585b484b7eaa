package agents

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/prompts"
	"github.com/aimeelabs/aimee-backend/internal/services/ai"
)

var experienceCues = []string{
	"recommend", "suggest", "should", "things to do", "worth", "attraction",
	"activity", "activities", "experience", "explore", "fun", "interesting",
	"restaurant", "food", "eat", "drink", "coffee", "visit", "see",
}

// ExperienceAgent suggests things to see, do, and eat. It is the system's
// default agent: it accepts nearly anything, so routing never comes up empty.
type ExperienceAgent struct {
	provider ai.CompletionProvider
	prompts  *prompts.Set
	logger   *zap.Logger
}

// NewExperienceAgent creates the experience agent.
func NewExperienceAgent(provider ai.CompletionProvider, promptSet *prompts.Set, logger *zap.Logger) *ExperienceAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExperienceAgent{provider: provider, prompts: promptSet, logger: logger}
}

// Name implements Agent.
func (a *ExperienceAgent) Name() string { return models.AgentExperience }

// CanHandle accepts any non-empty input.
func (a *ExperienceAgent) CanHandle(input string, cctx *models.ConversationContext) bool {
	return strings.TrimSpace(input) != ""
}

// Confidence implements the deeper estimate used by router fallback polling.
func (a *ExperienceAgent) Confidence(input string, cctx *models.ConversationContext) float64 {
	lower := strings.ToLower(input)
	score := 0.3 + 0.1*float64(countCues(lower, experienceCues))
	if score > 0.9 {
		score = 0.9
	}
	return score
}

// Respond implements Agent.
func (a *ExperienceAgent) Respond(ctx context.Context, req *Request) (*Response, error) {
	if a.provider == nil {
		return &Response{
			Text: "There's plenty to explore around here. Give me a moment and ask again for suggestions.",
		}, nil
	}

	system := a.prompts.System(models.AgentExperience) + contextNotes(req.Context, "")
	text, err := a.provider.Complete(ctx, system, buildMessages(req))
	if err != nil {
		return nil, err
	}
	return &Response{Text: text}, nil
}
