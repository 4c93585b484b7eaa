package agents

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/prompts"
	"github.com/aimeelabs/aimee-backend/internal/services/ai"
)

var navigationCues = []string{
	"where", "nearest", "closest", "nearby", "direction", "navigate",
	"route", "map", "take me", "how do i get", "how far", "distance",
	"address", "way to", "get to",
}

// NavigationAgent answers location and wayfinding questions.
type NavigationAgent struct {
	provider ai.CompletionProvider
	prompts  *prompts.Set
	logger   *zap.Logger
}

// NewNavigationAgent creates the navigation agent.
func NewNavigationAgent(provider ai.CompletionProvider, promptSet *prompts.Set, logger *zap.Logger) *NavigationAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavigationAgent{provider: provider, prompts: promptSet, logger: logger}
}

// Name implements Agent.
func (a *NavigationAgent) Name() string { return models.AgentNavigation }

// CanHandle accepts wayfinding phrasing, or anything at all when the caller
// supplied a location and the input names a place-like word.
func (a *NavigationAgent) CanHandle(input string, cctx *models.ConversationContext) bool {
	lower := strings.ToLower(input)
	if containsAny(lower, navigationCues) {
		return true
	}
	return cctx != nil && cctx.Location != nil && strings.Contains(lower, "here")
}

// Confidence implements the deeper estimate used by router fallback polling.
func (a *NavigationAgent) Confidence(input string, cctx *models.ConversationContext) float64 {
	lower := strings.ToLower(input)
	score := 0.1 * float64(countCues(lower, navigationCues))
	if cctx != nil && cctx.Location != nil {
		score += 0.2
	}
	if score > 0.9 {
		score = 0.9
	}
	return score
}

// Respond implements Agent.
func (a *NavigationAgent) Respond(ctx context.Context, req *Request) (*Response, error) {
	if a.provider == nil {
		return &Response{
			Text: "I can help with directions once my navigation service is back online. Could you describe a nearby landmark?",
		}, nil
	}

	system := a.prompts.System(models.AgentNavigation) + contextNotes(req.Context, "")
	text, err := a.provider.Complete(ctx, system, buildMessages(req))
	if err != nil {
		return nil, err
	}
	return &Response{Text: text}, nil
}
