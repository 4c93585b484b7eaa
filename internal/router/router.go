// Package router turns classifier output and each agent's own applicability
// check into a single selection, applies override and tie-break rules,
// executes the chosen agent, and annotates the result with routing metadata.
package router

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/agents"
	"github.com/aimeelabs/aimee-backend/internal/classifier"
	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/services/ai"
)

const (
	// candidateFloor is the minimum classifier confidence for a non-top
	// ranked agent to become a candidate
	candidateFloor = 0.2
	// fallbackConfidence is assigned when candidates come from direct
	// predicate polling and the agent offers no deeper estimate
	fallbackConfidence = 0.3
	// defaultConfidence is assigned to the default selection when no
	// candidate exists at all
	defaultConfidence = 0.1

	personalizationOverrideThreshold = 0.8
	navigationOverrideThreshold      = 0.7
	historyOverrideThreshold         = 0.75
	// nearTieGap is the top-two confidence gap below which agent priority
	// decides instead of raw score
	nearTieGap = 0.1
)

// FallbackText is the user-safe response when a selected agent fails.
const FallbackText = "I'm sorry, I had a little trouble with that just now. Could you say it again?"

var (
	locationQuestionPattern = regexp.MustCompile(`(?i)\b(where|location|navigate|direction)`)
	questionWordPattern     = regexp.MustCompile(`(?i)^\s*(what|who|when|how|why)\b`)
)

// Candidate pairs an agent with a confidence score under consideration.
type Candidate struct {
	Agent      string  `json:"agent"`
	Confidence float64 `json:"confidence"`
}

// Decision is the routing outcome for one turn.
type Decision struct {
	Agent      string      `json:"agent"`
	Confidence float64     `json:"confidence"`
	RunnersUp  []Candidate `json:"runnersUp,omitempty"`
	Rationale  string      `json:"rationale"`
}

// Router selects and executes agents. Construct one per process and inject
// it; there is deliberately no package-level default instance.
type Router struct {
	classifier *classifier.Classifier
	registry   *agents.Registry
	logger     *zap.Logger
}

// New creates a router over the closed agent set.
func New(cls *classifier.Classifier, registry *agents.Registry, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{classifier: cls, registry: registry, logger: logger}
}

// Route computes the selection for an input without executing any agent.
func (r *Router) Route(input string, cctx *models.ConversationContext) Decision {
	cls := r.classifier.Classify(input)
	candidates := r.gatherCandidates(cls, input, cctx)
	return r.selectCandidate(candidates, input, cctx)
}

// gatherCandidates merges classifier ranking with each agent's own predicate.
// A predicate that panics simply excludes that agent; routing never fails.
func (r *Router) gatherCandidates(cls classifier.Classification, input string, cctx *models.ConversationContext) []Candidate {
	var candidates []Candidate

	for i, score := range cls.Ranked {
		if i > 0 && score.Confidence <= candidateFloor {
			continue
		}
		agent, ok := r.registry.Get(score.Agent)
		if !ok {
			continue
		}
		if score.Confidence > 0 && r.safeCanHandle(agent, input, cctx) {
			candidates = append(candidates, Candidate{Agent: score.Agent, Confidence: score.Confidence})
		}
	}

	// Classifier found nothing usable: poll every agent's own predicate
	// directly at low confidence, letting deeper self-estimates raise it.
	if len(candidates) == 0 {
		for _, agent := range r.registry.All() {
			if !r.safeCanHandle(agent, input, cctx) {
				continue
			}
			conf := r.safeConfidence(agent, input, cctx)
			if conf <= 0 {
				conf = fallbackConfidence
			}
			candidates = append(candidates, Candidate{Agent: agent.Name(), Confidence: conf})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return models.AgentPriority(candidates[i].Agent) < models.AgentPriority(candidates[j].Agent)
	})
	return candidates
}

// selectCandidate applies the override and tie-break rules in order.
func (r *Router) selectCandidate(candidates []Candidate, input string, cctx *models.ConversationContext) Decision {
	if len(candidates) == 0 {
		return Decision{
			Agent:      models.AgentExperience,
			Confidence: defaultConfidence,
			Rationale:  "no specific match; default",
		}
	}

	// Rule 1: strong personalization signals are never overridden by
	// noisier matches.
	if c := findCandidate(candidates, models.AgentPersonalization); c != nil && c.Confidence > personalizationOverrideThreshold {
		return decisionFor(*c, candidates, fmt.Sprintf("personalization override (confidence %.2f)", c.Confidence))
	}

	// Rule 2: confident location questions with location context at hand.
	if c := findCandidate(candidates, models.AgentNavigation); c != nil &&
		cctx != nil && cctx.Location != nil &&
		c.Confidence > navigationOverrideThreshold &&
		locationQuestionPattern.MatchString(input) {
		return decisionFor(*c, candidates, "navigation override: location question with location context")
	}

	// Rule 3: confident information-seeking questions.
	if c := findCandidate(candidates, models.AgentHistory); c != nil &&
		c.Confidence > historyOverrideThreshold &&
		questionWordPattern.MatchString(input) {
		return decisionFor(*c, candidates, "history override: information-seeking question")
	}

	// Rule 4: near-ties resolve by fixed agent priority, not raw score.
	if len(candidates) >= 2 && candidates[0].Confidence-candidates[1].Confidence < nearTieGap {
		tied := tiedGroup(candidates)
		best := tied[0]
		for _, c := range tied[1:] {
			if models.AgentPriority(c.Agent) < models.AgentPriority(best.Agent) {
				best = c
			}
		}
		return decisionFor(best, candidates, "near-tie resolved by agent priority")
	}

	// Rule 5: highest confidence wins.
	return decisionFor(candidates[0], candidates, "highest confidence candidate")
}

// tiedGroup returns the candidates within nearTieGap of the leader.
func tiedGroup(candidates []Candidate) []Candidate {
	top := candidates[0].Confidence
	var tied []Candidate
	for _, c := range candidates {
		if top-c.Confidence < nearTieGap {
			tied = append(tied, c)
		}
	}
	return tied
}

func decisionFor(selected Candidate, all []Candidate, rationale string) Decision {
	var runnersUp []Candidate
	for _, c := range all {
		if c.Agent != selected.Agent {
			runnersUp = append(runnersUp, c)
		}
	}
	return Decision{
		Agent:      selected.Agent,
		Confidence: selected.Confidence,
		RunnersUp:  runnersUp,
		Rationale:  rationale,
	}
}

func findCandidate(candidates []Candidate, name string) *Candidate {
	for i := range candidates {
		if candidates[i].Agent == name {
			return &candidates[i]
		}
	}
	return nil
}

// Execute routes the input and runs the selected agent. System events skip
// routing entirely and go straight to the personalization agent. Agent
// failures degrade to a user-safe fallback response; Execute never surfaces
// a hard failure to the caller.
func (r *Router) Execute(ctx context.Context, req *agents.Request) (*agents.Response, Decision) {
	var decision Decision
	if agents.IsSystemEvent(req.Input) {
		decision = Decision{
			Agent:      models.AgentPersonalization,
			Confidence: 1.0,
			Rationale:  "system event",
		}
	} else {
		decision = r.Route(req.Input, req.Context)
	}

	agent, ok := r.registry.Get(decision.Agent)
	if !ok {
		// Closed set, so this means miswiring; still answer something.
		r.logger.Error("selected_agent_missing", zap.String("agent", decision.Agent))
		return fallbackResponse(), decision
	}

	resp, err := r.safeRespond(ctx, agent, req)
	if err != nil {
		r.logger.Warn("agent_execution_failed",
			zap.String("agent", decision.Agent),
			zap.String("user_id", req.UserID),
			zap.Bool("rate_limited", ai.IsRateLimitError(err)),
			zap.Bool("quota_exhausted", ai.IsQuotaError(err)),
			zap.Error(err),
		)
		return fallbackResponse(), decision
	}

	r.logger.Info("selected_agent",
		zap.String("agent", decision.Agent),
		zap.Float64("confidence", decision.Confidence),
		zap.String("rationale", decision.Rationale),
	)
	return resp, decision
}

func fallbackResponse() *agents.Response {
	return &agents.Response{
		Text:     FallbackText,
		Metadata: map[string]any{"error": true},
	}
}

// safeCanHandle shields routing from a panicking predicate: the agent is
// excluded rather than the turn failing.
func (r *Router) safeCanHandle(agent agents.Agent, input string, cctx *models.ConversationContext) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("agent_predicate_panic",
				zap.String("agent", agent.Name()),
				zap.Any("panic", rec),
			)
			ok = false
		}
	}()
	return agent.CanHandle(input, cctx)
}

func (r *Router) safeConfidence(agent agents.Agent, input string, cctx *models.ConversationContext) (conf float64) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("agent_confidence_panic",
				zap.String("agent", agent.Name()),
				zap.Any("panic", rec),
			)
			conf = 0
		}
	}()
	return agent.Confidence(input, cctx)
}

// safeRespond converts panics inside an agent into ordinary errors.
func (r *Router) safeRespond(ctx context.Context, agent agents.Agent, req *agents.Request) (resp *agents.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("agent %s panicked: %v", agent.Name(), rec)
		}
	}()
	return agent.Respond(ctx, req)
}
