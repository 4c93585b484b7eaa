package router

import (
	"github.com/aimeelabs/aimee-backend/internal/agents"
	"github.com/aimeelabs/aimee-backend/internal/classifier"
	"github.com/aimeelabs/aimee-backend/internal/models"
)

// AgentCheck records one agent's own view of an input during inspection.
type AgentCheck struct {
	Agent      string  `json:"agent"`
	CanHandle  bool    `json:"canHandle"`
	Confidence float64 `json:"confidence"`
}

// Report exposes the full routing picture for a hypothetical input: the
// classifier ranking, every agent's predicate result, the merged candidate
// list, and the decision that would be taken. Nothing is executed.
type Report struct {
	Input          string               `json:"input"`
	SystemEvent    bool                 `json:"systemEvent"`
	Classification []classifier.Score   `json:"classification"`
	Confident      bool                 `json:"confident"`
	Ambiguous      bool                 `json:"ambiguous"`
	AgentChecks    []AgentCheck         `json:"agentChecks"`
	Candidates     []Candidate          `json:"candidates"`
	Decision       Decision             `json:"decision"`
}

// Inspect dry-runs routing for debugging. System events are reported as
// such without consulting the classifier, mirroring Execute.
func (r *Router) Inspect(input string, cctx *models.ConversationContext) Report {
	report := Report{Input: input}

	if agents.IsSystemEvent(input) {
		report.SystemEvent = true
		report.Decision = Decision{
			Agent:      models.AgentPersonalization,
			Confidence: 1.0,
			Rationale:  "system event",
		}
		return report
	}

	cls := r.classifier.Classify(input)
	report.Classification = cls.Ranked
	report.Confident = cls.Confident
	report.Ambiguous = cls.Ambiguous

	for _, agent := range r.registry.All() {
		report.AgentChecks = append(report.AgentChecks, AgentCheck{
			Agent:      agent.Name(),
			CanHandle:  r.safeCanHandle(agent, input, cctx),
			Confidence: r.safeConfidence(agent, input, cctx),
		})
	}

	report.Candidates = r.gatherCandidates(cls, input, cctx)
	report.Decision = r.selectCandidate(report.Candidates, input, cctx)
	return report
}
