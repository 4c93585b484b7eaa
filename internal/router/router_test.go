package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aimeelabs/aimee-backend/internal/agents"
	"github.com/aimeelabs/aimee-backend/internal/classifier"
	"github.com/aimeelabs/aimee-backend/internal/models"
)

// stubAgent is a scriptable agent for routing tests.
type stubAgent struct {
	name       string
	canHandle  bool
	confidence float64
	respText   string
	respErr    error
	panicOn    bool
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) CanHandle(input string, cctx *models.ConversationContext) bool {
	if s.panicOn {
		panic("predicate exploded")
	}
	return s.canHandle
}

func (s *stubAgent) Confidence(input string, cctx *models.ConversationContext) float64 {
	return s.confidence
}

func (s *stubAgent) Respond(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	if s.respErr != nil {
		return nil, s.respErr
	}
	return &agents.Response{Text: s.respText}, nil
}

func newTestRouter(agentList ...agents.Agent) *Router {
	return New(classifier.New(nil), agents.NewRegistry(agentList...), nil)
}

// acceptAll builds one accepting stub per agent name.
func acceptAll() []agents.Agent {
	out := make([]agents.Agent, 0, len(models.AgentNames))
	for _, name := range models.AgentNames {
		out = append(out, &stubAgent{name: name, canHandle: true, respText: "ok from " + name})
	}
	return out
}

func TestRoute_PersonalizationOverride(t *testing.T) {
	t.Parallel()
	rt := newTestRouter(acceptAll()...)

	d := rt.Route("My name is Jeff", nil)

	if d.Agent != models.AgentPersonalization {
		t.Fatalf("agent = %q, want personalization", d.Agent)
	}
	if !strings.Contains(d.Rationale, "personalization override") {
		t.Errorf("rationale = %q, want personalization override", d.Rationale)
	}
}

func TestRoute_NavigationOverrideNeedsLocationContext(t *testing.T) {
	t.Parallel()
	rt := newTestRouter(acceptAll()...)
	input := "Where is the nearest restaurant?"

	withLoc := rt.Route(input, &models.ConversationContext{
		Location: &models.Location{Lat: 37.8, Lng: -122.4},
	})
	if withLoc.Agent != models.AgentNavigation {
		t.Fatalf("agent = %q, want navigation", withLoc.Agent)
	}
	if !strings.Contains(withLoc.Rationale, "navigation override") {
		t.Errorf("rationale = %q, want navigation override", withLoc.Rationale)
	}

	// Without location context the override rule cannot fire, though
	// navigation may still win on raw confidence.
	withoutLoc := rt.Route(input, nil)
	if strings.Contains(withoutLoc.Rationale, "navigation override") {
		t.Errorf("rationale = %q, override must not fire without location", withoutLoc.Rationale)
	}
	if withoutLoc.Agent != models.AgentNavigation {
		t.Errorf("agent = %q, navigation should still win on confidence", withoutLoc.Agent)
	}
}

func TestRoute_HistoryOverride(t *testing.T) {
	t.Parallel()
	rt := newTestRouter(acceptAll()...)

	d := rt.Route("What happened here during the war?", nil)

	if d.Agent != models.AgentHistory {
		t.Fatalf("agent = %q, want history", d.Agent)
	}
	if !strings.Contains(d.Rationale, "history override") {
		t.Errorf("rationale = %q, want history override", d.Rationale)
	}
}

func TestRoute_NearTieResolvedByPriority(t *testing.T) {
	t.Parallel()
	rt := newTestRouter(acceptAll()...)

	// "food" and "history" score their agents identically.
	d := rt.Route("food history", nil)

	if d.Agent != models.AgentHistory {
		t.Fatalf("agent = %q, want history via priority order", d.Agent)
	}
	if !strings.Contains(d.Rationale, "near-tie") {
		t.Errorf("rationale = %q, want near-tie", d.Rationale)
	}
	if len(d.RunnersUp) == 0 {
		t.Error("runners-up should list the losing candidate")
	}
}

func TestRoute_NoCandidateDefaultsToExperience(t *testing.T) {
	t.Parallel()
	var list []agents.Agent
	for _, name := range models.AgentNames {
		list = append(list, &stubAgent{name: name, canHandle: false})
	}
	rt := newTestRouter(list...)

	d := rt.Route("hello", nil)

	if d.Agent != models.AgentExperience {
		t.Fatalf("agent = %q, want experience default", d.Agent)
	}
	if d.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", d.Confidence)
	}
	if d.Rationale != "no specific match; default" {
		t.Errorf("rationale = %q", d.Rationale)
	}
}

func TestRoute_PredicatePollingWhenClassifierSilent(t *testing.T) {
	t.Parallel()
	rt := newTestRouter(acceptAll()...)

	// Nothing in the keyword tables matches, so candidates come from
	// polling each agent's own predicate at the floor confidence.
	d := rt.Route("zzz qqq xyzzy", nil)

	if d.Agent != models.AgentPersonalization {
		t.Fatalf("agent = %q, want personalization (priority among equal floors)", d.Agent)
	}
	if len(d.RunnersUp) != len(models.AgentNames)-1 {
		t.Errorf("runners-up = %d, want every other agent", len(d.RunnersUp))
	}
}

func TestRoute_PanickingPredicateExcludesAgent(t *testing.T) {
	t.Parallel()
	list := []agents.Agent{
		&stubAgent{name: models.AgentPersonalization, panicOn: true},
		&stubAgent{name: models.AgentNavigation, canHandle: true, respText: "nav"},
		&stubAgent{name: models.AgentHistory, canHandle: true, respText: "hist"},
		&stubAgent{name: models.AgentExperience, canHandle: true, respText: "exp"},
	}
	rt := newTestRouter(list...)

	// Would be a personalization override if its predicate hadn't blown up.
	d := rt.Route("My name is Jeff", nil)

	if d.Agent == models.AgentPersonalization {
		t.Errorf("agent = %q, panicking predicate must exclude the agent", d.Agent)
	}
}

func TestExecute_SystemEventBypassesRouting(t *testing.T) {
	t.Parallel()
	rt := newTestRouter(acceptAll()...)

	resp, d := rt.Execute(context.Background(), &agents.Request{
		UserID: "u1",
		Input:  "[SYSTEM: session-start]",
	})

	if d.Agent != models.AgentPersonalization {
		t.Fatalf("agent = %q, want personalization", d.Agent)
	}
	if d.Rationale != "system event" {
		t.Errorf("rationale = %q, want system event", d.Rationale)
	}
	if resp.Text != "ok from personalization" {
		t.Errorf("response = %q", resp.Text)
	}
}

func TestExecute_AgentErrorBecomesFallback(t *testing.T) {
	t.Parallel()
	list := []agents.Agent{
		&stubAgent{name: models.AgentPersonalization, canHandle: false},
		&stubAgent{name: models.AgentNavigation, canHandle: false},
		&stubAgent{name: models.AgentHistory, canHandle: false},
		&stubAgent{name: models.AgentExperience, canHandle: true, respErr: errors.New("llm down")},
	}
	rt := newTestRouter(list...)

	resp, d := rt.Execute(context.Background(), &agents.Request{
		UserID: "u1",
		Input:  "What should I do here?",
	})

	if d.Agent != models.AgentExperience {
		t.Fatalf("agent = %q, want experience", d.Agent)
	}
	if resp.Text != FallbackText {
		t.Errorf("response = %q, want apologetic fallback", resp.Text)
	}
	if v, ok := resp.Metadata["error"].(bool); !ok || !v {
		t.Errorf("metadata = %v, want error flag", resp.Metadata)
	}
}

func TestInspect_DoesNotExecute(t *testing.T) {
	t.Parallel()
	executed := false
	list := []agents.Agent{
		&stubAgent{name: models.AgentPersonalization, canHandle: true},
		&stubAgent{name: models.AgentNavigation, canHandle: true},
		&stubAgent{name: models.AgentHistory, canHandle: true},
		&trackingAgent{stubAgent{name: models.AgentExperience, canHandle: true}, &executed},
	}
	rt := newTestRouter(list...)

	report := rt.Inspect("What should I do here?", nil)

	if executed {
		t.Error("Inspect must not call Respond")
	}
	if report.Decision.Agent != models.AgentExperience {
		t.Errorf("decision agent = %q, want experience", report.Decision.Agent)
	}
	if len(report.AgentChecks) != len(models.AgentNames) {
		t.Errorf("agent checks = %d, want one per agent", len(report.AgentChecks))
	}
	if len(report.Classification) == 0 {
		t.Error("classification ranking should be included")
	}
}

func TestInspect_SystemEvent(t *testing.T) {
	t.Parallel()
	rt := newTestRouter(acceptAll()...)

	report := rt.Inspect("[SYSTEM: session-end]", nil)

	if !report.SystemEvent {
		t.Error("SystemEvent should be set")
	}
	if report.Decision.Agent != models.AgentPersonalization {
		t.Errorf("decision agent = %q, want personalization", report.Decision.Agent)
	}
	if len(report.Candidates) != 0 {
		t.Errorf("candidates = %v, system events skip candidate generation", report.Candidates)
	}
}

// trackingAgent flags when Respond is invoked.
type trackingAgent struct {
	stubAgent
	executed *bool
}

func (a *trackingAgent) Respond(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	*a.executed = true
	return a.stubAgent.Respond(ctx, req)
}
