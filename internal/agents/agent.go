// Package agents contains the four specialized response agents and the
// interface the router dispatches through. The agent set is closed and known
// at compile time.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/services/ai"
)

// Request is one user turn handed to an agent for execution.
type Request struct {
	UserID  string
	Input   string
	Context *models.ConversationContext
}

// Response is an agent's result. MemoryPatch is the structured side channel
// for proposed memory updates; display text never carries embedded directives.
type Response struct {
	Text        string
	MemoryPatch *models.UserMemoryPatch
	Metadata    map[string]any
}

// Agent is one interchangeable response-producing unit.
type Agent interface {
	// Name returns the agent's routing name.
	Name() string

	// CanHandle is the agent's own cheap applicability predicate.
	CanHandle(input string, cctx *models.ConversationContext) bool

	// Confidence is the agent's deeper self-estimate, used when the router
	// falls back to direct predicate polling.
	Confidence(input string, cctx *models.ConversationContext) float64

	// Respond executes the agent and produces a response.
	Respond(ctx context.Context, req *Request) (*Response, error)
}

// Registry holds the closed agent set in priority order.
type Registry struct {
	ordered []Agent
	byName  map[string]Agent
}

// NewRegistry builds a registry from the given agents. Order follows
// models.AgentNames regardless of argument order.
func NewRegistry(list ...Agent) *Registry {
	byName := make(map[string]Agent, len(list))
	for _, a := range list {
		byName[a.Name()] = a
	}
	ordered := make([]Agent, 0, len(byName))
	for _, name := range models.AgentNames {
		if a, ok := byName[name]; ok {
			ordered = append(ordered, a)
		}
	}
	return &Registry{ordered: ordered, byName: byName}
}

// Get returns the agent with the given name.
func (r *Registry) Get(name string) (Agent, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// All returns the agents in priority order.
func (r *Registry) All() []Agent {
	return r.ordered
}

// buildMessages converts recent conversation turns plus the current input
// into provider chat messages.
func buildMessages(req *Request) []ai.ChatMessage {
	var messages []ai.ChatMessage
	if req.Context != nil {
		for _, turn := range req.Context.RecentTurns {
			messages = append(messages, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
		}
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: req.Input})
	return messages
}

// contextNotes renders caller-supplied context hints as a system prompt
// suffix so the model can ground its answer without inventing data.
func contextNotes(cctx *models.ConversationContext, userName string) string {
	if cctx == nil && userName == "" {
		return ""
	}
	var notes []string
	if userName != "" {
		notes = append(notes, fmt.Sprintf("The user's name is %s.", userName))
	}
	if cctx != nil {
		if cctx.Location != nil {
			note := fmt.Sprintf("The user is at lat %.5f, lng %.5f.", cctx.Location.Lat, cctx.Location.Lng)
			if cctx.Location.NearestLocationID != "" {
				note += fmt.Sprintf(" Nearest known location: %s.", cctx.Location.NearestLocationID)
			}
			notes = append(notes, note)
		}
		if cctx.TripMode != "" && cctx.TripMode != models.TripModeIdle {
			notes = append(notes, fmt.Sprintf("The user is currently in %s mode.", cctx.TripMode))
		}
		if cctx.Preferences != nil {
			if cctx.Preferences.StoryLength != "" {
				notes = append(notes, fmt.Sprintf("Preferred story length: %s.", cctx.Preferences.StoryLength))
			}
			if len(cctx.Preferences.Interests) > 0 {
				notes = append(notes, "Known interests: "+strings.Join(cctx.Preferences.Interests, ", ")+".")
			}
		}
	}
	if len(notes) == 0 {
		return ""
	}
	return "\nContext:\n" + strings.Join(notes, "\n")
}

// containsAny reports whether the lowercased input contains any cue.
func containsAny(lower string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// countCues counts how many cues the lowercased input contains.
func countCues(lower string, cues []string) int {
	n := 0
	for _, cue := range cues {
		if strings.Contains(lower, cue) {
			n++
		}
	}
	return n
}
