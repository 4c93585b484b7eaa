package models

import "time"

// Agent names form a closed set known at compile time.
const (
	AgentNavigation      = "navigation"
	AgentHistory         = "history"
	AgentExperience      = "experience"
	AgentPersonalization = "personalization"
)

// AgentNames lists all agents in router priority order
// (preference/name updates beat location questions beat stories beat suggestions).
var AgentNames = []string{
	AgentPersonalization,
	AgentNavigation,
	AgentHistory,
	AgentExperience,
}

// AgentPriority returns the tie-break rank for an agent (lower wins).
func AgentPriority(name string) int {
	for i, n := range AgentNames {
		if n == name {
			return i
		}
	}
	return len(AgentNames)
}

// Location is a caller-supplied position hint, read-only input to routing
type Location struct {
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	NearestLocationID string  `json:"nearestLocationId,omitempty"`
}

// Turn is one prior exchange in the conversation
type Turn struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ConversationContext carries per-turn routing inputs. It is never a way to
// mutate the memory store directly.
type ConversationContext struct {
	RecentTurns    []Turn       `json:"recentTurns,omitempty"`
	Location       *Location    `json:"location,omitempty"`
	TripMode       TripMode     `json:"tripMode,omitempty"`
	Preferences    *Preferences `json:"preferences,omitempty"`
	Mode           string       `json:"mode,omitempty"`   // "voice" or "text"
	Source         string       `json:"source,omitempty"` // e.g. "livekit"
	SessionStart   bool         `json:"sessionStart,omitempty"`
	IsReconnection bool         `json:"isReconnection,omitempty"`
}
