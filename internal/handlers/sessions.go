package handlers

import (
	"sync"
	"time"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

// maxSessionTurns bounds how much recent conversation each session keeps.
const maxSessionTurns = 10

// SessionTracker keeps the recent turns of each user's conversation in
// memory. It is transcript working state, not long-term memory, and is lost
// on restart.
type SessionTracker struct {
	mu    sync.Mutex
	turns map[string][]models.Turn
}

// NewSessionTracker creates an empty tracker.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{turns: make(map[string][]models.Turn)}
}

// Append records a turn for the user, evicting the oldest beyond the cap.
func (s *SessionTracker) Append(userID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[userID], models.Turn{
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	})
	if len(turns) > maxSessionTurns {
		turns = turns[len(turns)-maxSessionTurns:]
	}
	s.turns[userID] = turns
}

// Recent returns a copy of the user's recent turns, oldest first.
func (s *SessionTracker) Recent(userID string) []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.turns[userID]
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out
}

// Reset drops the user's session transcript, e.g. at session end.
func (s *SessionTracker) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, userID)
}
