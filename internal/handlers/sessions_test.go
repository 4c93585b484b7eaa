package handlers

import (
	"fmt"
	"testing"
)

func TestSessionTrackerAppendAndRecent(t *testing.T) {
	t.Parallel()

	tracker := NewSessionTracker()
	tracker.Append("u1", "user", "hello")
	tracker.Append("u1", "assistant", "hi there")
	tracker.Append("u2", "user", "unrelated")

	turns := tracker.Recent("u1")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != "hello" || turns[1].Content != "hi there" {
		t.Errorf("turns not ordered oldest first: %+v", turns)
	}
	if turns[0].At.IsZero() {
		t.Error("turn timestamp not stamped")
	}

	// Mutating the returned slice must not affect tracker state.
	turns[0].Content = "mutated"
	if got := tracker.Recent("u1"); got[0].Content != "hello" {
		t.Error("Recent should return a copy")
	}
}

func TestSessionTrackerBound(t *testing.T) {
	t.Parallel()

	tracker := NewSessionTracker()
	for i := 0; i < maxSessionTurns+5; i++ {
		tracker.Append("u1", "user", fmt.Sprintf("turn %d", i))
	}

	turns := tracker.Recent("u1")
	if len(turns) != maxSessionTurns {
		t.Fatalf("expected %d turns after overflow, got %d", maxSessionTurns, len(turns))
	}
	if turns[0].Content != "turn 5" {
		t.Errorf("oldest turns should be evicted first, got %q", turns[0].Content)
	}
}

func TestSessionTrackerReset(t *testing.T) {
	t.Parallel()

	tracker := NewSessionTracker()
	tracker.Append("u1", "user", "hello")
	tracker.Reset("u1")

	if got := tracker.Recent("u1"); len(got) != 0 {
		t.Errorf("expected empty transcript after reset, got %d turns", len(got))
	}
}
