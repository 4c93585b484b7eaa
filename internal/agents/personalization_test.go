package agents

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/memory"
	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/prompts"
)

func newTestPersonalization(t *testing.T) (*PersonalizationAgent, memory.Store) {
	t.Helper()
	store, err := memory.NewJSONStore(filepath.Join(t.TempDir(), "memories.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	// nil provider exercises the canned-response path.
	agent := NewPersonalizationAgent(nil, prompts.Load("", zap.NewNop()), store, zap.NewNop())
	return agent, store
}

func TestPersonalization_NameStatementStoresName(t *testing.T) {
	t.Parallel()
	agent, store := newTestPersonalization(t)
	ctx := context.Background()

	resp, err := agent.Respond(ctx, &Request{UserID: "u1", Input: "My name is jeff"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(resp.Text, "Jeff") {
		t.Errorf("response = %q, want capitalized name echoed", resp.Text)
	}
	if v, _ := resp.Metadata["memoryUpdated"].(bool); !v {
		t.Errorf("metadata = %v, want memoryUpdated true", resp.Metadata)
	}

	rec, found, err := store.Get(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	if rec.Name != "Jeff" {
		t.Errorf("stored Name = %q, want Jeff", rec.Name)
	}
}

func TestPersonalization_RoutePreferenceExtraction(t *testing.T) {
	t.Parallel()
	agent, store := newTestPersonalization(t)
	ctx := context.Background()

	if _, err := agent.Respond(ctx, &Request{UserID: "u1", Input: "I prefer scenic routes and avoid highways"}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	rec, _, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	types := map[string]bool{}
	for _, rp := range rec.Preferences.RoutePreferences {
		types[rp.Type] = true
		if rp.Confidence != models.RouteConfidenceMedium {
			t.Errorf("Confidence for %s = %q, want medium", rp.Type, rp.Confidence)
		}
	}
	if !types["scenic"] || !types["avoid_highways"] {
		t.Errorf("RoutePreferences = %v, want scenic and avoid_highways", rec.Preferences.RoutePreferences)
	}
}

func TestPersonalization_PrivacyModeGatesWrites(t *testing.T) {
	t.Parallel()
	agent, store := newTestPersonalization(t)
	ctx := context.Background()

	resp, err := agent.Respond(ctx, &Request{UserID: "u1", Input: "Please don't track me anymore"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if v, _ := resp.Metadata["privacyEnabled"].(bool); !v {
		t.Errorf("metadata = %v, want privacyEnabled true", resp.Metadata)
	}

	// Subsequent personal statements must not land in long-term memory.
	resp, err = agent.Respond(ctx, &Request{UserID: "u1", Input: "My name is Maya"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if v, _ := resp.Metadata["privacyBlocked"].(bool); !v {
		t.Errorf("metadata = %v, want privacyBlocked true", resp.Metadata)
	}

	rec, _, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Name != "" {
		t.Errorf("stored Name = %q, privacy mode must block the write", rec.Name)
	}
}

func TestPersonalization_SessionStartGreetings(t *testing.T) {
	t.Parallel()
	agent, store := newTestPersonalization(t)
	ctx := context.Background()

	// Unknown user gets asked for a name.
	resp, err := agent.Respond(ctx, &Request{UserID: "new-user", Input: "[SYSTEM: session-start]"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(resp.Text, "call you") {
		t.Errorf("response = %q, want name prompt for unknown user", resp.Text)
	}
	if v, _ := resp.Metadata["knownUser"].(bool); v {
		t.Errorf("metadata = %v, want knownUser false", resp.Metadata)
	}

	// Known user gets greeted by name.
	name := "Jeff"
	if _, err := store.Merge(ctx, "jeff-1", &models.UserMemoryPatch{Name: &name}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	resp, err = agent.Respond(ctx, &Request{UserID: "jeff-1", Input: "[SYSTEM: session-start]"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(resp.Text, "Jeff") {
		t.Errorf("response = %q, want greeting by name", resp.Text)
	}
}

func TestPersonalization_SessionEndFinalizesTrip(t *testing.T) {
	t.Parallel()
	agent, store := newTestPersonalization(t)
	ctx := context.Background()

	if _, err := store.StartTrip(ctx, "u1", "Marin", "", nil); err != nil {
		t.Fatalf("StartTrip() error = %v", err)
	}

	resp, err := agent.Respond(ctx, &Request{UserID: "u1", Input: "[SYSTEM: session end]"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if v, _ := resp.Metadata["tripEnded"].(bool); !v {
		t.Errorf("metadata = %v, want tripEnded true", resp.Metadata)
	}

	rec, _, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.CurrentTrip != nil {
		t.Error("CurrentTrip should be closed on session end")
	}
	if len(rec.TripHistory) != 1 {
		t.Errorf("TripHistory length = %d, want 1", len(rec.TripHistory))
	}

	// Ending with no active trip is still a clean farewell.
	resp, err = agent.Respond(ctx, &Request{UserID: "u1", Input: "[SYSTEM: session end]"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if v, _ := resp.Metadata["tripEnded"].(bool); v {
		t.Errorf("metadata = %v, want tripEnded false with no active trip", resp.Metadata)
	}
}

func TestPersonalization_Reconnection(t *testing.T) {
	t.Parallel()
	agent, store := newTestPersonalization(t)
	ctx := context.Background()

	name := "Ana"
	if _, err := store.Merge(ctx, "u1", &models.UserMemoryPatch{Name: &name}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	resp, err := agent.Respond(ctx, &Request{UserID: "u1", Input: "[SYSTEM: reconnect]"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(resp.Text, "Welcome back, Ana") {
		t.Errorf("response = %q, want welcome-back by name", resp.Text)
	}
	if got, _ := resp.Metadata["sessionEvent"].(string); got != "reconnection" {
		t.Errorf("sessionEvent = %q, want reconnection", got)
	}
}

func TestIsSystemEvent(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  bool
	}{
		{"[SYSTEM: session-start]", true},
		{"  [SYSTEM: reconnect]", true},
		{"tell me about [SYSTEM: things]", false},
		{"hello", false},
	}
	for _, tc := range cases {
		if got := IsSystemEvent(tc.input); got != tc.want {
			t.Errorf("IsSystemEvent(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
