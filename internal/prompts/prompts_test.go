package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	set := Load("", zap.NewNop())

	if err := set.Validate(); err != nil {
		t.Fatalf("default prompts failed validation: %v", err)
	}
	if !strings.Contains(set.Assistant, "AImee") {
		t.Errorf("assistant preamble missing persona name: %q", set.Assistant)
	}
	for _, agent := range models.AgentNames {
		system := set.System(agent)
		if !strings.HasPrefix(system, set.Assistant) {
			t.Errorf("System(%q) should start with the assistant preamble", agent)
		}
		if len(system) <= len(set.Assistant) {
			t.Errorf("System(%q) has no agent-specific content", agent)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	set := Load(filepath.Join(t.TempDir(), "nope.yaml"), zap.NewNop())

	if err := set.Validate(); err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("agents: [not: a: map"), 0o600); err != nil {
		t.Fatal(err)
	}

	set := Load(path, zap.NewNop())

	if err := set.Validate(); err != nil {
		t.Fatalf("malformed file should fall back to defaults: %v", err)
	}
}

func TestLoadOverlay(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	doc := `
agents:
  history:
    system: Speak like a museum docent.
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	set := Load(path, zap.NewNop())

	if got := set.System(models.AgentHistory); !strings.Contains(got, "museum docent") {
		t.Errorf("history persona not overridden: %q", got)
	}
	if got := set.System(models.AgentNavigation); !strings.Contains(got, "directions") {
		t.Errorf("navigation persona should keep its default: %q", got)
	}
	if err := set.Validate(); err != nil {
		t.Fatalf("partial overlay broke validation: %v", err)
	}
}

func TestSystemUnknownAgent(t *testing.T) {
	t.Parallel()

	set := Load("", zap.NewNop())
	if got := set.System("weather"); got != set.Assistant {
		t.Errorf("unknown agent should get the bare assistant preamble, got %q", got)
	}
}
