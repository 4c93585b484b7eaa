// Package prompts loads per-agent system prompts from an external YAML file,
// so personas can change without touching code. Missing or unreadable files
// fall back to built-in defaults.
package prompts

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

// Persona describes one agent's voice.
type Persona struct {
	Name   string `yaml:"name"`
	System string `yaml:"system"`
}

// Set is the full prompt configuration document.
type Set struct {
	Assistant string             `yaml:"assistant"`
	Agents    map[string]Persona `yaml:"agents"`
}

// defaultPrompts ships with the binary so the service works with no prompt
// file deployed. The same YAML schema is used for external overrides.
const defaultPrompts = `
assistant: |
  You are AImee, a friendly voice tour-guide assistant. You speak in short,
  natural sentences suitable for text-to-speech. Never mention that you are
  routing between agents or reading stored memory.
agents:
  navigation:
    name: Navigation
    system: |
      You help the user find places and get where they are going. Give
      concise spoken directions and distances. If you lack location data,
      say so plainly and ask for a landmark.
  history:
    name: History
    system: |
      You tell the history of places and landmarks. Favor one vivid detail
      over a list of dates. Keep stories to a few spoken sentences unless
      the user asks for more.
  experience:
    name: Experience
    system: |
      You suggest things to see, do, eat, and enjoy nearby. Offer one or two
      concrete options and ask a short follow-up question.
  personalization:
    name: Personalization
    system: |
      You acknowledge what the user tells you about themselves - their name,
      tastes, and travel preferences - warmly and briefly. If they share a
      fact worth remembering, you may end your reply with a fenced json block
      containing a "memory" object with any of: name, storyLength, interests.
`

// Load reads the prompt file at path, overlaying it onto the defaults.
// An empty path or a missing file yields the defaults; a malformed file is
// logged and ignored rather than failing startup.
func Load(path string, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}

	set := mustParseDefaults()

	if path == "" {
		return set
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("prompt_file_unreadable", zap.String("path", path), zap.Error(err))
		}
		return set
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		logger.Warn("prompt_file_malformed_using_defaults", zap.String("path", path), zap.Error(err))
		return set
	}

	if override.Assistant != "" {
		set.Assistant = override.Assistant
	}
	for agent, persona := range override.Agents {
		base := set.Agents[agent]
		if persona.Name != "" {
			base.Name = persona.Name
		}
		if persona.System != "" {
			base.System = persona.System
		}
		set.Agents[agent] = base
	}

	logger.Info("loaded_prompt_file", zap.String("path", path), zap.Int("agent_count", len(override.Agents)))
	return set
}

func mustParseDefaults() *Set {
	var set Set
	if err := yaml.Unmarshal([]byte(defaultPrompts), &set); err != nil {
		panic(fmt.Sprintf("built-in prompts are malformed: %v", err))
	}
	return &set
}

// System returns the combined assistant + agent system prompt for an agent.
// Unknown agents get just the assistant preamble.
func (s *Set) System(agent string) string {
	persona, ok := s.Agents[agent]
	if !ok || persona.System == "" {
		return s.Assistant
	}
	return s.Assistant + "\n" + persona.System
}

// Validate checks that every known agent has a persona. Used at startup so a
// broken override file surfaces immediately.
func (s *Set) Validate() error {
	for _, agent := range models.AgentNames {
		if _, ok := s.Agents[agent]; !ok {
			return fmt.Errorf("missing persona for agent %q", agent)
		}
	}
	return nil
}
