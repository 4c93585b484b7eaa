package agents

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/models"
	"github.com/aimeelabs/aimee-backend/internal/validation"
)

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	// narrowNamePattern recovers just a name from a payload too mangled to
	// parse as JSON.
	narrowNamePattern = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
)

// memoryDirective mirrors the structured block an LLM response may carry.
// Fields decode individually so one malformed field never discards the rest.
type memoryDirective struct {
	Memory map[string]json.RawMessage `json:"memory"`
}

// parseMemoryDirective extracts a proposed memory patch from a fenced JSON
// block inside model output, returning the patch (nil when none was found)
// and the display text with the block removed. Malformed fields are logged
// and skipped; an unparsable payload degrades to a narrow name-only recovery
// rather than discarding the turn.
func parseMemoryDirective(text string, logger *zap.Logger) (*models.UserMemoryPatch, string) {
	m := fencedJSONPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, text
	}
	cleaned := strings.TrimSpace(fencedJSONPattern.ReplaceAllString(text, ""))

	var directive memoryDirective
	if err := json.Unmarshal([]byte(m[1]), &directive); err != nil || directive.Memory == nil {
		if err != nil {
			logger.Warn("memory_directive_unparsable", zap.Error(err))
		}
		// Best-effort partial recovery: at least keep the name if present.
		if nm := narrowNamePattern.FindStringSubmatch(m[1]); nm != nil {
			name := nm[1]
			return &models.UserMemoryPatch{Name: &name}, cleaned
		}
		return nil, cleaned
	}

	patch := &models.UserMemoryPatch{}
	for field, raw := range directive.Memory {
		switch field {
		case "name":
			var name string
			if err := json.Unmarshal(raw, &name); err != nil || name == "" {
				logger.Warn("memory_directive_field_skipped", zap.String("field", field))
				continue
			}
			patch.Name = &name
		case "storyLength":
			var sl models.StoryLength
			if err := json.Unmarshal(raw, &sl); err != nil || validation.ValidateStoryLength(string(sl)) != nil {
				logger.Warn("memory_directive_field_skipped", zap.String("field", field))
				continue
			}
			if patch.Preferences == nil {
				patch.Preferences = &models.PreferencesPatch{}
			}
			patch.Preferences.StoryLength = &sl
		case "interests":
			var interests []string
			if err := json.Unmarshal(raw, &interests); err != nil || len(interests) == 0 {
				logger.Warn("memory_directive_field_skipped", zap.String("field", field))
				continue
			}
			if patch.Preferences == nil {
				patch.Preferences = &models.PreferencesPatch{}
			}
			patch.Preferences.Interests = append(patch.Preferences.Interests, interests...)
		default:
			logger.Debug("memory_directive_field_ignored", zap.String("field", field))
		}
	}

	if patch.IsEmpty() {
		return nil, cleaned
	}
	return patch, cleaned
}
