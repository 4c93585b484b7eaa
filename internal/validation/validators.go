package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("story_length", validateStoryLength); err != nil {
		panic(fmt.Sprintf("failed to register story_length validator: %v", err))
	}
	if err := Validate.RegisterValidation("trip_mode", validateTripMode); err != nil {
		panic(fmt.Sprintf("failed to register trip_mode validator: %v", err))
	}
	if err := Validate.RegisterValidation("route_confidence", validateRouteConfidence); err != nil {
		panic(fmt.Sprintf("failed to register route_confidence validator: %v", err))
	}
}

// validateStoryLength validates that a string is a valid StoryLength enum value
func validateStoryLength(fl validator.FieldLevel) bool {
	switch models.StoryLength(fl.Field().String()) {
	case models.StoryLengthShort, models.StoryLengthNormal, models.StoryLengthDeep:
		return true
	default:
		return false
	}
}

// validateTripMode validates that a string is a valid TripMode enum value
func validateTripMode(fl validator.FieldLevel) bool {
	switch models.TripMode(fl.Field().String()) {
	case models.TripModeDrive, models.TripModeWalk, models.TripModeIdle:
		return true
	default:
		return false
	}
}

// validateRouteConfidence validates that a string is a valid RouteConfidence enum value
func validateRouteConfidence(fl validator.FieldLevel) bool {
	switch models.RouteConfidence(fl.Field().String()) {
	case models.RouteConfidenceLow, models.RouteConfidenceMedium, models.RouteConfidenceHigh:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateStoryLength validates a StoryLength string value
func ValidateStoryLength(value string) error {
	switch models.StoryLength(value) {
	case models.StoryLengthShort, models.StoryLengthNormal, models.StoryLengthDeep:
		return nil
	default:
		return fmt.Errorf("invalid storyLength: %s (must be 'short', 'normal', or 'deep')", value)
	}
}

// ValidateTripMode validates a TripMode string value
func ValidateTripMode(value string) error {
	switch models.TripMode(value) {
	case models.TripModeDrive, models.TripModeWalk, models.TripModeIdle:
		return nil
	default:
		return fmt.Errorf("invalid tripMode: %s (must be 'drive', 'walk', or 'idle')", value)
	}
}
