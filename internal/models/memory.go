package models

import "time"

// StoryLength represents how long the user wants narrated stories to run
type StoryLength string

const (
	StoryLengthShort  StoryLength = "short"
	StoryLengthNormal StoryLength = "normal"
	StoryLengthDeep   StoryLength = "deep"
)

// RouteConfidence represents how sure we are about a learned route preference
type RouteConfidence string

const (
	RouteConfidenceLow    RouteConfidence = "low"
	RouteConfidenceMedium RouteConfidence = "medium"
	RouteConfidenceHigh   RouteConfidence = "high"
)

// Rank returns an ordinal for confidence comparison (low < medium < high).
// Unknown values rank below low so they never displace a known entry.
func (c RouteConfidence) Rank() int {
	switch c {
	case RouteConfidenceLow:
		return 1
	case RouteConfidenceMedium:
		return 2
	case RouteConfidenceHigh:
		return 3
	default:
		return 0
	}
}

// TripMode represents how the user is currently moving
type TripMode string

const (
	TripModeDrive TripMode = "drive"
	TripModeWalk  TripMode = "walk"
	TripModeIdle  TripMode = "idle"
)

// RoutePreference is a learned preference about route style, unique per Type
type RoutePreference struct {
	Type       string          `json:"type"`
	Confidence RouteConfidence `json:"confidence"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Preferences holds the user's durable long-term preferences
type Preferences struct {
	StoryLength      StoryLength       `json:"storyLength,omitempty"`
	Interests        []string          `json:"interests,omitempty"`
	RoutePreferences []RoutePreference `json:"routePreferences,omitempty"`
}

// VisitRecord is one entry in the ordered visit log
type VisitRecord struct {
	LocationID string    `json:"locationId"`
	VisitedAt  time.Time `json:"visitedAt"`
	Notes      string    `json:"notes,omitempty"`
}

// TripConstraints is the constraints bag on the active trip.
// Pointer fields distinguish "not set" from zero values so the bag can be
// merged field-wise without clobbering earlier constraints.
type TripConstraints struct {
	TimeLimit     string   `json:"timeLimit,omitempty"`
	MustReturn    *bool    `json:"mustReturn,omitempty"`
	AvoidHighways *bool    `json:"avoidHighways,omitempty"`
	MaxDistance   *float64 `json:"maxDistance,omitempty"`
}

// Trip is the single active trip for a user (at most one at a time)
type Trip struct {
	TripID               string          `json:"tripId"`
	StartedAt            time.Time       `json:"startedAt"`
	Region               string          `json:"region,omitempty"`
	ActiveRoute          string          `json:"activeRoute,omitempty"`
	Constraints          TripConstraints `json:"constraints"`
	TemporaryPreferences []string        `json:"temporaryPreferences,omitempty"`
	PlannedStops         []string        `json:"plannedStops,omitempty"`
	CompletedStops       []string        `json:"completedStops,omitempty"`
}

// TripRecord is one completed trip in the append-only trip history
type TripRecord struct {
	TripID          string   `json:"tripId"`
	Date            string   `json:"date"`
	Region          string   `json:"region,omitempty"`
	StopsVisited    []string `json:"stopsVisited"`
	DurationMinutes int      `json:"durationMinutes"`
}

// PrivacySettings controls whether long-term memory writes are allowed
type PrivacySettings struct {
	Enabled              bool       `json:"enabled"`
	ActivatedAt          *time.Time `json:"activatedAt,omitempty"`
	ConsentToStore       bool       `json:"consentToStore"`
	DataRetentionDays    int        `json:"dataRetentionDays"`
	ExcludeFromAnalytics bool       `json:"excludeFromAnalytics"`
}

// DefaultPrivacySettings returns the settings applied before a user has
// expressed any privacy choice: disabled, consented, 90-day retention,
// included in analytics.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		Enabled:              false,
		ConsentToStore:       true,
		DataRetentionDays:    90,
		ExcludeFromAnalytics: false,
	}
}

// UserMemory is the per-user persisted record. Field names and enum values
// are the on-disk contract; dates round-trip as ISO-8601 strings.
type UserMemory struct {
	Name             string           `json:"name,omitempty"`
	Preferences      Preferences      `json:"preferences"`
	VisitedLocations []string         `json:"visitedLocations,omitempty"`
	VisitHistory     []VisitRecord    `json:"visitHistory,omitempty"`
	CurrentTrip      *Trip            `json:"currentTrip,omitempty"`
	TripHistory      []TripRecord     `json:"tripHistory,omitempty"`
	PrivacySettings  *PrivacySettings `json:"privacySettings,omitempty"`
	// PrivacyMode mirrors PrivacySettings.Enabled for readers that predate
	// the structured settings block.
	PrivacyMode     bool      `json:"privacyMode"`
	LastInteraction time.Time `json:"lastInteraction"`
	Confidence      string    `json:"confidence,omitempty"`
}

// HasRoutePreference reports whether a route preference of the given type exists.
func (m *UserMemory) HasRoutePreference(prefType string) bool {
	for _, p := range m.Preferences.RoutePreferences {
		if p.Type == prefType {
			return true
		}
	}
	return false
}

// ActivePrivacy resolves the effective privacy settings, falling back to
// defaults when the user never set any.
func (m *UserMemory) ActivePrivacy() PrivacySettings {
	if m.PrivacySettings != nil {
		return *m.PrivacySettings
	}
	return DefaultPrivacySettings()
}
