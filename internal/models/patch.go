package models

import "time"

// UserMemoryPatch is a merge-write against a UserMemory record. Nil fields
// leave the stored value untouched; slices append rather than replace.
// A patch can never null out an existing field, only add or overwrite.
type UserMemoryPatch struct {
	Name             *string           `json:"name,omitempty"`
	Preferences      *PreferencesPatch `json:"preferences,omitempty"`
	VisitedLocations []string          `json:"visitedLocations,omitempty"`
	Visits           []VisitRecord     `json:"visits,omitempty"`
	Confidence       *string           `json:"confidence,omitempty"`
	LastInteraction  *time.Time        `json:"lastInteraction,omitempty"`
}

// PreferencesPatch merges onto Preferences. Interests append in order
// (duplicates allowed at this layer); RoutePreferences merge per type with
// confidence ordering rules applied by the store.
type PreferencesPatch struct {
	StoryLength      *StoryLength      `json:"storyLength,omitempty"`
	Interests        []string          `json:"interests,omitempty"`
	RoutePreferences []RoutePreference `json:"routePreferences,omitempty"`
}

// IsEmpty reports whether applying the patch would change nothing.
func (p *UserMemoryPatch) IsEmpty() bool {
	if p == nil {
		return true
	}
	if p.Name != nil || p.Confidence != nil || p.LastInteraction != nil {
		return false
	}
	if len(p.VisitedLocations) > 0 || len(p.Visits) > 0 {
		return false
	}
	if p.Preferences != nil {
		if p.Preferences.StoryLength != nil ||
			len(p.Preferences.Interests) > 0 ||
			len(p.Preferences.RoutePreferences) > 0 {
			return false
		}
	}
	return true
}

// TripPatch merges onto the active trip. The constraints sub-bag is merged
// field-wise, never replaced wholesale.
type TripPatch struct {
	Region       *string          `json:"region,omitempty"`
	ActiveRoute  *string          `json:"activeRoute,omitempty"`
	Constraints  *TripConstraints `json:"constraints,omitempty"`
	PlannedStops []string         `json:"plannedStops,omitempty"`
}

// PrivacyPatch merges onto existing (or default) privacy settings.
type PrivacyPatch struct {
	Enabled              *bool `json:"enabled,omitempty"`
	ConsentToStore       *bool `json:"consentToStore,omitempty"`
	DataRetentionDays    *int  `json:"dataRetentionDays,omitempty"`
	ExcludeFromAnalytics *bool `json:"excludeFromAnalytics,omitempty"`
}
