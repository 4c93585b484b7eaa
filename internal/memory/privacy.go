package memory

import (
	"context"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

// SetPrivacy merges the patch onto existing or default privacy settings and
// mirrors the resolved enabled flag into the legacy privacyMode field for
// backward-compatible readers.
func (s *JSONStore) SetPrivacy(ctx context.Context, userID string, patch *models.PrivacyPatch) (*models.PrivacySettings, error) {
	var resolved models.PrivacySettings
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		settings := rec.ActivePrivacy()
		wasEnabled := settings.Enabled

		if patch != nil {
			if patch.Enabled != nil {
				settings.Enabled = *patch.Enabled
			}
			if patch.ConsentToStore != nil {
				settings.ConsentToStore = *patch.ConsentToStore
			}
			if patch.DataRetentionDays != nil {
				settings.DataRetentionDays = *patch.DataRetentionDays
			}
			if patch.ExcludeFromAnalytics != nil {
				settings.ExcludeFromAnalytics = *patch.ExcludeFromAnalytics
			}
		}

		if settings.Enabled && !wasEnabled {
			now := s.now().UTC()
			settings.ActivatedAt = &now
		}

		rec.PrivacySettings = &settings
		rec.PrivacyMode = settings.Enabled
		resolved = settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// CanWrite reports whether long-term memory writes are allowed for the user:
// true unless privacy mode is enabled or consent to store was withdrawn.
// Trip-scoped writes are not gated by this check.
func (s *JSONStore) CanWrite(ctx context.Context, userID string) (bool, error) {
	rec, found, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	settings := rec.ActivePrivacy()
	return !settings.Enabled && settings.ConsentToStore, nil
}
