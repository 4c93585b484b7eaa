package memory

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

// StartTrip installs a freshly generated trip. An existing active trip is
// closed into trip history first, so at most one trip is ever active and a
// trip is never silently discarded.
func (s *JSONStore) StartTrip(ctx context.Context, userID, region, route string, constraints *models.TripConstraints) (*models.Trip, error) {
	var started *models.Trip
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		if rec.CurrentTrip != nil {
			s.closeTrip(rec)
		}
		trip := &models.Trip{
			TripID:    ulid.Make().String(),
			StartedAt: s.now().UTC(),
			Region:    region,
		}
		if route != "" {
			trip.ActiveRoute = route
		}
		if constraints != nil {
			mergeConstraints(&trip.Constraints, constraints)
		}
		rec.CurrentTrip = trip
		started = trip.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// closeTrip folds the active trip into trip history and clears it.
// Caller holds the store lock via update.
func (s *JSONStore) closeTrip(rec *models.UserMemory) *models.TripRecord {
	trip := rec.CurrentTrip
	if trip == nil {
		return nil
	}
	end := s.now().UTC()
	stops := trip.CompletedStops
	if stops == nil {
		stops = []string{}
	}
	record := models.TripRecord{
		TripID:          trip.TripID,
		Date:            end.Format("2006-01-02"),
		Region:          trip.Region,
		StopsVisited:    stops,
		DurationMinutes: int(end.Sub(trip.StartedAt) / time.Minute),
	}
	rec.TripHistory = append(rec.TripHistory, record)
	rec.CurrentTrip = nil
	return &record
}

// EndTrip closes the active trip into history and returns the appended record.
func (s *JSONStore) EndTrip(ctx context.Context, userID string) (*models.TripRecord, error) {
	var ended *models.TripRecord
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		if rec.CurrentTrip == nil {
			return ErrNoActiveTrip
		}
		ended = s.closeTrip(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

// ClearTrip drops the active trip without writing trip history. Used for
// privacy resets; clearing when no trip is active is not an error.
func (s *JSONStore) ClearTrip(ctx context.Context, userID string) error {
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		rec.CurrentTrip = nil
		return nil
	})
	return err
}

// UpdateTrip merges fields onto the active trip. The constraints bag merges
// field-wise rather than being replaced wholesale.
func (s *JSONStore) UpdateTrip(ctx context.Context, userID string, patch *models.TripPatch) (*models.Trip, error) {
	var updated *models.Trip
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		trip := rec.CurrentTrip
		if trip == nil {
			return ErrNoActiveTrip
		}
		if patch != nil {
			if patch.Region != nil {
				trip.Region = *patch.Region
			}
			if patch.ActiveRoute != nil {
				trip.ActiveRoute = *patch.ActiveRoute
			}
			if patch.Constraints != nil {
				mergeConstraints(&trip.Constraints, patch.Constraints)
			}
			for _, stop := range patch.PlannedStops {
				appendUnique(&trip.PlannedStops, stop)
			}
		}
		updated = trip.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddConstraint merges constraint fields onto the active trip's bag.
func (s *JSONStore) AddConstraint(ctx context.Context, userID string, c *models.TripConstraints) error {
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		if rec.CurrentTrip == nil {
			return ErrNoActiveTrip
		}
		if c != nil {
			mergeConstraints(&rec.CurrentTrip.Constraints, c)
		}
		return nil
	})
	return err
}

// AddTemporaryPreference records a trip-scoped preference. These never
// promote to long-term memory and vanish with the trip.
func (s *JSONStore) AddTemporaryPreference(ctx context.Context, userID, pref string) error {
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		if rec.CurrentTrip == nil {
			return ErrNoActiveTrip
		}
		appendUnique(&rec.CurrentTrip.TemporaryPreferences, pref)
		return nil
	})
	return err
}

// CompleteStop marks a stop completed on the active trip.
func (s *JSONStore) CompleteStop(ctx context.Context, userID, stopID string) error {
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		if rec.CurrentTrip == nil {
			return ErrNoActiveTrip
		}
		appendUnique(&rec.CurrentTrip.CompletedStops, stopID)
		return nil
	})
	return err
}

// mergeConstraints overlays set fields from src onto dst, leaving omitted
// fields untouched.
func mergeConstraints(dst, src *models.TripConstraints) {
	if src.TimeLimit != "" {
		dst.TimeLimit = src.TimeLimit
	}
	if src.MustReturn != nil {
		v := *src.MustReturn
		dst.MustReturn = &v
	}
	if src.AvoidHighways != nil {
		v := *src.AvoidHighways
		dst.AvoidHighways = &v
	}
	if src.MaxDistance != nil {
		v := *src.MaxDistance
		dst.MaxDistance = &v
	}
}

func appendUnique(list *[]string, item string) {
	for _, existing := range *list {
		if existing == item {
			return
		}
	}
	*list = append(*list, item)
}
