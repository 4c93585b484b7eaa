package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

func TestStartTrip_ClosesPriorTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	first, err := store.StartTrip(ctx, "u1", "North Bay", "", nil)
	if err != nil {
		t.Fatalf("StartTrip() error = %v", err)
	}
	if first.TripID == "" {
		t.Error("TripID should be generated")
	}
	if err := store.CompleteStop(ctx, "u1", "stop-1"); err != nil {
		t.Fatalf("CompleteStop() error = %v", err)
	}

	// Starting a second trip auto-closes the first into history.
	store.now = func() time.Time { return start.Add(90 * time.Minute) }
	second, err := store.StartTrip(ctx, "u1", "South Bay", "route-280", nil)
	if err != nil {
		t.Fatalf("second StartTrip() error = %v", err)
	}
	if second.TripID == first.TripID {
		t.Error("second trip should get a fresh ID")
	}

	rec, _, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.CurrentTrip == nil || rec.CurrentTrip.TripID != second.TripID {
		t.Fatalf("CurrentTrip = %+v, want the second trip active", rec.CurrentTrip)
	}
	if len(rec.TripHistory) != 1 {
		t.Fatalf("TripHistory length = %d, want 1", len(rec.TripHistory))
	}
	closed := rec.TripHistory[0]
	if closed.TripID != first.TripID {
		t.Errorf("closed TripID = %q, want %q", closed.TripID, first.TripID)
	}
	if closed.Date != "2026-03-01" {
		t.Errorf("closed Date = %q, want end date", closed.Date)
	}
	if closed.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %d, want 90", closed.DurationMinutes)
	}
	if len(closed.StopsVisited) != 1 || closed.StopsVisited[0] != "stop-1" {
		t.Errorf("StopsVisited = %v, want [stop-1]", closed.StopsVisited)
	}
}

func TestEndTrip_NoActiveTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.EndTrip(context.Background(), "u1")
	if !errors.Is(err, ErrNoActiveTrip) {
		t.Errorf("EndTrip() error = %v, want ErrNoActiveTrip", err)
	}
}

func TestEndTrip_WritesHistoryWithEmptyStops(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.StartTrip(ctx, "u1", "City", "", nil); err != nil {
		t.Fatalf("StartTrip() error = %v", err)
	}
	record, err := store.EndTrip(ctx, "u1")
	if err != nil {
		t.Fatalf("EndTrip() error = %v", err)
	}
	if record.StopsVisited == nil {
		t.Error("StopsVisited should be an empty slice, not nil")
	}

	rec, _, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.CurrentTrip != nil {
		t.Error("CurrentTrip should be cleared after EndTrip")
	}
	if len(rec.TripHistory) != 1 {
		t.Errorf("TripHistory length = %d, want 1", len(rec.TripHistory))
	}
}

func TestClearTrip_NoHistoryWrite(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.StartTrip(ctx, "u1", "City", "", nil); err != nil {
		t.Fatalf("StartTrip() error = %v", err)
	}
	if err := store.ClearTrip(ctx, "u1"); err != nil {
		t.Fatalf("ClearTrip() error = %v", err)
	}

	rec, _, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.CurrentTrip != nil {
		t.Error("CurrentTrip should be cleared")
	}
	if len(rec.TripHistory) != 0 {
		t.Errorf("TripHistory = %v, ClearTrip must not write history", rec.TripHistory)
	}

	// Clearing again with no active trip is not an error.
	if err := store.ClearTrip(ctx, "u1"); err != nil {
		t.Errorf("ClearTrip() on empty error = %v", err)
	}
}

func TestUpdateTrip_MergesConstraints(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	mustReturn := true
	if _, err := store.StartTrip(ctx, "u1", "Coast", "", &models.TripConstraints{
		TimeLimit:  "2h",
		MustReturn: &mustReturn,
	}); err != nil {
		t.Fatalf("StartTrip() error = %v", err)
	}

	avoid := true
	trip, err := store.UpdateTrip(ctx, "u1", &models.TripPatch{
		Constraints:  &models.TripConstraints{AvoidHighways: &avoid},
		PlannedStops: []string{"stop-a", "stop-a", "stop-b"},
	})
	if err != nil {
		t.Fatalf("UpdateTrip() error = %v", err)
	}

	if trip.Constraints.TimeLimit != "2h" {
		t.Errorf("TimeLimit = %q, want preserved", trip.Constraints.TimeLimit)
	}
	if trip.Constraints.MustReturn == nil || !*trip.Constraints.MustReturn {
		t.Error("MustReturn should be preserved")
	}
	if trip.Constraints.AvoidHighways == nil || !*trip.Constraints.AvoidHighways {
		t.Error("AvoidHighways should be merged in")
	}
	if len(trip.PlannedStops) != 2 {
		t.Errorf("PlannedStops = %v, want deduped [stop-a stop-b]", trip.PlannedStops)
	}
}

func TestTripOps_RequireActiveTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpdateTrip(ctx, "u1", &models.TripPatch{}); !errors.Is(err, ErrNoActiveTrip) {
		t.Errorf("UpdateTrip() error = %v, want ErrNoActiveTrip", err)
	}
	if err := store.AddConstraint(ctx, "u1", &models.TripConstraints{TimeLimit: "1h"}); !errors.Is(err, ErrNoActiveTrip) {
		t.Errorf("AddConstraint() error = %v, want ErrNoActiveTrip", err)
	}
	if err := store.AddTemporaryPreference(ctx, "u1", "quiet routes"); !errors.Is(err, ErrNoActiveTrip) {
		t.Errorf("AddTemporaryPreference() error = %v, want ErrNoActiveTrip", err)
	}
	if err := store.CompleteStop(ctx, "u1", "stop-1"); !errors.Is(err, ErrNoActiveTrip) {
		t.Errorf("CompleteStop() error = %v, want ErrNoActiveTrip", err)
	}
}

func TestAddTemporaryPreference_TripScoped(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.StartTrip(ctx, "u1", "City", "", nil); err != nil {
		t.Fatalf("StartTrip() error = %v", err)
	}
	if err := store.AddTemporaryPreference(ctx, "u1", "skip museums today"); err != nil {
		t.Fatalf("AddTemporaryPreference() error = %v", err)
	}

	rec, _, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(rec.CurrentTrip.TemporaryPreferences) != 1 {
		t.Fatalf("TemporaryPreferences = %v, want one entry", rec.CurrentTrip.TemporaryPreferences)
	}

	// Temporary preferences die with the trip.
	if _, err := store.EndTrip(ctx, "u1"); err != nil {
		t.Fatalf("EndTrip() error = %v", err)
	}
	rec, _, err = store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(rec.Preferences.Interests) != 0 {
		t.Errorf("Interests = %v, temporary preference must not promote", rec.Preferences.Interests)
	}
}
