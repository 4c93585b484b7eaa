// Package memory implements the layered per-user memory store: durable
// long-term preferences, a single active trip with constraints, and a
// privacy gate that suspends long-term writes.
package memory

import (
	"context"
	"errors"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

var (
	// ErrNoActiveTrip is returned by trip operations when the user has no active trip
	ErrNoActiveTrip = errors.New("no active trip")
	// ErrWritesDisabled is returned when privacy mode blocks a long-term write
	ErrWritesDisabled = errors.New("long-term memory writes disabled by privacy settings")
)

// Store is the memory storage contract. Persistence details stay behind this
// interface so the JSON file backing can be swapped for a real database
// without touching the router or classifier.
type Store interface {
	// Get retrieves a user's record. found is false for unknown users;
	// absence of data surfaces as "no record", never as invented values.
	Get(ctx context.Context, userID string) (rec *models.UserMemory, found bool, err error)

	// Merge applies a field-wise merge-write and persists atomically before
	// returning the updated record. Omitted fields always retain prior values.
	Merge(ctx context.Context, userID string, patch *models.UserMemoryPatch) (*models.UserMemory, error)

	// AddRoutePreference asserts a route-style preference at the given
	// confidence. Preferences stay unique per type; a lower-or-equal
	// confidence never downgrades an existing entry, but asserting at high
	// confidence always overwrites.
	AddRoutePreference(ctx context.Context, userID, prefType string, confidence models.RouteConfidence) error

	// RecordVisit appends a visit-log entry unless the same location was
	// already logged within the past hour. Returns whether a new entry was logged.
	RecordVisit(ctx context.Context, userID, locationID, notes string) (logged bool, err error)

	// StartTrip installs a fresh active trip. An existing active trip is
	// first closed into trip history, never silently discarded.
	StartTrip(ctx context.Context, userID, region, route string, constraints *models.TripConstraints) (*models.Trip, error)

	// UpdateTrip merges fields onto the active trip; the constraints bag is
	// merged field-wise. Returns ErrNoActiveTrip when none exists.
	UpdateTrip(ctx context.Context, userID string, patch *models.TripPatch) (*models.Trip, error)

	// EndTrip closes the active trip into trip history and returns the
	// appended record. Returns ErrNoActiveTrip when none exists.
	EndTrip(ctx context.Context, userID string) (*models.TripRecord, error)

	// ClearTrip drops the active trip without writing trip history
	// (privacy resets, distinct from a normal trip end).
	ClearTrip(ctx context.Context, userID string) error

	// AddConstraint merges constraint fields onto the active trip.
	AddConstraint(ctx context.Context, userID string, c *models.TripConstraints) error

	// AddTemporaryPreference records a trip-scoped preference that never
	// promotes to long-term memory. Idempotent.
	AddTemporaryPreference(ctx context.Context, userID, pref string) error

	// CompleteStop marks a stop as completed on the active trip. Idempotent.
	CompleteStop(ctx context.Context, userID, stopID string) error

	// SetPrivacy merges privacy fields onto existing or default settings and
	// mirrors the resolved enabled flag into the legacy boolean field.
	SetPrivacy(ctx context.Context, userID string, patch *models.PrivacyPatch) (*models.PrivacySettings, error)

	// CanWrite reports whether long-term memory writes are currently allowed.
	// Trip-scoped writes remain allowed regardless.
	CanWrite(ctx context.Context, userID string) (bool, error)

	// Users lists all user IDs present in the store.
	Users(ctx context.Context) ([]string, error)

	// Snapshot returns a copy of every record, keyed by user ID.
	Snapshot(ctx context.Context) (map[string]*models.UserMemory, error)

	// Close releases store resources.
	Close() error
}
