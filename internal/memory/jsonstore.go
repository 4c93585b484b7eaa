package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

// visitDedupWindow suppresses re-logging a visit to the same location
// within this window of a prior logged visit.
const visitDedupWindow = time.Hour

const (
	cacheNumCounters = 10_000
	cacheMaxCost     = 1_000
	cacheBufferItems = 64
)

// JSONStore persists all user records in a single JSON document. Every
// mutation is a full read-modify-write cycle serialized by a store-wide lock,
// with the file replaced atomically via rename. A ristretto read cache fronts
// the file; entries are dropped on every write for that user.
var _ Store = (*JSONStore)(nil)

type JSONStore struct {
	path   string
	logger *zap.Logger
	cache  *ristretto.Cache

	mu sync.Mutex

	// now is replaced in tests to pin timestamps
	now func() time.Time
}

// NewJSONStore creates a store backed by the given file path. The file is
// created lazily on first write; a missing or corrupt file reads as empty.
func NewJSONStore(path string, logger *zap.Logger) (*JSONStore, error) {
	if path == "" {
		return nil, fmt.Errorf("memory store path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &JSONStore{
		path:   path,
		logger: logger,
		cache:  cache,
		now:    time.Now,
	}, nil
}

// Close releases the read cache.
func (s *JSONStore) Close() error {
	s.cache.Close()
	return nil
}

// load reads the whole store file. A missing or unreadable file degrades to
// an empty store rather than failing; every user then reads as "new".
func (s *JSONStore) load() map[string]*models.UserMemory {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("memory_file_unreadable",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return make(map[string]*models.UserMemory)
	}

	var users map[string]*models.UserMemory
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn("memory_file_corrupt_starting_empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return make(map[string]*models.UserMemory)
	}
	if users == nil {
		users = make(map[string]*models.UserMemory)
	}
	return users
}

// save writes the whole store atomically: temp file in the same directory,
// then rename. A write failure is fatal to the calling operation; silently
// losing a user update is worse than a visible failure.
func (s *JSONStore) save(users map[string]*models.UserMemory) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode memory store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create memory store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp memory file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write memory store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp memory file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace memory store: %w", err)
	}
	return nil
}

// update runs a mutation under the store lock as one atomic read-modify-write
// unit. The record is created lazily for unknown users. On success the user's
// cache entry is dropped so the next read observes the persisted state.
func (s *JSONStore) update(userID string, fn func(rec *models.UserMemory) error) (*models.UserMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	rec, ok := users[userID]
	if !ok {
		rec = &models.UserMemory{}
		users[userID] = rec
	}

	if err := fn(rec); err != nil {
		return nil, err
	}
	rec.LastInteraction = s.now().UTC()

	if err := s.save(users); err != nil {
		return nil, err
	}
	s.cache.Del(userID)
	return rec.Clone(), nil
}

// Get retrieves a user's record, via the read cache when possible. The cache
// fill happens under the store lock: filling after unlock could race a
// concurrent write's invalidation and pin the pre-write snapshot.
func (s *JSONStore) Get(ctx context.Context, userID string) (*models.UserMemory, bool, error) {
	if v, ok := s.cache.Get(userID); ok {
		if rec, ok := v.(*models.UserMemory); ok {
			return rec.Clone(), true, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	rec, ok := users[userID]
	if !ok {
		return nil, false, nil
	}
	s.cache.Set(userID, rec.Clone(), 1)
	return rec.Clone(), true, nil
}

// Merge applies a field-wise merge-write: omitted fields keep prior values,
// interests append, route preferences never downgrade, visits dedup within
// the 1-hour window.
func (s *JSONStore) Merge(ctx context.Context, userID string, patch *models.UserMemoryPatch) (*models.UserMemory, error) {
	if patch == nil {
		patch = &models.UserMemoryPatch{}
	}
	return s.update(userID, func(rec *models.UserMemory) error {
		s.applyPatch(rec, patch)
		return nil
	})
}

func (s *JSONStore) applyPatch(rec *models.UserMemory, patch *models.UserMemoryPatch) {
	now := s.now().UTC()

	if patch.Name != nil && *patch.Name != "" {
		rec.Name = *patch.Name
	}
	if patch.Confidence != nil {
		rec.Confidence = *patch.Confidence
	}
	if patch.LastInteraction != nil {
		rec.LastInteraction = *patch.LastInteraction
	}

	if patch.Preferences != nil {
		if patch.Preferences.StoryLength != nil {
			rec.Preferences.StoryLength = *patch.Preferences.StoryLength
		}
		rec.Preferences.Interests = append(rec.Preferences.Interests, patch.Preferences.Interests...)
		for _, rp := range patch.Preferences.RoutePreferences {
			s.mergeRoutePreference(rec, rp, now)
		}
	}

	for _, loc := range patch.VisitedLocations {
		addVisitedLocation(rec, loc)
	}
	for _, v := range patch.Visits {
		visit := v
		if visit.VisitedAt.IsZero() {
			visit.VisitedAt = now
		}
		logVisit(rec, visit)
	}
}

// mergeRoutePreference keeps route preferences unique per type. Asserting at
// high confidence always overwrites; otherwise only a strictly higher
// confidence displaces the stored entry.
func (s *JSONStore) mergeRoutePreference(rec *models.UserMemory, rp models.RoutePreference, now time.Time) {
	if rp.UpdatedAt.IsZero() {
		rp.UpdatedAt = now
	}
	for i, existing := range rec.Preferences.RoutePreferences {
		if existing.Type != rp.Type {
			continue
		}
		if rp.Confidence == models.RouteConfidenceHigh || rp.Confidence.Rank() > existing.Confidence.Rank() {
			rec.Preferences.RoutePreferences[i] = rp
		}
		return
	}
	rec.Preferences.RoutePreferences = append(rec.Preferences.RoutePreferences, rp)
}

func addVisitedLocation(rec *models.UserMemory, locationID string) {
	for _, existing := range rec.VisitedLocations {
		if existing == locationID {
			return
		}
	}
	rec.VisitedLocations = append(rec.VisitedLocations, locationID)
}

// logVisit appends to the visit log unless the same location was logged
// within the dedup window. Returns whether the entry was appended.
func logVisit(rec *models.UserMemory, visit models.VisitRecord) bool {
	for _, prior := range rec.VisitHistory {
		if prior.LocationID != visit.LocationID {
			continue
		}
		delta := visit.VisitedAt.Sub(prior.VisitedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta < visitDedupWindow {
			return false
		}
	}
	rec.VisitHistory = append(rec.VisitHistory, visit)
	addVisitedLocation(rec, visit.LocationID)
	return true
}

// AddRoutePreference asserts a route-style preference at the given confidence.
func (s *JSONStore) AddRoutePreference(ctx context.Context, userID, prefType string, confidence models.RouteConfidence) error {
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		s.mergeRoutePreference(rec, models.RoutePreference{
			Type:       prefType,
			Confidence: confidence,
		}, s.now().UTC())
		return nil
	})
	return err
}

// RecordVisit logs a visit, subject to the 1-hour dedup rule.
func (s *JSONStore) RecordVisit(ctx context.Context, userID, locationID, notes string) (bool, error) {
	logged := false
	_, err := s.update(userID, func(rec *models.UserMemory) error {
		logged = logVisit(rec, models.VisitRecord{
			LocationID: locationID,
			VisitedAt:  s.now().UTC(),
			Notes:      notes,
		})
		return nil
	})
	return logged, err
}

// Users lists all user IDs present in the store, sorted.
func (s *JSONStore) Users(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	users := s.load()
	s.mu.Unlock()

	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Snapshot returns a copy of every record.
func (s *JSONStore) Snapshot(ctx context.Context) (map[string]*models.UserMemory, error) {
	s.mu.Lock()
	users := s.load()
	s.mu.Unlock()

	out := make(map[string]*models.UserMemory, len(users))
	for id, rec := range users {
		out[id] = rec.Clone()
	}
	return out, nil
}
