package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// Ensure PreferenceStore implements the interface.
var _ driven.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore is an in-memory implementation of driven.PreferenceStore.
type PreferenceStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewPreferenceStore creates a new in-memory preference store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{
		values: make(map[string]string),
	}
}

// SetPreference stores value under key. A nil value deletes the key.
func (s *PreferenceStore) SetPreference(_ context.Context, key string, value *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.values, key)
		return nil
	}
	s.values[key] = *value
	return nil
}

// Preference returns the value stored under key.
func (s *PreferenceStore) Preference(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// HiddenCourses returns the ids of the courses marked hidden.
func (s *PreferenceStore) HiddenCourses() map[int64]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hidden := make(map[int64]bool)
	for key := range maps.Keys(s.values) {
		if id, ok := domain.HiddenCourseID(key); ok {
			hidden[id] = true
		}
	}
	return hidden
}
