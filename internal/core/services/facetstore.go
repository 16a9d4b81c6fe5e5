package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// facetState is the mutable state of one facet.
type facetState struct {
	term       string
	selectable []domain.FacetItem
	selected   []domain.FacetItem
}

// FacetStore holds the search term and the selectable/selected partition of every facet.
// An item ID never appears in both lists of a facet.
type FacetStore struct {
	mu       sync.Mutex
	facets   map[domain.FacetKey]*facetState
	fields   []int
	current  int
	collator *collate.Collator
}

// NewFacetStore creates a store with the text, category and tags facets registered.
// Names are collated for tag, ignoring case.
func NewFacetStore(tag language.Tag) *FacetStore {
	s := &FacetStore{
		facets:   make(map[domain.FacetKey]*facetState),
		collator: collate.New(tag, collate.IgnoreCase),
	}
	s.facets[domain.TextFacet()] = &facetState{}
	s.facets[domain.CategoryFacet()] = &facetState{}
	s.facets[domain.TagsFacet()] = &facetState{}
	return s
}

// RegisterCustomField adds a facet for custom field id. Registering twice is a no-op.
func (s *FacetStore) RegisterCustomField(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.CustomFieldFacet(id)
	if _, ok := s.facets[key]; ok {
		return
	}
	s.facets[key] = &facetState{}
	s.fields = append(s.fields, id)
	if s.current == 0 {
		s.current = id
	}
}

// CustomFieldKeys returns the keys of the registered custom fields in registration order.
func (s *FacetStore) CustomFieldKeys() []domain.FacetKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]domain.FacetKey, 0, len(s.fields))
	for _, id := range s.fields {
		keys = append(keys, domain.CustomFieldFacet(id))
	}
	return keys
}

// Keys returns every registered facet key: text, category, tags, then custom fields.
func (s *FacetStore) Keys() []domain.FacetKey {
	keys := []domain.FacetKey{domain.TextFacet(), domain.CategoryFacet(), domain.TagsFacet()}
	return append(keys, s.CustomFieldKeys()...)
}

// SetCurrentCustomField marks custom field id as the focused one.
// Selections of other custom fields are left alone.
func (s *FacetStore) SetCurrentCustomField(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.facets[domain.CustomFieldFacet(id)]; !ok {
		return fmt.Errorf("%w: custom field %d", domain.ErrInvalidFacet, id)
	}
	s.current = id
	return nil
}

// CurrentCustomField returns the focused custom field id, or 0 when none is registered.
func (s *FacetStore) CurrentCustomField() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetSearchTerm sets the facet's own search term.
// For the text facet this is the global free-text query.
func (s *FacetStore) SetSearchTerm(key domain.FacetKey, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.facet(key)
	if err != nil {
		return err
	}
	f.term = term
	return nil
}

// SearchTerm returns the facet's own search term.
func (s *FacetStore) SearchTerm(key domain.FacetKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.facet(key)
	if err != nil {
		return "", err
	}
	return f.term, nil
}

// Select moves item id from selectable to selected and re-sorts selected by name.
// It reports whether anything changed; an unknown id is a no-op.
func (s *FacetStore) Select(key domain.FacetKey, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.facet(key)
	if err != nil {
		return false, err
	}
	idx := indexOfItem(f.selectable, id)
	if idx < 0 {
		return false, nil
	}
	item := f.selectable[idx]
	f.selectable = slices.Delete(f.selectable, idx, idx+1)
	f.selected = append(f.selected, item)
	s.sortItems(f.selected)
	return true, nil
}

// Deselect moves item id back to selectable. With a non-empty facet search term
// the item is only reinserted when its name contains the term; otherwise it is
// dropped until candidates are next loaded. An unknown id is a no-op.
func (s *FacetStore) Deselect(key domain.FacetKey, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.facet(key)
	if err != nil {
		return false, err
	}
	idx := indexOfItem(f.selected, id)
	if idx < 0 {
		return false, nil
	}
	item := f.selected[idx]
	f.selected = slices.Delete(f.selected, idx, idx+1)
	if matchesTerm(item.Name, f.term) {
		f.selectable = append(f.selectable, item)
		s.sortItems(f.selectable)
	}
	return true, nil
}

// LoadCandidates replaces selectable with items, skipping duplicates and
// anything already selected.
func (s *FacetStore) LoadCandidates(key domain.FacetKey, items []domain.FacetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.facet(key)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(items)+len(f.selected))
	for _, item := range f.selected {
		seen[item.ID] = true
	}
	selectable := make([]domain.FacetItem, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		selectable = append(selectable, item)
	}
	f.selectable = selectable
	return nil
}

// Snapshot returns a copy of the facet's state.
func (s *FacetStore) Snapshot(key domain.FacetKey) (domain.FacetSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.facet(key)
	if err != nil {
		return domain.FacetSnapshot{}, err
	}
	return domain.FacetSnapshot{
		Key:        key,
		SearchTerm: f.term,
		Selectable: slices.Clone(f.selectable),
		Selected:   slices.Clone(f.selected),
	}, nil
}

// Snapshots returns a snapshot of every facet in Keys order.
func (s *FacetStore) Snapshots() []domain.FacetSnapshot {
	keys := s.Keys()
	out := make([]domain.FacetSnapshot, 0, len(keys))
	for _, key := range keys {
		snap, err := s.Snapshot(key)
		if err != nil {
			continue
		}
		out = append(out, snap)
	}
	return out
}

// Clear drops every selection and search term. Candidates are kept.
func (s *FacetStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.facets {
		f.selectable = append(f.selectable, f.selected...)
		s.sortItems(f.selectable)
		f.selected = nil
		f.term = ""
	}
}

func (s *FacetStore) facet(key domain.FacetKey) (*facetState, error) {
	f, ok := s.facets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFacet, key)
	}
	return f, nil
}

func (s *FacetStore) sortItems(items []domain.FacetItem) {
	slices.SortStableFunc(items, func(a, b domain.FacetItem) int {
		return s.collator.CompareString(a.Name, b.Name)
	})
}

func indexOfItem(items []domain.FacetItem, id string) int {
	return slices.IndexFunc(items, func(item domain.FacetItem) bool {
		return item.ID == id
	})
}

// matchesTerm reports whether name contains term, ignoring case. An empty term matches everything.
func matchesTerm(name, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}
