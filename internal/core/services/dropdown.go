package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// Dropdown is the Closed/Open/Filtered state machine of one facet.
type Dropdown struct {
	mu         sync.Mutex
	source     FacetSource
	store      *FacetStore
	generation func() uint64
	autoClose  bool

	state     domain.DropdownState
	loaded    bool
	loadedGen uint64
	seq       uint64
}

// NewDropdown creates a closed dropdown for source. generation reports the
// current query generation; candidates loaded for an older one are reloaded on open.
func NewDropdown(source FacetSource, store *FacetStore, generation func() uint64, autoClose bool) *Dropdown {
	return &Dropdown{
		source:     source,
		store:      store,
		generation: generation,
		autoClose:  autoClose,
	}
}

// Key returns the facet key.
func (d *Dropdown) Key() domain.FacetKey {
	return d.source.Key()
}

// Title returns the dropdown label.
func (d *Dropdown) Title() string {
	return d.source.Title()
}

// State returns the current state.
func (d *Dropdown) State() domain.DropdownState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Open expands the dropdown, loading candidates when they were not loaded for
// the current query generation. scope is the current query.
func (d *Dropdown) Open(ctx context.Context, scope domain.SearchRequest) error {
	term, err := d.store.SearchTerm(d.Key())
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.state = stateForTerm(term)
	fresh := d.loaded && d.loadedGen == d.generation()
	d.mu.Unlock()

	if fresh {
		return nil
	}
	return d.reload(ctx, scope, term)
}

// Filter sets the facet search term and reloads candidates for it.
// An empty term returns to Open with the full candidate list.
func (d *Dropdown) Filter(ctx context.Context, scope domain.SearchRequest, term string) error {
	if err := d.store.SetSearchTerm(d.Key(), term); err != nil {
		return err
	}

	d.mu.Lock()
	d.state = stateForTerm(term)
	d.mu.Unlock()

	return d.reload(ctx, scope, term)
}

// Close collapses the dropdown. The search term and selection are kept.
func (d *Dropdown) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = domain.DropdownClosed
}

// Select chooses item id. With auto-close enabled the dropdown closes once
// nothing selectable is left.
func (d *Dropdown) Select(id string) (bool, error) {
	changed, err := d.source.Select(d.store, id)
	if err != nil || !changed {
		return changed, err
	}
	if d.autoClose {
		snap, err := d.store.Snapshot(d.Key())
		if err == nil && len(snap.Selectable) == 0 {
			d.Close()
		}
	}
	return true, nil
}

// Deselect removes item id from the selection.
func (d *Dropdown) Deselect(id string) (bool, error) {
	return d.source.Deselect(d.store, id)
}

// reload fetches candidates and applies them unless the query generation
// moved on or a newer reload was started meanwhile.
func (d *Dropdown) reload(ctx context.Context, scope domain.SearchRequest, term string) error {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	gen := d.generation()
	items, err := d.source.LoadCandidates(ctx, scope.WithoutFacet(d.Key()), strings.TrimSpace(term))
	if err != nil {
		return fmt.Errorf("load %s candidates: %w", d.Key(), err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq || gen != d.generation() {
		logger.Debug("Discarding %s candidates of generation %d", d.Key(), gen)
		return domain.ErrStaleResponse
	}
	if err := d.store.LoadCandidates(d.Key(), items); err != nil {
		return err
	}
	d.loaded = true
	d.loadedGen = gen
	return nil
}

func stateForTerm(term string) domain.DropdownState {
	if strings.TrimSpace(term) != "" {
		return domain.DropdownFiltered
	}
	return domain.DropdownOpen
}

// DropdownGroup owns the dropdowns of a session. At most one custom-field
// dropdown is expanded at a time.
type DropdownGroup struct {
	mu         sync.Mutex
	store      *FacetStore
	generation func() uint64
	autoClose  bool
	dropdowns  map[domain.FacetKey]*Dropdown
	order      []domain.FacetKey
}

// NewDropdownGroup creates an empty group.
func NewDropdownGroup(store *FacetStore, generation func() uint64, autoClose bool) *DropdownGroup {
	return &DropdownGroup{
		store:      store,
		generation: generation,
		autoClose:  autoClose,
		dropdowns:  make(map[domain.FacetKey]*Dropdown),
	}
}

// Add registers a dropdown for source. Custom-field facets are registered in the store.
func (g *DropdownGroup) Add(source FacetSource) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := source.Key()
	if _, ok := g.dropdowns[key]; ok {
		return
	}
	if key.Kind == domain.FacetCustomField {
		g.store.RegisterCustomField(key.FieldID)
	}
	g.dropdowns[key] = NewDropdown(source, g.store, g.generation, g.autoClose)
	g.order = append(g.order, key)
}

// Get returns the dropdown of key.
func (g *DropdownGroup) Get(key domain.FacetKey) (*Dropdown, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	d, ok := g.dropdowns[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFacet, key)
	}
	return d, nil
}

// Open expands the dropdown of key. Opening a custom-field dropdown closes any
// other expanded custom-field dropdown and makes it the current custom field.
func (g *DropdownGroup) Open(ctx context.Context, key domain.FacetKey, scope domain.SearchRequest) error {
	d, err := g.Get(key)
	if err != nil {
		return err
	}
	if key.Kind == domain.FacetCustomField {
		for _, other := range g.list() {
			if other.Key() != key && other.Key().Kind == domain.FacetCustomField {
				other.Close()
			}
		}
		if err := g.store.SetCurrentCustomField(key.FieldID); err != nil {
			return err
		}
	}
	return d.Open(ctx, scope)
}

// Filter narrows the dropdown of key to term.
func (g *DropdownGroup) Filter(ctx context.Context, key domain.FacetKey, scope domain.SearchRequest, term string) error {
	d, err := g.Get(key)
	if err != nil {
		return err
	}
	return d.Filter(ctx, scope, term)
}

// Close collapses the dropdown of key. Unknown keys are ignored.
func (g *DropdownGroup) Close(key domain.FacetKey) {
	if d, err := g.Get(key); err == nil {
		d.Close()
	}
}

// CloseAll collapses every dropdown.
func (g *DropdownGroup) CloseAll() {
	for _, d := range g.list() {
		d.Close()
	}
}

// Statuses returns the state of every item dropdown in registration order.
func (g *DropdownGroup) Statuses() []domain.DropdownStatus {
	var out []domain.DropdownStatus
	for _, d := range g.list() {
		if d.Key().Kind == domain.FacetText {
			continue
		}
		snap, err := g.store.Snapshot(d.Key())
		if err != nil {
			continue
		}
		out = append(out, domain.DropdownStatus{Facet: snap, State: d.State(), Title: d.Title()})
	}
	return out
}

func (g *DropdownGroup) list() []*Dropdown {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Dropdown, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.dropdowns[key])
	}
	return out
}
