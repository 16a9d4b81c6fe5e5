package services

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// SearchSession is the state of one search widget. Sessions share nothing,
// so several can run side by side.
type SearchSession struct {
	id string

	Facets    *FacetStore
	Pages     *Paginator
	Dropdowns *DropdownGroup

	mu            sync.Mutex
	initialized   bool
	view          ViewState
	pageSize      int
	page          int
	shown         []domain.Course
	summaryLoaded bool
	fields        []domain.CustomField
}

// NewSearchSession creates a session seeded from settings.
func NewSearchSession(settings domain.AppSettings) *SearchSession {
	tag, err := language.Parse(settings.Search.Locale)
	if err != nil {
		tag = language.Und
	}
	facets := NewFacetStore(tag)
	pages := NewPaginator(settings.View.PageSize)
	return &SearchSession{
		id:        uuid.NewString(),
		Facets:    facets,
		Pages:     pages,
		Dropdowns: NewDropdownGroup(facets, pages.Generation, settings.Dropdown.AutoClose),
		view: ViewState{
			Progress: settings.View.Progress,
			Sort:     settings.View.Sort,
			Display:  settings.View.Display,
		},
		pageSize: settings.View.PageSize,
	}
}

// ID returns the unique session id.
func (s *SearchSession) ID() string {
	return s.id
}

// Namespace returns the prefix that scopes the session's rendered regions.
func (s *SearchSession) Namespace() string {
	return "coursesearch-" + s.id
}

// Generation returns the current query generation.
func (s *SearchSession) Generation() uint64 {
	return s.Pages.Generation()
}

// MarkInitialized sets the initialised marker. It returns false if it was already set.
func (s *SearchSession) MarkInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return false
	}
	s.initialized = true
	return true
}

// Initialized reports whether the session was initialised.
func (s *SearchSession) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// View returns the current view state.
func (s *SearchSession) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// UpdateView applies fn to the view state.
func (s *SearchSession) UpdateView(fn func(*ViewState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.view)
}

// PageSize returns the configured page size.
func (s *SearchSession) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

// SetPageSize changes the configured page size. The cache resets on the next load.
func (s *SearchSession) SetPageSize(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = size
}

// CurrentPage returns the page last shown.
func (s *SearchSession) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SummaryLoaded reports whether the cached rows carry summaries.
func (s *SearchSession) SummaryLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLoaded
}

// SetSummaryLoaded records whether the cached rows carry summaries.
func (s *SearchSession) SetSummaryLoaded(loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaryLoaded = loaded
}

// setShown records the page last rendered.
func (s *SearchSession) setShown(n int, courses []domain.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = n
	s.shown = slices.Clone(courses)
}

// CustomFields returns the custom fields registered as facets.
func (s *SearchSession) CustomFields() []domain.CustomField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fields)
}

func (s *SearchSession) setCustomFields(fields []domain.CustomField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = slices.Clone(fields)
}

// State returns a read-only snapshot of the session.
func (s *SearchSession) State() domain.SearchState {
	text, _ := s.Facets.SearchTerm(domain.TextFacet())
	last, ok := s.Pages.LastPage()
	if !ok {
		last = unknownPage
	}
	dropdowns := s.Dropdowns.Statuses()
	gen := s.Pages.Generation()

	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SearchState{
		SessionID:    s.id,
		Generation:   gen,
		Text:         text,
		Progress:     s.view.Progress,
		Sort:         s.view.Sort,
		Display:      s.view.Display,
		PageSize:     s.pageSize,
		Page:         s.page,
		LastPage:     last,
		Courses:      slices.Clone(s.shown),
		Dropdowns:    dropdowns,
		CustomFields: slices.Clone(s.fields),
	}
}
