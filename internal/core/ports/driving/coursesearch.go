package driving

import (
	"context"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// CourseSearch is the faceted course search exposed to the TUI, CLI and MCP server.
// One instance owns one search session.
type CourseSearch interface {
	// Init binds the session and performs the initial browse fetch.
	// Calling it again is a no-op.
	Init(ctx context.Context) error

	// Reset re-renders the cached pages, fetching again only when the cache
	// cannot serve the current display mode. It initialises the session if needed.
	Reset(ctx context.Context) error

	// TypeText records a keystroke in the search box. The search runs after
	// the debounce period; an empty term reverts to browse mode at once.
	TypeText(ctx context.Context, term string)

	// SearchText searches for term immediately.
	SearchText(ctx context.Context, term string) error

	// ClearFilters drops the text term and every facet selection.
	ClearFilters(ctx context.Context) error

	// SetProgress changes the browse grouping.
	SetProgress(ctx context.Context, p domain.ProgressFilter) error

	// SetSort changes the result order.
	SetSort(ctx context.Context, s domain.SortOrder) error

	// SetDisplay changes the result layout.
	SetDisplay(ctx context.Context, d domain.DisplayMode) error

	// SetPageSize changes the page size and persists it as a preference.
	SetPageSize(ctx context.Context, size int) error

	// GoToPage shows the 0-based page n.
	GoToPage(ctx context.Context, n int) (domain.Page, error)

	// OpenDropdown expands the dropdown of key, loading candidates when needed.
	OpenDropdown(ctx context.Context, key domain.FacetKey) error

	// TypeFilter records a keystroke in the filter box of key. The filter
	// runs after the debounce period; an empty term reloads at once.
	TypeFilter(ctx context.Context, key domain.FacetKey, term string)

	// FilterDropdown narrows the candidates of key to those matching term.
	FilterDropdown(ctx context.Context, key domain.FacetKey, term string) error

	// CloseDropdown collapses the dropdown of key.
	CloseDropdown(key domain.FacetKey)

	// ClickOutside collapses every dropdown.
	ClickOutside()

	// Select chooses an item of key and searches again.
	Select(ctx context.Context, key domain.FacetKey, id string) error

	// Deselect removes an item of key from the selection and searches again.
	Deselect(ctx context.Context, key domain.FacetKey, id string) error

	// Hide removes a course from the user's overview.
	Hide(ctx context.Context, courseID int64) error

	// Show restores a hidden course.
	Show(ctx context.Context, courseID int64) error

	// SetFavourite stars or unstars a course.
	SetFavourite(ctx context.Context, courseID int64, favourite bool) error

	// PageSizeOptions returns the page sizes worth offering.
	PageSizeOptions(ctx context.Context) []int

	// State returns a snapshot of the session.
	State() domain.SearchState

	// Close stops pending debounced work.
	Close()
}

// CatalogService manages the local course catalog.
type CatalogService interface {
	// Import validates and loads a catalog.
	Import(ctx context.Context, c domain.Catalog) error

	// Count returns the number of courses in the catalog.
	Count(ctx context.Context) (int, error)
}
