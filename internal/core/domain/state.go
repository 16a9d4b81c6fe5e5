package domain

// DropdownState is the visibility state of a facet dropdown.
type DropdownState int

// Dropdown states.
const (
	DropdownClosed DropdownState = iota
	DropdownOpen
	// DropdownFiltered is open with a non-empty facet search term.
	DropdownFiltered
)

// String returns the string representation.
func (s DropdownState) String() string {
	switch s {
	case DropdownOpen:
		return "open"
	case DropdownFiltered:
		return "filtered"
	default:
		return "closed"
	}
}

// IsExpanded reports whether the dropdown list is shown.
func (s DropdownState) IsExpanded() bool {
	return s != DropdownClosed
}

// DropdownStatus pairs a facet with its dropdown state.
type DropdownStatus struct {
	Facet FacetSnapshot
	State DropdownState
	Title string
}

// SearchState is a read-only view of a search session for driving adapters.
type SearchState struct {
	// SessionID is the unique namespace of the session.
	SessionID string

	// Generation is the current query generation.
	Generation uint64

	// Text is the active free-text term.
	Text string

	Progress ProgressFilter
	Sort     SortOrder
	Display  DisplayMode
	PageSize int

	// Page is the 0-based page last shown.
	Page int

	// LastPage is the 0-based final page, or -1 while unknown.
	LastPage int

	// Courses is the content of Page as last rendered, highlighting applied.
	Courses []Course

	// Dropdowns lists every facet dropdown in display order.
	Dropdowns []DropdownStatus

	// CustomFields are the custom fields registered as facets.
	CustomFields []CustomField
}

// HasNextPage reports whether a page after Page may exist.
func (s SearchState) HasNextPage() bool {
	return s.LastPage < 0 || s.Page < s.LastPage
}
