package domain

import (
	"fmt"
	"slices"
	"time"
)

// BackendKind selects the CourseSearchService implementation.
type BackendKind string

// Available backends.
const (
	// BackendWebService talks to a remote LMS over its REST web service.
	BackendWebService BackendKind = "webservice"

	// BackendSQLite searches a local catalog database.
	BackendSQLite BackendKind = "sqlite"
)

// IsValid returns true if the backend kind is recognised.
func (b BackendKind) IsValid() bool {
	return b == BackendWebService || b == BackendSQLite
}

// String returns the string representation.
func (b BackendKind) String() string {
	return string(b)
}

// BackendSettings holds backend connection configuration.
type BackendSettings struct {
	// Kind selects the backend implementation.
	Kind BackendKind

	// URL is the LMS base URL (web service only).
	URL string

	// Token is the web service token (web service only).
	Token string

	// RequestsPerSecond caps outgoing web service calls. Zero disables the limiter.
	RequestsPerSecond float64

	// CatalogPath is the SQLite catalog path (sqlite only). Empty uses the data directory.
	CatalogPath string
}

// IsConfigured returns true if the backend has what it needs to connect.
func (b BackendSettings) IsConfigured() bool {
	switch b.Kind {
	case BackendWebService:
		return b.URL != "" && b.Token != ""
	case BackendSQLite:
		return true
	default:
		return false
	}
}

// ViewSettings holds the initial view state.
type ViewSettings struct {
	// PageSize is the number of courses per page. Zero shows all.
	PageSize int

	// Display is the result layout.
	Display DisplayMode

	// Sort is the result order.
	Sort SortOrder

	// Progress is the initial browse grouping.
	Progress ProgressFilter

	// ShowCategories shows the category name on each course.
	ShowCategories bool
}

// SearchSettings holds text search behaviour.
type SearchSettings struct {
	// DebounceMS is the quiet period after the last keystroke before searching.
	DebounceMS int

	// HighlightTag is the element name wrapped around matched text.
	HighlightTag string

	// Locale is the BCP 47 tag used to collate facet item names.
	Locale string
}

// Debounce returns DebounceMS as a duration.
func (s SearchSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// DropdownSettings holds facet dropdown behaviour.
type DropdownSettings struct {
	// AutoClose closes a dropdown after a selection leaves nothing selectable.
	AutoClose bool
}

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Backend  BackendSettings
	View     ViewSettings
	Search   SearchSettings
	Dropdown DropdownSettings

	// Groupings are the progress filters offered in the grouping selector.
	Groupings []ProgressFilter
}

// DefaultAppSettings returns the default settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			Kind:              BackendSQLite,
			RequestsPerSecond: 5,
		},
		View: ViewSettings{
			PageSize:       12,
			Display:        DisplayCard,
			Sort:           SortTitle,
			Progress:       ProgressAll,
			ShowCategories: true,
		},
		Search: SearchSettings{
			DebounceMS:   1000,
			HighlightTag: "mark",
			Locale:       "en",
		},
		Groupings: AllProgressFilters(),
	}
}

// Validate checks that every enumerated value is recognised.
func (s AppSettings) Validate() error {
	if !s.Backend.Kind.IsValid() {
		return fmt.Errorf("%w: backend kind %q", ErrInvalidInput, s.Backend.Kind)
	}
	if s.View.PageSize < 0 {
		return fmt.Errorf("%w: page size %d", ErrInvalidInput, s.View.PageSize)
	}
	if !s.View.Display.IsValid() {
		return fmt.Errorf("%w: display %q", ErrInvalidInput, s.View.Display)
	}
	if !s.View.Sort.IsValid() {
		return fmt.Errorf("%w: sort %q", ErrInvalidInput, s.View.Sort)
	}
	if !s.View.Progress.IsValid() {
		return fmt.Errorf("%w: progress %q", ErrInvalidInput, s.View.Progress)
	}
	if len(s.Groupings) > 0 && !slices.Contains(s.Groupings, s.View.Progress) {
		return fmt.Errorf("%w: grouping %q is not enabled", ErrInvalidInput, s.View.Progress)
	}
	if s.Search.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce %dms", ErrInvalidInput, s.Search.DebounceMS)
	}
	return nil
}

// Preference keys persisted through a PreferenceStore.
const (
	// PrefPagingLimit stores the chosen page size.
	PrefPagingLimit = "block_eledia_telc_coursesearch_user_paging_preference"

	// HiddenCoursePrefix starts every hidden-course key; the course id follows.
	HiddenCoursePrefix = "block_eledia_telc_coursesearch_hidden_course_"
)

// HiddenCoursePreference returns the preference key that marks courseID hidden.
func HiddenCoursePreference(courseID int64) string {
	return fmt.Sprintf("%s%d", HiddenCoursePrefix, courseID)
}

// HiddenCourseID parses a key made by HiddenCoursePreference.
func HiddenCourseID(key string) (int64, bool) {
	var id int64
	if len(key) <= len(HiddenCoursePrefix) || key[:len(HiddenCoursePrefix)] != HiddenCoursePrefix {
		return 0, false
	}
	if _, err := fmt.Sscanf(key[len(HiddenCoursePrefix):], "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
