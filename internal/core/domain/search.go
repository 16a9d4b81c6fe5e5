package domain

import (
	"slices"
	"strconv"
)

// ProgressFilter is the browse grouping selected in the view.
type ProgressFilter string

// Available progress filters.
const (
	// ProgressAllIncludingHidden shows every enrolled course, hidden ones included.
	ProgressAllIncludingHidden ProgressFilter = "allincludinghidden"

	// ProgressAll shows every course the user has not hidden.
	ProgressAll ProgressFilter = "all"

	// ProgressInProgress shows courses that started and have not ended.
	ProgressInProgress ProgressFilter = "inprogress"

	// ProgressFuture shows courses that have not started.
	ProgressFuture ProgressFilter = "future"

	// ProgressPast shows courses whose end date has passed.
	ProgressPast ProgressFilter = "past"

	// ProgressFavourites shows starred courses.
	ProgressFavourites ProgressFilter = "favourites"

	// ProgressHidden shows only hidden courses.
	ProgressHidden ProgressFilter = "hidden"
)

// AllProgressFilters returns every progress filter in display order.
func AllProgressFilters() []ProgressFilter {
	return []ProgressFilter{
		ProgressAllIncludingHidden,
		ProgressAll,
		ProgressInProgress,
		ProgressFuture,
		ProgressPast,
		ProgressFavourites,
		ProgressHidden,
	}
}

// IsValid returns true if the filter is recognised.
func (p ProgressFilter) IsValid() bool {
	return slices.Contains(AllProgressFilters(), p)
}

// IncludesHidden reports whether courses the user hid stay in the result.
func (p ProgressFilter) IncludesHidden() bool {
	return p == ProgressAllIncludingHidden || p == ProgressHidden
}

// String returns the string representation.
func (p ProgressFilter) String() string {
	return string(p)
}

// Description returns a human-readable label.
func (p ProgressFilter) Description() string {
	switch p {
	case ProgressAllIncludingHidden:
		return "All (including removed from view)"
	case ProgressAll:
		return "All (except removed from view)"
	case ProgressInProgress:
		return "In progress"
	case ProgressFuture:
		return "Future"
	case ProgressPast:
		return "Past"
	case ProgressFavourites:
		return "Starred"
	case ProgressHidden:
		return "Removed from view"
	default:
		return "Unknown"
	}
}

// Classification tells the backend which kind of listing to produce.
type Classification string

// Classifications beyond the browse groupings.
const (
	// ClassificationSearch is used whenever a text term or facet selection is active.
	ClassificationSearch Classification = "search"

	// ClassificationCustomField lists courses by one custom field value.
	ClassificationCustomField Classification = "customfield"
)

// ClassificationFor returns the browse classification of a progress filter.
func ClassificationFor(p ProgressFilter) Classification {
	return Classification(p)
}

// SortOrder is the backend sort expression.
type SortOrder string

// Available sort orders.
const (
	SortTitle        SortOrder = "fullname"
	SortLastAccessed SortOrder = "ul.timeaccess desc"
	SortShortName    SortOrder = "shortname"
)

// IsValid returns true if the sort order is recognised.
func (s SortOrder) IsValid() bool {
	return s == SortTitle || s == SortLastAccessed || s == SortShortName
}

// DisplayMode is the result layout.
type DisplayMode string

// Available display modes.
const (
	DisplayCard    DisplayMode = "card"
	DisplayList    DisplayMode = "list"
	DisplaySummary DisplayMode = "summary"
)

// IsValid returns true if the display mode is recognised.
func (d DisplayMode) IsValid() bool {
	return d == DisplayCard || d == DisplayList || d == DisplaySummary
}

// Template returns the result template that renders this mode.
func (d DisplayMode) Template() string {
	switch d {
	case DisplayList:
		return TemplateList
	case DisplaySummary:
		return TemplateSummary
	default:
		return TemplateCards
	}
}

// CustomFieldSelection is the set of selected values of one custom field.
type CustomFieldSelection struct {
	FieldID int
	Values  []string
}

// SearchRequest is the immutable query sent to a CourseSearchService.
// Slices are sorted so that equal filter state yields equal requests.
// Never mutate a request in place; use the With* helpers.
type SearchRequest struct {
	// Text is the trimmed free-text term. Empty means browse mode.
	Text string

	// CategoryIDs are the selected category ids, ascending.
	CategoryIDs []int64

	// TagIDs are the selected tag ids, ascending.
	TagIDs []int64

	// CustomFields are the selections per custom field, ascending by FieldID.
	CustomFields []CustomFieldSelection

	// Progress is the browse grouping. It also gates search results by date.
	Progress ProgressFilter

	// Classification is "search" when any criterion is active, the grouping otherwise.
	Classification Classification

	// Sort is the backend sort expression.
	Sort SortOrder

	// IncludeSummary requests the course summary field.
	IncludeSummary bool

	// Limit is the number of rows to return. Zero means no limit.
	Limit int

	// Offset is the number of rows to skip.
	Offset int
}

// HasCriteria reports whether a text term or any facet selection is active.
func (r SearchRequest) HasCriteria() bool {
	return r.Text != "" || len(r.CategoryIDs) > 0 || len(r.TagIDs) > 0 || len(r.CustomFields) > 0
}

// WithPage returns a copy with limit and offset replaced.
func (r SearchRequest) WithPage(limit, offset int) SearchRequest {
	r.Limit = limit
	r.Offset = offset
	return r
}

// WithoutFacet returns a copy without the selections of key.
// Candidate lookups use it so a facet's own selection never narrows its candidates.
func (r SearchRequest) WithoutFacet(key FacetKey) SearchRequest {
	switch key.Kind {
	case FacetText:
		r.Text = ""
	case FacetCategory:
		r.CategoryIDs = nil
	case FacetTags:
		r.TagIDs = nil
	case FacetCustomField:
		kept := make([]CustomFieldSelection, 0, len(r.CustomFields))
		for _, sel := range r.CustomFields {
			if sel.FieldID != key.FieldID {
				kept = append(kept, sel)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		r.CustomFields = kept
	}
	if !r.HasCriteria() {
		r.Classification = ClassificationFor(r.Progress)
	}
	return r
}

// Criteria returns the active criteria in a fixed order.
func (r SearchRequest) Criteria() []Criterion {
	var out []Criterion
	if r.Text != "" {
		out = append(out, NameCriterion{Term: r.Text})
	}
	if len(r.CategoryIDs) > 0 {
		out = append(out, CategoriesCriterion{IDs: r.CategoryIDs})
	}
	if len(r.TagIDs) > 0 {
		out = append(out, TagsCriterion{IDs: r.TagIDs})
	}
	if len(r.CustomFields) > 0 {
		out = append(out, CustomFieldsCriterion{Fields: r.CustomFields})
	}
	if r.Progress != "" {
		out = append(out, ProgressCriterion{Filter: r.Progress})
	}
	return out
}

// Criterion is one typed search criterion.
// The set of implementations is closed.
type Criterion interface {
	// Key is the wire name of the criterion.
	Key() string
	isCriterion()
}

// NameCriterion matches the course name against a term.
type NameCriterion struct{ Term string }

// CategoriesCriterion restricts results to the given categories.
type CategoriesCriterion struct{ IDs []int64 }

// TagsCriterion restricts results to courses carrying any of the given tags.
type TagsCriterion struct{ IDs []int64 }

// CustomFieldsCriterion restricts results by custom field values.
type CustomFieldsCriterion struct{ Fields []CustomFieldSelection }

// ProgressCriterion applies a progress date gate.
type ProgressCriterion struct{ Filter ProgressFilter }

func (NameCriterion) Key() string         { return "name" }
func (CategoriesCriterion) Key() string   { return "selectedCategories" }
func (TagsCriterion) Key() string         { return "selectedTags" }
func (CustomFieldsCriterion) Key() string { return "selectedCustomfields" }
func (ProgressCriterion) Key() string     { return "progress" }

func (NameCriterion) isCriterion()         {}
func (CategoriesCriterion) isCriterion()   {}
func (TagsCriterion) isCriterion()         {}
func (CustomFieldsCriterion) isCriterion() {}
func (ProgressCriterion) isCriterion()     {}

// FormatIDs renders ids as decimal strings.
func FormatIDs(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}
