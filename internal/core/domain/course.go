package domain

import "time"

// Course is a single course record returned by the backend.
type Course struct {
	// ID is the backend course identifier.
	ID int64

	// FullName is the display name. Highlighting may wrap parts of it in markers.
	FullName string

	// ShortName is the short course code.
	ShortName string

	// Summary is the course description. Only populated when summaries were requested.
	Summary string

	// Category is the display name of the course category.
	Category string

	// CategoryID is the backend category identifier.
	CategoryID int64

	// Progress is the completion percentage, valid when HasProgress is set.
	Progress int

	// HasProgress reports whether completion tracking is enabled for the course.
	HasProgress bool

	// StartDate is when the course starts. Zero means unset.
	StartDate time.Time

	// EndDate is when the course ends. Zero means open-ended.
	EndDate time.Time

	// IsFavourite is the user's starred flag.
	IsFavourite bool

	// Hidden is the user's hidden-from-overview preference.
	Hidden bool

	// Visible is the backend visibility of the course itself.
	Visible bool

	// ViewURL links to the course page.
	ViewURL string
}

// MatchesProgress reports whether the course passes the date gate of filter at now.
// Favourites and hidden are handled by the caller; they pass every date gate.
func (c Course) MatchesProgress(filter ProgressFilter, now time.Time) bool {
	switch filter {
	case ProgressPast:
		return !c.EndDate.IsZero() && c.EndDate.Before(now)
	case ProgressFuture:
		return c.StartDate.After(now)
	case ProgressInProgress:
		return c.StartDate.Before(now) && (c.EndDate.IsZero() || c.EndDate.After(now))
	default:
		return true
	}
}

// Category is a course category offered as a facet candidate.
type Category struct {
	ID   int64
	Name string

	// Path is the slash-separated id path of the category, e.g. "/1/4".
	Path string
}

// Tag is a course tag offered as a facet candidate.
type Tag struct {
	ID   int64
	Name string
}

// CustomField describes a course custom field that can be used as a facet.
type CustomField struct {
	ID          int
	Name        string
	Shortname   string
	Description string
}

// CustomFieldOption is one selectable value of a custom field.
type CustomFieldOption struct {
	Name  string
	Value string
}

// MaxFacetCandidates caps the category and tag candidates returned per lookup.
const MaxFacetCandidates = 6

// CustomFieldNoneValue is the option value meaning "not set". It is never offered.
const CustomFieldNoneValue = "-1"

// CoursePage is one backend response to a search request.
type CoursePage struct {
	// Courses are the returned rows, at most the requested limit.
	Courses []Course

	// NextOffset is the offset the next request should start at.
	NextOffset int
}

// Warning is a non-fatal problem the backend reported for an item.
// Any warning on a favourite call means the change was not applied.
type Warning struct {
	Item        string
	ItemID      int64
	WarningCode string
	Message     string
}
