package driven

import (
	"context"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// CourseSearchService executes queries against the course backend.
// Backed by the LMS web service or by the local SQLite catalog.
type CourseSearchService interface {
	// SearchCourses returns the courses matching req, honouring req.Limit and req.Offset.
	// Courses the user hid are excluded unless req.Progress includes hidden ones.
	SearchCourses(ctx context.Context, req domain.SearchRequest) (domain.CoursePage, error)

	// FilteredCourseIDs returns the ids of every course matching req, ignoring paging.
	// Used to scope facet candidate lookups to the current result set.
	FilteredCourseIDs(ctx context.Context, req domain.SearchRequest) ([]int64, error)

	// Categories returns the categories of courseIDs whose name contains filter.
	Categories(ctx context.Context, courseIDs []int64, filter string) ([]domain.Category, error)

	// Tags returns the tags of courseIDs whose name contains filter.
	Tags(ctx context.Context, courseIDs []int64, filter string) ([]domain.Tag, error)

	// CustomFieldOptions returns the options of fieldID used by courseIDs.
	CustomFieldOptions(ctx context.Context, fieldID int, courseIDs []int64) ([]domain.CustomFieldOption, error)

	// CustomFields returns the custom fields offered as facets.
	CustomFields(ctx context.Context) ([]domain.CustomField, error)

	// SetFavourite stars or unstars a course. Any returned warning means
	// the change was not applied.
	SetFavourite(ctx context.Context, courseID int64, favourite bool) ([]domain.Warning, error)
}
