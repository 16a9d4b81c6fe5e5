package driving

import (
	"context"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// CourseActions acts on a course shown in a result page.
// This is used by the TUI.
type CourseActions interface {
	// OpenCourse opens the course page in the default browser.
	OpenCourse(ctx context.Context, course *domain.Course) error

	// CopyLink copies the course page link to the system clipboard.
	CopyLink(ctx context.Context, course *domain.Course) error
}
