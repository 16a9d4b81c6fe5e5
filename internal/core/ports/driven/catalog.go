package driven

import (
	"context"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// CatalogStore bulk-loads a course catalog into a local backend.
type CatalogStore interface {
	// ImportCatalog replaces the stored catalog with c.
	ImportCatalog(ctx context.Context, c domain.Catalog) error

	// CourseCount returns the number of stored courses.
	CourseCount(ctx context.Context) (int, error)
}
