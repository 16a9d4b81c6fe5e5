package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService loads course catalogs into a local backend.
type CatalogService struct {
	store driven.CatalogStore
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store driven.CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// Import validates c and replaces the stored catalog with it.
func (s *CatalogService) Import(ctx context.Context, c domain.Catalog) error {
	if s.store == nil {
		return fmt.Errorf("%w: no local catalog for this backend", domain.ErrInvalidInput)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	logger.Info("Importing %d courses, %d categories, %d tags, %d custom fields",
		len(c.Courses), len(c.Categories), len(c.Tags), len(c.CustomFields))
	if err := s.store.ImportCatalog(ctx, c); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	return nil
}

// Count returns the number of stored courses.
func (s *CatalogService) Count(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.CourseCount(ctx)
}
