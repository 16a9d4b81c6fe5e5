package services

import (
	"context"
	"strconv"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// FacetSource supplies and mutates the items of one facet kind.
type FacetSource interface {
	// Key identifies the facet.
	Key() domain.FacetKey

	// Title is the dropdown label.
	Title() string

	// LoadCandidates returns the items matching term among the courses of scope.
	// scope must already exclude the facet's own selection.
	LoadCandidates(ctx context.Context, scope domain.SearchRequest, term string) ([]domain.FacetItem, error)

	// Select chooses item id in store.
	Select(store *FacetStore, id string) (bool, error)

	// Deselect removes item id from the selection in store.
	Deselect(store *FacetStore, id string) (bool, error)
}

// itemSource carries the Select/Deselect behaviour shared by item-based facets.
type itemSource struct {
	key domain.FacetKey
}

func (s itemSource) Key() domain.FacetKey { return s.key }

func (s itemSource) Select(store *FacetStore, id string) (bool, error) {
	return store.Select(s.key, id)
}

func (s itemSource) Deselect(store *FacetStore, id string) (bool, error) {
	return store.Deselect(s.key, id)
}

// textSource is the free-text facet. It has no items; its term is the query.
type textSource struct{}

// NewTextSource returns the source of the free-text facet.
func NewTextSource() FacetSource { return textSource{} }

func (textSource) Key() domain.FacetKey { return domain.TextFacet() }
func (textSource) Title() string        { return "Search" }

func (textSource) LoadCandidates(context.Context, domain.SearchRequest, string) ([]domain.FacetItem, error) {
	return nil, nil
}

func (textSource) Select(*FacetStore, string) (bool, error)   { return false, nil }
func (textSource) Deselect(*FacetStore, string) (bool, error) { return false, nil }

// categorySource loads categories of the matching courses. The backend filters by name.
type categorySource struct {
	itemSource
	backend driven.CourseSearchService
}

// NewCategorySource returns the source of the category facet.
func NewCategorySource(backend driven.CourseSearchService) FacetSource {
	return categorySource{itemSource: itemSource{key: domain.CategoryFacet()}, backend: backend}
}

func (categorySource) Title() string { return "Categories" }

func (s categorySource) LoadCandidates(ctx context.Context, scope domain.SearchRequest, term string) ([]domain.FacetItem, error) {
	ids, err := s.backend.FilteredCourseIDs(ctx, scope)
	if err != nil {
		return nil, domain.NewBackendError("filtered course ids", err)
	}
	categories, err := s.backend.Categories(ctx, ids, term)
	if err != nil {
		return nil, domain.NewBackendError("categories", err)
	}
	items := make([]domain.FacetItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, domain.FacetItem{ID: strconv.FormatInt(c.ID, 10), Name: c.Name})
	}
	return items, nil
}

// tagSource loads tags of the matching courses. The backend filters by name.
type tagSource struct {
	itemSource
	backend driven.CourseSearchService
}

// NewTagSource returns the source of the tags facet.
func NewTagSource(backend driven.CourseSearchService) FacetSource {
	return tagSource{itemSource: itemSource{key: domain.TagsFacet()}, backend: backend}
}

func (tagSource) Title() string { return "Tags" }

func (s tagSource) LoadCandidates(ctx context.Context, scope domain.SearchRequest, term string) ([]domain.FacetItem, error) {
	ids, err := s.backend.FilteredCourseIDs(ctx, scope)
	if err != nil {
		return nil, domain.NewBackendError("filtered course ids", err)
	}
	tags, err := s.backend.Tags(ctx, ids, term)
	if err != nil {
		return nil, domain.NewBackendError("tags", err)
	}
	items := make([]domain.FacetItem, 0, len(tags))
	for _, t := range tags {
		items = append(items, domain.FacetItem{ID: strconv.FormatInt(t.ID, 10), Name: t.Name})
	}
	return items, nil
}

// customFieldSource loads the options of one custom field and filters them locally.
type customFieldSource struct {
	itemSource
	field   domain.CustomField
	backend driven.CourseSearchService
}

// NewCustomFieldSource returns the source of the facet for field.
func NewCustomFieldSource(backend driven.CourseSearchService, field domain.CustomField) FacetSource {
	return customFieldSource{
		itemSource: itemSource{key: domain.CustomFieldFacet(field.ID)},
		field:      field,
		backend:    backend,
	}
}

func (s customFieldSource) Title() string { return s.field.Name }

func (s customFieldSource) LoadCandidates(ctx context.Context, scope domain.SearchRequest, term string) ([]domain.FacetItem, error) {
	ids, err := s.backend.FilteredCourseIDs(ctx, scope)
	if err != nil {
		return nil, domain.NewBackendError("filtered course ids", err)
	}
	options, err := s.backend.CustomFieldOptions(ctx, s.field.ID, ids)
	if err != nil {
		return nil, domain.NewBackendError("custom field options", err)
	}
	items := make([]domain.FacetItem, 0, len(options))
	for _, o := range options {
		if o.Value == domain.CustomFieldNoneValue || !matchesTerm(o.Name, term) {
			continue
		}
		items = append(items, domain.FacetItem{ID: o.Value, Name: o.Name})
	}
	return items, nil
}
