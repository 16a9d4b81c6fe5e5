package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// ViewState is the non-facet UI state that shapes a query.
type ViewState struct {
	Progress domain.ProgressFilter
	Sort     domain.SortOrder
	Display  domain.DisplayMode
}

// Cursor is the paging window of a query.
type Cursor struct {
	Limit  int
	Offset int
}

// QueryBuilder projects facet snapshots and view state into a SearchRequest.
// It holds no state and never mutates its inputs.
type QueryBuilder struct{}

// NewQueryBuilder creates a query builder.
func NewQueryBuilder() QueryBuilder {
	return QueryBuilder{}
}

// Build returns the request for facets, view and cursor.
// Category and tag item IDs must be decimal integers.
func (QueryBuilder) Build(facets []domain.FacetSnapshot, view ViewState, cursor Cursor) (domain.SearchRequest, error) {
	if !view.Progress.IsValid() {
		return domain.SearchRequest{}, fmt.Errorf("%w: progress %q", domain.ErrInvalidInput, view.Progress)
	}
	if view.Sort != "" && !view.Sort.IsValid() {
		return domain.SearchRequest{}, fmt.Errorf("%w: sort %q", domain.ErrInvalidInput, view.Sort)
	}
	if cursor.Limit < 0 || cursor.Offset < 0 {
		return domain.SearchRequest{}, fmt.Errorf("%w: cursor %d/%d", domain.ErrInvalidInput, cursor.Limit, cursor.Offset)
	}

	req := domain.SearchRequest{
		Progress:       view.Progress,
		Sort:           view.Sort,
		IncludeSummary: view.Display == domain.DisplaySummary,
		Limit:          cursor.Limit,
		Offset:         cursor.Offset,
	}

	for _, facet := range facets {
		switch facet.Key.Kind {
		case domain.FacetText:
			req.Text = strings.TrimSpace(facet.SearchTerm)
		case domain.FacetCategory:
			ids, err := parseIDs(facet)
			if err != nil {
				return domain.SearchRequest{}, err
			}
			req.CategoryIDs = ids
		case domain.FacetTags:
			ids, err := parseIDs(facet)
			if err != nil {
				return domain.SearchRequest{}, err
			}
			req.TagIDs = ids
		case domain.FacetCustomField:
			values := facet.SelectedIDs()
			if len(values) == 0 {
				continue
			}
			slices.Sort(values)
			req.CustomFields = append(req.CustomFields, domain.CustomFieldSelection{
				FieldID: facet.Key.FieldID,
				Values:  slices.Compact(values),
			})
		default:
			return domain.SearchRequest{}, fmt.Errorf("%w: %s", domain.ErrInvalidFacet, facet.Key)
		}
	}
	slices.SortFunc(req.CustomFields, func(a, b domain.CustomFieldSelection) int {
		return a.FieldID - b.FieldID
	})

	req.Classification = domain.ClassificationFor(req.Progress)
	if req.HasCriteria() {
		req.Classification = domain.ClassificationSearch
	}
	return req, nil
}

func parseIDs(facet domain.FacetSnapshot) ([]int64, error) {
	if len(facet.Selected) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(facet.Selected))
	for _, item := range facet.Selected {
		id, err := strconv.ParseInt(item.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s id %q", domain.ErrInvalidInput, facet.Key, item.ID)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
