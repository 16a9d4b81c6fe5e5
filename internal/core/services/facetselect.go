package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

// SelectByName filters the dropdown of key by name and selects the item whose
// name or id equals name, case-insensitively. Without an exact match the first
// candidate is selected. An item that is already selected is returned as is.
// The dropdown is closed afterwards.
func SelectByName(ctx context.Context, search driving.CourseSearch, key domain.FacetKey, name string) (domain.FacetItem, error) {
	if err := search.OpenDropdown(ctx, key); err != nil {
		return domain.FacetItem{}, err
	}
	defer search.CloseDropdown(key)
	if err := search.FilterDropdown(ctx, key, name); err != nil {
		return domain.FacetItem{}, err
	}

	status, ok := DropdownStatus(search.State(), key)
	if !ok {
		return domain.FacetItem{}, fmt.Errorf("%w: %s", domain.ErrInvalidFacet, key)
	}
	if item, ok := exactItem(status.Facet.Selected, name); ok {
		return item, nil
	}
	item, ok := exactItem(status.Facet.Selectable, name)
	if !ok {
		if len(status.Facet.Selectable) == 0 {
			return domain.FacetItem{}, fmt.Errorf("%w: no %s matches %q", domain.ErrNotFound, strings.ToLower(status.Title), name)
		}
		item = status.Facet.Selectable[0]
	}
	if err := search.Select(ctx, key, item.ID); err != nil {
		return domain.FacetItem{}, err
	}
	return item, nil
}

// DropdownStatus returns the dropdown of key in state.
func DropdownStatus(state domain.SearchState, key domain.FacetKey) (domain.DropdownStatus, bool) {
	for _, status := range state.Dropdowns {
		if status.Facet.Key == key {
			return status, true
		}
	}
	return domain.DropdownStatus{}, false
}

// CustomFieldByShortname finds a registered custom field by its short name.
func CustomFieldByShortname(fields []domain.CustomField, shortname string) (domain.CustomField, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.Shortname, shortname) {
			return f, true
		}
	}
	return domain.CustomField{}, false
}

func exactItem(items []domain.FacetItem, name string) (domain.FacetItem, bool) {
	name = strings.TrimSpace(name)
	for _, item := range items {
		if strings.EqualFold(item.Name, name) || item.ID == name {
			return item, true
		}
	}
	return domain.FacetItem{}, false
}
