package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FacetKind identifies the type of a filter facet.
type FacetKind int

// Available facet kinds.
const (
	// FacetText is the free-text course name search.
	FacetText FacetKind = iota

	// FacetCategory filters by course category.
	FacetCategory

	// FacetTags filters by course tag.
	FacetTags

	// FacetCustomField filters by the value of one course custom field.
	FacetCustomField
)

// String returns the string representation.
func (k FacetKind) String() string {
	switch k {
	case FacetText:
		return "text"
	case FacetCategory:
		return "category"
	case FacetTags:
		return "tags"
	case FacetCustomField:
		return "customfield"
	default:
		return "unknown"
	}
}

// FacetKey identifies one facet. FieldID is only meaningful for custom fields.
type FacetKey struct {
	Kind    FacetKind
	FieldID int
}

// TextFacet returns the key of the free-text facet.
func TextFacet() FacetKey { return FacetKey{Kind: FacetText} }

// CategoryFacet returns the key of the category facet.
func CategoryFacet() FacetKey { return FacetKey{Kind: FacetCategory} }

// TagsFacet returns the key of the tags facet.
func TagsFacet() FacetKey { return FacetKey{Kind: FacetTags} }

// CustomFieldFacet returns the key of the facet for custom field id.
func CustomFieldFacet(id int) FacetKey { return FacetKey{Kind: FacetCustomField, FieldID: id} }

// String returns "category", "tags", "text" or "customfield:<id>".
func (k FacetKey) String() string {
	if k.Kind == FacetCustomField {
		return fmt.Sprintf("customfield:%d", k.FieldID)
	}
	return k.Kind.String()
}

// ParseFacetKey parses the String form of a FacetKey.
func ParseFacetKey(s string) (FacetKey, error) {
	switch s {
	case "text":
		return TextFacet(), nil
	case "category", "categories":
		return CategoryFacet(), nil
	case "tags", "tag":
		return TagsFacet(), nil
	}
	if rest, ok := strings.CutPrefix(s, "customfield:"); ok {
		id, err := strconv.Atoi(rest)
		if err != nil || id <= 0 {
			return FacetKey{}, fmt.Errorf("%w: custom field id %q", ErrInvalidFacet, rest)
		}
		return CustomFieldFacet(id), nil
	}
	return FacetKey{}, fmt.Errorf("%w: %q", ErrInvalidFacet, s)
}

// FacetItem is a selectable facet value.
// ID is the backend identifier: a decimal id for categories and tags,
// the option value for custom fields.
type FacetItem struct {
	ID   string
	Name string
}

// FacetSnapshot is a read-only copy of one facet's state.
// Selectable and Selected never share an ID.
type FacetSnapshot struct {
	Key        FacetKey
	SearchTerm string
	Selectable []FacetItem
	Selected   []FacetItem
}

// SelectedIDs returns the IDs of the selected items in display order.
func (s FacetSnapshot) SelectedIDs() []string {
	ids := make([]string, 0, len(s.Selected))
	for _, item := range s.Selected {
		ids = append(ids, item.ID)
	}
	return ids
}

// IsSelected reports whether id is in the selected list.
func (s FacetSnapshot) IsSelected(id string) bool {
	for _, item := range s.Selected {
		if item.ID == id {
			return true
		}
	}
	return false
}
