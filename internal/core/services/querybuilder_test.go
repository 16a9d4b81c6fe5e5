package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func browseView() ViewState {
	return ViewState{Progress: domain.ProgressAll, Sort: domain.SortTitle, Display: domain.DisplayCard}
}

func TestQueryBuilder_Browse(t *testing.T) {
	req, err := NewQueryBuilder().Build(nil, browseView(), Cursor{Limit: 24, Offset: 0})
	require.NoError(t, err)

	assert.Equal(t, domain.SearchRequest{
		Progress:       domain.ProgressAll,
		Classification: domain.ClassificationFor(domain.ProgressAll),
		Sort:           domain.SortTitle,
		Limit:          24,
	}, req)
	assert.False(t, req.HasCriteria())
}

func TestQueryBuilder_Search(t *testing.T) {
	facets := []domain.FacetSnapshot{
		{Key: domain.TextFacet(), SearchTerm: "  german "},
		{Key: domain.CategoryFacet(), Selected: items("7", "B", "3", "A", "7", "B")},
		{Key: domain.TagsFacet(), Selected: items("11", "exam")},
		{Key: domain.CustomFieldFacet(9), Selected: items("2", "B2", "1", "A1")},
		{Key: domain.CustomFieldFacet(4), Selected: items("x", "X")},
		{Key: domain.CustomFieldFacet(5)},
	}
	view := browseView()
	view.Display = domain.DisplaySummary

	req, err := NewQueryBuilder().Build(facets, view, Cursor{Limit: 12, Offset: 24})
	require.NoError(t, err)

	assert.Equal(t, "german", req.Text)
	assert.Equal(t, []int64{3, 7}, req.CategoryIDs)
	assert.Equal(t, []int64{11}, req.TagIDs)
	assert.Equal(t, []domain.CustomFieldSelection{
		{FieldID: 4, Values: []string{"x"}},
		{FieldID: 9, Values: []string{"1", "2"}},
	}, req.CustomFields)
	assert.Equal(t, domain.ClassificationSearch, req.Classification)
	assert.True(t, req.IncludeSummary)
	assert.Equal(t, 12, req.Limit)
	assert.Equal(t, 24, req.Offset)
}

func TestQueryBuilder_IsPure(t *testing.T) {
	facets := []domain.FacetSnapshot{
		{Key: domain.CategoryFacet(), Selected: items("7", "B", "3", "A")},
	}
	before := []domain.FacetSnapshot{
		{Key: domain.CategoryFacet(), Selected: items("7", "B", "3", "A")},
	}
	builder := NewQueryBuilder()

	first, err := builder.Build(facets, browseView(), Cursor{Limit: 12})
	require.NoError(t, err)
	second, err := builder.Build(facets, browseView(), Cursor{Limit: 12})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, facets)
}

func TestQueryBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		facets  []domain.FacetSnapshot
		view    ViewState
		cursor  Cursor
		wantErr error
	}{
		{
			name:    "bad category id",
			facets:  []domain.FacetSnapshot{{Key: domain.CategoryFacet(), Selected: items("abc", "A")}},
			view:    browseView(),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "bad tag id",
			facets:  []domain.FacetSnapshot{{Key: domain.TagsFacet(), Selected: items("1.5", "A")}},
			view:    browseView(),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "bad progress",
			view:    ViewState{Progress: "someday"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "bad sort",
			view:    ViewState{Progress: domain.ProgressAll, Sort: "random"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "negative offset",
			view:    browseView(),
			cursor:  Cursor{Limit: 12, Offset: -1},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown facet kind",
			facets:  []domain.FacetSnapshot{{Key: domain.FacetKey{Kind: domain.FacetKind(99)}}},
			view:    browseView(),
			wantErr: domain.ErrInvalidFacet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQueryBuilder().Build(tt.facets, tt.view, tt.cursor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQueryBuilder_HiddenGrouping(t *testing.T) {
	view := browseView()
	view.Progress = domain.ProgressHidden

	req, err := NewQueryBuilder().Build(nil, view, Cursor{})
	require.NoError(t, err)
	assert.Equal(t, domain.ClassificationFor(domain.ProgressHidden), req.Classification)
	assert.True(t, req.Progress.IncludesHidden())
}
