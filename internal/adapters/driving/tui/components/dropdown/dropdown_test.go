package dropdown

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func sampleStatuses() []domain.DropdownStatus {
	return []domain.DropdownStatus{
		{
			Title: "Categories",
			State: domain.DropdownOpen,
			Facet: domain.FacetSnapshot{
				Key:      domain.CategoryFacet(),
				Selected: []domain.FacetItem{{ID: "1", Name: "Languages"}},
				Selectable: []domain.FacetItem{
					{ID: "2", Name: "Science"},
					{ID: "3", Name: "<b>German</b>"},
				},
			},
		},
		{
			Title: "Tags",
			Facet: domain.FacetSnapshot{
				Key:        domain.TagsFacet(),
				Selectable: []domain.FacetItem{{ID: "10", Name: "exam"}},
			},
		},
		{
			Title: "Level",
			Facet: domain.FacetSnapshot{Key: domain.CustomFieldFacet(5)},
		},
	}
}

func TestNewBar(t *testing.T) {
	bar := NewBar(nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.Nil(t, bar.Init())
	_, ok := bar.Focused()
	assert.False(t, ok)
	assert.Nil(t, bar.Items())
}

func TestBar_Items_SelectedFirst(t *testing.T) {
	bar := NewBar(nil)
	bar.SetStatuses(sampleStatuses())

	items := bar.Items()

	require.Len(t, items, 3)
	assert.Equal(t, Item{FacetItem: domain.FacetItem{ID: "1", Name: "Languages"}, Selected: true}, items[0])
	assert.Equal(t, "2", items[1].ID)
	assert.False(t, items[1].Selected)
}

func TestBar_NextPrevWrap(t *testing.T) {
	bar := NewBar(nil)
	bar.SetStatuses(sampleStatuses())
	bar.MoveDown()

	bar.Next()
	status, _ := bar.Focused()
	assert.Equal(t, domain.TagsFacet(), status.Facet.Key)
	assert.Equal(t, 0, bar.Cursor())

	bar.Next()
	bar.Next()
	status, _ = bar.Focused()
	assert.Equal(t, domain.CategoryFacet(), status.Facet.Key)

	bar.Prev()
	status, _ = bar.Focused()
	assert.Equal(t, domain.CustomFieldFacet(5), status.Facet.Key)
}

func TestBar_NextPrev_Empty(t *testing.T) {
	bar := NewBar(nil)

	bar.Next()
	bar.Prev()

	_, ok := bar.Focused()
	assert.False(t, ok)
}

func TestBar_SetStatuses_KeepsFocus(t *testing.T) {
	bar := NewBar(nil)
	bar.SetStatuses(sampleStatuses())
	bar.Next()

	reordered := sampleStatuses()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	bar.SetStatuses(reordered)

	status, _ := bar.Focused()
	assert.Equal(t, domain.TagsFacet(), status.Facet.Key)
}

func TestBar_SetStatuses_ClampsCursor(t *testing.T) {
	bar := NewBar(nil)
	bar.SetStatuses(sampleStatuses())
	bar.MoveDown()
	bar.MoveDown()
	assert.Equal(t, 2, bar.Cursor())

	statuses := sampleStatuses()
	statuses[0].Facet.Selectable = nil
	bar.SetStatuses(statuses)

	assert.Equal(t, 0, bar.Cursor())
}

func TestBar_CursorMovement(t *testing.T) {
	bar := NewBar(nil)
	bar.SetStatuses(sampleStatuses())

	bar.MoveUp()
	assert.Equal(t, 0, bar.Cursor())

	bar.Update(tea.KeyMsg{Type: tea.KeyDown})
	bar.Update(tea.KeyMsg{Type: tea.KeyDown})
	bar.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, bar.Cursor())

	current, ok := bar.Current()
	require.True(t, ok)
	assert.Equal(t, "3", current.ID)

	bar.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, bar.Cursor())
}

func TestBar_Current_NoItems(t *testing.T) {
	bar := NewBar(nil)
	bar.SetStatuses(sampleStatuses())
	bar.Next()
	bar.Next()

	_, ok := bar.Current()

	assert.False(t, ok)
}

func TestBar_View(t *testing.T) {
	t.Run("no dropdowns", func(t *testing.T) {
		bar := NewBar(nil)

		assert.Contains(t, bar.View(true), "No filters")
	})

	t.Run("expanded dropdown lists rows", func(t *testing.T) {
		bar := NewBar(nil)
		bar.SetWidth(100)
		bar.SetStatuses(sampleStatuses())

		view := bar.View(true)

		assert.Contains(t, view, "Categories (1) ▾")
		assert.Contains(t, view, "Tags ▸")
		assert.Contains(t, view, "> [x] Languages")
		assert.Contains(t, view, "[ ] Science")
		assert.Contains(t, view, "[ ] German")
		assert.NotContains(t, view, "<b>")
	})

	t.Run("collapsed dropdown shows chips", func(t *testing.T) {
		bar := NewBar(nil)
		statuses := sampleStatuses()
		statuses[0].State = domain.DropdownClosed
		bar.SetStatuses(statuses)

		view := bar.View(false)

		assert.Contains(t, view, "[Languages]")
		assert.NotContains(t, view, "Science")
	})

	t.Run("expanded dropdown without options", func(t *testing.T) {
		bar := NewBar(nil)
		statuses := sampleStatuses()
		statuses[2].State = domain.DropdownFiltered
		bar.SetStatuses(statuses)
		bar.Prev()

		assert.Contains(t, bar.View(true), "No options")
	})
}
