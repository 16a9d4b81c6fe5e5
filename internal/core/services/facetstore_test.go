package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func items(pairs ...string) []domain.FacetItem {
	out := make([]domain.FacetItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.FacetItem{ID: pairs[i], Name: pairs[i+1]})
	}
	return out
}

func assertPartitioned(t *testing.T, snap domain.FacetSnapshot) {
	t.Helper()
	seen := make(map[string]bool)
	for _, item := range snap.Selected {
		seen[item.ID] = true
	}
	for _, item := range snap.Selectable {
		assert.False(t, seen[item.ID], "item %s is both selectable and selected", item.ID)
	}
}

func TestFacetStore_DefaultFacets(t *testing.T) {
	store := NewFacetStore(language.English)

	assert.Equal(t, []domain.FacetKey{
		domain.TextFacet(), domain.CategoryFacet(), domain.TagsFacet(),
	}, store.Keys())
	assert.Zero(t, store.CurrentCustomField())
}

func TestFacetStore_UnknownFacet(t *testing.T) {
	store := NewFacetStore(language.English)

	_, err := store.Select(domain.CustomFieldFacet(9), "1")
	assert.ErrorIs(t, err, domain.ErrInvalidFacet)

	err = store.SetCurrentCustomField(9)
	assert.ErrorIs(t, err, domain.ErrInvalidFacet)
}

func TestFacetStore_RegisterCustomField(t *testing.T) {
	store := NewFacetStore(language.English)
	store.RegisterCustomField(4)
	store.RegisterCustomField(2)
	store.RegisterCustomField(4)

	assert.Equal(t, []domain.FacetKey{domain.CustomFieldFacet(4), domain.CustomFieldFacet(2)}, store.CustomFieldKeys())
	assert.Equal(t, 4, store.CurrentCustomField())

	require.NoError(t, store.SetCurrentCustomField(2))
	assert.Equal(t, 2, store.CurrentCustomField())
}

func TestFacetStore_SelectMovesItem(t *testing.T) {
	store := NewFacetStore(language.English)
	key := domain.CategoryFacet()
	require.NoError(t, store.LoadCandidates(key, items("1", "Mathematics", "2", "art", "3", "Biology")))

	changed, err := store.Select(key, "1")
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = store.Select(key, "2")
	require.NoError(t, err)
	assert.True(t, changed)

	snap, err := store.Snapshot(key)
	require.NoError(t, err)
	assert.Equal(t, items("2", "art", "1", "Mathematics"), snap.Selected)
	assert.Equal(t, items("3", "Biology"), snap.Selectable)
	assertPartitioned(t, snap)
}

func TestFacetStore_SelectUnknownIsNoop(t *testing.T) {
	store := NewFacetStore(language.English)
	key := domain.TagsFacet()
	require.NoError(t, store.LoadCandidates(key, items("1", "exam")))

	changed, err := store.Select(key, "99")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.Deselect(key, "1")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFacetStore_DeselectRespectsTerm(t *testing.T) {
	store := NewFacetStore(language.English)
	key := domain.CategoryFacet()
	require.NoError(t, store.LoadCandidates(key, items("1", "German", "2", "Algebra")))
	_, err := store.Select(key, "1")
	require.NoError(t, err)
	_, err = store.Select(key, "2")
	require.NoError(t, err)

	require.NoError(t, store.SetSearchTerm(key, "alg"))

	// German does not match the term and is dropped until the next load.
	changed, err := store.Deselect(key, "1")
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = store.Deselect(key, "2")
	require.NoError(t, err)
	assert.True(t, changed)

	snap, err := store.Snapshot(key)
	require.NoError(t, err)
	assert.Empty(t, snap.Selected)
	assert.Equal(t, items("2", "Algebra"), snap.Selectable)
}

func TestFacetStore_DeselectSortsByCollation(t *testing.T) {
	store := NewFacetStore(language.German)
	key := domain.TagsFacet()
	require.NoError(t, store.LoadCandidates(key, items("1", "Zebra", "2", "äpfel", "3", "Birne")))
	_, err := store.Select(key, "2")
	require.NoError(t, err)

	_, err = store.Deselect(key, "2")
	require.NoError(t, err)

	snap, err := store.Snapshot(key)
	require.NoError(t, err)
	assert.Equal(t, items("2", "äpfel", "3", "Birne", "1", "Zebra"), snap.Selectable)
}

func TestFacetStore_LoadCandidatesSkipsSelectedAndDuplicates(t *testing.T) {
	store := NewFacetStore(language.English)
	key := domain.CategoryFacet()
	require.NoError(t, store.LoadCandidates(key, items("1", "Languages")))
	_, err := store.Select(key, "1")
	require.NoError(t, err)

	require.NoError(t, store.LoadCandidates(key, items("1", "Languages", "2", "Maths", "2", "Maths")))

	snap, err := store.Snapshot(key)
	require.NoError(t, err)
	assert.Equal(t, items("1", "Languages"), snap.Selected)
	assert.Equal(t, items("2", "Maths"), snap.Selectable)
	assertPartitioned(t, snap)
}

func TestFacetStore_SnapshotIsCopy(t *testing.T) {
	store := NewFacetStore(language.English)
	key := domain.CategoryFacet()
	require.NoError(t, store.LoadCandidates(key, items("1", "Languages")))

	snap, err := store.Snapshot(key)
	require.NoError(t, err)
	snap.Selectable[0].Name = "changed"

	again, err := store.Snapshot(key)
	require.NoError(t, err)
	assert.Equal(t, "Languages", again.Selectable[0].Name)
}

func TestFacetStore_Clear(t *testing.T) {
	store := NewFacetStore(language.English)
	key := domain.CategoryFacet()
	require.NoError(t, store.LoadCandidates(key, items("1", "B", "2", "A")))
	_, err := store.Select(key, "1")
	require.NoError(t, err)
	require.NoError(t, store.SetSearchTerm(domain.TextFacet(), "german"))
	require.NoError(t, store.SetSearchTerm(key, "x"))

	store.Clear()

	snap, err := store.Snapshot(key)
	require.NoError(t, err)
	assert.Empty(t, snap.Selected)
	assert.Equal(t, items("2", "A", "1", "B"), snap.Selectable)
	assert.Empty(t, snap.SearchTerm)
	term, err := store.SearchTerm(domain.TextFacet())
	require.NoError(t, err)
	assert.Empty(t, term)
}

func TestFacetStore_Snapshots(t *testing.T) {
	store := NewFacetStore(language.English)
	store.RegisterCustomField(3)

	snaps := store.Snapshots()
	require.Len(t, snaps, 4)
	assert.Equal(t, domain.CustomFieldFacet(3), snaps[3].Key)
}

func TestMatchesTerm(t *testing.T) {
	tests := []struct {
		name, term string
		want       bool
	}{
		{"German", "", true},
		{"German", "  ", true},
		{"German", "erm", true},
		{"German", "ERM", true},
		{"German", "french", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesTerm(tt.name, tt.term), "%q/%q", tt.name, tt.term)
	}
}
