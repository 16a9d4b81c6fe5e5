package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacetKey_String(t *testing.T) {
	assert.Equal(t, "text", TextFacet().String())
	assert.Equal(t, "category", CategoryFacet().String())
	assert.Equal(t, "tags", TagsFacet().String())
	assert.Equal(t, "customfield:7", CustomFieldFacet(7).String())
}

func TestParseFacetKey_RoundTrip(t *testing.T) {
	for _, key := range []FacetKey{TextFacet(), CategoryFacet(), TagsFacet(), CustomFieldFacet(3)} {
		parsed, err := ParseFacetKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	}
}

func TestParseFacetKey_Invalid(t *testing.T) {
	tests := []string{"", "colour", "customfield:", "customfield:abc", "customfield:-2"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseFacetKey(in)
			assert.ErrorIs(t, err, ErrInvalidFacet)
		})
	}
}

func TestFacetSnapshot_SelectedIDs(t *testing.T) {
	snap := FacetSnapshot{
		Selected: []FacetItem{{ID: "4", Name: "Art"}, {ID: "2", Name: "Biology"}},
	}

	assert.Equal(t, []string{"4", "2"}, snap.SelectedIDs())
	assert.True(t, snap.IsSelected("2"))
	assert.False(t, snap.IsSelected("9"))
}
