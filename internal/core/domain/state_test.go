package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropdownState(t *testing.T) {
	assert.Equal(t, "closed", DropdownClosed.String())
	assert.Equal(t, "filtered", DropdownFiltered.String())
	assert.False(t, DropdownClosed.IsExpanded())
	assert.True(t, DropdownOpen.IsExpanded())
	assert.True(t, DropdownFiltered.IsExpanded())
}

func TestSearchState_HasNextPage(t *testing.T) {
	assert.True(t, SearchState{Page: 3, LastPage: -1}.HasNextPage())
	assert.True(t, SearchState{Page: 0, LastPage: 1}.HasNextPage())
	assert.False(t, SearchState{Page: 1, LastPage: 1}.HasNextPage())
}
