package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageSizeOptions(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  []int
	}{
		{"few courses", 20, []int{12, 0}},
		{"exactly one hundred", 100, []int{12, 24, 48, 96, 0}},
		{"more than one hundred hides all", 150, []int{12, 24, 48, 96}},
		{"tiny catalog", 5, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageSizeOptions(DefaultPageSizes, tt.total))
		})
	}
}

func TestPage_IsFull(t *testing.T) {
	page := Page{Number: 1, Courses: make([]Course, 3)}

	assert.True(t, page.IsFull(3))
	assert.False(t, page.IsFull(4))
	assert.True(t, page.IsFull(PageSizeAll))
}
