package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want string
	}{
		{"case insensitive", "German for Germans", "german", "<mark>German</mark> for <mark>German</mark>s"},
		{"literal metacharacters", "a+b and aXb", "a+b", "<mark>a+b</mark> and aXb"},
		{"no match", "Algebra", "german", "Algebra"},
		{"blank term", "Algebra", "  ", "Algebra"},
		{"trimmed term", "Algebra", " alg ", "<mark>Alg</mark>ebra"},
		{"empty text", "", "x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.term, "mark"))
		})
	}
}

func TestHighlightCourses_DoesNotMutateInput(t *testing.T) {
	courses := []domain.Course{{ID: 1, FullName: "German A1", Summary: "Learn german", ShortName: "german"}}

	out := HighlightCourses(courses, "german", "b")

	assert.Equal(t, "<b>German</b> A1", out[0].FullName)
	assert.Equal(t, "Learn <b>german</b>", out[0].Summary)
	assert.Equal(t, "german", out[0].ShortName)
	assert.Equal(t, "German A1", courses[0].FullName)
}

func TestHighlightCourses_BlankTerm(t *testing.T) {
	courses := []domain.Course{{ID: 1, FullName: "German A1"}}

	assert.Equal(t, courses, HighlightCourses(courses, "", "mark"))
}
