package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// Highlight wraps every case-insensitive occurrence of term in text with
// <tag>...</tag>. The term is matched literally.
func Highlight(text, term, tag string) string {
	term = strings.TrimSpace(term)
	if term == "" || text == "" {
		return text
	}
	re := regexp.MustCompile("(?i)(" + regexp.QuoteMeta(term) + ")")
	return re.ReplaceAllString(text, "<"+tag+">${1}</"+tag+">")
}

// HighlightCourses returns copies of courses with term highlighted in the
// full name and summary.
func HighlightCourses(courses []domain.Course, term, tag string) []domain.Course {
	if strings.TrimSpace(term) == "" {
		return courses
	}
	out := make([]domain.Course, len(courses))
	for i, course := range courses {
		course.FullName = Highlight(course.FullName, term, tag)
		course.Summary = Highlight(course.Summary, term, tag)
		out[i] = course
	}
	return out
}
