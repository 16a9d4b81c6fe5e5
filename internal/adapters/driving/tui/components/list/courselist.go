// Package list provides list display components for the TUI.
package list

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/render"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// CourseList tracks a cursor over the courses of the page on screen.
// The page itself is drawn by the renderer; the list shows which
// course the row actions apply to.
type CourseList struct {
	courses  []domain.Course
	selected int
	styles   *styles.Styles
	width    int
}

// NewCourseList creates a new course list component.
func NewCourseList(s *styles.Styles) *CourseList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CourseList{
		styles: s,
		width:  80,
	}
}

// Init initialises the course list.
func (l *CourseList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *CourseList) Update(msg tea.Msg) (*CourseList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the course under the cursor.
func (l *CourseList) View() string {
	course := l.SelectedCourse()
	if course == nil {
		return l.styles.Muted.Render("No course selected")
	}

	name := render.Plain(course.FullName)
	maxLen := l.width - 16
	if maxLen < 10 {
		maxLen = 10
	}
	if runes := []rune(name); len(runes) > maxLen {
		name = string(runes[:maxLen-3]) + "..."
	}

	line := l.styles.Selected.Render(fmt.Sprintf("> %d. %s", l.selected+1, name))
	if course.IsFavourite {
		line += " " + l.styles.Favourite.Render("★")
	}
	if course.Hidden {
		line += " " + l.styles.Muted.Render("(removed from view)")
	}
	return line
}

// SetCourses replaces the courses, keeping the cursor when it still fits.
func (l *CourseList) SetCourses(courses []domain.Course) {
	l.courses = courses
	if l.selected >= len(courses) {
		l.selected = max(len(courses)-1, 0)
	}
}

// Courses returns the current courses.
func (l *CourseList) Courses() []domain.Course {
	return l.courses
}

// Selected returns the index of the selected course.
func (l *CourseList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *CourseList) SetSelected(index int) {
	if index >= 0 && index < len(l.courses) {
		l.selected = index
	}
}

// SelectedCourse returns the course under the cursor, or nil if none.
func (l *CourseList) SelectedCourse() *domain.Course {
	if len(l.courses) == 0 || l.selected < 0 || l.selected >= len(l.courses) {
		return nil
	}
	return &l.courses[l.selected]
}

// MoveUp moves selection up.
func (l *CourseList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *CourseList) MoveDown() {
	if l.selected < len(l.courses)-1 {
		l.selected++
	}
}

// Home moves the cursor to the first course.
func (l *CourseList) Home() {
	l.selected = 0
}

// SetWidth sets the component width.
func (l *CourseList) SetWidth(width int) {
	l.width = width
}

// Width returns the current width.
func (l *CourseList) Width() int {
	return l.width
}

// Count returns the number of courses.
func (l *CourseList) Count() int {
	return len(l.courses)
}

// IsEmpty returns whether the list is empty.
func (l *CourseList) IsEmpty() bool {
	return len(l.courses) == 0
}
