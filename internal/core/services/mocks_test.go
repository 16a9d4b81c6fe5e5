package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// --- Mock implementations ---

// fetchCall records one SearchCourses call.
type fetchCall struct {
	Limit  int
	Offset int
}

// mockBackend implements driven.CourseSearchService over a fixed list of courses.
type mockBackend struct {
	mu      sync.Mutex
	courses []domain.Course
	fields  []domain.CustomField
	options map[int][]domain.CustomFieldOption

	calls []fetchCall
	// categoryTerms records the term of every Categories call.
	categoryTerms []string

	// block, when set, is waited on before SearchCourses returns.
	block chan struct{}
	// started receives once per SearchCourses call.
	started chan struct{}

	searchErr    error
	idsErr       error
	fieldsErr    error
	favErr       error
	favWarnings  []domain.Warning
	favouriteSet map[int64]bool
}

func newMockBackend(n int) *mockBackend {
	courses := make([]domain.Course, 0, n)
	for i := 1; i <= n; i++ {
		courses = append(courses, domain.Course{
			ID:       int64(i),
			FullName: fmt.Sprintf("Course %03d", i),
			Summary:  fmt.Sprintf("Summary %d", i),
		})
	}
	return &mockBackend{courses: courses, favouriteSet: make(map[int64]bool)}
}

func (m *mockBackend) SearchCourses(ctx context.Context, req domain.SearchRequest) (domain.CoursePage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fetchCall{Limit: req.Limit, Offset: req.Offset})
	block, started, err := m.block, m.started, m.searchErr
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.CoursePage{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.CoursePage{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	start := min(req.Offset, len(m.courses))
	end := len(m.courses)
	if req.Limit > 0 {
		end = min(start+req.Limit, len(m.courses))
	}
	out := make([]domain.Course, 0, end-start)
	for _, c := range m.courses[start:end] {
		if !req.IncludeSummary {
			c.Summary = ""
		}
		out = append(out, c)
	}
	return domain.CoursePage{Courses: out, NextOffset: end}, nil
}

func (m *mockBackend) FilteredCourseIDs(_ context.Context, _ domain.SearchRequest) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	ids := make([]int64, 0, len(m.courses))
	for _, c := range m.courses {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (m *mockBackend) Categories(_ context.Context, _ []int64, term string) ([]domain.Category, error) {
	m.mu.Lock()
	m.categoryTerms = append(m.categoryTerms, term)
	m.mu.Unlock()
	return []domain.Category{{ID: 1, Name: "Languages"}, {ID: 2, Name: "Mathematics"}}, nil
}

func (m *mockBackend) Tags(_ context.Context, _ []int64, _ string) ([]domain.Tag, error) {
	return []domain.Tag{{ID: 10, Name: "exam"}}, nil
}

func (m *mockBackend) CustomFieldOptions(_ context.Context, fieldID int, _ []int64) ([]domain.CustomFieldOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.options[fieldID], nil
}

func (m *mockBackend) CustomFields(_ context.Context) ([]domain.CustomField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fields, m.fieldsErr
}

func (m *mockBackend) SetFavourite(_ context.Context, courseID int64, favourite bool) ([]domain.Warning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favErr != nil || len(m.favWarnings) > 0 {
		return m.favWarnings, m.favErr
	}
	m.favouriteSet[courseID] = favourite
	return nil, nil
}

// remove drops courseID from the backend so later windows shift like a real query would.
func (m *mockBackend) remove(courseID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.courses {
		if c.ID == courseID {
			m.courses = append(m.courses[:i], m.courses[i+1:]...)
			return
		}
	}
}

func (m *mockBackend) categoryLookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.categoryTerms...)
}

func (m *mockBackend) fetches() []fetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fetchCall(nil), m.calls...)
}

// mockRenderer implements driven.Renderer and records every replaced container.
type mockRenderer struct {
	mu         sync.Mutex
	renders    []string
	containers map[string]domain.Rendered
	data       map[string]any
	renderErr  error
}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{
		containers: make(map[string]domain.Rendered),
		data:       make(map[string]any),
	}
}

func (m *mockRenderer) Render(template string, data any) (domain.Rendered, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderErr != nil {
		return domain.Rendered{}, m.renderErr
	}
	m.renders = append(m.renders, template)
	m.data[template] = data
	return domain.Rendered{Template: template, Body: fmt.Sprintf("%v", data)}, nil
}

func (m *mockRenderer) Replace(container string, r domain.Rendered) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers[container] = r
	return nil
}

func (m *mockRenderer) container(name string) (domain.Rendered, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.containers[name]
	return r, ok
}

func (m *mockRenderer) lastData(template string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[template]
}

// mockNotifier implements driven.Notifier.
type mockNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (m *mockNotifier) Notify(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

// mockPreferences implements driven.PreferenceStore with an optional write error.
type mockPreferences struct {
	mu       sync.Mutex
	values   map[string]string
	setErr   error
	readErr  error
	setCalls int
}

func newMockPreferences() *mockPreferences {
	return &mockPreferences{values: make(map[string]string)}
}

func (m *mockPreferences) SetPreference(_ context.Context, key string, value *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	if value == nil {
		delete(m.values, key)
		return nil
	}
	m.values[key] = *value
	return nil
}

func (m *mockPreferences) Preference(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func courseIDsOf(courses []domain.Course) []int64 {
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	return ids
}

func idRange(from, to int64) []int64 {
	ids := make([]int64, 0, to-from+1)
	for i := from; i <= to; i++ {
		ids = append(ids, i)
	}
	return ids
}
