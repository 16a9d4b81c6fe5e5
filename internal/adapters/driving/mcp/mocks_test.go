package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/render"
	"github.com/custodia-labs/coursesearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/core/services"
)

func intPtr(v int) *int { return &v }

// testCatalog has two German courses in a subcategory of Languages,
// one English course and one Science course.
func testCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.CatalogCategory{
			{ID: 1, Name: "Languages", Path: "/1"},
			{ID: 2, Name: "Science", Path: "/2"},
			{ID: 3, Name: "German", Path: "/1/3"},
		},
		Tags: []domain.CatalogTag{
			{ID: 10, Name: "exam"},
			{ID: 11, Name: "beginner"},
		},
		CustomFields: []domain.CatalogCustomField{
			{
				ID: 5, Name: "Level", Shortname: "level",
				Options: []domain.CatalogCustomFieldOpt{
					{Name: "None", Value: domain.CustomFieldNoneValue},
					{Name: "B1", Value: "b1"},
					{Name: "C1", Value: "c1"},
				},
			},
		},
		Courses: []domain.CatalogCourse{
			{ID: 1, FullName: "Deutsch B1", ShortName: "DE-B1", CategoryID: 3, Visible: true,
				Progress: intPtr(40), TagIDs: []int64{10, 11}, CustomFields: map[int]string{5: "b1"}},
			{ID: 2, FullName: "Deutsch C1", ShortName: "DE-C1", CategoryID: 3, Visible: true,
				TagIDs: []int64{10}, CustomFields: map[int]string{5: "c1"}},
			{ID: 3, FullName: "English A2", ShortName: "EN-A2", CategoryID: 1, Visible: true,
				TagIDs: []int64{11}},
			{ID: 4, FullName: "Mathematics", ShortName: "MA", CategoryID: 2, Visible: true},
		},
	}
}

// fixture backs a Server with the in-memory catalog.
type fixture struct {
	prefs   *memory.PreferenceStore
	catalog *memory.Catalog
	server  *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{prefs: memory.NewPreferenceStore()}
	f.catalog = memory.NewCatalog(f.prefs)
	require.NoError(t, f.catalog.ImportCatalog(context.Background(), testCatalog()))

	settings := domain.DefaultAppSettings()
	server, err := NewServer(&Ports{
		Sessions: func() (driving.CourseSearch, error) {
			terminal := render.NewTerminal()
			return services.NewOrchestrator(f.catalog, f.prefs, terminal, terminal, settings), nil
		},
	})
	require.NoError(t, err)
	f.server = server
	return f
}

// setPageSize stores a paging preference picked up by new sessions.
func (f *fixture) setPageSize(t *testing.T, size string) {
	t.Helper()
	require.NoError(t, f.prefs.SetPreference(context.Background(), domain.PrefPagingLimit, &size))
}

// failingSessions never opens a session.
func failingSessions() (driving.CourseSearch, error) {
	return nil, errors.New("backend unavailable")
}
