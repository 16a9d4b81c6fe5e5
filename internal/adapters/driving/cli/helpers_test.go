package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/core/services"
)

func intPtr(v int) *int { return &v }

func testCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.CatalogCategory{
			{ID: 1, Name: "Languages", Path: "/1"},
			{ID: 2, Name: "Science", Path: "/2"},
		},
		Tags: []domain.CatalogTag{{ID: 10, Name: "exam"}},
		CustomFields: []domain.CatalogCustomField{
			{
				ID: 5, Name: "Level", Shortname: "level",
				Options: []domain.CatalogCustomFieldOpt{
					{Name: "B1", Value: "b1"},
					{Name: "C1", Value: "c1"},
				},
			},
		},
		Courses: []domain.CatalogCourse{
			{ID: 1, FullName: "Deutsch B1", ShortName: "DE-B1", CategoryID: 1, Visible: true,
				Progress: intPtr(40), TagIDs: []int64{10}, CustomFields: map[int]string{5: "b1"}},
			{ID: 2, FullName: "Deutsch C1", ShortName: "DE-C1", CategoryID: 1, Visible: true,
				CustomFields: map[int]string{5: "c1"}},
			{ID: 3, FullName: "English A2", ShortName: "EN-A2", CategoryID: 1, Visible: true},
			{ID: 4, FullName: "Mathematics", ShortName: "MA", CategoryID: 2, Visible: true},
		},
	}
}

// testServices are the in-memory services injected for a test.
type testServices struct {
	prefs    *memory.PreferenceStore
	catalog  *memory.Catalog
	settings *services.SettingsService
}

// setupTestServices injects in-memory services backed by testCatalog and
// returns a cleanup function restoring the previous ones.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		prefs:    memory.NewPreferenceStore(),
		settings: services.NewSettingsService(memory.NewConfigStore()),
	}
	ts.catalog = memory.NewCatalog(ts.prefs)
	require.NoError(t, ts.catalog.ImportCatalog(context.Background(), testCatalog()))

	oldSettings, oldCatalog, oldFactory := settingsService, catalogService, searchFactory
	SetSettingsService(ts.settings)
	SetCatalogService(services.NewCatalogService(ts.catalog))
	SetSearchFactory(func(settings domain.AppSettings, r driven.Renderer, n driven.Notifier) driving.CourseSearch {
		return services.NewOrchestrator(ts.catalog, ts.prefs, r, n, settings)
	})
	t.Cleanup(func() {
		settingsService, catalogService, searchFactory = oldSettings, oldCatalog, oldFactory
	})
	return ts
}

// clearServices removes every injected service for the duration of the test.
func clearServices(t *testing.T) {
	t.Helper()
	oldSettings, oldCatalog, oldFactory := settingsService, catalogService, searchFactory
	settingsService, catalogService, searchFactory = nil, nil, nil
	t.Cleanup(func() {
		settingsService, catalogService, searchFactory = oldSettings, oldCatalog, oldFactory
	})
}

// resetSearchFlags restores the search flag variables to their defaults.
func resetSearchFlags() {
	searchCategories, searchTags, searchFields = nil, nil, nil
	searchProgress, searchSort, searchDisplay = "", "", ""
	searchPage, searchSize = 1, -1
	searchJSON, searchFacets = false, false
	for _, name := range []string{"category", "tag", "field"} {
		if f := searchCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

// run executes the root command with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

// runWithInput is run with input on stdin.
func runWithInput(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetSearchFlags()
	})
	resetSearchFlags()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
