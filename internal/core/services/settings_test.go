package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backend.kind", "webservice")
	_ = store.Set("backend.url", "https://lms.example.com")
	_ = store.Set("backend.token", "secret")
	_ = store.Set("backend.rate", int64(2))
	_ = store.Set("view.page_size", int64(0))
	_ = store.Set("view.display", "summary")
	_ = store.Set("view.sort", "shortname")
	_ = store.Set("view.show_categories", false)
	_ = store.Set("search.debounce_ms", int64(250))
	_ = store.Set("search.locale", "de")
	_ = store.Set("dropdown.auto_close", true)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.BackendWebService, settings.Backend.Kind)
	assert.Equal(t, "https://lms.example.com", settings.Backend.URL)
	assert.Equal(t, "secret", settings.Backend.Token)
	assert.InDelta(t, 2.0, settings.Backend.RequestsPerSecond, 0.001)
	assert.Equal(t, domain.PageSizeAll, settings.View.PageSize)
	assert.Equal(t, domain.DisplaySummary, settings.View.Display)
	assert.Equal(t, domain.SortShortName, settings.View.Sort)
	assert.False(t, settings.View.ShowCategories)
	assert.Equal(t, 250, settings.Search.DebounceMS)
	assert.Equal(t, "de", settings.Search.Locale)
	assert.True(t, settings.Dropdown.AutoClose)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backend.kind", "ftp")
	_ = store.Set("view.display", "grid")
	_ = store.Set("view.page_size", int64(-5))
	_ = store.Set("backend.rate", "fast")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Backend.Kind, settings.Backend.Kind)
	assert.Equal(t, defaults.View.Display, settings.View.Display)
	assert.Equal(t, defaults.View.PageSize, settings.View.PageSize)
	assert.InDelta(t, defaults.Backend.RequestsPerSecond, settings.Backend.RequestsPerSecond, 0.001)
}

func TestSettingsService_Get_GroupingsConstrainProgress(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("groupings.enabled", []any{"past", "bogus", "future", "past"})
	_ = store.Set("view.progress", "all")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, []domain.ProgressFilter{domain.ProgressPast, domain.ProgressFuture}, settings.Groupings)
	assert.Equal(t, domain.ProgressPast, settings.View.Progress)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	settings := domain.DefaultAppSettings()
	settings.View.PageSize = 48
	settings.Search.HighlightTag = "strong"

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
	assert.Equal(t, 1, store.Saves())
}

func TestSettingsService_SaveRejectsInvalid(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	settings := domain.DefaultAppSettings()
	settings.View.Sort = "random"

	err := service.Save(&settings)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.Saves())
}

func TestSettingsService_SaveKeepsTokenWhenEmpty(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.SetBackend(domain.BackendWebService, "https://lms.example.com", "secret"))

	settings, err := service.Get()
	require.NoError(t, err)
	settings.Backend.Token = ""
	require.NoError(t, service.Save(settings))

	assert.Equal(t, "secret", store.GetString("backend.token"))
}

func TestSettingsService_SetBackend(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.BackendKind
		url     string
		wantErr bool
	}{
		{name: "web service", kind: domain.BackendWebService, url: "https://lms.example.com"},
		{name: "sqlite", kind: domain.BackendSQLite},
		{name: "web service without url", kind: domain.BackendWebService, wantErr: true},
		{name: "unknown kind", kind: "ldap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())

			err := service.SetBackend(tt.kind, tt.url, "token")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, settings.Backend.Kind)
		})
	}
}

func TestSettingsService_SetPageSizeAndDisplay(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.SetPageSize(96))
	require.NoError(t, service.SetDisplay(domain.DisplayList))
	assert.ErrorIs(t, service.SetPageSize(-1), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetDisplay("grid"), domain.ErrInvalidInput)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 96, settings.View.PageSize)
	assert.Equal(t, domain.DisplayList, settings.View.Display)
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Validate())

	_ = store.Set("backend.kind", "webservice")
	_ = store.Set("backend.url", "https://lms.example.com")
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)

	_ = store.Set("backend.token", "secret")
	assert.NoError(t, service.Validate())
}
