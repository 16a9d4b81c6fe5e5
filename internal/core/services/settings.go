package services

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBackendKind     = "backend.kind"
	keyBackendURL      = "backend.url"
	keyBackendToken    = "backend.token"
	keyBackendRate     = "backend.rate"
	keyBackendCatalog  = "backend.catalog_path"
	keyViewPageSize    = "view.page_size"
	keyViewDisplay     = "view.display"
	keyViewSort        = "view.sort"
	keyViewProgress    = "view.progress"
	keyViewCategories  = "view.show_categories"
	keySearchDebounce  = "search.debounce_ms"
	keySearchHighlight = "search.highlight_tag"
	keySearchLocale    = "search.locale"
	keyDropdownClose   = "dropdown.auto_close"
	keyGroupings       = "groupings.enabled"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Unknown enumerated values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Backend: domain.BackendSettings{
			Kind:              getEnum(s, keyBackendKind, defaults.Backend.Kind),
			URL:               s.configStore.GetString(keyBackendURL),
			Token:             s.configStore.GetString(keyBackendToken),
			RequestsPerSecond: s.getFloat(keyBackendRate, defaults.Backend.RequestsPerSecond),
			CatalogPath:       s.configStore.GetString(keyBackendCatalog),
		},
		View: domain.ViewSettings{
			PageSize:       s.getPageSize(defaults.View.PageSize),
			Display:        getEnum(s, keyViewDisplay, defaults.View.Display),
			Sort:           getEnum(s, keyViewSort, defaults.View.Sort),
			Progress:       getEnum(s, keyViewProgress, defaults.View.Progress),
			ShowCategories: s.getBool(keyViewCategories, defaults.View.ShowCategories),
		},
		Search: domain.SearchSettings{
			DebounceMS:   s.getInt(keySearchDebounce, defaults.Search.DebounceMS),
			HighlightTag: s.getString(keySearchHighlight, defaults.Search.HighlightTag),
			Locale:       s.getString(keySearchLocale, defaults.Search.Locale),
		},
		Dropdown: domain.DropdownSettings{
			AutoClose: s.getBool(keyDropdownClose, defaults.Dropdown.AutoClose),
		},
		Groupings: s.getGroupings(defaults.Groupings),
	}
	if !slices.Contains(settings.Groupings, settings.View.Progress) {
		settings.View.Progress = settings.Groupings[0]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	groupings := make([]string, 0, len(settings.Groupings))
	for _, g := range settings.Groupings {
		groupings = append(groupings, g.String())
	}

	values := []struct {
		key   string
		value any
	}{
		{keyBackendKind, settings.Backend.Kind.String()},
		{keyBackendURL, settings.Backend.URL},
		{keyBackendRate, settings.Backend.RequestsPerSecond},
		{keyBackendCatalog, settings.Backend.CatalogPath},
		{keyViewPageSize, settings.View.PageSize},
		{keyViewDisplay, string(settings.View.Display)},
		{keyViewSort, string(settings.View.Sort)},
		{keyViewProgress, settings.View.Progress.String()},
		{keyViewCategories, settings.View.ShowCategories},
		{keySearchDebounce, settings.Search.DebounceMS},
		{keySearchHighlight, settings.Search.HighlightTag},
		{keySearchLocale, settings.Search.Locale},
		{keyDropdownClose, settings.Dropdown.AutoClose},
		{keyGroupings, groupings},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// An empty token keeps the stored one.
	if settings.Backend.Token != "" {
		if err := s.configStore.Set(keyBackendToken, settings.Backend.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyBackendToken, err)
		}
	}

	return s.configStore.Save()
}

// SetBackend configures the course backend.
func (s *SettingsService) SetBackend(kind domain.BackendKind, url, token string) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: backend kind %q", domain.ErrInvalidInput, kind)
	}
	if kind == domain.BackendWebService && url == "" {
		return fmt.Errorf("%w: web service backend needs a URL", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Backend.Kind = kind
	if kind == domain.BackendWebService {
		settings.Backend.URL = url
		settings.Backend.Token = token
	}
	return s.Save(settings)
}

// SetPageSize updates the default page size.
func (s *SettingsService) SetPageSize(size int) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.View.PageSize = size
	return s.Save(settings)
}

// SetDisplay updates the default display mode.
func (s *SettingsService) SetDisplay(mode domain.DisplayMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: display %q", domain.ErrInvalidInput, mode)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.View.Display = mode
	return s.Save(settings)
}

// Validate checks that the stored settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Backend.IsConfigured() {
		return fmt.Errorf("%w: backend %q is not configured", domain.ErrInvalidInput, settings.Backend.Kind)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getPageSize keeps zero (show all) but drops negative sizes.
func (s *SettingsService) getPageSize(defaultVal int) int {
	size := s.getInt(keyViewPageSize, defaultVal)
	if size < 0 {
		return defaultVal
	}
	return size
}

func (s *SettingsService) getGroupings(defaultVal []domain.ProgressFilter) []domain.ProgressFilter {
	values := s.configStore.GetStringSlice(keyGroupings)
	var out []domain.ProgressFilter
	for _, v := range values {
		p := domain.ProgressFilter(v)
		if p.IsValid() && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// validatable is an enumerated setting value.
type validatable interface {
	~string
	IsValid() bool
}

func getEnum[T validatable](s *SettingsService, key string, defaultVal T) T {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	v := T(val)
	if !v.IsValid() {
		return defaultVal
	}
	return v
}
