package driving

import "github.com/custodia-labs/coursesearch/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetBackend configures the course backend.
	SetBackend(kind domain.BackendKind, url, token string) error

	// SetPageSize updates the default page size.
	SetPageSize(size int) error

	// SetDisplay updates the default display mode.
	SetDisplay(mode domain.DisplayMode) error

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
