// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the course search view.
	ViewSearch ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewSettings is the settings configuration view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// SessionStarted signals the search session finished its first fetch.
type SessionStarted struct {
	Err error
}

// ActionCompleted signals a search session operation returned.
type ActionCompleted struct {
	// Action names the operation for the status bar.
	Action string
	Err    error
}

// ScreenChanged signals that the renderer replaced a container.
type ScreenChanged struct {
	Container string
}

// QueryChanged is sent when the search box text changes.
type QueryChanged struct {
	Query string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsChanged signals the settings file changed on disk.
type SettingsChanged struct{}
