// Package tui provides an interactive terminal user interface for coursesearch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

// Screen is the terminal renderer the search session draws into.
// *render.Terminal satisfies it.
type Screen interface {
	// Body returns the latest content of a container.
	Body(container string) string

	// Changes delivers the name of every replaced container.
	Changes() <-chan string

	// Notifications returns and clears the pending notifications.
	Notifications() []domain.Notification

	// RenderNotification renders a notification on one line.
	RenderNotification(n domain.Notification) string

	// SetWidth changes the rendering width for later renders.
	SetWidth(width int)
}

// SettingsApplier receives settings changed while the session runs.
// The search orchestrator implements it.
type SettingsApplier interface {
	UpdateSettings(settings domain.AppSettings)
}

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search is the course search session shown by the TUI.
	Search driving.CourseSearch

	// Screen holds the rendered containers of Search.
	Screen Screen

	// Settings manages application settings. Optional.
	Settings driving.SettingsService

	// Actions opens and copies course links. Optional.
	Actions driving.CourseActions
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.CourseSearch, screen Screen, settings driving.SettingsService) *Ports {
	return &Ports{
		Search:   search,
		Screen:   screen,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Screen == nil {
		return ErrMissingScreen
	}
	return nil
}
