package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// searchView is the course search view.
	searchView *search.View

	// settingsView is the settings configuration view.
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	searchView := search.NewView(s, nil, ports.Search, ports.Screen)
	searchView.SetActions(ports.Actions)
	if ports.Settings != nil {
		if current, err := ports.Settings.Get(); err == nil {
			searchView.SetGroupings(current.Groupings)
		}
	}

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		searchView:   searchView,
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It starts the search session and listens for screen changes.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("coursesearch"),
		a.searchView.Init(),
		a.waitForChange(),
	)
}

// waitForChange returns a command that delivers the next replaced container.
func (a *App) waitForChange() tea.Cmd {
	changes := a.ports.Screen.Changes()
	return func() tea.Msg {
		select {
		case container, ok := <-changes:
			if !ok {
				return nil
			}
			return messages.ScreenChanged{Container: container}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
			a.err = a.searchView.Err()
			return a, cmd

		case messages.ViewSettings:
			a.settingsView, cmd = a.settingsView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			// Help is static.
			switch msg.String() {
			case "esc", "?":
				a.currentView = messages.ViewSearch
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		return a, nil

	case messages.ScreenChanged:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, tea.Batch(cmd, a.waitForChange())

	case messages.SessionStarted, messages.ActionCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewSearch:
			a.searchView.Refresh()
		case messages.ViewHelp:
			// Help is static.
		}
		return a, nil

	case messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		if msg.Err != nil || msg.Settings == nil {
			return a, cmd
		}
		return a, tea.Batch(cmd, a.applySettings(*msg.Settings))

	case messages.SettingsChanged:
		return a, a.reloadSettings()

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit

	case messages.SettingsLoaded:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// reloadSettings reads settings changed outside the TUI and applies them.
func (a *App) reloadSettings() tea.Cmd {
	if a.ports.Settings == nil {
		return nil
	}
	current, err := a.ports.Settings.Get()
	if err != nil {
		a.err = err
		return nil
	}
	var cmd tea.Cmd
	if a.currentView == messages.ViewSettings {
		a.settingsView, cmd = a.settingsView.Update(messages.SettingsLoaded{Settings: current})
	}
	return tea.Batch(cmd, a.applySettings(*current))
}

// applySettings hands changed settings to the session and resets the search view.
func (a *App) applySettings(current domain.AppSettings) tea.Cmd {
	if applier, ok := a.ports.Search.(SettingsApplier); ok {
		applier.UpdateSettings(current)
	}
	return a.searchView.ApplySettings(current)
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Global:
  tab         Cycle search box, filters and courses
  ?           Toggle help
  ,           Settings
  q, ctrl+c   Quit

Search box:
  (type)      Search as you type
  enter       Search now
  esc         Jump to courses

Filters:
  h/l, ←/→    Previous or next filter
  enter       Open filter, select or deselect
  /           Narrow the open filter
  esc         Close filter

Courses:
  j/k, ↑/↓    Navigate courses
  enter       Open in browser
  y           Copy link
  h/l, ←/→    Previous or next page
  x           Remove from view or restore
  s           Star or unstar
  v           Cycle display
  g           Cycle grouping
  o           Cycle sort order
  z           Cycle page size
  c           Clear filters

` + a.styles.Help.Render("[esc] back to search")
}

// Run starts the TUI application.
func (a *App) Run() error {
	_, err := a.Program().Run()
	return err
}

// Program creates the tea.Program for the app without running it.
// Callers use it to Send messages from outside the event loop.
func (a *App) Program(opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(a.ctx)}, opts...)
	return tea.NewProgram(a, opts...)
}

// SearchView returns the course search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// SettingsView returns the settings view.
func (a *App) SettingsView() *settings.View {
	return a.settingsView
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.ports.Screen.SetWidth(width)
	a.searchView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
