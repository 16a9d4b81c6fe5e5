// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

// ErrNoSettingsService is returned when the view has no settings service.
var ErrNoSettingsService = errors.New("settings service not available")

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionBackend
)

// Overview rows.
const (
	RowPageSize = iota
	RowDisplay
	RowSort
	RowGrouping
	RowCategories
	RowBackend
	rowCount
)

// Backend section fields.
const (
	fieldKind = iota
	fieldURL
	fieldToken
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

var (
	backendKinds = []domain.BackendKind{domain.BackendSQLite, domain.BackendWebService}
	displayModes = []domain.DisplayMode{domain.DisplayCard, domain.DisplayList, domain.DisplaySummary}
	sortOrders   = []domain.SortOrder{domain.SortTitle, domain.SortShortName, domain.SortLastAccessed}
)

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	// Current settings
	settings *domain.AppSettings
	err      error

	// Navigation state
	section      Section
	selected     int // selection within current section
	focusedField int // backend field with focus

	urlInput   textinput.Model
	tokenInput textinput.Model

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	urlInput := textinput.New()
	urlInput.Placeholder = "https://lms.example.org"
	urlInput.CharLimit = 512

	tokenInput := textinput.New()
	tokenInput.Placeholder = "Enter web service token"
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		urlInput:        urlInput,
		tokenInput:      tokenInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if msg.Settings != nil {
			v.settings = msg.Settings
			return v, nil
		}
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current section.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewSearch}
			}
		}
		v.leaveBackend()
		return v, nil
	}

	if v.settings == nil {
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionBackend:
		return v.handleBackendKeys(msg)
	}
	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < rowCount-1 {
			v.selected++
		}
	case keyEnter, " ":
		if v.selected == RowBackend {
			v.enterBackend()
			return v, nil
		}
		return v, v.save(v.next(v.selected))
	}
	return v, nil
}

// next returns a copy of the current settings with row advanced to its next value.
func (v *View) next(row int) domain.AppSettings {
	updated := *v.settings
	updated.Groupings = slices.Clone(v.settings.Groupings)

	switch row {
	case RowPageSize:
		updated.View.PageSize = cycle(domain.DefaultPageSizes, updated.View.PageSize)
	case RowDisplay:
		updated.View.Display = cycle(displayModes, updated.View.Display)
	case RowSort:
		updated.View.Sort = cycle(sortOrders, updated.View.Sort)
	case RowGrouping:
		groupings := updated.Groupings
		if len(groupings) == 0 {
			groupings = domain.AllProgressFilters()
		}
		updated.View.Progress = cycle(groupings, updated.View.Progress)
	case RowCategories:
		updated.View.ShowCategories = !updated.View.ShowCategories
	}
	return updated
}

func (v *View) handleBackendKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusedField != fieldKind {
		switch msg.String() {
		case keyTab:
			return v, v.focusField((v.focusedField + 1) % 3)
		case "shift+tab":
			return v, v.focusField((v.focusedField + 2) % 3)
		case keyEnter:
			return v, v.setBackend(domain.BackendWebService, v.urlInput.Value(), v.tokenInput.Value())
		default:
			var cmd tea.Cmd
			if v.focusedField == fieldURL {
				v.urlInput, cmd = v.urlInput.Update(msg)
			} else {
				v.tokenInput, cmd = v.tokenInput.Update(msg)
			}
			return v, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(backendKinds)-1 {
			v.selected++
		}
	case keyTab:
		if backendKinds[v.selected] == domain.BackendWebService {
			return v, v.focusField(fieldURL)
		}
	case keyEnter:
		if backendKinds[v.selected] == domain.BackendWebService {
			return v, v.focusField(fieldURL)
		}
		return v, v.setBackend(backendKinds[v.selected], "", "")
	}
	return v, nil
}

func (v *View) focusField(field int) tea.Cmd {
	v.focusedField = field
	v.urlInput.Blur()
	v.tokenInput.Blur()
	switch field {
	case fieldURL:
		return v.urlInput.Focus()
	case fieldToken:
		return v.tokenInput.Focus()
	}
	return nil
}

func (v *View) enterBackend() {
	v.section = SectionBackend
	v.selected = max(slices.Index(backendKinds, v.settings.Backend.Kind), 0)
	v.focusedField = fieldKind
	v.urlInput.SetValue(v.settings.Backend.URL)
	v.tokenInput.SetValue("")
}

func (v *View) leaveBackend() {
	v.section = SectionOverview
	v.selected = RowBackend
	v.focusedField = fieldKind
	v.urlInput.Blur()
	v.tokenInput.SetValue("")
	v.tokenInput.Blur()
}

// Commands to update settings.

func (v *View) save(updated domain.AppSettings) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		if err := v.settingsService.Save(&updated); err != nil {
			return messages.SettingsSaved{Err: err}
		}
		return messages.SettingsSaved{Settings: &updated}
	}
}

func (v *View) setBackend(kind domain.BackendKind, url, token string) tea.Cmd {
	if v.section == SectionBackend {
		v.leaveBackend()
	}
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		if err := v.settingsService.SetBackend(kind, strings.TrimSpace(url), token); err != nil {
			return messages.SettingsSaved{Err: err}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsSaved{Settings: settings, Err: err}
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionBackend:
		b.WriteString(v.renderBackendSelect())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	view := v.settings.View
	categories := "hidden"
	if view.ShowCategories {
		categories = "shown"
	}

	items := []struct {
		label  string
		value  string
		status string
	}{
		{label: "Courses per page", value: pageSizeLabel(view.PageSize)},
		{label: "Display", value: string(view.Display)},
		{label: "Sort", value: SortLabel(view.Sort)},
		{label: "Grouping", value: view.Progress.Description()},
		{label: "Categories", value: categories},
		{label: "Backend", value: v.backendValue(), status: v.backendStatus()},
	}

	for i, item := range items {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		line := fmt.Sprintf("%s%s: %s", indicator, item.label, item.value)
		if item.status != "" {
			line += " " + item.status
		}

		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

func (v *View) backendValue() string {
	backend := v.settings.Backend
	switch backend.Kind {
	case domain.BackendWebService:
		if backend.URL == "" {
			return "web service"
		}
		return fmt.Sprintf("web service (%s)", backend.URL)
	case domain.BackendSQLite:
		if backend.CatalogPath == "" {
			return "local catalog"
		}
		return fmt.Sprintf("local catalog (%s)", backend.CatalogPath)
	default:
		return "Not Set"
	}
}

func (v *View) backendStatus() string {
	if v.settings.Backend.IsConfigured() {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs URL and token]")
}

func (v *View) renderBackendSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Backend"))
	b.WriteString("\n\n")

	for i, kind := range backendKinds {
		indicator := "  "
		if i == v.selected && v.focusedField == fieldKind {
			indicator = "> "
		}

		current := ""
		if kind == v.settings.Backend.Kind {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, kind, current)
		if i == v.selected && v.focusedField == fieldKind {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	if backendKinds[v.selected] == domain.BackendWebService {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("URL:"))
		b.WriteString("\n")
		b.WriteString(v.urlInput.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("Token:"))
		b.WriteString("\n")
		b.WriteString(v.tokenInput.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("    An empty token keeps the saved one"))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] change  [esc] back")
	case SectionBackend:
		if v.focusedField != fieldKind {
			return v.styles.Help.Render("[tab] next field  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SortLabel returns the display name of a sort order.
func SortLabel(s domain.SortOrder) string {
	switch s {
	case domain.SortLastAccessed:
		return "last accessed"
	case domain.SortShortName:
		return "short name"
	default:
		return "course name"
	}
}

func pageSizeLabel(size int) string {
	if size == domain.PageSizeAll {
		return "all"
	}
	return fmt.Sprintf("%d", size)
}

// cycle returns the value after current in values, wrapping around.
func cycle[T comparable](values []T, current T) T {
	if len(values) == 0 {
		return current
	}
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

// Settings returns the loaded settings, or nil before they load.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Selected returns the selected row within the active section.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.urlInput.Width = max(width-4, 20)
	v.tokenInput.Width = max(width-4, 20)
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = fieldKind
	v.err = nil
	v.urlInput.SetValue("")
	v.urlInput.Blur()
	v.tokenInput.SetValue("")
	v.tokenInput.Blur()
}
