package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/render"
	"github.com/custodia-labs/coursesearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/services"
)

func intPtr(v int) *int { return &v }

func testCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.CatalogCategory{
			{ID: 1, Name: "Languages", Path: "/1"},
			{ID: 2, Name: "Science", Path: "/2"},
		},
		Courses: []domain.CatalogCourse{
			{ID: 1, FullName: "Deutsch B1", ShortName: "DE-B1", CategoryID: 1, Visible: true, Progress: intPtr(40)},
			{ID: 2, FullName: "English A2", ShortName: "EN-A2", CategoryID: 1, Visible: true},
			{ID: 3, FullName: "Mathematics", ShortName: "MA", CategoryID: 2, Visible: true},
		},
	}
}

type fixture struct {
	search   *services.Orchestrator
	terminal *render.Terminal
	settings *services.SettingsService
	app      *App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	prefs := memory.NewPreferenceStore()
	catalog := memory.NewCatalog(prefs)
	require.NoError(t, catalog.ImportCatalog(context.Background(), testCatalog()))

	f := &fixture{
		terminal: render.NewTerminal(render.WithWidth(100)),
		settings: services.NewSettingsService(memory.NewConfigStore()),
	}
	current, err := f.settings.Get()
	require.NoError(t, err)
	f.search = services.NewOrchestrator(catalog, prefs, f.terminal, f.terminal, *current)
	t.Cleanup(f.search.Close)

	f.app, err = NewApp(NewPorts(f.search, f.terminal, f.settings))
	require.NoError(t, err)
	return f
}

// execute runs cmd and feeds the messages it produces back into the app.
// Commands returned by the app are not followed; timer-driven commands are abandoned.
func execute(a *App, cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(400 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, execute(a, c)...)
		}
		return out
	}
	switch msg.(type) {
	case messages.SessionStarted, messages.ActionCompleted, messages.ScreenChanged,
		messages.SettingsLoaded, messages.SettingsSaved:
		a.Update(msg)
	}
	return []tea.Msg{msg}
}

func (f *fixture) start(t *testing.T) []tea.Msg {
	t.Helper()
	f.app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	msgs := execute(f.app, f.app.Init())
	require.NotEmpty(t, f.app.SearchView().State().Courses)
	return msgs
}

func TestNewApp_Success(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, messages.ViewSearch, f.app.CurrentView())
	assert.False(t, f.app.Ready())
	assert.NotNil(t, f.app.SearchView())
	assert.NotNil(t, f.app.SettingsView())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	terminal := render.NewTerminal()
	search := newSearch(t, terminal)

	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{name: "nil ports", ports: nil, want: ErrInvalidPorts},
		{name: "missing search", ports: NewPorts(nil, terminal, nil), want: ErrMissingSearchService},
		{name: "missing screen", ports: NewPorts(search, nil, nil), want: ErrMissingScreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApp(tt.ports)

			assert.Nil(t, app)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApp_WithContext(t *testing.T) {
	f := newFixture(t)
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")

	result := f.app.WithContext(ctx)

	assert.Same(t, f.app, result)
	assert.Equal(t, ctx, f.app.ctx)
}

func TestApp_Init_StartsSessionAndWatchesScreen(t *testing.T) {
	f := newFixture(t)

	msgs := f.start(t)

	var started, changed bool
	for _, msg := range msgs {
		switch msg.(type) {
		case messages.SessionStarted:
			started = true
		case messages.ScreenChanged:
			changed = true
		}
	}
	assert.True(t, started)
	assert.True(t, changed)
	assert.Contains(t, f.app.View(), "Deutsch B1")
	assert.NoError(t, f.app.Err())
}

func TestApp_WaitForChange_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.app.WithContext(ctx)

	assert.Nil(t, f.app.waitForChange()())
}

func TestApp_ScreenChanged_RearmsWatcher(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.app.Update(messages.ScreenChanged{Container: domain.ContainerCourses})

	assert.NotNil(t, cmd)
}

func TestApp_View_NotReady(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Initialising...", f.app.View())
}

func TestApp_Update_WindowSize(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.app.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	assert.Nil(t, cmd)
	assert.True(t, f.app.Ready())
	assert.Equal(t, 120, f.app.width)
	assert.Equal(t, 30, f.app.height)
	assert.Equal(t, 120, f.app.SearchView().Width())
}

func TestApp_Update_CtrlC(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Update_Quit(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Update_KeysReachSearchView(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ma")})

	assert.Equal(t, "ma", f.app.SearchView().Query())
}

func TestApp_HelpView(t *testing.T) {
	f := newFixture(t)
	f.app.SetDimensions(100, 40)

	f.app.Update(messages.ViewChanged{View: messages.ViewHelp})

	assert.Equal(t, messages.ViewHelp, f.app.CurrentView())
	assert.Contains(t, f.app.View(), "Help")
	assert.Contains(t, f.app.View(), "Cycle grouping")

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewSearch, f.app.CurrentView())
}

func TestApp_HelpView_Quit(t *testing.T) {
	f := newFixture(t)
	f.app.Update(messages.ViewChanged{View: messages.ViewHelp})

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_SettingsView(t *testing.T) {
	f := newFixture(t)
	f.app.SetDimensions(100, 40)

	_, cmd := f.app.Update(messages.ViewChanged{View: messages.ViewSettings})
	execute(f.app, cmd)

	assert.Equal(t, messages.ViewSettings, f.app.CurrentView())
	assert.Contains(t, f.app.View(), "Courses per page: 12")

	_, cmd = f.app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	f.app.Update(cmd())
	assert.Equal(t, messages.ViewSearch, f.app.CurrentView())
}

func TestApp_SettingsSaved_AppliesToSession(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	current, err := f.settings.Get()
	require.NoError(t, err)
	current.View.Display = domain.DisplayList
	current.Search.DebounceMS = 5
	require.NoError(t, f.settings.Save(current))

	_, cmd := f.app.Update(messages.SettingsSaved{Settings: current})
	execute(f.app, cmd)

	assert.Equal(t, domain.DisplayList, f.app.SearchView().State().Display)
	assert.NoError(t, f.app.Err())
}

func TestApp_SettingsSaved_ErrorIsNotApplied(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	_, cmd := f.app.Update(messages.SettingsSaved{Err: errors.New("disk full")})

	assert.Nil(t, cmd)
	assert.Equal(t, domain.DisplayCard, f.app.SearchView().State().Display)
	assert.EqualError(t, f.app.SettingsView().Err(), "disk full")
}

func TestApp_SettingsChanged_ReloadsFromStore(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	require.NoError(t, f.settings.SetDisplay(domain.DisplaySummary))

	_, cmd := f.app.Update(messages.SettingsChanged{})
	execute(f.app, cmd)

	assert.Equal(t, domain.DisplaySummary, f.app.SearchView().State().Display)
}

func TestApp_SettingsChanged_WithoutSettingsService(t *testing.T) {
	terminal := render.NewTerminal()
	search := newSearch(t, terminal)
	app, err := NewApp(NewPorts(search, terminal, nil))
	require.NoError(t, err)

	_, cmd := app.Update(messages.SettingsChanged{})

	assert.Nil(t, cmd)
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	f := newFixture(t)
	f.app.SetDimensions(100, 40)
	testErr := errors.New("test error")

	f.app.Update(messages.ErrorOccurred{Err: testErr})

	assert.Equal(t, testErr, f.app.Err())
	assert.Contains(t, f.app.View(), "test error")
}

func TestApp_Program(t *testing.T) {
	f := newFixture(t)

	assert.NotNil(t, f.app.Program())
}
