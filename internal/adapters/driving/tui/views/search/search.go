// Package search provides the course search view for the TUI.
package search

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/components/dropdown"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

// Screen exposes the rendered containers of the search session.
type Screen interface {
	Body(container string) string
	Notifications() []domain.Notification
}

// Focus is the part of the view receiving keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusFacets
	FocusCourses
)

// Action names reported in messages.ActionCompleted.
const (
	ActionStart    = "start"
	ActionType     = "type"
	ActionSearch   = "search"
	ActionPage     = "page"
	ActionOpen     = "open"
	ActionFilter   = "filter"
	ActionSelect   = "select"
	ActionDeselect = "deselect"
	ActionHide     = "hide"
	ActionShow     = "show"
	ActionStar     = "star"
	ActionUnstar   = "unstar"
	ActionDisplay  = "display"
	ActionGrouping = "grouping"
	ActionSort     = "sort"
	ActionPageSize = "pagesize"
	ActionClear    = "clear"
	ActionSettings = "settings"
	ActionVisit    = "visit"
	ActionCopy     = "copy"
)

// Lines taken by everything but the course page and the facet bar.
const (
	chromeHeight    = 9
	minCoursesLines = 3
)

var (
	displayModes = []domain.DisplayMode{domain.DisplayCard, domain.DisplayList, domain.DisplaySummary}
	sortOrders   = []domain.SortOrder{domain.SortTitle, domain.SortLastAccessed, domain.SortShortName}
)

// View is the course search view: search box, facet bar, the rendered
// course page with a cursor, the paging bar and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	filter    *input.SearchInput
	list      *list.CourseList
	facets    *dropdown.Bar
	statusbar *status.Bar
	courses   viewport.Model

	search  driving.CourseSearch
	screen  Screen
	actions driving.CourseActions
	ctx     context.Context

	state     domain.SearchState
	groupings []domain.ProgressFilter

	width  int
	height int
	ready  bool
	err    error
	focus  Focus
	// filtering routes keys to the dropdown filter box.
	filtering bool
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	search driving.CourseSearch,
	screen Screen,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		filter:    input.NewFilterInput(s),
		list:      list.NewCourseList(s),
		facets:    dropdown.NewBar(s),
		statusbar: status.NewBar(s, km),
		courses:   viewport.New(80, 10),
		search:    search,
		screen:    screen,
		ctx:       context.Background(),
		groupings: domain.AllProgressFilters(),
		width:     80,
		height:    24,
		focus:     FocusInput,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetActions sets the service opening and copying course links.
func (v *View) SetActions(actions driving.CourseActions) {
	v.actions = actions
}

// SetGroupings sets the browse groupings cycled by the grouping key.
// An empty list offers every grouping.
func (v *View) SetGroupings(groupings []domain.ProgressFilter) {
	if len(groupings) == 0 {
		groupings = domain.AllProgressFilters()
	}
	v.groupings = groupings
}

// Init starts the session and the input cursor.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetState(status.StateLoading)
	return tea.Batch(v.input.Init(), v.start())
}

func (v *View) start() tea.Cmd {
	return func() tea.Msg {
		if v.search == nil {
			return messages.SessionStarted{Err: ErrNoSearchService}
		}
		return messages.SessionStarted{Err: v.search.Init(v.ctx)}
	}
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SessionStarted:
		v.handleResult(ActionStart, msg.Err)
		return v, nil

	case messages.ActionCompleted:
		v.handleResult(msg.Action, msg.Err)
		return v, nil

	case messages.ScreenChanged:
		v.Refresh()
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.filtering {
		return v.handleFilterKey(msg)
	}
	if v.focus == FocusInput {
		return v.handleInputKey(msg)
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Focus):
		v.cycleFocus(key == "shift+tab")
		return v, nil
	case keymap.Matches(key, v.keymap.FocusSearch) && v.focus == FocusCourses:
		return v, v.setFocus(FocusInput)
	case keymap.Matches(key, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	case keymap.Matches(key, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case keymap.Matches(key, v.keymap.Settings):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSettings} }
	}

	if v.focus == FocusFacets {
		return v.handleFacetKey(msg)
	}
	return v.handleCourseKey(msg)
}

// handleInputKey routes keys to the search box. Every edit is sent to the
// session, which debounces it; enter searches at once.
func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		term := v.input.Value()
		cmd := v.setFocus(FocusCourses)
		return v, tea.Batch(cmd, v.run(ActionSearch, func(ctx context.Context) error {
			return v.search.SearchText(ctx, term)
		}))
	case tea.KeyEsc:
		return v, v.setFocus(FocusCourses)
	case tea.KeyTab, tea.KeyShiftTab:
		v.cycleFocus(msg.Type == tea.KeyShiftTab)
		return v, nil
	default:
	}

	before := v.input.Value()
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	term := v.input.Value()
	if term == before {
		return v, cmd
	}
	return v, tea.Batch(cmd, v.run(ActionType, func(ctx context.Context) error {
		v.search.TypeText(ctx, term)
		return nil
	}))
}

// handleFacetKey processes keys while the facet bar has focus.
func (v *View) handleFacetKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	current, ok := v.facets.Focused()
	if !ok {
		return v, nil
	}
	key := current.Facet.Key
	expanded := current.State.IsExpanded()

	switch str := msg.String(); {
	case keymap.Matches(str, v.keymap.NextPage):
		v.facets.Next()
		return v, nil
	case keymap.Matches(str, v.keymap.PrevPage):
		v.facets.Prev()
		return v, nil
	case keymap.Matches(str, v.keymap.Back):
		if expanded {
			v.search.CloseDropdown(key)
			v.Refresh()
			return v, nil
		}
		return v, v.setFocus(FocusCourses)
	case keymap.Matches(str, v.keymap.Up):
		v.facets.MoveUp()
		return v, nil
	case keymap.Matches(str, v.keymap.Down):
		v.facets.MoveDown()
		return v, nil
	case keymap.Matches(str, v.keymap.FocusSearch):
		if !expanded {
			return v, nil
		}
		v.filtering = true
		v.filter.SetValue(current.Facet.SearchTerm)
		return v, v.filter.Focus()
	case keymap.Matches(str, v.keymap.Select):
		if !expanded {
			return v, v.run(ActionOpen, func(ctx context.Context) error {
				return v.search.OpenDropdown(ctx, key)
			})
		}
		item, ok := v.facets.Current()
		if !ok {
			return v, nil
		}
		if item.Selected {
			return v, v.run(ActionDeselect, func(ctx context.Context) error {
				return v.search.Deselect(ctx, key, item.ID)
			})
		}
		return v, v.run(ActionSelect, func(ctx context.Context) error {
			return v.search.Select(ctx, key, item.ID)
		})
	}
	return v, nil
}

// handleFilterKey routes keys to the dropdown filter box.
func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	current, ok := v.facets.Focused()
	if !ok {
		v.filtering = false
		v.filter.Blur()
		return v, nil
	}

	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		v.filtering = false
		v.filter.Blur()
		return v, nil
	default:
	}

	before := v.filter.Value()
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	term := v.filter.Value()
	if term == before {
		return v, cmd
	}
	key := current.Facet.Key
	return v, tea.Batch(cmd, v.run(ActionFilter, func(ctx context.Context) error {
		v.search.TypeFilter(ctx, key, term)
		return nil
	}))
}

// handleCourseKey processes keys while the course list has focus.
func (v *View) handleCourseKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	str := msg.String()
	switch {
	case keymap.Matches(str, v.keymap.Up):
		v.list.MoveUp()
		v.scrollToCursor()
		return v, nil
	case keymap.Matches(str, v.keymap.Down):
		v.list.MoveDown()
		v.scrollToCursor()
		return v, nil
	case keymap.Matches(str, v.keymap.Back):
		return v, v.setFocus(FocusInput)
	case keymap.Matches(str, v.keymap.NextPage):
		return v, v.nextPage()
	case keymap.Matches(str, v.keymap.PrevPage):
		if v.state.Page == 0 {
			return v, nil
		}
		return v, v.goToPage(v.state.Page - 1)
	case keymap.Matches(str, v.keymap.Open):
		return v, v.courseAction(ActionVisit)
	case keymap.Matches(str, v.keymap.CopyLink):
		return v, v.courseAction(ActionCopy)
	case keymap.Matches(str, v.keymap.Hide):
		return v, v.toggleHidden()
	case keymap.Matches(str, v.keymap.Favourite):
		return v, v.toggleFavourite()
	case keymap.Matches(str, v.keymap.Display):
		next := cycle(displayModes, v.state.Display)
		return v, v.run(ActionDisplay, func(ctx context.Context) error {
			return v.search.SetDisplay(ctx, next)
		})
	case keymap.Matches(str, v.keymap.Grouping):
		next := cycle(v.groupings, v.state.Progress)
		return v, v.run(ActionGrouping, func(ctx context.Context) error {
			return v.search.SetProgress(ctx, next)
		})
	case keymap.Matches(str, v.keymap.Sort):
		next := cycle(sortOrders, v.state.Sort)
		return v, v.run(ActionSort, func(ctx context.Context) error {
			return v.search.SetSort(ctx, next)
		})
	case keymap.Matches(str, v.keymap.PageSize):
		current := v.state.PageSize
		return v, v.run(ActionPageSize, func(ctx context.Context) error {
			return v.search.SetPageSize(ctx, cycle(v.search.PageSizeOptions(ctx), current))
		})
	case keymap.Matches(str, v.keymap.Clear):
		v.input.Reset()
		return v, v.run(ActionClear, func(ctx context.Context) error {
			return v.search.ClearFilters(ctx)
		})
	}
	return v, nil
}

func (v *View) nextPage() tea.Cmd {
	if v.state.PageSize == domain.PageSizeAll || !v.state.HasNextPage() {
		return nil
	}
	return v.goToPage(v.state.Page + 1)
}

func (v *View) goToPage(n int) tea.Cmd {
	return v.run(ActionPage, func(ctx context.Context) error {
		_, err := v.search.GoToPage(ctx, n)
		return err
	})
}

func (v *View) toggleHidden() tea.Cmd {
	course := v.list.SelectedCourse()
	if course == nil {
		return nil
	}
	id := course.ID
	if course.Hidden {
		return v.run(ActionShow, func(ctx context.Context) error {
			return v.search.Show(ctx, id)
		})
	}
	return v.run(ActionHide, func(ctx context.Context) error {
		return v.search.Hide(ctx, id)
	})
}

func (v *View) toggleFavourite() tea.Cmd {
	course := v.list.SelectedCourse()
	if course == nil {
		return nil
	}
	id, favourite := course.ID, !course.IsFavourite
	action := ActionUnstar
	if favourite {
		action = ActionStar
	}
	return v.run(action, func(ctx context.Context) error {
		return v.search.SetFavourite(ctx, id, favourite)
	})
}

// courseAction opens or copies the link of the course under the cursor.
func (v *View) courseAction(action string) tea.Cmd {
	course := v.list.SelectedCourse()
	if course == nil || v.actions == nil {
		return nil
	}
	selected := *course
	return v.run(action, func(ctx context.Context) error {
		if action == ActionCopy {
			return v.actions.CopyLink(ctx, &selected)
		}
		return v.actions.OpenCourse(ctx, &selected)
	})
}

// run executes fn off the update loop and reports it as ActionCompleted.
func (v *View) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	v.statusbar.SetState(status.StateLoading)
	v.statusbar.SetMessage("")
	return func() tea.Msg {
		if v.search == nil {
			return messages.ActionCompleted{Action: action, Err: ErrNoSearchService}
		}
		return messages.ActionCompleted{Action: action, Err: fn(v.ctx)}
	}
}

// ApplySettings pushes changed view defaults into the running session.
func (v *View) ApplySettings(settings domain.AppSettings) tea.Cmd {
	v.SetGroupings(settings.Groupings)
	return v.run(ActionSettings, func(ctx context.Context) error {
		state := v.search.State()
		if settings.View.Display != state.Display {
			if err := v.search.SetDisplay(ctx, settings.View.Display); err != nil {
				return err
			}
		}
		return v.search.Reset(ctx)
	})
}

// handleResult updates the view after a session operation returned.
func (v *View) handleResult(action string, err error) {
	v.Refresh()
	if err != nil {
		v.setError(err)
		return
	}
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage(actionMessage(action))
	switch action {
	case ActionPage, ActionSearch, ActionClear, ActionGrouping, ActionSort, ActionPageSize, ActionSelect, ActionDeselect:
		v.list.Home()
		v.courses.GotoTop()
	}
}

func actionMessage(action string) string {
	switch action {
	case ActionHide:
		return "Course removed from view"
	case ActionShow:
		return "Course restored to view"
	case ActionStar:
		return "Course starred"
	case ActionUnstar:
		return "Course unstarred"
	case ActionClear:
		return "Filters cleared"
	case ActionVisit:
		return "Course opened in browser"
	case ActionCopy:
		return "Course link copied"
	default:
		return ""
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// Refresh reloads the session state and the rendered containers.
func (v *View) Refresh() {
	if v.search == nil {
		return
	}
	v.state = v.search.State()
	v.list.SetCourses(v.state.Courses)
	v.facets.SetStatuses(v.state.Dropdowns)
	v.statusbar.SetSummary(summary(v.state))

	if v.screen != nil {
		v.courses.SetContent(v.screen.Body(domain.ContainerCourses))
		for _, n := range v.screen.Notifications() {
			if n.Level == domain.NotifyError {
				v.statusbar.SetState(status.StateError)
			}
			v.statusbar.SetMessage(strings.TrimSuffix(n.Title+": "+n.Message, ": "))
		}
	}
	v.scrollToCursor()
}

// scrollToCursor keeps the course under the cursor inside the viewport,
// assuming every course takes the same number of lines.
func (v *View) scrollToCursor() {
	count := v.list.Count()
	if count == 0 {
		return
	}
	perCourse := max(v.courses.TotalLineCount()/count, 1)
	top := v.list.Selected() * perCourse
	switch {
	case top < v.courses.YOffset:
		v.courses.SetYOffset(top)
	case top+perCourse > v.courses.YOffset+v.courses.Height:
		v.courses.SetYOffset(top + perCourse - v.courses.Height)
	}
}

func summary(state domain.SearchState) string {
	parts := []string{state.Progress.Description(), sortLabel(state.Sort), string(state.Display)}
	if state.Text != "" {
		parts = append([]string{fmt.Sprintf("%q", state.Text)}, parts...)
	}
	return strings.Join(parts, " · ")
}

func sortLabel(s domain.SortOrder) string {
	switch s {
	case domain.SortLastAccessed:
		return "last accessed"
	case domain.SortShortName:
		return "short name"
	default:
		return "course name"
	}
}

// cycle returns the value after current in values, wrapping around.
func cycle[T comparable](values []T, current T) T {
	if len(values) == 0 {
		return current
	}
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

func (v *View) setFocus(f Focus) tea.Cmd {
	v.focus = f
	switch f {
	case FocusInput:
		v.statusbar.SetHints(status.HintsSearch)
		return v.input.Focus()
	case FocusFacets:
		v.input.Blur()
		v.statusbar.SetHints(status.HintsFacets)
	case FocusCourses:
		v.input.Blur()
		v.statusbar.SetHints(status.HintsCourses)
	}
	return nil
}

// cycleFocus moves focus input, facets, courses and back.
func (v *View) cycleFocus(reverse bool) {
	next := (v.focus + 1) % 3
	if reverse {
		next = (v.focus + 2) % 3
	}
	v.setFocus(next)
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections,
		v.styles.Title.Render("Course search")+"  "+v.styles.Muted.Render(v.statusbar.Summary()),
		v.input.View(),
		v.facets.View(v.focus == FocusFacets),
	)
	if v.filtering {
		sections = append(sections, v.filter.View())
	}
	sections = append(sections, "", v.courses.View(), "")

	if v.focus == FocusCourses {
		sections = append(sections, v.list.View())
	}
	if v.screen != nil {
		sections = append(sections, v.screen.Body(domain.ContainerPaging))
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.filter.SetWidth(width)
	v.list.SetWidth(width)
	v.facets.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.courses.Width = width
	v.courses.Height = max(height-chromeHeight-v.facetLines(), minCoursesLines)
}

func (v *View) facetLines() int {
	return lipgloss.Height(v.facets.View(v.focus == FocusFacets))
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the text in the search box.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the text in the search box without searching.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// State returns the session state last shown.
func (v *View) State() domain.SearchState {
	return v.state
}

// SelectedCourse returns the course under the cursor.
func (v *View) SelectedCourse() *domain.Course {
	return v.list.SelectedCourse()
}

// Facets returns the facet bar.
func (v *View) Facets() *dropdown.Bar {
	return v.facets
}

// Focus returns the part of the view receiving keys.
func (v *View) Focus() Focus {
	return v.focus
}

// SetFocus moves key focus.
func (v *View) SetFocus(f Focus) tea.Cmd {
	return v.setFocus(f)
}

// Filtering reports whether keys go to the dropdown filter box.
func (v *View) Filtering() bool {
	return v.filtering
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}
