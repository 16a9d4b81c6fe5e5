package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.CourseSearch = (*Orchestrator)(nil)

// Orchestrator wires user events to facet mutations, fetches and rendering
// for one search session.
type Orchestrator struct {
	backend  driven.CourseSearchService
	prefs    driven.PreferenceStore
	renderer driven.Renderer
	notifier driven.Notifier
	builder  QueryBuilder
	session  *SearchSession
	debounce *Debouncer
	log      logger.Scope

	mu       sync.RWMutex
	settings domain.AppSettings
	filters  map[domain.FacetKey]*Debouncer
}

// NewOrchestrator creates an orchestrator with a fresh session.
func NewOrchestrator(
	backend driven.CourseSearchService,
	prefs driven.PreferenceStore,
	renderer driven.Renderer,
	notifier driven.Notifier,
	settings domain.AppSettings,
) *Orchestrator {
	session := NewSearchSession(settings)
	return &Orchestrator{
		backend:  backend,
		prefs:    prefs,
		renderer: renderer,
		notifier: notifier,
		builder:  NewQueryBuilder(),
		session:  session,
		debounce: NewDebouncer(settings.Search.Debounce()),
		log:      logger.Scoped(session.Namespace()),
		settings: settings,
		filters:  make(map[domain.FacetKey]*Debouncer),
	}
}

// Session returns the orchestrator's session.
func (o *Orchestrator) Session() *SearchSession {
	return o.session
}

// UpdateSettings applies rendering and debounce settings to later events.
// View defaults such as the page size only apply to new sessions.
func (o *Orchestrator) UpdateSettings(settings domain.AppSettings) {
	o.mu.Lock()
	o.settings = settings
	for _, d := range o.filters {
		d.SetDelay(settings.Search.Debounce())
	}
	o.mu.Unlock()
	o.debounce.SetDelay(settings.Search.Debounce())
}

func (o *Orchestrator) currentSettings() domain.AppSettings {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.settings
}

// Init registers the facets and performs the initial browse fetch.
// Calling it again is a no-op.
func (o *Orchestrator) Init(ctx context.Context) error {
	if !o.session.MarkInitialized() {
		o.log.Debug("Session %s already initialised", o.session.ID())
		return nil
	}
	logger.Section("Search Session")
	o.log.Debug("Session: %s", o.session.ID())

	o.loadPagingPreference(ctx)
	o.registerFacets(ctx)

	_, err := o.GoToPage(ctx, 0)
	return err
}

func (o *Orchestrator) loadPagingPreference(ctx context.Context) {
	value, ok, err := o.prefs.Preference(ctx, domain.PrefPagingLimit)
	if err != nil {
		o.log.Warn("Failed to read paging preference: %v", err)
		return
	}
	if !ok {
		return
	}
	size, err := strconv.Atoi(value)
	if err != nil || size < 0 {
		o.log.Warn("Ignoring invalid paging preference %q", value)
		return
	}
	o.log.Debug("Paging preference: %d", size)
	o.session.SetPageSize(size)
}

func (o *Orchestrator) registerFacets(ctx context.Context) {
	group := o.session.Dropdowns
	group.Add(NewTextSource())
	group.Add(NewCategorySource(o.backend))
	group.Add(NewTagSource(o.backend))

	fields, err := o.backend.CustomFields(ctx)
	if err != nil {
		o.fail("Could not load custom fields", domain.NewBackendError("custom fields", err))
		return
	}
	for _, field := range fields {
		group.Add(NewCustomFieldSource(o.backend, field))
	}
	o.session.setCustomFields(fields)
	o.log.Debug("Registered %d custom field facets", len(fields))
}

// Reset re-renders the cached pages. It fetches only when summaries are shown
// but were not loaded, or the current page is not cached.
func (o *Orchestrator) Reset(ctx context.Context) error {
	if !o.session.Initialized() {
		return o.Init(ctx)
	}
	view := o.session.View()
	if view.Display == domain.DisplaySummary && !o.session.SummaryLoaded() {
		return o.requery(ctx)
	}
	n := o.session.CurrentPage()
	page, ok := o.session.Pages.Page(n)
	if !ok {
		_, err := o.GoToPage(ctx, n)
		return err
	}
	o.renderDropdowns()
	return o.show(page)
}

// TypeText schedules a search for term after the debounce period.
// A blank term reverts to browse mode immediately.
func (o *Orchestrator) TypeText(ctx context.Context, term string) {
	if strings.TrimSpace(term) == "" {
		if err := o.SearchText(ctx, ""); err != nil {
			o.log.Debug("Browse after clearing search failed: %v", err)
		}
		return
	}
	ctx = context.WithoutCancel(ctx)
	o.debounce.Trigger(func() {
		if err := o.SearchText(ctx, term); err != nil {
			o.log.Debug("Debounced search for %q failed: %v", term, err)
		}
	})
}

// SearchText searches for term now, cancelling any pending debounced search.
func (o *Orchestrator) SearchText(ctx context.Context, term string) error {
	o.debounce.Cancel()
	if err := o.session.Facets.SetSearchTerm(domain.TextFacet(), strings.TrimSpace(term)); err != nil {
		return err
	}
	return o.requery(ctx)
}

// ClearFilters drops the text term and every facet selection.
func (o *Orchestrator) ClearFilters(ctx context.Context) error {
	o.debounce.Cancel()
	o.session.Facets.Clear()
	o.session.Dropdowns.CloseAll()
	o.renderDropdowns()
	return o.requery(ctx)
}

// SetProgress changes the browse grouping.
func (o *Orchestrator) SetProgress(ctx context.Context, p domain.ProgressFilter) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: progress %q", domain.ErrInvalidInput, p)
	}
	if groupings := o.currentSettings().Groupings; len(groupings) > 0 && !slices.Contains(groupings, p) {
		return fmt.Errorf("%w: grouping %q is not enabled", domain.ErrInvalidInput, p)
	}
	o.session.UpdateView(func(v *ViewState) { v.Progress = p })
	return o.requery(ctx)
}

// SetSort changes the result order.
func (o *Orchestrator) SetSort(ctx context.Context, s domain.SortOrder) error {
	if !s.IsValid() {
		return fmt.Errorf("%w: sort %q", domain.ErrInvalidInput, s)
	}
	o.session.UpdateView(func(v *ViewState) { v.Sort = s })
	return o.requery(ctx)
}

// SetDisplay changes the result layout. Switching to summaries re-fetches
// when the cached rows were loaded without them.
func (o *Orchestrator) SetDisplay(ctx context.Context, d domain.DisplayMode) error {
	if !d.IsValid() {
		return fmt.Errorf("%w: display %q", domain.ErrInvalidInput, d)
	}
	o.session.UpdateView(func(v *ViewState) { v.Display = d })
	return o.Reset(ctx)
}

// SetPageSize persists size as the paging preference and shows the first page.
func (o *Orchestrator) SetPageSize(ctx context.Context, size int) error {
	if size < 0 {
		return fmt.Errorf("%w: page size %d", domain.ErrInvalidInput, size)
	}
	value := strconv.Itoa(size)
	if err := o.prefs.SetPreference(ctx, domain.PrefPagingLimit, &value); err != nil {
		err = domain.NewBackendError("save paging preference", err)
		o.fail("Could not save page size", err)
		return err
	}
	o.session.SetPageSize(size)
	_, err := o.GoToPage(ctx, 0)
	return err
}

// PageSizeOptions returns the page sizes worth offering for the current browse set.
func (o *Orchestrator) PageSizeOptions(ctx context.Context) []int {
	view := o.session.View()
	req, err := o.builder.Build(nil, view, Cursor{})
	if err != nil {
		return domain.DefaultPageSizes
	}
	ids, err := o.backend.FilteredCourseIDs(ctx, req)
	if err != nil {
		o.log.Warn("Failed to count courses: %v", err)
		return domain.DefaultPageSizes
	}
	return domain.PageSizeOptions(domain.DefaultPageSizes, len(ids))
}

// GoToPage fetches or serves page n and renders it.
func (o *Orchestrator) GoToPage(ctx context.Context, n int) (domain.Page, error) {
	if !o.session.Initialized() {
		return domain.Page{}, domain.ErrNotInitialized
	}
	gen := o.session.Pages.Resize(o.session.PageSize())
	req, err := o.request()
	if err != nil {
		return domain.Page{}, err
	}

	page, err := o.session.Pages.Load(ctx, gen, n, func(ctx context.Context, limit, offset int) (domain.CoursePage, error) {
		resp, err := o.backend.SearchCourses(ctx, req.WithPage(limit, offset))
		if err != nil {
			return domain.CoursePage{}, domain.NewBackendError("search courses", err)
		}
		return resp, nil
	})
	if errors.Is(err, domain.ErrStaleResponse) {
		o.log.Debug("Page %d superseded by a newer query", n)
		return domain.Page{}, err
	}
	if err != nil {
		o.fail("Could not load courses", err)
		return domain.Page{}, err
	}

	o.session.SetSummaryLoaded(req.IncludeSummary)
	if err := o.show(page); err != nil {
		return page, err
	}
	return page, nil
}

// OpenDropdown expands the dropdown of key.
func (o *Orchestrator) OpenDropdown(ctx context.Context, key domain.FacetKey) error {
	scope, err := o.request()
	if err != nil {
		return err
	}
	err = o.session.Dropdowns.Open(ctx, key, scope)
	o.renderDropdowns()
	return o.dropdownError(err)
}

// TypeFilter schedules a candidate filter for key after the debounce period.
// Each facet debounces on its own. A blank term reloads the full list at once.
func (o *Orchestrator) TypeFilter(ctx context.Context, key domain.FacetKey, term string) {
	if strings.TrimSpace(term) == "" {
		if err := o.FilterDropdown(ctx, key, term); err != nil {
			o.log.Debug("Reloading %s candidates failed: %v", key, err)
		}
		return
	}
	ctx = context.WithoutCancel(ctx)
	o.filterDebouncer(key).Trigger(func() {
		if err := o.filterNow(ctx, key, term); err != nil {
			o.log.Debug("Debounced %s filter for %q failed: %v", key, term, err)
		}
	})
}

func (o *Orchestrator) filterDebouncer(key domain.FacetKey) *Debouncer {
	o.mu.Lock()
	defer o.mu.Unlock()
	d, ok := o.filters[key]
	if !ok {
		d = NewDebouncer(o.settings.Search.Debounce())
		o.filters[key] = d
	}
	return d
}

func (o *Orchestrator) cancelFilter(key domain.FacetKey) {
	o.mu.RLock()
	d, ok := o.filters[key]
	o.mu.RUnlock()
	if ok {
		d.Cancel()
	}
}

// FilterDropdown narrows the candidates of key to term now, cancelling any
// pending debounced filter of key.
func (o *Orchestrator) FilterDropdown(ctx context.Context, key domain.FacetKey, term string) error {
	o.cancelFilter(key)
	return o.filterNow(ctx, key, term)
}

func (o *Orchestrator) filterNow(ctx context.Context, key domain.FacetKey, term string) error {
	scope, err := o.request()
	if err != nil {
		return err
	}
	err = o.session.Dropdowns.Filter(ctx, key, scope, term)
	o.renderDropdown(key)
	return o.dropdownError(err)
}

func (o *Orchestrator) dropdownError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrStaleResponse):
		return nil
	case errors.Is(err, domain.ErrBackend):
		o.fail("Could not load filter options", err)
	}
	return err
}

// CloseDropdown collapses the dropdown of key.
func (o *Orchestrator) CloseDropdown(key domain.FacetKey) {
	o.session.Dropdowns.Close(key)
	o.renderDropdown(key)
}

// ClickOutside collapses every dropdown.
func (o *Orchestrator) ClickOutside() {
	o.session.Dropdowns.CloseAll()
	o.renderDropdowns()
}

// Select chooses item id of key and searches again.
func (o *Orchestrator) Select(ctx context.Context, key domain.FacetKey, id string) error {
	d, err := o.session.Dropdowns.Get(key)
	if err != nil {
		return err
	}
	changed, err := d.Select(id)
	if err != nil || !changed {
		return err
	}
	o.renderDropdown(key)
	return o.requery(ctx)
}

// Deselect removes item id of key from the selection and searches again.
func (o *Orchestrator) Deselect(ctx context.Context, key domain.FacetKey, id string) error {
	d, err := o.session.Dropdowns.Get(key)
	if err != nil {
		return err
	}
	changed, err := d.Deselect(id)
	if err != nil || !changed {
		return err
	}
	o.renderDropdown(key)
	return o.requery(ctx)
}

// Hide persists the hidden preference for courseID and drops it from the list.
func (o *Orchestrator) Hide(ctx context.Context, courseID int64) error {
	value := "true"
	if err := o.prefs.SetPreference(ctx, domain.HiddenCoursePreference(courseID), &value); err != nil {
		err = domain.NewBackendError("hide course", err)
		o.fail("Could not hide course", err)
		return err
	}
	return o.applyHidden(courseID, true)
}

// Show deletes the hidden preference for courseID.
func (o *Orchestrator) Show(ctx context.Context, courseID int64) error {
	if err := o.prefs.SetPreference(ctx, domain.HiddenCoursePreference(courseID), nil); err != nil {
		err = domain.NewBackendError("show course", err)
		o.fail("Could not show course", err)
		return err
	}
	return o.applyHidden(courseID, false)
}

// applyHidden removes the row when the current grouping no longer lists the
// course, and flips its hidden flag in place otherwise.
func (o *Orchestrator) applyHidden(courseID int64, hidden bool) error {
	progress := o.session.View().Progress
	leaves := (hidden && progress != domain.ProgressAllIncludingHidden) ||
		(!hidden && progress == domain.ProgressHidden)

	if !leaves {
		o.session.Pages.SetHidden(courseID, hidden)
		return o.refresh()
	}
	n, ok := o.session.Pages.RemoveCourse(courseID)
	if !ok {
		return nil
	}
	o.log.Debug("Removed course %d from page %d", courseID, n)
	return o.refresh()
}

// SetFavourite stars or unstars courseID once the backend confirms it.
func (o *Orchestrator) SetFavourite(ctx context.Context, courseID int64, favourite bool) error {
	warnings, err := o.backend.SetFavourite(ctx, courseID, favourite)
	if err == nil && len(warnings) > 0 {
		err = errors.New(warnings[0].Message)
	}
	if err != nil {
		err = domain.NewBackendError("set favourite", err)
		o.fail("Could not update starred courses", err)
		return err
	}
	o.session.Pages.SetFavourite(courseID, favourite)
	return o.refresh()
}

// State returns a snapshot of the session.
func (o *Orchestrator) State() domain.SearchState {
	return o.session.State()
}

// Close stops pending debounced work.
func (o *Orchestrator) Close() {
	o.debounce.Cancel()
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, d := range o.filters {
		d.Cancel()
	}
}

// requery starts a new query generation and shows its first page. The
// previous pages stay cached until that page arrives.
func (o *Orchestrator) requery(ctx context.Context) error {
	o.session.Pages.Supersede()
	_, err := o.GoToPage(ctx, 0)
	return err
}

// refresh re-renders the current page from the cache. When the page was
// dropped by a removal the last remaining page is shown instead.
func (o *Orchestrator) refresh() error {
	n := o.session.CurrentPage()
	page, ok := o.session.Pages.Page(n)
	if !ok {
		last, known := o.session.Pages.LastPage()
		if !known {
			last = max(n-1, 0)
		}
		page, _ = o.session.Pages.Page(last)
		page.Number = last
	}
	return o.show(page)
}

func (o *Orchestrator) request() (domain.SearchRequest, error) {
	return o.builder.Build(o.session.Facets.Snapshots(), o.session.View(), Cursor{})
}

// show renders page into the course container and updates the paging bar.
func (o *Orchestrator) show(page domain.Page) error {
	settings := o.currentSettings()
	view := o.session.View()
	text, _ := o.session.Facets.SearchTerm(domain.TextFacet())
	courses := HighlightCourses(page.Courses, text, settings.Search.HighlightTag)

	template := view.Display.Template()
	if len(courses) == 0 {
		template = domain.TemplateNoCourses
	}
	rendered, err := o.renderer.Render(template, domain.CoursesView{
		Page:           page.Number,
		Courses:        courses,
		ShowCategories: settings.View.ShowCategories,
		Display:        view.Display,
	})
	if err == nil {
		err = o.renderer.Replace(domain.ContainerCourses, rendered)
	}
	if err != nil {
		err = fmt.Errorf("render page %d: %w", page.Number, err)
		o.fail("Could not display courses", err)
		return err
	}
	o.session.setShown(page.Number, courses)
	o.renderPaging(page.Number)
	return nil
}

func (o *Orchestrator) renderPaging(n int) {
	last, ok := o.session.Pages.LastPage()
	if !ok {
		last = unknownPage
	}
	rendered, err := o.renderer.Render(domain.TemplatePaging, domain.PagingView{
		Page:     n,
		LastPage: last,
		PageSize: o.session.PageSize(),
		Sizes:    domain.DefaultPageSizes,
	})
	if err == nil {
		err = o.renderer.Replace(domain.ContainerPaging, rendered)
	}
	if err != nil {
		o.log.Warn("Failed to render paging bar: %v", err)
	}
}

func (o *Orchestrator) renderDropdowns() {
	for _, status := range o.session.Dropdowns.Statuses() {
		o.renderStatus(status)
	}
}

func (o *Orchestrator) renderDropdown(key domain.FacetKey) {
	for _, status := range o.session.Dropdowns.Statuses() {
		if status.Facet.Key == key {
			o.renderStatus(status)
			return
		}
	}
}

func (o *Orchestrator) renderStatus(status domain.DropdownStatus) {
	key := status.Facet.Key
	rendered, err := o.renderer.Render(domain.DropdownTemplate(key), domain.DropdownView{
		Facet:    status.Facet,
		Title:    status.Title,
		Expanded: status.State.IsExpanded(),
	})
	if err == nil {
		err = o.renderer.Replace(domain.DropdownContainer(key), rendered)
	}
	if err != nil {
		o.log.Warn("Failed to render %s dropdown: %v", key, err)
	}
}

// fail notifies the user of err. Local state is left as it was.
func (o *Orchestrator) fail(title string, err error) {
	o.log.Warn("%s: %v", title, err)
	if o.notifier == nil {
		return
	}
	o.notifier.Notify(domain.Notification{
		Level:   domain.NotifyError,
		Title:   title,
		Message: err.Error(),
	})
}
