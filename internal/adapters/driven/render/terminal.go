package render

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// Default configuration values.
const (
	DefaultWidth        = 80
	DefaultHighlightTag = "mark"

	// NotificationsContainer is the name sent on Changes when a notification arrives.
	NotificationsContainer = "notifications"

	changeBuffer = 16
)

// Ensure Terminal implements the interfaces.
var (
	_ driven.Renderer = (*Terminal)(nil)
	_ driven.Notifier = (*Terminal)(nil)
)

// Terminal renders templates to styled terminal text and keeps the latest
// content of every container. It is safe for concurrent use.
type Terminal struct {
	styles Styles
	tag    string

	mu            sync.RWMutex
	width         int
	containers    map[string]domain.Rendered
	notifications []domain.Notification
	changes       chan string
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithWidth sets the rendering width in cells.
func WithWidth(width int) Option {
	return func(t *Terminal) {
		if width > 0 {
			t.width = width
		}
	}
}

// WithHighlightTag sets the element name used as the highlight marker.
func WithHighlightTag(tag string) Option {
	return func(t *Terminal) {
		if tag != "" {
			t.tag = tag
		}
	}
}

// WithStyles replaces the default styles.
func WithStyles(s Styles) Option {
	return func(t *Terminal) {
		t.styles = s
	}
}

// NewTerminal creates a terminal renderer.
func NewTerminal(opts ...Option) *Terminal {
	t := &Terminal{
		styles:     DefaultStyles(),
		tag:        DefaultHighlightTag,
		width:      DefaultWidth,
		containers: make(map[string]domain.Rendered),
		changes:    make(chan string, changeBuffer),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetWidth changes the rendering width for later renders.
func (t *Terminal) SetWidth(width int) {
	if width <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = width
}

// Render renders data with the named template.
func (t *Terminal) Render(template string, data any) (domain.Rendered, error) {
	t.mu.RLock()
	width := t.width
	t.mu.RUnlock()

	p := painter{styles: t.styles, tag: t.tag, width: width}

	var body string
	switch template {
	case domain.TemplateCards, domain.TemplateList, domain.TemplateSummary, domain.TemplateNoCourses:
		view, ok := data.(domain.CoursesView)
		if !ok {
			return domain.Rendered{}, dataError(template, domain.CoursesView{}, data)
		}
		body = p.courses(template, view)
	case domain.TemplatePaging:
		view, ok := data.(domain.PagingView)
		if !ok {
			return domain.Rendered{}, dataError(template, domain.PagingView{}, data)
		}
		body = p.paging(view)
	case domain.TemplateCategoryDropdown, domain.TemplateTagsDropdown, domain.TemplateCustomFieldDropdown:
		view, ok := data.(domain.DropdownView)
		if !ok {
			return domain.Rendered{}, dataError(template, domain.DropdownView{}, data)
		}
		body = p.dropdown(view)
	default:
		return domain.Rendered{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
	}

	return domain.Rendered{Template: template, Body: body}, nil
}

// Replace swaps the content of container for r and announces the change.
func (t *Terminal) Replace(container string, r domain.Rendered) error {
	t.mu.Lock()
	t.containers[container] = r
	t.mu.Unlock()
	t.announce(container)
	return nil
}

// Container returns the latest content of container.
func (t *Terminal) Container(container string) (domain.Rendered, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.containers[container]
	return r, ok
}

// Body returns the body of container, or an empty string.
func (t *Terminal) Body(container string) string {
	r, _ := t.Container(container)
	return r.Body
}

// Changes delivers the name of every replaced container. Names are dropped
// when the reader falls behind; a reader should redraw everything on receipt.
func (t *Terminal) Changes() <-chan string {
	return t.changes
}

// Notify records n and announces it on Changes.
func (t *Terminal) Notify(n domain.Notification) {
	t.mu.Lock()
	t.notifications = append(t.notifications, n)
	t.mu.Unlock()
	t.announce(NotificationsContainer)
}

// Notifications returns and clears the pending notifications.
func (t *Terminal) Notifications() []domain.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := slices.Clone(t.notifications)
	t.notifications = nil
	return out
}

// RenderNotification renders n on one line.
func (t *Terminal) RenderNotification(n domain.Notification) string {
	style := t.styles.Info
	if n.Level == domain.NotifyError {
		style = t.styles.Error
	}
	if n.Message == "" {
		return style.Render(n.Title)
	}
	return style.Render(n.Title+":") + " " + n.Message
}

func (t *Terminal) announce(container string) {
	select {
	case t.changes <- container:
	default:
	}
}

func dataError(template string, want, got any) error {
	return fmt.Errorf("%w: %s expects %T, got %T", ErrTemplateData, template, want, got)
}
