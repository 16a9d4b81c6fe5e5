// Package dropdown provides the facet filter bar for the TUI.
package dropdown

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/render"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// Item is one row of an expanded dropdown.
type Item struct {
	domain.FacetItem

	// Selected reports whether the item is part of the selection.
	Selected bool
}

// Bar shows one tab per facet dropdown and the rows of the focused one.
// Selected items are listed before the selectable ones.
type Bar struct {
	statuses []domain.DropdownStatus
	focused  int
	cursor   int
	styles   *styles.Styles
	width    int
}

// NewBar creates a new dropdown bar.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{
		styles: s,
		width:  80,
	}
}

// Init initialises the bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update handles row navigation inside an expanded dropdown.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			b.MoveUp()
		case tea.KeyDown:
			b.MoveDown()
		default:
		}
	}
	return b, nil
}

// SetStatuses replaces the dropdowns, keeping focus on the same facet.
func (b *Bar) SetStatuses(statuses []domain.DropdownStatus) {
	var focusedKey domain.FacetKey
	current, hadFocus := b.Focused()
	if hadFocus {
		focusedKey = current.Facet.Key
	}

	b.statuses = statuses
	b.focused = 0
	if hadFocus {
		for i, s := range statuses {
			if s.Facet.Key == focusedKey {
				b.focused = i
				break
			}
		}
	}
	b.clampCursor()
}

// Statuses returns the dropdowns shown.
func (b *Bar) Statuses() []domain.DropdownStatus {
	return b.statuses
}

// Focused returns the dropdown with focus.
func (b *Bar) Focused() (domain.DropdownStatus, bool) {
	if b.focused < 0 || b.focused >= len(b.statuses) {
		return domain.DropdownStatus{}, false
	}
	return b.statuses[b.focused], true
}

// Next moves focus to the next dropdown, wrapping around.
func (b *Bar) Next() {
	if len(b.statuses) == 0 {
		return
	}
	b.focused = (b.focused + 1) % len(b.statuses)
	b.cursor = 0
}

// Prev moves focus to the previous dropdown, wrapping around.
func (b *Bar) Prev() {
	if len(b.statuses) == 0 {
		return
	}
	b.focused = (b.focused - 1 + len(b.statuses)) % len(b.statuses)
	b.cursor = 0
}

// Items returns the rows of the focused dropdown.
func (b *Bar) Items() []Item {
	status, ok := b.Focused()
	if !ok {
		return nil
	}
	items := make([]Item, 0, len(status.Facet.Selected)+len(status.Facet.Selectable))
	for _, item := range status.Facet.Selected {
		items = append(items, Item{FacetItem: item, Selected: true})
	}
	for _, item := range status.Facet.Selectable {
		items = append(items, Item{FacetItem: item})
	}
	return items
}

// Current returns the row under the cursor.
func (b *Bar) Current() (Item, bool) {
	items := b.Items()
	if b.cursor < 0 || b.cursor >= len(items) {
		return Item{}, false
	}
	return items[b.cursor], true
}

// Cursor returns the row index under the cursor.
func (b *Bar) Cursor() int {
	return b.cursor
}

// MoveUp moves the row cursor up.
func (b *Bar) MoveUp() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// MoveDown moves the row cursor down.
func (b *Bar) MoveDown() {
	if b.cursor < len(b.Items())-1 {
		b.cursor++
	}
}

func (b *Bar) clampCursor() {
	if n := len(b.Items()); b.cursor >= n {
		b.cursor = max(n-1, 0)
	}
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// View renders the tabs and, when the focused dropdown is expanded, its rows.
// The rows carry a cursor only while the bar has focus.
func (b *Bar) View(active bool) string {
	if len(b.statuses) == 0 {
		return b.styles.Muted.Render("No filters")
	}

	tabs := make([]string, 0, len(b.statuses))
	for i, status := range b.statuses {
		label := status.Title
		if n := len(status.Facet.Selected); n > 0 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		if status.State.IsExpanded() {
			label += " ▾"
		} else {
			label += " ▸"
		}
		if active && i == b.focused {
			tabs = append(tabs, b.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, b.styles.Tab.Render(label))
		}
	}
	lines := []string{strings.Join(tabs, " ")}

	status, _ := b.Focused()
	if !status.State.IsExpanded() {
		if chips := b.chips(); chips != "" {
			lines = append(lines, chips)
		}
		return strings.Join(lines, "\n")
	}

	items := b.Items()
	if len(items) == 0 {
		lines = append(lines, "  "+b.styles.Muted.Render("No options"))
	}
	for i, item := range items {
		box := "[ ]"
		if item.Selected {
			box = "[x]"
		}
		row := box + " " + render.Plain(item.Name)
		switch {
		case active && i == b.cursor:
			lines = append(lines, b.styles.Selected.Render("> "+row))
		case item.Selected:
			lines = append(lines, "  "+b.styles.Chip.Render(row))
		default:
			lines = append(lines, "  "+b.styles.Normal.Render(row))
		}
	}
	return strings.Join(lines, "\n")
}

// chips lists the selected items of every dropdown on one line.
func (b *Bar) chips() string {
	var chips []string
	for _, status := range b.statuses {
		for _, item := range status.Facet.Selected {
			chips = append(chips, b.styles.Chip.Render("["+render.Plain(item.Name)+"]"))
		}
	}
	return strings.Join(chips, " ")
}
