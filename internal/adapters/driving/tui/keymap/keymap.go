// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view or closes a dropdown.
	Back key.Binding

	// Search runs the typed search immediately.
	Search key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// Focus moves focus between the search box, facets and courses.
	Focus key.Binding

	// FocusSearch jumps to the search box.
	FocusSearch key.Binding

	// NextPage shows the next page of courses.
	NextPage key.Binding

	// PrevPage shows the previous page of courses.
	PrevPage key.Binding

	// Hide removes the course under the cursor from view, or restores it.
	Hide key.Binding

	// Favourite stars or unstars the course under the cursor.
	Favourite key.Binding

	// Display cycles the result layout.
	Display key.Binding

	// Grouping cycles the browse grouping.
	Grouping key.Binding

	// Sort cycles the result order.
	Sort key.Binding

	// PageSize cycles the page size.
	PageSize key.Binding

	// Clear drops the search term and every facet selection.
	Clear key.Binding

	// Open opens the course under the cursor in the browser.
	Open key.Binding

	// CopyLink copies the link of the course under the cursor.
	CopyLink key.Binding

	// Settings opens the settings view.
	Settings key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "focus"),
		),
		FocusSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		Hide: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove/restore"),
		),
		Favourite: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "star"),
		),
		Display: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "display"),
		),
		Grouping: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "grouping"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "page size"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		CopyLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy link"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Quit, k.Help}
}

// CoursesHelp returns keybindings for the course list.
func (k *KeyMap) CoursesHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.Hide, k.Favourite, k.Focus, k.Help}
}

// FacetsHelp returns keybindings for the facet bar.
func (k *KeyMap) FacetsHelp() []key.Binding {
	return []key.Binding{k.Select, k.Back, k.Focus, k.Help}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Focus, k.FocusSearch},
		{k.NextPage, k.PrevPage, k.Hide, k.Favourite},
		{k.Display, k.Grouping, k.Sort, k.PageSize, k.Clear},
		{k.Search, k.Back, k.Settings, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
