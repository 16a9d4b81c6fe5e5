package render

import "github.com/charmbracelet/lipgloss"

// Palette colours, shared with the TUI theme.
var (
	colourPrimary   = lipgloss.Color("#7C3AED")
	colourSecondary = lipgloss.Color("#06B6D4")
	colourMuted     = lipgloss.Color("#6C7086")
	colourSuccess   = lipgloss.Color("#A6E3A1")
	colourWarning   = lipgloss.Color("#F9E2AF")
	colourError     = lipgloss.Color("#F38BA8")
	colourBorder    = lipgloss.Color("#45475A")
)

// Styles holds the lipgloss styles used by the templates.
type Styles struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Category  lipgloss.Style
	Highlight lipgloss.Style
	Favourite lipgloss.Style
	Hidden    lipgloss.Style
	Progress  lipgloss.Style
	Card      lipgloss.Style
	Current   lipgloss.Style
	Chip      lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
}

// DefaultStyles returns the default template styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(colourMuted),
		Category:  lipgloss.NewStyle().Foreground(colourSecondary),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E1E2E")).Background(colourWarning),
		Favourite: lipgloss.NewStyle().Foreground(colourWarning),
		Hidden:    lipgloss.NewStyle().Foreground(colourMuted).Italic(true),
		Progress:  lipgloss.NewStyle().Foreground(colourSuccess),
		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colourBorder).
			Padding(0, 1),
		Current: lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		Chip:    lipgloss.NewStyle().Foreground(colourPrimary),
		Error:   lipgloss.NewStyle().Foreground(colourError),
		Info:    lipgloss.NewStyle().Foreground(colourSecondary),
	}
}
