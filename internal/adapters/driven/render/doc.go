// Package render provides the terminal Renderer and Notifier.
//
// Terminal renders the course, paging and dropdown templates to styled text
// with lipgloss and keeps the latest output of every container. Driving
// adapters read containers back when they draw, and can subscribe to
// Changes to redraw when a debounced search replaces one.
//
// Highlight markers produced by the search core (for example <mark>term</mark>)
// are turned into a highlight style; any other markup in course fields is
// stripped.
package render
