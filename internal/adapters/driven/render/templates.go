package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

// painter renders one template invocation.
type painter struct {
	styles Styles
	tag    string
	width  int
}

func (p painter) courses(template string, view domain.CoursesView) string {
	if template == domain.TemplateNoCourses || len(view.Courses) == 0 {
		return p.styles.Muted.Render("No courses")
	}

	blocks := make([]string, 0, len(view.Courses))
	for i, course := range view.Courses {
		switch template {
		case domain.TemplateList:
			blocks = append(blocks, p.listItem(i+1, course, view.ShowCategories))
		case domain.TemplateSummary:
			blocks = append(blocks, p.summaryItem(i+1, course, view.ShowCategories))
		default:
			blocks = append(blocks, p.card(i+1, course, view.ShowCategories))
		}
	}

	sep := "\n"
	if template == domain.TemplateSummary {
		sep = "\n\n"
	}
	return strings.Join(blocks, sep)
}

// heading is the numbered course title with its markers.
func (p painter) heading(n int, c domain.Course) string {
	title := p.styles.Title.Render(fmt.Sprintf("%d.", n)) + " " + Markup(c.FullName, p.tag, p.styles.Highlight)
	if c.IsFavourite {
		title += " " + p.styles.Favourite.Render("★")
	}
	if c.Hidden {
		title += " " + p.styles.Hidden.Render("(hidden)")
	}
	return title
}

// meta is the short name, category and progress line.
func (p painter) meta(c domain.Course, showCategory bool) string {
	parts := []string{p.styles.Muted.Render(c.ShortName)}
	if showCategory && c.Category != "" {
		parts = append(parts, p.styles.Category.Render(Plain(c.Category)))
	}
	if c.HasProgress {
		parts = append(parts, p.styles.Progress.Render(strconv.Itoa(c.Progress)+"% complete"))
	}
	return strings.Join(parts, " "+p.styles.Muted.Render("·")+" ")
}

func (p painter) card(n int, c domain.Course, showCategory bool) string {
	inner := max(p.width-4, 20)
	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(inner).Render(p.heading(n, c)),
		p.meta(c, showCategory),
	)
	return p.styles.Card.Width(inner + 2).Render(body)
}

func (p painter) listItem(n int, c domain.Course, showCategory bool) string {
	return p.heading(n, c) + "  " + p.meta(c, showCategory)
}

func (p painter) summaryItem(n int, c domain.Course, showCategory bool) string {
	lines := []string{p.heading(n, c), "   " + p.meta(c, showCategory)}
	if summary := Markup(c.Summary, p.tag, p.styles.Highlight); summary != "" {
		wrapped := lipgloss.NewStyle().Width(max(p.width-3, 20)).Render(summary)
		for _, line := range strings.Split(wrapped, "\n") {
			lines = append(lines, "   "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func (p painter) paging(view domain.PagingView) string {
	last := "?"
	if view.LastPage >= 0 {
		last = strconv.Itoa(view.LastPage + 1)
	}
	if view.PageSize == domain.PageSizeAll {
		last = "1"
	}
	parts := []string{p.styles.Current.Render(fmt.Sprintf("Page %d of %s", view.Page+1, last))}

	var nav []string
	if view.Page > 0 {
		nav = append(nav, "« prev")
	}
	if view.PageSize != domain.PageSizeAll && (view.LastPage < 0 || view.Page < view.LastPage) {
		nav = append(nav, "next »")
	}
	if len(nav) > 0 {
		parts = append(parts, p.styles.Muted.Render(strings.Join(nav, " | ")))
	}

	if len(view.Sizes) > 0 {
		sizes := make([]string, 0, len(view.Sizes))
		for _, size := range view.Sizes {
			label := strconv.Itoa(size)
			if size == domain.PageSizeAll {
				label = "all"
			}
			if size == view.PageSize {
				label = p.styles.Current.Render("[" + label + "]")
			}
			sizes = append(sizes, label)
		}
		parts = append(parts, p.styles.Muted.Render("Show:")+" "+strings.Join(sizes, " "))
	}
	return strings.Join(parts, "   ")
}

func (p painter) dropdown(view domain.DropdownView) string {
	arrow := "▸"
	if view.Expanded {
		arrow = "▾"
	}
	header := p.styles.Title.Render(view.Title) + " " + arrow
	if n := len(view.Facet.Selected); n > 0 {
		header += " " + p.styles.Muted.Render(fmt.Sprintf("(%d selected)", n))
	}
	lines := []string{header}

	for _, item := range view.Facet.Selected {
		lines = append(lines, "  "+p.styles.Chip.Render("[x] "+Plain(item.Name)))
	}
	if !view.Expanded {
		return strings.Join(lines, "\n")
	}

	if view.Facet.SearchTerm != "" {
		lines = append(lines, "  "+p.styles.Muted.Render("filter: "+view.Facet.SearchTerm))
	}
	if len(view.Facet.Selectable) == 0 {
		lines = append(lines, "  "+p.styles.Muted.Render("No options"))
	}
	for _, item := range view.Facet.Selectable {
		lines = append(lines, "  [ ] "+Plain(item.Name))
	}
	return strings.Join(lines, "\n")
}
