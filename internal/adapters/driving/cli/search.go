package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/render"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/core/services"
)

var (
	searchCategories []string
	searchTags       []string
	searchFields     []string
	searchProgress   string
	searchSort       string
	searchDisplay    string
	searchPage       int
	searchSize       int
	searchJSON       bool
	searchFacets     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search courses",
	Long: `Searches courses by name and narrows the result with facet filters.

Without a term the courses of the selected grouping are listed.
Filters match option names case-insensitively; the first candidate
is used when no name matches exactly.

Examples:
  coursesearch search deutsch
  coursesearch search --category Languages --tag exam
  coursesearch search --field level=B1 --progress inprogress --page 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringArrayVarP(&searchCategories, "category", "c", nil, "filter by category name (repeatable)")
	searchCmd.Flags().StringArrayVarP(&searchTags, "tag", "t", nil, "filter by tag name (repeatable)")
	searchCmd.Flags().StringArrayVarP(&searchFields, "field", "f", nil, "filter by custom field as shortname=value (repeatable)")
	searchCmd.Flags().StringVar(&searchProgress, "progress", "", "browse grouping (all, inprogress, future, past, favourites, hidden, allincludinghidden)")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort order (fullname, shortname, \"ul.timeaccess desc\")")
	searchCmd.Flags().StringVar(&searchDisplay, "display", "", "layout (card, list, summary)")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "page to show, starting at 1")
	searchCmd.Flags().IntVarP(&searchSize, "size", "n", -1, "courses per page, 0 for all (saved as your preference)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output courses as JSON")
	searchCmd.Flags().BoolVar(&searchFacets, "facets", false, "show the facet filters")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchPage < 1 {
		return fmt.Errorf("invalid page %d: pages start at 1", searchPage)
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if searchProgress != "" {
		settings.View.Progress = domain.ProgressFilter(searchProgress)
	}
	if searchSort != "" {
		settings.View.Sort = domain.SortOrder(searchSort)
	}
	if searchDisplay != "" {
		settings.View.Display = domain.DisplayMode(searchDisplay)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	search, terminal, err := openSearch(settings)
	if err != nil {
		return err
	}
	defer search.Close()

	ctx := cmd.Context()
	if err := search.Init(ctx); err != nil {
		return searchFailed(cmd, terminal, err)
	}
	if searchSize >= 0 {
		if err := search.SetPageSize(ctx, searchSize); err != nil {
			return searchFailed(cmd, terminal, err)
		}
	}
	if len(args) == 1 {
		if err := search.SearchText(ctx, args[0]); err != nil {
			return searchFailed(cmd, terminal, err)
		}
	}
	if err := applyFacetFlags(cmd, search); err != nil {
		return searchFailed(cmd, terminal, err)
	}
	if searchPage > 1 {
		if _, err := search.GoToPage(ctx, searchPage-1); err != nil {
			return searchFailed(cmd, terminal, err)
		}
	}

	printNotifications(cmd, terminal)
	if searchJSON {
		return outputSearchJSON(cmd, search.State())
	}
	outputSearch(cmd, terminal, search.State())
	return nil
}

// applyFacetFlags selects the items named by the filter flags.
func applyFacetFlags(cmd *cobra.Command, search driving.CourseSearch) error {
	for _, name := range searchCategories {
		if _, err := services.SelectByName(cmd.Context(), search, domain.CategoryFacet(), name); err != nil {
			return err
		}
	}
	for _, name := range searchTags {
		if _, err := services.SelectByName(cmd.Context(), search, domain.TagsFacet(), name); err != nil {
			return err
		}
	}
	for _, spec := range searchFields {
		shortname, value, ok := strings.Cut(spec, "=")
		if !ok || shortname == "" || value == "" {
			return fmt.Errorf("invalid field filter %q: want shortname=value", spec)
		}
		field, ok := services.CustomFieldByShortname(search.State().CustomFields, shortname)
		if !ok {
			return fmt.Errorf("unknown custom field %q", shortname)
		}
		if _, err := services.SelectByName(cmd.Context(), search, domain.CustomFieldFacet(field.ID), value); err != nil {
			return err
		}
	}
	return nil
}

// searchFailed prints pending notifications before returning err.
func searchFailed(cmd *cobra.Command, terminal *render.Terminal, err error) error {
	printNotifications(cmd, terminal)
	return fmt.Errorf("search failed: %w", err)
}

func printNotifications(cmd *cobra.Command, terminal *render.Terminal) {
	for _, n := range terminal.Notifications() {
		cmd.PrintErrln(terminal.RenderNotification(n))
	}
}

func outputSearch(cmd *cobra.Command, terminal *render.Terminal, state domain.SearchState) {
	if searchFacets {
		for _, status := range state.Dropdowns {
			cmd.Println(terminal.Body(domain.DropdownContainer(status.Facet.Key)))
		}
		cmd.Println()
	}
	cmd.Println(terminal.Body(domain.ContainerCourses))
	cmd.Println()
	cmd.Println(terminal.Body(domain.ContainerPaging))
}

// courseJSON is the JSON form of a listed course.
type courseJSON struct {
	ID          int64  `json:"id"`
	FullName    string `json:"fullname"`
	ShortName   string `json:"shortname"`
	Category    string `json:"category,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
	IsFavourite bool   `json:"isfavourite"`
	Hidden      bool   `json:"hidden"`
	ViewURL     string `json:"viewurl,omitempty"`
}

// searchJSONOutput is the JSON form of a search result page.
type searchJSONOutput struct {
	Page     int          `json:"page"`
	LastPage *int         `json:"lastpage,omitempty"`
	PageSize int          `json:"pagesize"`
	Courses  []courseJSON `json:"courses"`
}

func outputSearchJSON(cmd *cobra.Command, state domain.SearchState) error {
	out := searchJSONOutput{
		Page:     state.Page + 1,
		PageSize: state.PageSize,
		Courses:  make([]courseJSON, 0, len(state.Courses)),
	}
	if state.LastPage >= 0 {
		last := state.LastPage + 1
		out.LastPage = &last
	}
	for _, c := range state.Courses {
		course := courseJSON{
			ID:          c.ID,
			FullName:    render.Plain(c.FullName),
			ShortName:   c.ShortName,
			Category:    render.Plain(c.Category),
			Summary:     render.Plain(c.Summary),
			IsFavourite: c.IsFavourite,
			Hidden:      c.Hidden,
			ViewURL:     c.ViewURL,
		}
		if c.HasProgress {
			progress := c.Progress
			course.Progress = &progress
		}
		out.Courses = append(out.Courses, course)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
