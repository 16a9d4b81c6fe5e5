package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/render"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/core/services"
)

// SearchInput is the input schema for the search_courses tool.
type SearchInput struct {
	Query      string        `json:"query,omitempty" jsonschema:"text matched against course names; empty lists the grouping"`
	Categories []string      `json:"categories,omitempty" jsonschema:"category names to filter by"`
	Tags       []string      `json:"tags,omitempty" jsonschema:"tag names to filter by"`
	Fields     []FieldFilter `json:"fields,omitempty" jsonschema:"custom field filters"`
	Progress   string        `json:"progress,omitempty" jsonschema:"grouping: all, inprogress, future, past, favourites, hidden or allincludinghidden"`
	Sort       string        `json:"sort,omitempty" jsonschema:"sort order: fullname, shortname or ul.timeaccess desc"`
	Page       int           `json:"page,omitempty" jsonschema:"page to return, starting at 1 (default 1)"`
}

// FieldFilter selects one custom field value.
type FieldFilter struct {
	Shortname string `json:"shortname" jsonschema:"short name of the custom field"`
	Value     string `json:"value" jsonschema:"option name or value"`
}

// SearchOutput is the output schema for the search_courses tool.
type SearchOutput struct {
	Courses []CourseOutput `json:"courses"`
	Count   int            `json:"count"`
	Page    int            `json:"page"`
	// LastPage is 0 while the number of pages is unknown.
	LastPage int          `json:"last_page,omitempty"`
	HasMore  bool         `json:"has_more"`
	Filters  []FilterInfo `json:"filters,omitempty"`
}

// CourseOutput represents a single course.
type CourseOutput struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullname"`
	ShortName string `json:"shortname"`
	Category  string `json:"category,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Progress  *int   `json:"progress,omitempty"`
	Favourite bool   `json:"favourite"`
	Hidden    bool   `json:"hidden"`
	URL       string `json:"url,omitempty"`
}

// FilterInfo is a facet item the search was narrowed by.
type FilterInfo struct {
	Facet string `json:"facet"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// FacetInput is the input schema for the list_facet_candidates tool.
type FacetInput struct {
	Facet string `json:"facet" jsonschema:"facet key: category, tags or customfield:<id>"`
	Term  string `json:"term,omitempty" jsonschema:"narrows the candidates to names matching this term"`
	Query string `json:"query,omitempty" jsonschema:"text search that scopes the candidates"`
}

// FacetOutput is the output schema for the list_facet_candidates tool.
type FacetOutput struct {
	Facet string            `json:"facet"`
	Title string            `json:"title"`
	Items []FacetItemOutput `json:"items"`
}

// FacetItemOutput is one selectable facet value.
type FacetItemOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CourseInput identifies a course.
type CourseInput struct {
	CourseID int64 `json:"course_id" jsonschema:"id of the course"`
}

// FavouriteInput is the input schema for the set_favourite tool.
type FavouriteInput struct {
	CourseID  int64 `json:"course_id" jsonschema:"id of the course"`
	Favourite bool  `json:"favourite" jsonschema:"true to star the course, false to unstar it"`
}

// ActionOutput reports a completed course action.
type ActionOutput struct {
	CourseID int64  `json:"course_id"`
	Status   string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_courses",
		Description: "Search courses by name and narrow them by category, tag and custom field",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_facet_candidates",
		Description: "List the values a facet filter can take for the current search",
	}, s.handleFacetCandidates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "hide_course",
		Description: "Remove a course from the user's overview",
	}, s.handleHide)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "show_course",
		Description: "Restore a course removed from the user's overview",
	}, s.handleShow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_favourite",
		Description: "Star or unstar a course",
	}, s.handleSetFavourite)
}

// handleSearch handles the search_courses tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}

	search, err := s.session(ctx)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	defer search.Close()

	if input.Progress != "" {
		if err := search.SetProgress(ctx, domain.ProgressFilter(input.Progress)); err != nil {
			return nil, SearchOutput{}, err
		}
	}
	if input.Sort != "" {
		if err := search.SetSort(ctx, domain.SortOrder(input.Sort)); err != nil {
			return nil, SearchOutput{}, err
		}
	}
	if input.Query != "" {
		if err := search.SearchText(ctx, input.Query); err != nil {
			return nil, SearchOutput{}, err
		}
	}

	filters, err := applyFilters(ctx, search, input)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if page > 1 {
		if _, err := search.GoToPage(ctx, page-1); err != nil {
			return nil, SearchOutput{}, err
		}
	}

	state := search.State()
	output := SearchOutput{
		Courses: make([]CourseOutput, len(state.Courses)),
		Count:   len(state.Courses),
		Page:    state.Page + 1,
		HasMore: state.PageSize != domain.PageSizeAll && state.HasNextPage(),
		Filters: filters,
	}
	if state.LastPage >= 0 {
		output.LastPage = state.LastPage + 1
	}
	for i, c := range state.Courses {
		output.Courses[i] = courseOutput(c)
	}

	return nil, output, nil
}

func applyFilters(ctx context.Context, search driving.CourseSearch, input SearchInput) ([]FilterInfo, error) {
	var filters []FilterInfo
	add := func(key domain.FacetKey, name string) error {
		item, err := services.SelectByName(ctx, search, key, name)
		if err != nil {
			return err
		}
		filters = append(filters, FilterInfo{Facet: key.String(), ID: item.ID, Name: item.Name})
		return nil
	}

	for _, name := range input.Categories {
		if err := add(domain.CategoryFacet(), name); err != nil {
			return nil, err
		}
	}
	for _, name := range input.Tags {
		if err := add(domain.TagsFacet(), name); err != nil {
			return nil, err
		}
	}
	for _, f := range input.Fields {
		field, ok := services.CustomFieldByShortname(search.State().CustomFields, f.Shortname)
		if !ok {
			return nil, fmt.Errorf("%w: unknown custom field %q", domain.ErrInvalidInput, f.Shortname)
		}
		if err := add(domain.CustomFieldFacet(field.ID), f.Value); err != nil {
			return nil, err
		}
	}
	return filters, nil
}

func courseOutput(c domain.Course) CourseOutput {
	out := CourseOutput{
		ID:        c.ID,
		FullName:  render.Plain(c.FullName),
		ShortName: c.ShortName,
		Category:  render.Plain(c.Category),
		Summary:   render.Plain(c.Summary),
		Favourite: c.IsFavourite,
		Hidden:    c.Hidden,
		URL:       c.ViewURL,
	}
	if c.HasProgress {
		progress := c.Progress
		out.Progress = &progress
	}
	return out
}

// handleFacetCandidates handles the list_facet_candidates tool invocation.
func (s *Server) handleFacetCandidates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FacetInput,
) (*mcp.CallToolResult, FacetOutput, error) {
	key, err := domain.ParseFacetKey(input.Facet)
	if err != nil {
		return nil, FacetOutput{}, err
	}

	search, err := s.session(ctx)
	if err != nil {
		return nil, FacetOutput{}, err
	}
	defer search.Close()

	if input.Query != "" {
		if err := search.SearchText(ctx, input.Query); err != nil {
			return nil, FacetOutput{}, err
		}
	}
	status, err := candidates(ctx, search, key, input.Term)
	if err != nil {
		return nil, FacetOutput{}, err
	}
	return nil, facetOutput(status), nil
}

// candidates opens the dropdown of key, filtered by term, and returns its state.
func candidates(ctx context.Context, search driving.CourseSearch, key domain.FacetKey, term string) (domain.DropdownStatus, error) {
	if err := search.OpenDropdown(ctx, key); err != nil {
		return domain.DropdownStatus{}, err
	}
	if term != "" {
		if err := search.FilterDropdown(ctx, key, term); err != nil {
			return domain.DropdownStatus{}, err
		}
	}
	status, ok := services.DropdownStatus(search.State(), key)
	if !ok {
		return domain.DropdownStatus{}, fmt.Errorf("%w: %s", domain.ErrInvalidFacet, key)
	}
	return status, nil
}

func facetOutput(status domain.DropdownStatus) FacetOutput {
	out := FacetOutput{
		Facet: status.Facet.Key.String(),
		Title: status.Title,
		Items: make([]FacetItemOutput, len(status.Facet.Selectable)),
	}
	for i, item := range status.Facet.Selectable {
		out.Items[i] = FacetItemOutput{ID: item.ID, Name: render.Plain(item.Name)}
	}
	return out
}

// handleHide handles the hide_course tool invocation.
func (s *Server) handleHide(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CourseInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	return s.courseAction(ctx, input.CourseID, "hidden", func(search driving.CourseSearch) error {
		return search.Hide(ctx, input.CourseID)
	})
}

// handleShow handles the show_course tool invocation.
func (s *Server) handleShow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CourseInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	return s.courseAction(ctx, input.CourseID, "shown", func(search driving.CourseSearch) error {
		return search.Show(ctx, input.CourseID)
	})
}

// handleSetFavourite handles the set_favourite tool invocation.
func (s *Server) handleSetFavourite(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FavouriteInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	status := "unstarred"
	if input.Favourite {
		status = "starred"
	}
	return s.courseAction(ctx, input.CourseID, status, func(search driving.CourseSearch) error {
		return search.SetFavourite(ctx, input.CourseID, input.Favourite)
	})
}

// courseAction runs fn on an unbound session; row actions need no listing.
func (s *Server) courseAction(
	_ context.Context,
	courseID int64,
	status string,
	fn func(driving.CourseSearch) error,
) (*mcp.CallToolResult, ActionOutput, error) {
	if courseID <= 0 {
		return nil, ActionOutput{}, fmt.Errorf("%w: course id %d", domain.ErrInvalidInput, courseID)
	}
	search, err := s.ports.Sessions()
	if err != nil {
		return nil, ActionOutput{}, fmt.Errorf("opening search session: %w", err)
	}
	defer search.Close()

	if err := fn(search); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{CourseID: courseID, Status: status}, nil
}
