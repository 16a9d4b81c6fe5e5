package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// Ensure Catalog implements the interfaces.
var (
	_ driven.CourseSearchService = (*Catalog)(nil)
	_ driven.CatalogStore        = (*Catalog)(nil)
)

// Catalog is an in-memory course backend. Hidden courses are read from prefs.
type Catalog struct {
	mu         sync.RWMutex
	prefs      *PreferenceStore
	now        func() time.Time
	categories map[int64]domain.CatalogCategory
	tags       map[int64]domain.CatalogTag
	fields     []domain.CatalogCustomField
	courses    []domain.CatalogCourse
	favourites map[int64]bool
}

// NewCatalog creates an empty catalog.
func NewCatalog(prefs *PreferenceStore) *Catalog {
	return &Catalog{
		prefs:      prefs,
		now:        time.Now,
		categories: make(map[int64]domain.CatalogCategory),
		tags:       make(map[int64]domain.CatalogTag),
		favourites: make(map[int64]bool),
	}
}

// SetClock overrides the time source used for progress filters.
func (c *Catalog) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// ImportCatalog replaces the stored catalog.
func (c *Catalog) ImportCatalog(_ context.Context, catalog domain.Catalog) error {
	if err := catalog.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = make(map[int64]domain.CatalogCategory, len(catalog.Categories))
	for _, cat := range catalog.Categories {
		c.categories[cat.ID] = cat
	}
	c.tags = make(map[int64]domain.CatalogTag, len(catalog.Tags))
	for _, tag := range catalog.Tags {
		c.tags[tag.ID] = tag
	}
	c.fields = slices.Clone(catalog.CustomFields)
	c.courses = slices.Clone(catalog.Courses)
	c.favourites = make(map[int64]bool)
	for _, course := range catalog.Courses {
		if course.IsFavourite {
			c.favourites[course.ID] = true
		}
	}
	return nil
}

// CourseCount returns the number of courses.
func (c *Catalog) CourseCount(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.courses), nil
}

// SearchCourses returns one window of the matching courses.
func (c *Catalog) SearchCourses(_ context.Context, req domain.SearchRequest) (domain.CoursePage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hidden := c.hidden()
	matches := c.match(req, hidden)
	c.sort(matches, req.Sort)

	start := min(req.Offset, len(matches))
	end := len(matches)
	if req.Limit > 0 {
		end = min(start+req.Limit, len(matches))
	}
	out := make([]domain.Course, 0, end-start)
	for _, course := range matches[start:end] {
		out = append(out, c.toCourse(course, hidden, req.IncludeSummary))
	}
	return domain.CoursePage{Courses: out, NextOffset: end}, nil
}

// FilteredCourseIDs returns the ids of every matching course.
func (c *Catalog) FilteredCourseIDs(_ context.Context, req domain.SearchRequest) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := c.match(req, c.hidden())
	ids := make([]int64, 0, len(matches))
	for _, course := range matches {
		ids = append(ids, course.ID)
	}
	return ids, nil
}

// Categories returns up to domain.MaxFacetCandidates categories of courseIDs whose name contains filter.
func (c *Catalog) Categories(_ context.Context, courseIDs []int64, filter string) ([]domain.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	used := make(map[int64]bool)
	for _, course := range c.coursesByID(courseIDs) {
		used[course.CategoryID] = true
	}
	var out []domain.Category
	for id := range used {
		cat, ok := c.categories[id]
		if !ok || !containsFold(cat.Name, filter) {
			continue
		}
		out = append(out, domain.Category{ID: cat.ID, Name: cat.Name, Path: cat.Path})
	}
	slices.SortFunc(out, func(a, b domain.Category) int {
		return cmp.Or(strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.ID, b.ID))
	})
	return truncate(out, domain.MaxFacetCandidates), nil
}

// Tags returns up to domain.MaxFacetCandidates tags of courseIDs whose name contains filter.
func (c *Catalog) Tags(_ context.Context, courseIDs []int64, filter string) ([]domain.Tag, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	used := make(map[int64]bool)
	for _, course := range c.coursesByID(courseIDs) {
		for _, id := range course.TagIDs {
			used[id] = true
		}
	}
	var out []domain.Tag
	for id := range used {
		tag, ok := c.tags[id]
		if !ok || !containsFold(tag.Name, filter) {
			continue
		}
		out = append(out, domain.Tag{ID: tag.ID, Name: tag.Name})
	}
	slices.SortFunc(out, func(a, b domain.Tag) int {
		return cmp.Or(strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.ID, b.ID))
	})
	return truncate(out, domain.MaxFacetCandidates), nil
}

// CustomFieldOptions returns the options of fieldID that courseIDs use, in option order.
func (c *Catalog) CustomFieldOptions(_ context.Context, fieldID int, courseIDs []int64) ([]domain.CustomFieldOption, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := slices.IndexFunc(c.fields, func(f domain.CatalogCustomField) bool { return f.ID == fieldID })
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	used := make(map[string]bool)
	for _, course := range c.coursesByID(courseIDs) {
		if v, ok := course.CustomFields[fieldID]; ok {
			used[v] = true
		}
	}
	var out []domain.CustomFieldOption
	for _, opt := range c.fields[idx].Options {
		if used[opt.Value] {
			out = append(out, domain.CustomFieldOption{Name: opt.Name, Value: opt.Value})
		}
	}
	return out, nil
}

// CustomFields returns every custom field.
func (c *Catalog) CustomFields(_ context.Context) ([]domain.CustomField, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CustomField, 0, len(c.fields))
	for _, f := range c.fields {
		out = append(out, domain.CustomField{ID: f.ID, Name: f.Name, Shortname: f.Shortname, Description: f.Description})
	}
	return out, nil
}

// SetFavourite stars or unstars a course. Unknown courses produce a warning.
func (c *Catalog) SetFavourite(_ context.Context, courseID int64, favourite bool) ([]domain.Warning, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.ContainsFunc(c.courses, func(course domain.CatalogCourse) bool { return course.ID == courseID }) {
		return []domain.Warning{{
			Item:        "course",
			ItemID:      courseID,
			WarningCode: "cannotsetfavourite",
			Message:     "Could not set favourite state for course " + strconv.FormatInt(courseID, 10),
		}}, nil
	}
	if favourite {
		c.favourites[courseID] = true
	} else {
		delete(c.favourites, courseID)
	}
	return nil, nil
}

func (c *Catalog) hidden() map[int64]bool {
	if c.prefs == nil {
		return map[int64]bool{}
	}
	return c.prefs.HiddenCourses()
}

func (c *Catalog) match(req domain.SearchRequest, hidden map[int64]bool) []domain.CatalogCourse {
	now := c.now()
	var out []domain.CatalogCourse
	for _, course := range c.courses {
		if c.matches(course, req, hidden, now) {
			out = append(out, course)
		}
	}
	return out
}

func (c *Catalog) matches(course domain.CatalogCourse, req domain.SearchRequest, hidden map[int64]bool, now time.Time) bool {
	switch req.Progress {
	case domain.ProgressHidden:
		if !hidden[course.ID] {
			return false
		}
	case domain.ProgressFavourites:
		if !c.favourites[course.ID] || hidden[course.ID] {
			return false
		}
	case domain.ProgressAllIncludingHidden:
	default:
		if hidden[course.ID] {
			return false
		}
	}
	dates := domain.Course{StartDate: course.StartDate, EndDate: course.EndDate}
	if !dates.MatchesProgress(req.Progress, now) {
		return false
	}
	if req.Text != "" && !containsFold(course.FullName, req.Text) && !containsFold(course.ShortName, req.Text) {
		return false
	}
	if len(req.CategoryIDs) > 0 && !c.inCategories(course.CategoryID, req.CategoryIDs) {
		return false
	}
	if len(req.TagIDs) > 0 && !slices.ContainsFunc(course.TagIDs, func(id int64) bool {
		return slices.Contains(req.TagIDs, id)
	}) {
		return false
	}
	for _, sel := range req.CustomFields {
		if !slices.Contains(sel.Values, course.CustomFields[sel.FieldID]) {
			return false
		}
	}
	return true
}

// inCategories reports whether categoryID is one of ids or a subcategory of one.
func (c *Catalog) inCategories(categoryID int64, ids []int64) bool {
	if slices.Contains(ids, categoryID) {
		return true
	}
	cat, ok := c.categories[categoryID]
	if !ok {
		return false
	}
	for _, segment := range strings.Split(strings.Trim(cat.Path, "/"), "/") {
		id, err := strconv.ParseInt(segment, 10, 64)
		if err == nil && slices.Contains(ids, id) {
			return true
		}
	}
	return false
}

func (c *Catalog) sort(courses []domain.CatalogCourse, order domain.SortOrder) {
	slices.SortStableFunc(courses, func(a, b domain.CatalogCourse) int {
		switch order {
		case domain.SortShortName:
			return cmp.Or(strings.Compare(strings.ToLower(a.ShortName), strings.ToLower(b.ShortName)), cmp.Compare(a.ID, b.ID))
		case domain.SortLastAccessed:
			return cmp.Compare(b.ID, a.ID)
		default:
			return cmp.Or(strings.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName)), cmp.Compare(a.ID, b.ID))
		}
	})
}

func (c *Catalog) coursesByID(ids []int64) []domain.CatalogCourse {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.CatalogCourse
	for _, course := range c.courses {
		if want[course.ID] {
			out = append(out, course)
		}
	}
	return out
}

func (c *Catalog) toCourse(course domain.CatalogCourse, hidden map[int64]bool, summary bool) domain.Course {
	out := domain.Course{
		ID:          course.ID,
		FullName:    course.FullName,
		ShortName:   course.ShortName,
		Category:    c.categories[course.CategoryID].Name,
		CategoryID:  course.CategoryID,
		StartDate:   course.StartDate,
		EndDate:     course.EndDate,
		IsFavourite: c.favourites[course.ID],
		Hidden:      hidden[course.ID],
		Visible:     course.Visible,
		ViewURL:     course.ViewURL,
	}
	if course.Progress != nil {
		out.Progress = *course.Progress
		out.HasProgress = true
	}
	if summary {
		out.Summary = course.Summary
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
