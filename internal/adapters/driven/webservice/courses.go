package webservice

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// Web service functions used by CourseService.
const (
	fnCourseView         = "block_eledia_telc_coursesearch_get_courseview"
	fnTimeline           = "core_course_get_enrolled_courses_by_timeline_classification"
	fnAvailableCategory  = "block_eledia_telc_coursesearch_get_available_categories"
	fnAvailableTags      = "block_eledia_telc_coursesearch_get_available_tags"
	fnCustomFieldOptions = "block_eledia_telc_coursesearch_get_customfield_available_options"
	fnCustomFields       = "block_eledia_telc_coursesearch_get_customfields"
	fnSetFavourites      = "core_course_set_favourite_courses"
)

// scopeMemoSize bounds the remembered FilteredCourseIDs scopes.
const scopeMemoSize = 32

// Ensure CourseService implements the interface.
var _ driven.CourseSearchService = (*CourseService)(nil)

// CourseService implements driven.CourseSearchService over the web service.
//
// The LMS computes facet candidates from search criteria, not from course ids,
// so FilteredCourseIDs remembers which request produced each id set and the
// candidate lookups send that request's criteria.
type CourseService struct {
	client *Client

	mu     sync.Mutex
	scopes map[string]domain.SearchRequest
	order  []string
}

// NewCourseService creates a course service using client.
func NewCourseService(client *Client) *CourseService {
	return &CourseService{
		client: client,
		scopes: make(map[string]domain.SearchRequest),
	}
}

// wsCourse is one course as exported by the LMS.
type wsCourse struct {
	ID             int64    `json:"id"`
	FullName       string   `json:"fullname"`
	ShortName      string   `json:"shortname"`
	Summary        string   `json:"summary"`
	CourseCategory string   `json:"coursecategory"`
	StartDate      int64    `json:"startdate"`
	EndDate        int64    `json:"enddate"`
	Visible        bool     `json:"visible"`
	Progress       *float64 `json:"progress"`
	HasProgress    bool     `json:"hasprogress"`
	IsFavourite    bool     `json:"isfavourite"`
	Hidden         bool     `json:"hidden"`
	ViewURL        string   `json:"viewurl"`
}

// coursesResponse is the result of the course listing functions.
type coursesResponse struct {
	Courses    []wsCourse `json:"courses"`
	NextOffset int        `json:"nextoffset"`
}

// browseFields are the course fields requested when summaries are not needed.
var browseFields = []string{
	"id", "fullname", "shortname", "coursecategory", "startdate", "enddate", "visible",
	"progress", "hasprogress", "isfavourite", "hidden", "viewurl",
}

// SearchCourses lists courses. Requests with criteria use the course view
// function; plain groupings use the timeline classification.
func (s *CourseService) SearchCourses(ctx context.Context, req domain.SearchRequest) (domain.CoursePage, error) {
	resp, err := s.list(ctx, req)
	if err != nil {
		return domain.CoursePage{}, err
	}

	courses := make([]domain.Course, 0, len(resp.Courses))
	for _, c := range resp.Courses {
		courses = append(courses, c.toDomain(req.IncludeSummary))
	}
	next := resp.NextOffset
	if next == 0 && len(courses) > 0 {
		next = req.Offset + len(courses)
	}
	return domain.CoursePage{Courses: courses, NextOffset: next}, nil
}

func (s *CourseService) list(ctx context.Context, req domain.SearchRequest) (coursesResponse, error) {
	var resp coursesResponse
	if req.HasCriteria() {
		err := s.client.Call(ctx, fnCourseView, encodeCriteria(req, pageCriteria(req)...), &resp)
		return resp, err
	}

	params := url.Values{
		"classification": {string(domain.ClassificationFor(req.Progress))},
		"limit":          {strconv.Itoa(req.Limit)},
		"offset":         {strconv.Itoa(req.Offset)},
		"sort":           {string(req.Sort)},
	}
	if !req.IncludeSummary {
		for i, f := range browseFields {
			params.Set(fmt.Sprintf("requiredfields[%d]", i), f)
		}
	}
	err := s.client.Call(ctx, fnTimeline, params, &resp)
	return resp, err
}

// FilteredCourseIDs returns the ids of every matching course and remembers req
// as their scope for the candidate lookups.
func (s *CourseService) FilteredCourseIDs(ctx context.Context, req domain.SearchRequest) ([]int64, error) {
	resp, err := s.list(ctx, req.WithPage(0, 0))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(resp.Courses))
	for _, c := range resp.Courses {
		ids = append(ids, c.ID)
	}
	s.remember(ids, req)
	return ids, nil
}

// Categories returns the categories offered for the scope that produced courseIDs.
func (s *CourseService) Categories(ctx context.Context, courseIDs []int64, filter string) ([]domain.Category, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	scope, err := s.scope(courseIDs)
	if err != nil {
		return nil, err
	}

	params := encodeCriteria(scope, extraCriterion{key: keyCategoryName, value: strings.TrimSpace(filter)})
	params.Set("addsubcategories", "0")
	var resp []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
	}
	if err := s.client.Call(ctx, fnAvailableCategory, params, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(resp))
	for _, c := range resp {
		out = append(out, domain.Category{ID: c.ID, Name: c.Name, Path: c.Path})
	}
	return capItems(out), nil
}

// Tags returns the tags offered for the scope that produced courseIDs.
func (s *CourseService) Tags(ctx context.Context, courseIDs []int64, filter string) ([]domain.Tag, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	scope, err := s.scope(courseIDs)
	if err != nil {
		return nil, err
	}

	params := encodeCriteria(scope, extraCriterion{key: keyTagsName, value: strings.TrimSpace(filter)})
	var resp []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := s.client.Call(ctx, fnAvailableTags, params, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.Tag, 0, len(resp))
	for _, t := range resp {
		out = append(out, domain.Tag{ID: t.ID, Name: t.Name})
	}
	return capItems(out), nil
}

// CustomFieldOptions returns the options of fieldID used in the scope that produced courseIDs.
func (s *CourseService) CustomFieldOptions(ctx context.Context, fieldID int, courseIDs []int64) ([]domain.CustomFieldOption, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	scope, err := s.scope(courseIDs)
	if err != nil {
		return nil, err
	}

	params := encodeCriteria(scope, extraCriterion{key: keyCurrentCustomField, value: strconv.Itoa(fieldID)})
	var resp []domain.CustomFieldOption
	if err := s.client.Call(ctx, fnCustomFieldOptions, params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CustomFields returns the custom fields visible to everyone.
func (s *CourseService) CustomFields(ctx context.Context) ([]domain.CustomField, error) {
	// Fields hidden from users come back as null entries.
	var resp []*struct {
		ID          int    `json:"id"`
		Name        string `json:"name"`
		Shortname   string `json:"shortname"`
		Description string `json:"description"`
	}
	if err := s.client.Call(ctx, fnCustomFields, url.Values{}, &resp); err != nil {
		return nil, err
	}

	var out []domain.CustomField
	for _, f := range resp {
		if f == nil {
			continue
		}
		out = append(out, domain.CustomField{ID: f.ID, Name: f.Name, Shortname: f.Shortname, Description: f.Description})
	}
	return out, nil
}

// SetFavourite stars or unstars a course.
func (s *CourseService) SetFavourite(ctx context.Context, courseID int64, favourite bool) ([]domain.Warning, error) {
	params := url.Values{
		"courses[0][id]":        {strconv.FormatInt(courseID, 10)},
		"courses[0][favourite]": {boolParam(favourite)},
	}
	var resp struct {
		Warnings []struct {
			Item        string `json:"item"`
			ItemID      int64  `json:"itemid"`
			WarningCode string `json:"warningcode"`
			Message     string `json:"message"`
		} `json:"warnings"`
	}
	if err := s.client.Call(ctx, fnSetFavourites, params, &resp); err != nil {
		return nil, err
	}

	var warnings []domain.Warning
	for _, w := range resp.Warnings {
		warnings = append(warnings, domain.Warning{
			Item:        w.Item,
			ItemID:      w.ItemID,
			WarningCode: w.WarningCode,
			Message:     w.Message,
		})
	}
	return warnings, nil
}

func (s *CourseService) remember(ids []int64, req domain.SearchRequest) {
	key := scopeKey(ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scopes[key]; !ok {
		s.order = append(s.order, key)
	}
	s.scopes[key] = req
	for len(s.order) > scopeMemoSize {
		delete(s.scopes, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *CourseService) scope(ids []int64) (domain.SearchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.scopes[scopeKey(ids)]
	if !ok {
		return domain.SearchRequest{}, domain.NewBackendError("facet candidates", ErrUnknownScope)
	}
	return req, nil
}

// scopeKey identifies an id set independent of order.
func scopeKey(ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return strings.Join(domain.FormatIDs(sorted), ",")
}

func (c wsCourse) toDomain(includeSummary bool) domain.Course {
	out := domain.Course{
		ID:          c.ID,
		FullName:    c.FullName,
		ShortName:   c.ShortName,
		Category:    c.CourseCategory,
		StartDate:   unixTime(c.StartDate),
		EndDate:     unixTime(c.EndDate),
		IsFavourite: c.IsFavourite,
		Hidden:      c.Hidden,
		Visible:     c.Visible,
		ViewURL:     c.ViewURL,
	}
	if c.HasProgress && c.Progress != nil {
		out.HasProgress = true
		out.Progress = int(*c.Progress)
	}
	if includeSummary {
		out.Summary = c.Summary
	}
	return out
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func capItems[T any](items []T) []T {
	if len(items) > domain.MaxFacetCandidates {
		return items[:domain.MaxFacetCandidates]
	}
	return items
}
