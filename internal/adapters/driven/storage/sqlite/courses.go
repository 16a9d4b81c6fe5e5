package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// courseStore implements driven.CourseSearchService.
type courseStore struct {
	store *Store
}

var _ driven.CourseSearchService = (*courseStore)(nil)

// hiddenExpr is true when the user hid course c. Its single argument is the key prefix.
const hiddenExpr = "EXISTS (SELECT 1 FROM preferences p WHERE p.name = ? || c.id)"

// courseFilter is a WHERE clause over "courses c" with its arguments.
type courseFilter struct {
	clauses []string
	args    []any
}

func (f *courseFilter) add(clause string, args ...any) {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args...)
}

func (f *courseFilter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// buildFilter translates req into SQL. The grouping decides hidden and favourite
// handling; the progress gates compare unix seconds with 0 meaning unset.
func buildFilter(req domain.SearchRequest, now time.Time) courseFilter {
	var f courseFilter

	switch req.Progress {
	case domain.ProgressHidden:
		f.add(hiddenExpr, domain.HiddenCoursePrefix)
	case domain.ProgressFavourites:
		f.add("EXISTS (SELECT 1 FROM favourites fv WHERE fv.course_id = c.id)")
		f.add("NOT "+hiddenExpr, domain.HiddenCoursePrefix)
	case domain.ProgressAllIncludingHidden:
	default:
		f.add("NOT "+hiddenExpr, domain.HiddenCoursePrefix)
	}

	ts := now.Unix()
	switch req.Progress {
	case domain.ProgressPast:
		f.add("(c.enddate > 0 AND c.enddate < ?)", ts)
	case domain.ProgressFuture:
		f.add("c.startdate > ?", ts)
	case domain.ProgressInProgress:
		f.add("(c.startdate < ? AND (c.enddate = 0 OR c.enddate > ?))", ts, ts)
	}

	if term := strings.ToLower(strings.TrimSpace(req.Text)); term != "" {
		f.add("(instr(casefold(c.fullname), ?) > 0 OR instr(casefold(c.shortname), ?) > 0)", term, term)
	}

	if len(req.CategoryIDs) > 0 {
		paths := make([]string, len(req.CategoryIDs))
		for i := range paths {
			paths[i] = "instr(cat.path || '/', '/' || ? || '/') > 0"
		}
		args := int64Args(req.CategoryIDs)
		args = append(args, int64Args(req.CategoryIDs)...)
		f.add(fmt.Sprintf(
			"(c.category_id IN (%s) OR EXISTS (SELECT 1 FROM categories cat WHERE cat.id = c.category_id AND (%s)))",
			placeholders(len(req.CategoryIDs)), strings.Join(paths, " OR ")), args...)
	}

	if len(req.TagIDs) > 0 {
		f.add(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM course_tags ct WHERE ct.course_id = c.id AND ct.tag_id IN (%s))",
			placeholders(len(req.TagIDs))), int64Args(req.TagIDs)...)
	}

	for _, sel := range req.CustomFields {
		args := []any{sel.FieldID}
		for _, v := range sel.Values {
			args = append(args, v)
		}
		f.add(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM customfield_data cd WHERE cd.course_id = c.id AND cd.field_id = ? AND cd.value IN (%s))",
			placeholders(len(sel.Values))), args...)
	}

	return f
}

func orderBy(order domain.SortOrder) string {
	switch order {
	case domain.SortShortName:
		return " ORDER BY casefold(c.shortname), c.id"
	case domain.SortLastAccessed:
		// The catalog keeps no access log; newest courses first stands in for it.
		return " ORDER BY c.id DESC"
	default:
		return " ORDER BY casefold(c.fullname), c.id"
	}
}

// SearchCourses returns one window of the matching courses.
func (s *courseStore) SearchCourses(ctx context.Context, req domain.SearchRequest) (domain.CoursePage, error) {
	f := buildFilter(req, s.store.clock())

	summary := "''"
	if req.IncludeSummary {
		summary = "c.summary"
	}
	query := `
		SELECT c.id, c.fullname, c.shortname, ` + summary + `, c.category_id, COALESCE(cat.name, ''),
			c.startdate, c.enddate, c.visible, c.progress, c.viewurl,
			EXISTS (SELECT 1 FROM favourites fv WHERE fv.course_id = c.id),
			` + hiddenExpr + `
		FROM courses c
		LEFT JOIN categories cat ON cat.id = c.category_id`
	args := append([]any{domain.HiddenCoursePrefix}, f.args...)
	query += f.where() + orderBy(req.Sort)

	switch {
	case req.Limit > 0:
		query += " LIMIT ? OFFSET ?"
		args = append(args, req.Limit, req.Offset)
	case req.Offset > 0:
		query += " LIMIT -1 OFFSET ?"
		args = append(args, req.Offset)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.CoursePage{}, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var (
			c                  domain.Course
			start, end         int64
			progress           sql.NullInt64
			visible, fav, hide bool
		)
		if err := rows.Scan(&c.ID, &c.FullName, &c.ShortName, &c.Summary, &c.CategoryID, &c.Category,
			&start, &end, &visible, &progress, &c.ViewURL, &fav, &hide); err != nil {
			return domain.CoursePage{}, fmt.Errorf("scanning course: %w", err)
		}
		c.StartDate = timeOrZero(start)
		c.EndDate = timeOrZero(end)
		c.Visible = visible
		c.IsFavourite = fav
		c.Hidden = hide
		if progress.Valid {
			c.Progress = int(progress.Int64)
			c.HasProgress = true
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return domain.CoursePage{}, fmt.Errorf("iterating courses: %w", err)
	}

	return domain.CoursePage{Courses: courses, NextOffset: req.Offset + len(courses)}, nil
}

// FilteredCourseIDs returns the ids of every matching course.
func (s *courseStore) FilteredCourseIDs(ctx context.Context, req domain.SearchRequest) ([]int64, error) {
	f := buildFilter(req, s.store.clock())
	query := "SELECT c.id FROM courses c" + f.where() + orderBy(req.Sort)

	rows, err := s.store.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("querying course ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning course id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Categories returns up to domain.MaxFacetCandidates categories of courseIDs whose name contains filter.
func (s *courseStore) Categories(ctx context.Context, courseIDs []int64, filter string) ([]domain.Category, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	ids, err := json.Marshal(courseIDs)
	if err != nil {
		return nil, fmt.Errorf("encoding course ids: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT cat.id, cat.name, cat.path
		FROM categories cat
		JOIN courses c ON c.category_id = cat.id
		WHERE c.id IN (SELECT value FROM json_each(?))
		  AND instr(casefold(cat.name), ?) > 0
		ORDER BY casefold(cat.name), cat.id
		LIMIT ?
	`, string(ids), strings.ToLower(strings.TrimSpace(filter)), domain.MaxFacetCandidates)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Path); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

// Tags returns up to domain.MaxFacetCandidates tags of courseIDs whose name contains filter.
func (s *courseStore) Tags(ctx context.Context, courseIDs []int64, filter string) ([]domain.Tag, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	ids, err := json.Marshal(courseIDs)
	if err != nil {
		return nil, fmt.Errorf("encoding course ids: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT t.id, t.name
		FROM tags t
		JOIN course_tags ct ON ct.tag_id = t.id
		WHERE ct.course_id IN (SELECT value FROM json_each(?))
		  AND instr(casefold(t.name), ?) > 0
		ORDER BY casefold(t.name), t.id
		LIMIT ?
	`, string(ids), strings.ToLower(strings.TrimSpace(filter)), domain.MaxFacetCandidates)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

// CustomFieldOptions returns the options of fieldID that courseIDs use, in option order.
func (s *courseStore) CustomFieldOptions(ctx context.Context, fieldID int, courseIDs []int64) ([]domain.CustomFieldOption, error) {
	var exists bool
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM customfields WHERE id = ?", fieldID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up custom field %d: %w", fieldID, err)
	}
	if len(courseIDs) == 0 {
		return nil, nil
	}

	ids, err := json.Marshal(courseIDs)
	if err != nil {
		return nil, fmt.Errorf("encoding course ids: %w", err)
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT o.name, o.value
		FROM customfield_options o
		WHERE o.field_id = ?
		  AND EXISTS (
			SELECT 1 FROM customfield_data cd
			WHERE cd.field_id = o.field_id AND cd.value = o.value
			  AND cd.course_id IN (SELECT value FROM json_each(?))
		  )
		ORDER BY o.sortorder
	`, fieldID, string(ids))
	if err != nil {
		return nil, fmt.Errorf("querying custom field options: %w", err)
	}
	defer rows.Close()

	var out []domain.CustomFieldOption
	for rows.Next() {
		var opt domain.CustomFieldOption
		if err := rows.Scan(&opt.Name, &opt.Value); err != nil {
			return nil, fmt.Errorf("scanning custom field option: %w", err)
		}
		out = append(out, opt)
	}
	return out, rows.Err()
}

// CustomFields returns every custom field in catalog order.
func (s *courseStore) CustomFields(ctx context.Context) ([]domain.CustomField, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, shortname, description FROM customfields ORDER BY sortorder, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying custom fields: %w", err)
	}
	defer rows.Close()

	var out []domain.CustomField
	for rows.Next() {
		var f domain.CustomField
		if err := rows.Scan(&f.ID, &f.Name, &f.Shortname, &f.Description); err != nil {
			return nil, fmt.Errorf("scanning custom field: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SetFavourite stars or unstars a course. Unknown courses produce a warning.
func (s *courseStore) SetFavourite(ctx context.Context, courseID int64, favourite bool) ([]domain.Warning, error) {
	var exists bool
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM courses WHERE id = ?", courseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Warning{{
			Item:        "course",
			ItemID:      courseID,
			WarningCode: "cannotsetfavourite",
			Message:     fmt.Sprintf("Could not set favourite state for course %d", courseID),
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up course %d: %w", courseID, err)
	}

	if favourite {
		_, err = s.store.db.ExecContext(ctx, "INSERT OR IGNORE INTO favourites (course_id) VALUES (?)", courseID)
	} else {
		_, err = s.store.db.ExecContext(ctx, "DELETE FROM favourites WHERE course_id = ?", courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("setting favourite for course %d: %w", courseID, err)
	}
	return nil, nil
}
