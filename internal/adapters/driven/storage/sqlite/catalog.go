package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// catalogStore implements driven.CatalogStore.
type catalogStore struct {
	store *Store
}

var _ driven.CatalogStore = (*catalogStore)(nil)

// ImportCatalog replaces every catalog table in one transaction.
// Preferences survive an import; favourites are taken from the catalog.
func (s *catalogStore) ImportCatalog(ctx context.Context, c domain.Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{
		"favourites", "customfield_data", "customfield_options", "course_tags",
		"courses", "customfields", "tags", "categories",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertTaxonomy(ctx, tx, c); err != nil {
		return err
	}
	for _, course := range c.Courses {
		if err := insertCourse(ctx, tx, course); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// CourseCount returns the number of stored courses.
func (s *catalogStore) CourseCount(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return n, nil
}

func insertTaxonomy(ctx context.Context, tx *sql.Tx, c domain.Catalog) error {
	for _, cat := range c.Categories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, name, path) VALUES (?, ?, ?)",
			cat.ID, cat.Name, cat.Path); err != nil {
			return fmt.Errorf("inserting category %d: %w", cat.ID, err)
		}
	}
	for _, tag := range c.Tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tags (id, name) VALUES (?, ?)", tag.ID, tag.Name); err != nil {
			return fmt.Errorf("inserting tag %d: %w", tag.ID, err)
		}
	}
	for i, f := range c.CustomFields {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO customfields (id, name, shortname, description, sortorder) VALUES (?, ?, ?, ?, ?)",
			f.ID, f.Name, f.Shortname, f.Description, i); err != nil {
			return fmt.Errorf("inserting custom field %d: %w", f.ID, err)
		}
		for j, opt := range f.Options {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO customfield_options (field_id, value, name, sortorder) VALUES (?, ?, ?, ?)",
				f.ID, opt.Value, opt.Name, j); err != nil {
				return fmt.Errorf("inserting option %q of custom field %d: %w", opt.Value, f.ID, err)
			}
		}
	}
	return nil
}

func insertCourse(ctx context.Context, tx *sql.Tx, course domain.CatalogCourse) error {
	var progress sql.NullInt64
	if course.Progress != nil {
		progress = sql.NullInt64{Int64: int64(*course.Progress), Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO courses (id, fullname, shortname, summary, category_id, startdate, enddate, visible, progress, viewurl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, course.ID, course.FullName, course.ShortName, course.Summary, course.CategoryID,
		unixOrZero(course.StartDate), unixOrZero(course.EndDate), course.Visible, progress, course.ViewURL); err != nil {
		return fmt.Errorf("inserting course %d: %w", course.ID, err)
	}

	for _, tagID := range course.TagIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO course_tags (course_id, tag_id) VALUES (?, ?)", course.ID, tagID); err != nil {
			return fmt.Errorf("tagging course %d: %w", course.ID, err)
		}
	}
	for fieldID, value := range course.CustomFields {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO customfield_data (course_id, field_id, value) VALUES (?, ?, ?)",
			course.ID, fieldID, value); err != nil {
			return fmt.Errorf("setting custom field %d of course %d: %w", fieldID, course.ID, err)
		}
	}
	if course.IsFavourite {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO favourites (course_id) VALUES (?)", course.ID); err != nil {
			return fmt.Errorf("starring course %d: %w", course.ID, err)
		}
	}
	return nil
}
