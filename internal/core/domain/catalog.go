package domain

import (
	"fmt"
	"time"
)

// Catalog is a bulk course catalog used to seed a local backend.
type Catalog struct {
	Categories   []CatalogCategory    `json:"categories"`
	Tags         []CatalogTag         `json:"tags"`
	CustomFields []CatalogCustomField `json:"customfields"`
	Courses      []CatalogCourse      `json:"courses"`
}

// CatalogCategory is a category entry in a Catalog.
type CatalogCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// CatalogTag is a tag entry in a Catalog.
type CatalogTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CatalogCustomField is a custom field and its options.
type CatalogCustomField struct {
	ID          int                     `json:"id"`
	Name        string                  `json:"name"`
	Shortname   string                  `json:"shortname"`
	Description string                  `json:"description,omitempty"`
	Options     []CatalogCustomFieldOpt `json:"options"`
}

// CatalogCustomFieldOpt is one option of a CatalogCustomField.
type CatalogCustomFieldOpt struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CatalogCourse is a course entry in a Catalog.
type CatalogCourse struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"fullname"`
	ShortName   string    `json:"shortname"`
	Summary     string    `json:"summary,omitempty"`
	CategoryID  int64     `json:"categoryid"`
	StartDate   time.Time `json:"startdate,omitzero"`
	EndDate     time.Time `json:"enddate,omitzero"`
	Visible     bool      `json:"visible"`
	Progress    *int      `json:"progress,omitempty"`
	IsFavourite bool      `json:"isfavourite,omitempty"`
	ViewURL     string    `json:"viewurl,omitempty"`
	TagIDs      []int64   `json:"tags,omitempty"`

	// CustomFields maps custom field id to the option value of the course.
	CustomFields map[int]string `json:"customfields,omitempty"`
}

// Validate checks referential integrity of the catalog.
func (c Catalog) Validate() error {
	categories := make(map[int64]bool, len(c.Categories))
	for _, cat := range c.Categories {
		categories[cat.ID] = true
	}
	tags := make(map[int64]bool, len(c.Tags))
	for _, tag := range c.Tags {
		tags[tag.ID] = true
	}
	fields := make(map[int]bool, len(c.CustomFields))
	for _, f := range c.CustomFields {
		fields[f.ID] = true
	}
	seen := make(map[int64]bool, len(c.Courses))
	for _, course := range c.Courses {
		if course.ID <= 0 {
			return fmt.Errorf("%w: course id %d", ErrInvalidInput, course.ID)
		}
		if seen[course.ID] {
			return fmt.Errorf("%w: duplicate course id %d", ErrInvalidInput, course.ID)
		}
		seen[course.ID] = true
		if course.CategoryID != 0 && !categories[course.CategoryID] {
			return fmt.Errorf("%w: course %d references unknown category %d", ErrInvalidInput, course.ID, course.CategoryID)
		}
		for _, tagID := range course.TagIDs {
			if !tags[tagID] {
				return fmt.Errorf("%w: course %d references unknown tag %d", ErrInvalidInput, course.ID, tagID)
			}
		}
		for fieldID := range course.CustomFields {
			if !fields[fieldID] {
				return fmt.Errorf("%w: course %d references unknown custom field %d", ErrInvalidInput, course.ID, fieldID)
			}
		}
	}
	return nil
}
