package services

import (
	"maps"
	"slices"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

const unknownPage = -1

// PageCache holds fetched result pages keyed by 0-based page number.
// Pages are contiguous from 0 and only the last cached page may be short.
// When lastPage is known no page beyond it is cached.
//
// PageCache is not safe for concurrent use; Paginator serialises access.
type PageCache struct {
	limit    int
	pages    map[int][]domain.Course
	offset   int
	lastPage int
}

// NewPageCache creates an empty cache for pages of limit rows. Zero means one page of everything.
func NewPageCache(limit int) *PageCache {
	return &PageCache{
		limit:    limit,
		pages:    make(map[int][]domain.Course),
		lastPage: unknownPage,
	}
}

// Limit returns the page size the cache was built with.
func (c *PageCache) Limit() int {
	return c.limit
}

// SetLimit changes the page size. A different size resets the cache.
func (c *PageCache) SetLimit(limit int) {
	if limit == c.limit {
		return
	}
	c.Reset()
	c.limit = limit
}

// Store overwrites page n and moves the fetch cursor to nextOffset.
// A page shorter than the limit, or a NoNextOffset cursor, makes n the last page.
func (c *PageCache) Store(n int, courses []domain.Course, nextOffset int) {
	c.pages[n] = slices.Clone(courses)
	if nextOffset >= 0 {
		c.offset = nextOffset
	}
	short := c.limit != domain.PageSizeAll && len(courses) < c.limit
	if short || nextOffset == domain.NoNextOffset || c.limit == domain.PageSizeAll {
		c.MarkLastPage(n)
	}
}

// Get returns a copy of page n.
func (c *PageCache) Get(n int) ([]domain.Course, bool) {
	courses, ok := c.pages[n]
	if !ok {
		return nil, false
	}
	return slices.Clone(courses), true
}

// Has reports whether page n is cached.
func (c *PageCache) Has(n int) bool {
	_, ok := c.pages[n]
	return ok
}

// Len returns the number of rows on page n, or -1 when it is not cached.
func (c *PageCache) Len(n int) int {
	courses, ok := c.pages[n]
	if !ok {
		return -1
	}
	return len(courses)
}

// Pages returns the cached page numbers in ascending order.
func (c *PageCache) Pages() []int {
	return slices.Sorted(maps.Keys(c.pages))
}

// FirstMissing returns the lowest page number that is not cached.
func (c *PageCache) FirstMissing() int {
	n := 0
	for c.Has(n) {
		n++
	}
	return n
}

// Offset returns the backend offset the next fetch starts at.
func (c *PageCache) Offset() int {
	return c.offset
}

// LastPage returns the final page number if it is known.
func (c *PageCache) LastPage() (int, bool) {
	return c.lastPage, c.lastPage != unknownPage
}

// MarkLastPage records n as the final page and drops any page beyond it.
func (c *PageCache) MarkLastPage(n int) {
	c.lastPage = n
	for page := range c.pages {
		if page > n {
			delete(c.pages, page)
		}
	}
}

// Reset clears every page and the cursor state.
func (c *PageCache) Reset() {
	c.pages = make(map[int][]domain.Course)
	c.offset = 0
	c.lastPage = unknownPage
}

// Locate returns the page holding courseID.
func (c *PageCache) Locate(courseID int64) (int, bool) {
	for _, n := range c.Pages() {
		if slices.ContainsFunc(c.pages[n], func(course domain.Course) bool { return course.ID == courseID }) {
			return n, true
		}
	}
	return 0, false
}

// RemoveRow deletes courseID from page n and rebalances forward: every later
// non-empty cached page donates its first row to the non-empty page before it. Pages emptied by the
// shift are dropped and lastPage follows the last remaining page. The fetch
// cursor moves back by one. It reports false when the course is not on page n.
func (c *PageCache) RemoveRow(n int, courseID int64) bool {
	rows, ok := c.pages[n]
	if !ok {
		return false
	}
	idx := slices.IndexFunc(rows, func(course domain.Course) bool { return course.ID == courseID })
	if idx < 0 {
		return false
	}
	c.pages[n] = slices.Delete(slices.Clone(rows), idx, idx+1)

	// Empty pages in the chain neither donate nor receive.
	k := n
	for j := n + 1; ; j++ {
		next, ok := c.pages[j]
		if !ok {
			break
		}
		if len(next) == 0 {
			continue
		}
		c.pages[k] = append(c.pages[k], next[0])
		c.pages[j] = slices.Clone(next[1:])
		k = j
	}

	// Drop trailing pages the shift emptied. Page 0 always stays.
	highest := slices.Max(c.Pages())
	for highest > 0 && len(c.pages[highest]) == 0 {
		delete(c.pages, highest)
		highest--
	}
	if c.lastPage != unknownPage && c.lastPage > highest {
		logger.Debug("Last page moved from %d to %d after removing course %d", c.lastPage, highest, courseID)
		c.lastPage = highest
	}

	if c.offset > 0 {
		c.offset--
	}
	return true
}

// SetFavourite flips the favourite flag on every cached copy of courseID.
// It returns the number of copies updated.
func (c *PageCache) SetFavourite(courseID int64, favourite bool) int {
	return c.update(courseID, func(course *domain.Course) { course.IsFavourite = favourite })
}

// SetHidden flips the hidden flag on every cached copy of courseID.
func (c *PageCache) SetHidden(courseID int64, hidden bool) int {
	return c.update(courseID, func(course *domain.Course) { course.Hidden = hidden })
}

func (c *PageCache) update(courseID int64, apply func(*domain.Course)) int {
	updated := 0
	for _, rows := range c.pages {
		for i := range rows {
			if rows[i].ID == courseID {
				apply(&rows[i])
				updated++
			}
		}
	}
	return updated
}
