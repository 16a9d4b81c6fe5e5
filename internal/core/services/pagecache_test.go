package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func coursesWithIDs(ids ...int64) []domain.Course {
	out := make([]domain.Course, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Course{ID: id})
	}
	return out
}

func rangeCourses(from, to int64) []domain.Course {
	return coursesWithIDs(idRange(from, to)...)
}

func pageIDs(t *testing.T, c *PageCache, n int) []int64 {
	t.Helper()
	courses, ok := c.Get(n)
	require.True(t, ok, "page %d not cached", n)
	return courseIDsOf(courses)
}

func TestPageCache_StoreShortPageIsLast(t *testing.T) {
	c := NewPageCache(12)
	c.Store(0, rangeCourses(1, 12), 12)
	c.Store(1, rangeCourses(13, 20), 20)

	last, ok := c.LastPage()
	assert.True(t, ok)
	assert.Equal(t, 1, last)
	assert.Equal(t, 20, c.Offset())
	assert.Equal(t, []int{0, 1}, c.Pages())
}

func TestPageCache_StoreFullPageKeepsLastUnknown(t *testing.T) {
	c := NewPageCache(12)
	c.Store(0, rangeCourses(1, 12), 12)

	_, ok := c.LastPage()
	assert.False(t, ok)
	assert.Equal(t, 1, c.FirstMissing())
}

func TestPageCache_NoNextOffsetMarksLast(t *testing.T) {
	c := NewPageCache(12)
	c.Store(0, rangeCourses(1, 12), domain.NoNextOffset)

	last, ok := c.LastPage()
	assert.True(t, ok)
	assert.Zero(t, last)
	assert.Zero(t, c.Offset())
}

func TestPageCache_MarkLastPageDropsLaterPages(t *testing.T) {
	c := NewPageCache(2)
	c.Store(0, rangeCourses(1, 2), 2)
	c.Store(1, rangeCourses(3, 4), 4)
	c.Store(2, rangeCourses(5, 6), 6)

	c.MarkLastPage(1)

	assert.Equal(t, []int{0, 1}, c.Pages())
	assert.False(t, c.Has(2))
}

func TestPageCache_SetLimitResets(t *testing.T) {
	c := NewPageCache(12)
	c.Store(0, rangeCourses(1, 5), 5)

	c.SetLimit(12)
	assert.True(t, c.Has(0))

	c.SetLimit(24)
	assert.False(t, c.Has(0))
	assert.Zero(t, c.Offset())
	_, ok := c.LastPage()
	assert.False(t, ok)
	assert.Equal(t, 24, c.Limit())
}

func TestPageCache_GetReturnsCopy(t *testing.T) {
	c := NewPageCache(12)
	c.Store(0, rangeCourses(1, 3), 3)

	courses, _ := c.Get(0)
	courses[0].ID = 99

	assert.Equal(t, []int64{1, 2, 3}, pageIDs(t, c, 0))
}

func TestPageCache_RemoveRowRebalances(t *testing.T) {
	// 20 results, 12 per page: hiding a course on page 0 pulls
	// the first course of page 1 forward.
	c := NewPageCache(12)
	c.Store(0, rangeCourses(1, 12), 12)
	c.Store(1, rangeCourses(13, 20), 20)

	require.True(t, c.RemoveRow(0, 5))

	want := append(idRange(1, 4), idRange(6, 13)...)
	assert.Equal(t, want, pageIDs(t, c, 0))
	assert.Equal(t, idRange(14, 20), pageIDs(t, c, 1))
	assert.Equal(t, 19, c.Offset())
	last, _ := c.LastPage()
	assert.Equal(t, 1, last)
}

func TestPageCache_RemoveRowDropsEmptiedLastPage(t *testing.T) {
	c := NewPageCache(2)
	c.Store(0, rangeCourses(1, 2), 2)
	c.Store(1, coursesWithIDs(3), 3)

	require.True(t, c.RemoveRow(0, 1))

	assert.Equal(t, []int64{2, 3}, pageIDs(t, c, 0))
	assert.False(t, c.Has(1))
	last, ok := c.LastPage()
	assert.True(t, ok)
	assert.Zero(t, last)
}

func TestPageCache_RemoveRowKeepsPageZero(t *testing.T) {
	c := NewPageCache(2)
	c.Store(0, coursesWithIDs(1), 1)

	require.True(t, c.RemoveRow(0, 1))

	assert.True(t, c.Has(0))
	assert.Empty(t, pageIDs(t, c, 0))
	assert.Zero(t, c.Offset())
}

func TestPageCache_RemoveRowUnknown(t *testing.T) {
	c := NewPageCache(2)
	c.Store(0, rangeCourses(1, 2), 2)

	assert.False(t, c.RemoveRow(0, 9))
	assert.False(t, c.RemoveRow(3, 1))
	assert.Equal(t, 2, c.Offset())
}

func TestPageCache_RemoveRowTwiceMatchesBackendWindow(t *testing.T) {
	c := NewPageCache(3)
	c.Store(0, rangeCourses(1, 3), 3)
	c.Store(1, rangeCourses(4, 6), 6)

	require.True(t, c.RemoveRow(0, 2))
	require.True(t, c.RemoveRow(1, 5))

	assert.Equal(t, []int64{1, 3, 4}, pageIDs(t, c, 0))
	assert.Equal(t, []int64{6}, pageIDs(t, c, 1))
	// Two rows left the result set, so the next window starts two earlier.
	assert.Equal(t, 4, c.Offset())
}

func TestPageCache_RemoveRowBorrowsPastEmptyPage(t *testing.T) {
	c := NewPageCache(3)
	c.Store(0, rangeCourses(1, 3), 3)
	c.Store(1, rangeCourses(4, 6), 6)
	c.Store(2, rangeCourses(7, 9), 9)
	c.pages[1] = []domain.Course{}

	require.True(t, c.RemoveRow(0, 2))

	assert.Equal(t, []int64{1, 3, 7}, pageIDs(t, c, 0))
	assert.Empty(t, pageIDs(t, c, 1))
	assert.Equal(t, []int64{8, 9}, pageIDs(t, c, 2))
	assert.Equal(t, 8, c.Offset())
}

func TestPageCache_Locate(t *testing.T) {
	c := NewPageCache(2)
	c.Store(0, rangeCourses(1, 2), 2)
	c.Store(1, rangeCourses(3, 4), 4)

	n, ok := c.Locate(4)
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = c.Locate(9)
	assert.False(t, ok)
}

func TestPageCache_SetFavouriteUpdatesCopies(t *testing.T) {
	c := NewPageCache(2)
	c.Store(0, rangeCourses(1, 2), 2)

	assert.Equal(t, 1, c.SetFavourite(2, true))
	assert.Zero(t, c.SetFavourite(9, true))
	assert.Equal(t, 1, c.SetHidden(1, true))

	courses, _ := c.Get(0)
	assert.True(t, courses[1].IsFavourite)
	assert.True(t, courses[0].Hidden)
}

func TestPageCache_ShowAll(t *testing.T) {
	c := NewPageCache(domain.PageSizeAll)
	c.Store(0, rangeCourses(1, 40), 40)

	last, ok := c.LastPage()
	assert.True(t, ok)
	assert.Zero(t, last)
}
