package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

func fetchFrom(backend *mockBackend) FetchFunc {
	return func(ctx context.Context, limit, offset int) (domain.CoursePage, error) {
		return backend.SearchCourses(ctx, domain.SearchRequest{Progress: domain.ProgressAll, Limit: limit, Offset: offset})
	}
}

func TestPaginator_FirstLoadFetchesLookAhead(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)

	page, err := p.Load(context.Background(), p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	assert.Equal(t, 0, page.Number)
	assert.Equal(t, idRange(1, 12), courseIDsOf(page.Courses))
	assert.Equal(t, []fetchCall{{Limit: 24, Offset: 0}}, backend.fetches())
	assert.Equal(t, []int{0, 1}, p.CachedPages())
	_, known := p.LastPage()
	assert.False(t, known)
}

func TestPaginator_NextPageServedFromLookAhead(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)
	ctx := context.Background()

	_, err := p.Load(ctx, p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	page, err := p.Load(ctx, p.Generation(), 1, fetchFrom(backend))
	require.NoError(t, err)
	assert.Equal(t, idRange(13, 24), courseIDsOf(page.Courses))

	// Page 1 was cached but page 2 was not, so one more page was fetched.
	assert.Equal(t, []fetchCall{{Limit: 24, Offset: 0}, {Limit: 12, Offset: 24}}, backend.fetches())
	last, known := p.LastPage()
	assert.True(t, known)
	assert.Equal(t, 2, last)

	page, err = p.Load(ctx, p.Generation(), 2, fetchFrom(backend))
	require.NoError(t, err)
	assert.Equal(t, idRange(25, 30), courseIDsOf(page.Courses))
	assert.Len(t, backend.fetches(), 2)
}

func TestPaginator_ShortResultSet(t *testing.T) {
	backend := newMockBackend(20)
	p := NewPaginator(12)

	page, err := p.Load(context.Background(), p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	assert.Len(t, page.Courses, 12)
	last, known := p.LastPage()
	assert.True(t, known)
	assert.Equal(t, 1, last)
	assert.Equal(t, 20, p.Offset())
}

func TestPaginator_PageBeyondLastServesLast(t *testing.T) {
	backend := newMockBackend(5)
	p := NewPaginator(2)
	ctx := context.Background()

	page, err := p.Load(ctx, p.Generation(), 10, fetchFrom(backend))
	require.NoError(t, err)

	assert.Equal(t, 2, page.Number)
	assert.Equal(t, []int64{5}, courseIDsOf(page.Courses))
}

func TestPaginator_GapIsFilledInOrder(t *testing.T) {
	backend := newMockBackend(20)
	p := NewPaginator(2)

	page, err := p.Load(context.Background(), p.Generation(), 3, fetchFrom(backend))
	require.NoError(t, err)

	assert.Equal(t, 3, page.Number)
	assert.Equal(t, []int64{7, 8}, courseIDsOf(page.Courses))
	assert.Equal(t, []fetchCall{
		{Limit: 4, Offset: 0},
		{Limit: 4, Offset: 4},
		{Limit: 2, Offset: 8},
	}, backend.fetches())
}

func TestPaginator_ShowAll(t *testing.T) {
	backend := newMockBackend(40)
	p := NewPaginator(domain.PageSizeAll)

	page, err := p.Load(context.Background(), p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	assert.Len(t, page.Courses, 40)
	assert.Equal(t, []fetchCall{{Limit: 0, Offset: 0}}, backend.fetches())
	last, known := p.LastPage()
	assert.True(t, known)
	assert.Zero(t, last)
}

func TestPaginator_ResizeResetsCache(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)
	ctx := context.Background()

	_, err := p.Load(ctx, p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)
	gen := p.Generation()

	assert.Equal(t, gen, p.Resize(12))
	newGen := p.Resize(24)
	assert.Greater(t, newGen, gen)
	assert.Empty(t, p.CachedPages())
	assert.Equal(t, 24, p.Limit())

	plan := p.Plan(0, 24)
	assert.Equal(t, domain.FetchPlan{Kind: domain.PlanFetch, Page: 0, Limit: 48, Offset: 0}, plan)
}

func TestPaginator_ShortCachedPageFetchesRemainder(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)
	ctx := context.Background()

	_, err := p.Load(ctx, p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	// Removing a row from page 0 shortens page 1 by one.
	_, ok := p.RemoveCourse(3)
	require.True(t, ok)
	backend.remove(3)

	plan := p.Plan(1, 12)
	assert.Equal(t, domain.FetchPlan{Kind: domain.PlanFetch, Page: 1, Limit: 13, Offset: 23}, plan)

	page, err := p.Load(ctx, p.Generation(), 1, fetchFrom(backend))
	require.NoError(t, err)
	assert.Equal(t, idRange(14, 25), courseIDsOf(page.Courses))
	next, ok := p.Page(2)
	require.True(t, ok)
	assert.Equal(t, idRange(26, 30), courseIDsOf(next.Courses))
}

func TestPaginator_StaleGenerationRejected(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)
	gen := p.Generation()
	p.Invalidate()

	_, err := p.Load(context.Background(), gen, 0, fetchFrom(backend))
	assert.ErrorIs(t, err, domain.ErrStaleResponse)
	assert.Empty(t, backend.fetches())
}

func TestPaginator_ResponseOfOldGenerationDiscarded(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)

	fetch := func(ctx context.Context, limit, offset int) (domain.CoursePage, error) {
		// The query changes while this request is in flight.
		p.Invalidate()
		return fetchFrom(backend)(ctx, limit, offset)
	}

	_, err := p.Load(context.Background(), p.Generation(), 0, fetch)
	assert.ErrorIs(t, err, domain.ErrStaleResponse)
	assert.Empty(t, p.CachedPages())
}

func TestPaginator_FetchErrorLeavesCacheUntouched(t *testing.T) {
	backend := newMockBackend(30)
	backend.searchErr = errors.New("connection refused")
	p := NewPaginator(12)

	_, err := p.Load(context.Background(), p.Generation(), 0, fetchFrom(backend))
	require.Error(t, err)
	assert.Empty(t, p.CachedPages())
	assert.Zero(t, p.Offset())
}

func TestPaginator_SupersedeKeepsPagesUntilFetchSucceeds(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)
	_, err := p.Load(context.Background(), p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	gen := p.Supersede()
	backend.searchErr = errors.New("connection refused")
	_, err = p.Load(context.Background(), gen, 0, fetchFrom(backend))
	require.Error(t, err)

	assert.Equal(t, []int{0, 1}, p.CachedPages())
	page, ok := p.Page(0)
	require.True(t, ok)
	assert.Equal(t, idRange(1, 12), courseIDsOf(page.Courses))

	backend.searchErr = nil
	backend.remove(1)
	page, err = p.Load(context.Background(), gen, 0, fetchFrom(backend))
	require.NoError(t, err)
	assert.Equal(t, idRange(2, 13), courseIDsOf(page.Courses))
	assert.Equal(t, []fetchCall{{Limit: 24}, {Limit: 24}, {Limit: 24}}, backend.fetches())
}

func TestPaginator_SupersededPagesNotServed(t *testing.T) {
	backend := newMockBackend(30)
	p := NewPaginator(12)
	_, err := p.Load(context.Background(), p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	gen := p.Supersede()
	page, err := p.Load(context.Background(), gen, 1, fetchFrom(backend))
	require.NoError(t, err)

	assert.Equal(t, idRange(13, 24), courseIDsOf(page.Courses))
	assert.Equal(t, []fetchCall{{Limit: 24}, {Limit: 24}, {Limit: 12, Offset: 24}}, backend.fetches())
}

func TestPaginator_ConcurrentLoadsShareFetch(t *testing.T) {
	backend := newMockBackend(30)
	backend.block = make(chan struct{})
	backend.started = make(chan struct{}, 4)
	p := NewPaginator(12)
	gen := p.Generation()

	var calls atomic.Int32
	fetch := func(ctx context.Context, limit, offset int) (domain.CoursePage, error) {
		calls.Add(1)
		return fetchFrom(backend)(ctx, limit, offset)
	}

	var wg sync.WaitGroup
	results := make([]domain.Page, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = p.Load(context.Background(), gen, 0, fetch)
		}()
		if i == 0 {
			<-backend.started
		}
	}
	time.Sleep(50 * time.Millisecond)
	close(backend.block)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, idRange(1, 12), courseIDsOf(results[1].Courses))
}

func TestPaginator_InvalidPage(t *testing.T) {
	p := NewPaginator(12)

	_, err := p.Load(context.Background(), p.Generation(), -1, fetchFrom(newMockBackend(1)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPaginator_SetFavouriteAndHidden(t *testing.T) {
	backend := newMockBackend(5)
	p := NewPaginator(12)
	_, err := p.Load(context.Background(), p.Generation(), 0, fetchFrom(backend))
	require.NoError(t, err)

	assert.Equal(t, 1, p.SetFavourite(2, true))
	assert.Equal(t, 1, p.SetHidden(3, true))

	page, ok := p.Page(0)
	require.True(t, ok)
	assert.True(t, page.Courses[1].IsFavourite)
	assert.True(t, page.Courses[2].Hidden)
}
