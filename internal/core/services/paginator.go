package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// FetchFunc fetches limit rows starting at offset. A zero limit fetches everything.
type FetchFunc func(ctx context.Context, limit, offset int) (domain.CoursePage, error)

// Paginator plans page fetches against a PageCache and applies their results.
// Every change to the query bumps its generation; responses for an older
// generation are discarded before they touch the cache. Concurrent loads of the
// same page share one backend call.
type Paginator struct {
	mu    sync.Mutex
	cache *PageCache
	gen   uint64
	group singleflight.Group

	// superseded is set while the cache still holds rows of an older query.
	// They stay readable through Page but Load never serves them.
	superseded bool
}

// NewPaginator creates a paginator for pages of limit rows.
func NewPaginator(limit int) *Paginator {
	return &Paginator{cache: NewPageCache(limit)}
}

// Generation returns the current query generation.
func (p *Paginator) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// Invalidate resets the cache and starts a new query generation.
func (p *Paginator) Invalidate() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidateLocked()
	return p.gen
}

func (p *Paginator) invalidateLocked() {
	p.cache.Reset()
	p.superseded = false
	p.gen++
	logger.Debug("Query generation %d, page cache reset", p.gen)
}

// Supersede starts a new query generation but keeps the cached pages until
// the first fetch of that generation succeeds. A failed fetch leaves the
// previous pages in place.
func (p *Paginator) Supersede() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.superseded = true
	p.gen++
	logger.Debug("Query generation %d, page cache kept until first fetch", p.gen)
	return p.gen
}

// Plan decides how page n of size rows is served. A size different from the
// cache's resets the cache first.
func (p *Paginator) Plan(n, size int) domain.FetchPlan {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resizeLocked(size)
	return p.planLocked(n)
}

func (p *Paginator) resizeLocked(size int) {
	if size == p.cache.Limit() {
		return
	}
	logger.Debug("Page size changed from %d to %d", p.cache.Limit(), size)
	p.cache.SetLimit(size)
	p.gen++
}

// planLocked serves from cache when the last page is reached, or when page n is
// full and the look-ahead page n+1 is already cached. Otherwise it fetches the
// rows page n is missing plus one look-ahead page.
func (p *Paginator) planLocked(n int) domain.FetchPlan {
	limit := p.cache.Limit()
	cached := domain.FetchPlan{Kind: domain.PlanServeCache, Page: n}

	if p.superseded {
		// Plan as if the cache were empty.
		if limit == domain.PageSizeAll {
			return domain.FetchPlan{Kind: domain.PlanFetch, Page: 0, Limit: 0, Offset: 0}
		}
		return domain.FetchPlan{Kind: domain.PlanFetch, Page: 0, Limit: 2 * limit, Offset: 0}
	}

	if last, ok := p.cache.LastPage(); ok && n >= last {
		cached.Page = last
		return cached
	}
	if limit == domain.PageSizeAll {
		if p.cache.Has(0) {
			cached.Page = 0
			return cached
		}
		return domain.FetchPlan{Kind: domain.PlanFetch, Page: 0, Limit: 0, Offset: 0}
	}

	// Pages are contiguous: fill any gap before n first.
	if first := p.cache.FirstMissing(); first < n {
		n = first
		cached.Page = n
	}

	have := p.cache.Len(n)
	if have >= limit && p.cache.Has(n+1) {
		return cached
	}

	count := limit
	if have < 0 {
		count += limit
	} else if have < limit {
		count += limit - have
	}
	return domain.FetchPlan{Kind: domain.PlanFetch, Page: n, Limit: count, Offset: p.cache.Offset()}
}

// Resize changes the page size. A different size resets the cache and starts
// a new generation. It returns the current generation.
func (p *Paginator) Resize(size int) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resizeLocked(size)
	return p.gen
}

// Load returns page n for the query of generation gen, fetching through fetch
// when the cache cannot serve it. It returns domain.ErrStaleResponse when the
// query moved past gen before or during the fetch.
func (p *Paginator) Load(ctx context.Context, gen uint64, n int, fetch FetchFunc) (domain.Page, error) {
	if n < 0 {
		return domain.Page{}, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, n)
	}

	// Each round either serves page n or fills the lowest missing page up to n+1.
	for range n + 2 {
		p.mu.Lock()
		if p.gen != gen {
			p.mu.Unlock()
			return domain.Page{}, domain.ErrStaleResponse
		}
		plan := p.planLocked(n)
		limit := p.cache.Limit()
		if plan.Kind == domain.PlanServeCache {
			page := p.pageLocked(plan.Page)
			p.mu.Unlock()
			return page, nil
		}
		p.mu.Unlock()

		if err := p.fetch(ctx, gen, limit, plan, fetch); err != nil {
			return domain.Page{}, err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageLocked(max(min(n, p.cache.FirstMissing()-1), 0)), nil
}

func (p *Paginator) fetch(ctx context.Context, gen uint64, size int, plan domain.FetchPlan, fetch FetchFunc) error {
	key := fmt.Sprintf("%d:%d:%d", gen, plan.Page, size)
	_, err, shared := p.group.Do(key, func() (any, error) {
		logger.Debug("Fetching page %d: limit=%d offset=%d", plan.Page, plan.Limit, plan.Offset)
		resp, err := fetch(ctx, plan.Limit, plan.Offset)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen != gen {
			logger.Debug("Discarding page %d of generation %d (current %d)", plan.Page, gen, p.gen)
			return nil, domain.ErrStaleResponse
		}
		if p.superseded {
			p.cache.Reset()
			p.superseded = false
			logger.Debug("Page cache reset for generation %d", gen)
		}
		if p.cache.Offset() != plan.Offset {
			// Rows were removed while the fetch was in flight; plan again.
			logger.Debug("Cursor moved from %d to %d during fetch, discarding", plan.Offset, p.cache.Offset())
			return nil, nil
		}
		p.applyLocked(plan, resp)
		return nil, nil
	})
	if shared {
		logger.Debug("Page %d load shared an in-flight fetch", plan.Page)
	}
	return err
}

// applyLocked splits fetched rows into the rest of page n and the look-ahead page n+1.
func (p *Paginator) applyLocked(plan domain.FetchPlan, resp domain.CoursePage) {
	n := plan.Page
	limit := p.cache.Limit()
	rows := resp.Courses

	exhausted := plan.Limit == 0 || len(rows) < plan.Limit || resp.NextOffset == domain.NoNextOffset

	if limit == domain.PageSizeAll {
		p.cache.Store(n, rows, resp.NextOffset)
		return
	}

	current, _ := p.cache.Get(n)
	need := max(limit-len(current), 0)
	take := min(need, len(rows))
	current = append(current, rows[:take]...)
	rest := rows[take:]
	if len(rest) > limit {
		rest = rest[:limit]
	}

	next := resp.NextOffset
	if next == domain.NoNextOffset {
		next = plan.Offset + len(rows)
	}

	switch {
	case len(rest) > 0:
		p.cache.Store(n, current, next)
		p.cache.Store(n+1, rest, next)
		if exhausted {
			p.cache.MarkLastPage(n + 1)
		}
	default:
		p.cache.Store(n, current, next)
		if exhausted {
			p.cache.MarkLastPage(n)
		}
	}
}

func (p *Paginator) pageLocked(n int) domain.Page {
	courses, _ := p.cache.Get(n)
	return domain.Page{Number: n, Courses: courses}
}

// Page returns cached page n without fetching.
func (p *Paginator) Page(n int) (domain.Page, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cache.Has(n) {
		return domain.Page{}, false
	}
	return p.pageLocked(n), true
}

// LastPage returns the final page number if it is known.
func (p *Paginator) LastPage() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.LastPage()
}

// Limit returns the current page size.
func (p *Paginator) Limit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Limit()
}

// Offset returns the backend offset of the next fetch.
func (p *Paginator) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Offset()
}

// CachedPages returns the numbers of the cached pages.
func (p *Paginator) CachedPages() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Pages()
}

// RemoveCourse removes courseID from the page holding it and rebalances.
// It returns the page the course was on.
func (p *Paginator) RemoveCourse(courseID int64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.cache.Locate(courseID)
	if !ok {
		return 0, false
	}
	return n, p.cache.RemoveRow(n, courseID)
}

// SetFavourite flips the favourite flag of every cached copy of courseID.
func (p *Paginator) SetFavourite(courseID int64, favourite bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.SetFavourite(courseID, favourite)
}

// SetHidden flips the hidden flag of every cached copy of courseID.
func (p *Paginator) SetHidden(courseID int64, hidden bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.SetHidden(courseID, hidden)
}
