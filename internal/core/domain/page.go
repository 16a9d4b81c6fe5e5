package domain

// PageSizeAll is the page size meaning "all courses on one page".
const PageSizeAll = 0

// DefaultPageSizes are the sizes offered in the paging bar.
var DefaultPageSizes = []int{12, 24, 48, 96, PageSizeAll}

// MaxCoursesForShowAll is the course count above which "all" is not offered.
const MaxCoursesForShowAll = 100

// PageSizeOptions returns the page sizes worth offering for total courses.
// A size is offered only when it is smaller than total. "All" is offered
// only when total does not exceed MaxCoursesForShowAll.
func PageSizeOptions(sizes []int, total int) []int {
	var out []int
	for _, size := range sizes {
		if size == PageSizeAll && total > MaxCoursesForShowAll {
			continue
		}
		if size < total {
			out = append(out, size)
		}
	}
	return out
}

// Page is one cached page of results. Number is 0-based.
type Page struct {
	Number  int
	Courses []Course
}

// IsFull reports whether the page holds limit rows. Every page is full when limit is zero.
func (p Page) IsFull(limit int) bool {
	return limit == PageSizeAll || len(p.Courses) >= limit
}

// NoNextOffset is the NextOffset a backend reports when the result set is exhausted.
const NoNextOffset = -1

// PlanKind distinguishes cache hits from backend fetches.
type PlanKind int

// Available plan kinds.
const (
	// PlanServeCache means the page is answered from the cache.
	PlanServeCache PlanKind = iota

	// PlanFetch means a backend call is needed.
	PlanFetch
)

// String returns the string representation.
func (k PlanKind) String() string {
	if k == PlanFetch {
		return "fetch"
	}
	return "cache"
}

// FetchPlan is the Paginator's decision for one page request.
type FetchPlan struct {
	Kind PlanKind

	// Page is the page the plan fills. Gaps before a requested page are filled first.
	Page int

	// Limit is the number of rows to fetch. Zero means all.
	Limit int

	// Offset is where the fetch starts.
	Offset int
}
