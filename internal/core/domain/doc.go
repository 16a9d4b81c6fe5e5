// Package domain defines the core entities of the course search engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Course: A course record as returned by the backend
//   - FacetKey, FacetItem, FacetSnapshot: Filter facet state
//   - SearchRequest: The immutable query handed to a CourseSearchService
//   - Page, FetchPlan: Paging state
//   - AppSettings: User-facing configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
