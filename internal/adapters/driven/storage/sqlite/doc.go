// Package sqlite provides the local course catalog backend on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements several driven ports
// through a single database connection:
//
//   - CourseSearchService: Filtered, paged course queries and facet candidates
//   - CatalogStore: Bulk catalog import
//   - PreferenceStore: Hidden-course and paging preferences
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.coursesearch/data/catalog.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
