// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CourseSearchService: Course queries and facet candidate lookups
//   - PreferenceStore: Hidden-course and paging preferences
//   - Renderer: Template rendering into named containers
//   - Notifier: User-visible notifications
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - ConfigWatcher: Live reload of the configuration file
//   - CatalogStore: Bulk import into a local catalog backend
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
