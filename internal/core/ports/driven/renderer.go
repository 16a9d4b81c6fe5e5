package driven

import "github.com/custodia-labs/coursesearch/internal/core/domain"

// Renderer turns view data into markup and places it in named containers.
type Renderer interface {
	// Render renders data with the named template.
	Render(template string, data any) (domain.Rendered, error)

	// Replace swaps the content of container for r.
	Replace(container string, r domain.Rendered) error
}

// Notifier surfaces user-visible notifications.
type Notifier interface {
	Notify(n domain.Notification)
}
