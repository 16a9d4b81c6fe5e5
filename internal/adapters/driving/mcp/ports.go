package mcp

import (
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
)

// SessionFactory opens a fresh search session. Every tool call and resource
// read uses its own session and closes it when done.
type SessionFactory func() (driving.CourseSearch, error)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sessions opens search sessions.
	Sessions SessionFactory
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessions
	}
	return nil
}
