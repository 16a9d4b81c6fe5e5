// Package mcp provides an MCP (Model Context Protocol) server adapter for coursesearch.
// It lets AI assistants search courses and explore facet filters.
package mcp

import "errors"

// ErrMissingSessions is returned when no search session factory is provided.
var ErrMissingSessions = errors.New("mcp: search sessions are required")
