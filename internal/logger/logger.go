// Package logger provides verbose logging for coursesearch.
// Messages are only written when verbose mode is enabled via the --verbose
// flag, so the terminal UI is never disturbed by log output. A Scope tags
// every message with the search session that produced it.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// write holds the write lock so concurrent messages never interleave.
func write(level, scope, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose {
		return
	}
	if scope != "" {
		level += " " + scope
	}
	fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write("DEBUG", "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write("INFO", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write("WARN", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Scope writes messages tagged with a fixed name, such as a session namespace.
type Scope struct {
	name string
}

// Scoped returns a Scope that tags messages with name.
func Scoped(name string) Scope {
	return Scope{name: name}
}

// Name returns the tag of the scope.
func (s Scope) Name() string {
	return s.name
}

// Debug prints a tagged message if verbose mode is enabled.
func (s Scope) Debug(format string, args ...any) {
	write("DEBUG", s.name, format, args...)
}

// Info prints a tagged informational message if verbose mode is enabled.
func (s Scope) Info(format string, args ...any) {
	write("INFO", s.name, format, args...)
}

// Warn prints a tagged warning if verbose mode is enabled.
func (s Scope) Warn(format string, args ...any) {
	write("WARN", s.name, format, args...)
}
