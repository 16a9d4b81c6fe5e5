package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/core/services"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// configWatcher reports settings edited outside the process. Optional.
var configWatcher driven.ConfigWatcher

// SetConfigWatcher sets the watcher the TUI uses to pick up edited settings.
func SetConfigWatcher(w driven.ConfigWatcher) {
	configWatcher = w
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for coursesearch.

The TUI searches as you type, narrows the result with facet filters
and pages through the courses with keyboard navigation.

Controls:
  tab      - Cycle search box, filters and courses
  ↑/k, ↓/j - Navigate courses or filter options
  ←/h, →/l - Previous or next page
  Enter    - Search / Open filter / Select
  Esc      - Back / Close filter
  ,        - Settings
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	search, terminal, err := openSearch(settings)
	if err != nil {
		return err
	}
	defer search.Close()

	ports := tui.NewPorts(search, terminal, settingsService)
	ports.Actions = services.NewCourseActionService(settings.Backend.URL)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.WithContext(ctx)

	// Silence log output while the alternate screen is active.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	p := app.Program()
	if configWatcher != nil {
		go func() {
			onChange := func() { p.Send(messages.SettingsChanged{}) }
			if err := configWatcher.Watch(ctx, onChange); err != nil {
				logger.Warn("settings watcher stopped: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
