// Package cli implements the coursesearch command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/render"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

// SearchFactory creates a search session that renders into r and reports
// failures to n.
type SearchFactory func(settings domain.AppSettings, r driven.Renderer, n driven.Notifier) driving.CourseSearch

// Services used by the commands. They are injected by main.
var (
	settingsService driving.SettingsService
	catalogService  driving.CatalogService
	searchFactory   SearchFactory
)

var rootCmd = &cobra.Command{
	Use:   "coursesearch",
	Short: "Faceted course search for the terminal",
	Long: `coursesearch finds courses by name, category, tag and custom field.

It talks to an LMS web service or searches a local catalog, pages through
the results and remembers your page size and hidden courses.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetSettingsService sets the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetCatalogService sets the catalog service. It is nil for remote backends.
func SetCatalogService(s driving.CatalogService) {
	catalogService = s
}

// SetSearchFactory sets the factory used to open search sessions.
func SetSearchFactory(f SearchFactory) {
	searchFactory = f
}

// currentSettings returns the stored settings, or the defaults when no
// settings service is configured.
func currentSettings() (domain.AppSettings, error) {
	if settingsService == nil {
		return domain.DefaultAppSettings(), nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return *settings, nil
}

// openSearch starts a search session that renders into a terminal renderer.
func openSearch(settings domain.AppSettings) (driving.CourseSearch, *render.Terminal, error) {
	if searchFactory == nil {
		return nil, nil, errors.New("search service not configured")
	}
	terminal := render.NewTerminal(
		render.WithWidth(terminalWidth()),
		render.WithHighlightTag(settings.Search.HighlightTag),
	)
	return searchFactory(settings, terminal, terminal), terminal, nil
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return render.DefaultWidth
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return render.DefaultWidth
	}
	return width
}
