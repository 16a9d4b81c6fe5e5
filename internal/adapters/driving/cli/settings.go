package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the course backend and the default view.

Use subcommands to change specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Configure the course backend",
	Long: `Choose where courses come from.

Available backends:
  sqlite     - Local catalog loaded with 'coursesearch catalog import'
  webservice - Remote LMS web service (requires URL and token)`,
	RunE: runSettingsBackend,
}

var settingsPageSizeCmd = &cobra.Command{
	Use:   "page-size [size]",
	Short: "Set the default page size",
	Long:  `Set the number of courses per page for new sessions. 0 shows all courses.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsPageSize,
}

var settingsDisplayCmd = &cobra.Command{
	Use:   "display [mode]",
	Short: "Set the default layout",
	Long:  `Set the result layout for new sessions: card, list or summary.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDisplay,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	settingsCmd.AddCommand(settingsPageSizeCmd)
	settingsCmd.AddCommand(settingsDisplayCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backend]")
	cmd.Printf("  Kind: %s\n", settings.Backend.Kind)
	switch settings.Backend.Kind {
	case domain.BackendWebService:
		cmd.Printf("  URL: %s\n", valueOrUnset(settings.Backend.URL))
		if settings.Backend.Token != "" {
			cmd.Printf("  Token: %s\n", maskToken(settings.Backend.Token))
		} else {
			cmd.Printf("  Token: (not set)\n")
		}
		cmd.Printf("  Requests per second: %g\n", settings.Backend.RequestsPerSecond)
	case domain.BackendSQLite:
		cmd.Printf("  Catalog: %s\n", valueOr(settings.Backend.CatalogPath, "(default)"))
	}
	status := "configured"
	if !settings.Backend.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[View]")
	cmd.Printf("  Page size: %s\n", pageSizeLabel(settings.View.PageSize))
	cmd.Printf("  Display: %s\n", settings.View.Display)
	cmd.Printf("  Sort: %s\n", settings.View.Sort)
	cmd.Printf("  Grouping: %s\n", settings.View.Progress.Description())
	cmd.Printf("  Show categories: %t\n", settings.View.ShowCategories)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Debounce: %s\n", settings.Search.Debounce())
	cmd.Printf("  Highlight tag: %s\n", settings.Search.HighlightTag)
	cmd.Printf("  Locale: %s\n", settings.Search.Locale)
	cmd.Printf("  Auto-close dropdowns: %t\n", settings.Dropdown.AutoClose)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'coursesearch settings backend' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsBackend(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Backend")
	cmd.Println("--------------")
	kinds := []domain.BackendKind{domain.BackendSQLite, domain.BackendWebService}
	for i, kind := range kinds {
		cmd.Printf("  %d. %s\n", i+1, kind)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(kinds), 1)
	kind := kinds[idx-1]

	var url, token string
	if kind == domain.BackendWebService {
		cmd.Print("Enter LMS URL: ")
		url = readLine(reader)
		if url == "" {
			return errors.New("URL is required for the web service backend")
		}
		cmd.Print("Enter web service token: ")
		token = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if token == "" {
			return errors.New("token is required for the web service backend")
		}
	}

	if err := settingsService.SetBackend(kind, url, token); err != nil {
		return fmt.Errorf("failed to configure backend: %w", err)
	}
	cmd.Printf("Backend configured: %s\n", kind)
	return nil
}

func runSettingsPageSize(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	size, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid page size %q", args[0])
	}
	if err := settingsService.SetPageSize(size); err != nil {
		return fmt.Errorf("failed to set page size: %w", err)
	}
	cmd.Printf("Page size set to: %s\n", pageSizeLabel(size))
	return nil
}

func runSettingsDisplay(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	mode := domain.DisplayMode(args[0])
	if err := settingsService.SetDisplay(mode); err != nil {
		return fmt.Errorf("failed to set display: %w", err)
	}
	cmd.Printf("Display set to: %s\n", mode)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func pageSizeLabel(size int) string {
	if size == domain.PageSizeAll {
		return "all"
	}
	return strconv.Itoa(size)
}

func valueOrUnset(s string) string {
	return valueOr(s, "(not set)")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
