package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local course catalog",
	Long: `Load and inspect the course catalog used by the sqlite backend.

A catalog is a JSON document with categories, tags, customfields
and courses. Importing replaces the stored catalog.`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a catalog from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogImport,
}

var catalogCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of courses in the catalog",
	RunE:  runCatalogCount,
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogCountCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured (use the sqlite backend)")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	var catalog domain.Catalog
	if err := json.NewDecoder(f).Decode(&catalog); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := catalogService.Import(cmd.Context(), catalog); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d courses, %d categories, %d tags and %d custom fields.\n",
		len(catalog.Courses), len(catalog.Categories), len(catalog.Tags), len(catalog.CustomFields))
	return nil
}

func runCatalogCount(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured (use the sqlite backend)")
	}
	n, err := catalogService.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("count failed: %w", err)
	}
	cmd.Printf("%d courses\n", n)
	return nil
}
