// Command coursesearch is a faceted course search for the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/coursesearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursesearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/coursesearch/internal/adapters/driven/webservice"
	"github.com/custodia-labs/coursesearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
	"github.com/custodia-labs/coursesearch/internal/core/ports/driving"
	"github.com/custodia-labs/coursesearch/internal/core/services"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	store, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(store)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	backend, err := openBackend(settings.Backend)
	if err != nil {
		// Settings must stay reachable so a broken backend can be fixed.
		logger.Warn("backend unavailable: %v", err)
	} else {
		defer backend.close()
		cli.SetSearchFactory(func(s domain.AppSettings, r driven.Renderer, n driven.Notifier) driving.CourseSearch {
			return services.NewOrchestrator(backend.courses, backend.prefs, r, n, s)
		})
		if backend.catalog != nil {
			cli.SetCatalogService(services.NewCatalogService(backend.catalog))
		}
	}

	cli.SetSettingsService(settingsService)
	cli.SetConfigWatcher(file.NewWatcher(store))
	cli.SetVersion(version)

	return cli.Execute()
}

// backend bundles the driven ports of the configured course source.
type backend struct {
	courses driven.CourseSearchService
	prefs   driven.PreferenceStore
	catalog driven.CatalogStore
	close   func()
}

func openBackend(cfg domain.BackendSettings) (*backend, error) {
	switch cfg.Kind {
	case domain.BackendWebService:
		client, err := webservice.NewClient(webservice.Config{
			BaseURL:           cfg.URL,
			Token:             cfg.Token,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		return &backend{
			courses: webservice.NewCourseService(client),
			prefs:   webservice.NewPreferenceStore(client),
			close:   func() {},
		}, nil

	case domain.BackendSQLite:
		var (
			db  *sqlite.Store
			err error
		)
		if cfg.CatalogPath != "" {
			db, err = sqlite.OpenFile(cfg.CatalogPath)
		} else {
			db, err = sqlite.NewStore("")
		}
		if err != nil {
			return nil, err
		}
		return &backend{
			courses: db.Courses(),
			prefs:   db.Preferences(),
			catalog: db.Catalog(),
			close:   func() { _ = db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("%w: backend kind %q", domain.ErrInvalidInput, cfg.Kind)
	}
}
