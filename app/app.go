package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"wordmark/app/controller"
	"wordmark/app/router"
	"wordmark/config"
	"wordmark/db"
	"wordmark/export"
	"wordmark/repository"
	"wordmark/service"
)

// Initialize wires storage, renderers and controllers. The returned cleanup
// function flushes open sessions and releases the browser and database.
func Initialize(ctx context.Context) (http.Handler, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Initialize repository
	repo, err := newStateRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	if config.GetStorageBackend() == config.StoragePostgres {
		cleanups = append(cleanups, func() { db.CloseDB() })
	}

	// Initialize renderer
	pages := service.NewRenderPages()
	renderer, closeRenderer, err := newRenderer(pages)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, closeRenderer)

	// Initialize Drive service (optional)
	var driveService service.DriveServiceInterface
	if credentialsPath := config.GetDriveCredentials(); credentialsPath != "" && config.GetDriveFolderID() != "" {
		ds, err := service.NewDriveService(credentialsPath)
		if err != nil {
			log.Printf("⚠️  Drive upload disabled: %v", err)
		} else {
			driveService = ds
			log.Printf("✓ Drive upload enabled (folder=%s)", config.GetDriveFolderID())
		}
	}

	sessions := service.NewSessionManager(repo, service.SessionOptions{
		HistoryMax:   config.GetHistoryMaxSize(),
		Debounce:     config.GetAutosaveDebounce(),
		FavoritesMax: config.GetFavoritesMax(),
	})
	cleanups = append(cleanups, sessions.Close)

	exports := service.NewExportService(
		renderer,
		config.GetExportJobTimeout(),
		config.GetExportRetention(),
		driveService,
		config.GetDriveFolderID(),
	)
	exports.SetArchiveLimits(config.GetExportMaxArchives(), config.GetExportMaxArchiveBytes())

	// Create controllers
	controllers := &router.Controllers{
		Session:  controller.NewSessionController(sessions),
		History:  controller.NewHistoryController(sessions),
		Favorite: controller.NewFavoriteController(sessions),
		Export:   controller.NewExportController(sessions, exports),
		Render:   controller.NewRenderController(sessions, pages),
	}

	return router.SetupRoutes(controllers), cleanup, nil
}

func newStateRepository(ctx context.Context) (repository.StateRepositoryInterface, error) {
	switch backend := config.GetStorageBackend(); backend {
	case config.StoragePostgres:
		connStr, err := config.GetDatabaseConnString()
		if err != nil {
			return nil, err
		}
		// Initialize database connection
		if err := db.InitDB(ctx, connStr); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repository.NewStateRepository(), nil
	case config.StorageFile:
		repo, err := repository.NewFileStateRepository(config.GetDataDir())
		if err != nil {
			return nil, err
		}
		log.Printf("✓ Storing sessions in %s", config.GetDataDir())
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// newRenderer picks the headless browser when one is installed and falls
// back to the native canvas renderer otherwise
func newRenderer(pages *service.RenderPages) (export.Renderer, func(), error) {
	switch kind := config.GetRenderer(); kind {
	case config.RendererChrome:
		if service.ChromeAvailable(config.GetChromePath()) {
			r := service.NewChromeRenderer(config.GetBaseURL(), config.GetChromePath(), pages)
			log.Printf("✓ Using headless browser renderer (%s)", config.GetBaseURL())
			return r, r.Close, nil
		}
		log.Printf("⚠️  No Chrome/Chromium found, falling back to canvas renderer")
		fallthrough
	case config.RendererCanvas:
		r, err := service.NewCanvasRenderer()
		if err != nil {
			return nil, nil, err
		}
		log.Printf("✓ Using canvas renderer")
		return r, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown renderer: %s", kind)
	}
}
