package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wordmark/app/controller"
)

type Controllers struct {
	Session  *controller.SessionController
	History  *controller.HistoryController
	Favorite *controller.FavoriteController
	Export   *controller.ExportController
	Render   *controller.RenderController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Ping endpoint
	r.Get("/ping", pingHandler)

	// Render surface page loaded by the headless browser
	r.Get("/render/{id}", controllers.Render.RenderCard)
	r.Get("/render/capture/{token}", controllers.Render.RenderCapture)

	// Preset catalog
	r.Get("/api/presets", controllers.Export.ListPresets)
	r.Get("/api/presets/{presetId}", controllers.Export.GetPreset)

	// Archive download and Drive listing
	r.Get("/api/exports", controllers.Export.ListDriveArchives)
	r.Get("/api/exports/{archiveId}", controllers.Export.DownloadArchive)

	// Sessions routes
	r.Get("/api/sessions", controllers.Session.ListSessions)
	r.Post("/api/sessions", controllers.Session.CreateSession)

	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", controllers.Session.GetSession)
		r.Delete("/", controllers.Session.DeleteSession)
		r.Put("/design", controllers.Session.UpdateDesign)

		// History routes
		r.Get("/history", controllers.History.GetHistory)
		r.Post("/history/snapshot", controllers.Session.SaveSnapshot)
		r.Post("/history/undo", controllers.History.Undo)
		r.Post("/history/redo", controllers.History.Redo)
		r.Post("/history/{index}/restore", controllers.History.RestoreVersion)
		r.Get("/history/document", controllers.History.ExportDocument)
		r.Put("/history/document", controllers.History.ImportDocument)

		// Favorites routes
		r.Get("/favorites", controllers.Favorite.ListFavorites)
		r.Post("/favorites", controllers.Favorite.AddFavorite)
		r.Post("/favorites/toggle", controllers.Favorite.ToggleFavorite)
		r.Delete("/favorites/{favoriteId}", controllers.Favorite.RemoveFavorite)
		r.Post("/favorites/{favoriteId}/restore", controllers.Favorite.RestoreFavorite)

		// Export routes
		r.Get("/export/preferences", controllers.Export.GetPreferences)
		r.Put("/export/preferences", controllers.Export.PutPreferences)
		r.Post("/export/preferences/toggle", controllers.Export.TogglePreference)
		r.Post("/export", controllers.Export.RunBatch)
		r.Get("/export/ws", controllers.Export.StreamExport)
		r.Get("/export/single", controllers.Export.ExportSingle)
	})

	return r
}
