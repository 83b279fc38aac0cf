package controller

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"wordmark/export"
	"wordmark/models"
	"wordmark/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// exportMessage is exchanged over the export progress socket.
// Client: start, cancel. Server: progress, done, error.
type exportMessage struct {
	Type     string                      `json:"type"`
	Presets  []string                    `json:"presets,omitempty"`
	Formats  []string                    `json:"formats,omitempty"`
	Progress *models.BatchExportProgress `json:"progress,omitempty"`
	Result   *service.BatchResponse      `json:"result,omitempty"`
	Error    string                      `json:"error,omitempty"`
}

// ExportController handles presets, export preferences and exports
type ExportController struct {
	sessions *service.SessionManager
	exports  *service.ExportService
}

// NewExportController creates a new ExportController
func NewExportController(sessions *service.SessionManager, exports *service.ExportService) *ExportController {
	return &ExportController{
		sessions: sessions,
		exports:  exports,
	}
}

// ListPresets handles GET /api/presets?category=social
// Without a category the catalog is returned grouped by category
func (c *ExportController) ListPresets(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"categories": export.Grouped(),
			"formats":    models.DownloadFormats,
		})
		return
	}

	pc := models.PresetCategory(category)
	if !pc.Valid() {
		http.Error(w, fmt.Sprintf("Invalid category: %s", category), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"category": pc,
		"label":    pc.Label(),
		"presets":  export.PresetsByCategory(pc),
	})
}

// GetPreset handles GET /api/presets/{presetId}
func (c *ExportController) GetPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "presetId")
	preset, ok := export.PresetByID(id)
	if !ok {
		http.Error(w, fmt.Sprintf("Preset not found: %s", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

// GetPreferences handles GET /api/sessions/{id}/export/preferences
func (c *ExportController) GetPreferences(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Preferences())
}

// PutPreferences handles PUT /api/sessions/{id}/export/preferences
func (c *ExportController) PutPreferences(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	var prefs models.ExportPreferences
	if !decodeJSON(w, r, &prefs) {
		return
	}
	if _, err := export.ResolvePresets(prefs.SelectedPresets); err != nil {
		writeError(w, "PutPreferences", err)
		return
	}

	saved, err := s.SetPreferences(prefs)
	if err != nil {
		writeError(w, "PutPreferences", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type toggleRequest struct {
	Format   string `json:"format,omitempty"`
	Preset   string `json:"preset,omitempty"`
	Category string `json:"category,omitempty"`
}

// TogglePreference handles POST /api/sessions/{id}/export/preferences/toggle
// Exactly one of format, preset or category is toggled
func (c *ExportController) TogglePreference(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var toggle func(models.ExportPreferences) models.ExportPreferences
	switch {
	case req.Format != "":
		f, err := models.ParseDownloadFormat(req.Format)
		if err != nil {
			writeError(w, "TogglePreference", err)
			return
		}
		toggle = func(p models.ExportPreferences) models.ExportPreferences { return p.ToggleFormat(f) }
	case req.Preset != "":
		if _, ok := export.PresetByID(req.Preset); !ok {
			http.Error(w, fmt.Sprintf("Preset not found: %s", req.Preset), http.StatusBadRequest)
			return
		}
		toggle = func(p models.ExportPreferences) models.ExportPreferences { return p.TogglePreset(req.Preset) }
	case req.Category != "":
		pc := models.PresetCategory(req.Category)
		if !pc.Valid() {
			http.Error(w, fmt.Sprintf("Invalid category: %s", req.Category), http.StatusBadRequest)
			return
		}
		toggle = func(p models.ExportPreferences) models.ExportPreferences { return export.ToggleCategory(p, pc) }
	default:
		http.Error(w, "format, preset or category is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.UpdatePreferences(toggle))
}

// RunBatch handles POST /api/sessions/{id}/export
// Renders every selected preset and format and returns the per-item results
// with the archive download path
func (c *ExportController) RunBatch(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	var req service.BatchRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	resp, err := c.exports.RunBatch(r.Context(), s, req, nil)
	if err != nil {
		writeError(w, "RunBatch", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// StreamExport handles GET /api/sessions/{id}/export/ws
// The client sends a start message, receives one progress message per item
// and a final done or error message. A cancel message or a closed socket
// stops the batch between items.
func (c *ExportController) StreamExport(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WS upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes
	var writeMu sync.Mutex
	writeMsg := func(msg exportMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	var start exportMessage
	if err := conn.ReadJSON(&start); err != nil {
		return
	}
	if start.Type != "start" {
		writeMsg(exportMessage{Type: "error", Error: fmt.Sprintf("expected start message, got %q", start.Type)}) //nolint:errcheck
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// watch for cancel messages and disconnects while the batch runs
	go func() {
		for {
			var msg exportMessage
			if err := conn.ReadJSON(&msg); err != nil {
				cancel()
				return
			}
			if msg.Type == "cancel" {
				log.Printf("⚠️  Export for session %s canceled by client", s.ID())
				cancel()
			}
		}
	}()

	req := service.BatchRequest{Presets: start.Presets, Formats: start.Formats}
	resp, err := c.exports.RunBatch(ctx, s, req, func(p models.BatchExportProgress) {
		progress := p
		if err := writeMsg(exportMessage{Type: "progress", Progress: &progress}); err != nil {
			cancel()
		}
	})
	if err != nil {
		log.Printf("❌ StreamExport: %v", err)
		writeMsg(exportMessage{Type: "error", Error: err.Error()}) //nolint:errcheck
		return
	}
	writeMsg(exportMessage{Type: "done", Result: resp}) //nolint:errcheck
}

// DownloadArchive handles GET /api/exports/{archiveId}
func (c *ExportController) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	archive, err := c.exports.Archive(chi.URLParam(r, "archiveId"))
	if err != nil {
		writeError(w, "DownloadArchive", err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", archive.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(archive.Data); err != nil {
		log.Printf("❌ DownloadArchive: Error writing response: %v", err)
	}
}

// ListDriveArchives handles GET /api/exports
// Lists the archives uploaded to Google Drive
func (c *ExportController) ListDriveArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := c.exports.DriveArchives()
	if err != nil {
		writeError(w, "ListDriveArchives", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"archives": archives,
		"count":    len(archives),
	})
}

// ExportSingle handles GET /api/sessions/{id}/export/single?format=png&scale=2
func (c *ExportController) ExportSingle(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	rawFormat := r.URL.Query().Get("format")
	if rawFormat == "" {
		rawFormat = string(models.FormatPNG)
	}
	format, err := models.ParseDownloadFormat(rawFormat)
	if err != nil {
		writeError(w, "ExportSingle", err)
		return
	}

	scale := 0.0
	if raw := r.URL.Query().Get("scale"); raw != "" {
		scale, err = strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 || scale > 8 {
			http.Error(w, "Invalid scale", http.StatusBadRequest)
			return
		}
	}

	out, err := c.exports.ExportSingle(r.Context(), s, format, scale)
	if err != nil {
		writeError(w, "ExportSingle", err)
		return
	}

	w.Header().Set("Content-Type", out.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(out.Data); err != nil {
		log.Printf("❌ ExportSingle: Error writing response: %v", err)
	}
}
