package controller

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wordmark/export"
	"wordmark/service"
)

// HistoryController handles undo/redo, version restore and history documents
type HistoryController struct {
	sessions *service.SessionManager
}

// NewHistoryController creates a new HistoryController
func NewHistoryController(sessions *service.SessionManager) *HistoryController {
	return &HistoryController{
		sessions: sessions,
	}
}

// GetHistory handles GET /api/sessions/{id}/history
func (c *HistoryController) GetHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.History())
}

// Undo handles POST /api/sessions/{id}/history/undo
// An empty undo stack is not an error: the state comes back unchanged
func (c *HistoryController) Undo(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	view, changed := s.Undo()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"changed": changed,
		"history": view,
	})
}

// Redo handles POST /api/sessions/{id}/history/redo
func (c *HistoryController) Redo(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	view, changed := s.Redo()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"changed": changed,
		"history": view,
	})
}

// RestoreVersion handles POST /api/sessions/{id}/history/{index}/restore
func (c *HistoryController) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid version index", http.StatusBadRequest)
		return
	}

	view, err := s.RestoreVersion(index)
	if err != nil {
		writeError(w, "RestoreVersion", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ExportDocument handles GET /api/sessions/{id}/history/document
// Downloads versions and favorites as a JSON document
func (c *HistoryController) ExportDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	data, err := s.ExportDocument()
	if err != nil {
		writeError(w, "ExportDocument", err)
		return
	}

	filename := fmt.Sprintf("%s-history-%s.json", export.DefaultPrefix, s.ID())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportDocument handles PUT /api/sessions/{id}/history/document
func (c *HistoryController) ImportDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := s.ImportDocument(data)
	if err != nil {
		writeError(w, "ImportDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
