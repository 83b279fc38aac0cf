package controller

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wordmark/models"
	"wordmark/service"
)

// SessionController handles HTTP requests for design sessions
type SessionController struct {
	sessions *service.SessionManager
}

// NewSessionController creates a new SessionController
func NewSessionController(sessions *service.SessionManager) *SessionController {
	return &SessionController{
		sessions: sessions,
	}
}

// sessionResponse is the state the editor loads when it opens a session
type sessionResponse struct {
	ID          string                   `json:"id"`
	Design      models.Snapshot          `json:"design"`
	History     service.HistoryView      `json:"history"`
	Favorites   []models.Favorite        `json:"favorites"`
	Preferences models.ExportPreferences `json:"preferences"`
}

func newSessionResponse(s *service.DesignSession) sessionResponse {
	return sessionResponse{
		ID:          s.ID(),
		Design:      s.Design(),
		History:     s.History(),
		Favorites:   s.Favorites(),
		Preferences: s.Preferences(),
	}
}

// lookupSession resolves the {id} path parameter, answering 404 itself
func lookupSession(sessions *service.SessionManager, w http.ResponseWriter, r *http.Request) (*service.DesignSession, bool) {
	s, err := sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "lookup session", err)
		return nil, false
	}
	return s, true
}

// ListSessions handles GET /api/sessions
func (c *SessionController) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := c.sessions.List(r.Context())
	if err != nil {
		writeError(w, "ListSessions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": ids})
}

// CreateSession handles POST /api/sessions
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := c.sessions.Create()
	writeJSON(w, http.StatusCreated, newSessionResponse(s))
}

// GetSession handles GET /api/sessions/{id}
func (c *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(s))
}

// DeleteSession handles DELETE /api/sessions/{id}
func (c *SessionController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := c.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateDesign handles PUT /api/sessions/{id}/design
// The edit is auto-saved to history once edits have been quiet for the debounce interval
func (c *SessionController) UpdateDesign(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	var design models.Snapshot
	if !decodeJSON(w, r, &design) {
		return
	}

	scheduled, err := s.UpdateDesign(design)
	if err != nil {
		writeError(w, "UpdateDesign", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"design":            s.Design(),
		"autosaveScheduled": scheduled,
	})
}

// SaveSnapshot handles POST /api/sessions/{id}/history/snapshot
func (c *SessionController) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	changed := s.SaveSnapshot()
	if changed {
		log.Printf("📸 Snapshot saved for session %s", s.ID())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"changed": changed,
		"history": s.History(),
	})
}
