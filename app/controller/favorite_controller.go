package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wordmark/service"
)

// FavoriteController handles HTTP requests for favorite designs
type FavoriteController struct {
	sessions *service.SessionManager
}

// NewFavoriteController creates a new FavoriteController
func NewFavoriteController(sessions *service.SessionManager) *FavoriteController {
	return &FavoriteController{
		sessions: sessions,
	}
}

type favoriteRequest struct {
	Name string `json:"name"`
}

// decodeName reads an optional {"name": ...} body; an empty body is allowed
func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req favoriteRequest
	if r.ContentLength == 0 {
		return "", true
	}
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	return req.Name, true
}

// ListFavorites handles GET /api/sessions/{id}/favorites
func (c *FavoriteController) ListFavorites(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"favorites":   s.Favorites(),
		"isFavorited": s.History().IsFavorited,
	})
}

// AddFavorite handles POST /api/sessions/{id}/favorites
func (c *FavoriteController) AddFavorite(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	fav, err := s.AddFavorite(name)
	if err != nil {
		writeError(w, "AddFavorite", err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

// RemoveFavorite handles DELETE /api/sessions/{id}/favorites/{favoriteId}
func (c *FavoriteController) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	// removing an unknown favorite is a no-op
	s.RemoveFavorite(chi.URLParam(r, "favoriteId"))
	w.WriteHeader(http.StatusNoContent)
}

// RestoreFavorite handles POST /api/sessions/{id}/favorites/{favoriteId}/restore
func (c *FavoriteController) RestoreFavorite(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	design, err := s.RestoreFavorite(chi.URLParam(r, "favoriteId"))
	if err != nil {
		writeError(w, "RestoreFavorite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"design":  design,
		"history": s.History(),
	})
}

// ToggleFavorite handles POST /api/sessions/{id}/favorites/toggle
func (c *FavoriteController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}
	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	fav, added, err := s.ToggleFavorite(name)
	if err != nil {
		writeError(w, "ToggleFavorite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":    added,
		"favorite": fav,
	})
}
