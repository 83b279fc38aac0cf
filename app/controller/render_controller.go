package controller

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wordmark/models"
	"wordmark/service"
)

// RenderController serves the page the headless browser screenshots
type RenderController struct {
	sessions *service.SessionManager
	pages    *service.RenderPages
}

// NewRenderController creates a new RenderController
func NewRenderController(sessions *service.SessionManager, pages *service.RenderPages) *RenderController {
	return &RenderController{
		sessions: sessions,
		pages:    pages,
	}
}

// RenderCard handles GET /render/{id}
// Returns the design card of a session as HTML with the #display-card element
func (c *RenderController) RenderCard(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(c.sessions, w, r)
	if !ok {
		return
	}

	writeCardPage(w, s.Design())
}

// RenderCapture handles GET /render/capture/{token}
// Returns the design a render job captured, unaffected by later edits
func (c *RenderController) RenderCapture(w http.ResponseWriter, r *http.Request) {
	design, ok := c.pages.Lookup(chi.URLParam(r, "token"))
	if !ok {
		http.Error(w, "Render page not found", http.StatusNotFound)
		return
	}
	writeCardPage(w, design)
}

func writeCardPage(w http.ResponseWriter, design models.Snapshot) {
	htmlContent, err := service.RenderCardHTML(design)
	if err != nil {
		log.Printf("❌ RenderCard: Error rendering HTML: %v", err)
		http.Error(w, "Failed to render card", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		log.Printf("❌ RenderCard: Error writing HTML response: %v", err)
	}
}
