package service

import (
	"sync"

	"github.com/google/uuid"

	"wordmark/export"
	"wordmark/models"
)

// RenderPages hands out one-shot page addresses for captured designs, so a
// browser render shows the design its job captured and not the live one
type RenderPages struct {
	mu    sync.Mutex
	pages map[string]models.Snapshot
}

// NewRenderPages creates an empty registry
func NewRenderPages() *RenderPages {
	return &RenderPages{pages: make(map[string]models.Snapshot)}
}

// Register stores design under a fresh token until release is called
func (p *RenderPages) Register(design models.Snapshot) (string, func()) {
	token := uuid.NewString()
	p.mu.Lock()
	p.pages[token] = design.Clone()
	p.mu.Unlock()

	return token, func() {
		p.mu.Lock()
		delete(p.pages, token)
		p.mu.Unlock()
	}
}

// Lookup returns the design registered under token
func (p *RenderPages) Lookup(token string) (models.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	design, ok := p.pages[token]
	if !ok {
		return models.Snapshot{}, false
	}
	return design.Clone(), true
}

// Len returns the number of registered pages
func (p *RenderPages) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// PathFor returns the page path a browser should load for surface. A design
// surface gets a captured page that lives until release; any other surface
// falls back to its session page.
func (p *RenderPages) PathFor(surface export.Surface) (string, func()) {
	ds, ok := surface.(DesignSurface)
	if !ok {
		return "/render/" + surface.ID(), func() {}
	}
	token, release := p.Register(ds.Design())
	return "/render/capture/" + token, release
}
