package service

import (
	"math"

	"wordmark/export"
	"wordmark/models"
)

// DisplayCardID is the DOM id of the card element on the render page
const DisplayCardID = "display-card"

// DesignSurface is a surface that can hand out the design it shows
type DesignSurface interface {
	export.Surface
	Design() models.Snapshot
}

// CardSurface is the design card of one session
type CardSurface struct {
	sessionID string
	design    models.Snapshot
}

var _ DesignSurface = (*CardSurface)(nil)

// NewCardSurface captures the card of a session as it is now
func NewCardSurface(sessionID string, design models.Snapshot) *CardSurface {
	return &CardSurface{sessionID: sessionID, design: design.Clone()}
}

// ID returns the session the card belongs to
func (c *CardSurface) ID() string {
	return c.sessionID
}

// Width returns the card width in CSS pixels
func (c *CardSurface) Width() float64 {
	w, _ := CardPixelSize(c.design.Card)
	return w
}

// Height returns the card height in CSS pixels
func (c *CardSurface) Height() float64 {
	_, h := CardPixelSize(c.design.Card)
	return h
}

// Design returns the captured design
func (c *CardSurface) Design() models.Snapshot {
	return c.design.Clone()
}

// CardPixelSize resolves the card dimensions inside the default viewport,
// falling back to the default card size for unusable values
func CardPixelSize(card models.CardState) (float64, float64) {
	vp := models.DefaultViewport
	w, err := card.Width.Pixels(vp, vp.Width)
	if err != nil || w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		w = models.DefaultCardWidth
	}
	h, err := card.Height.Pixels(vp, vp.Height)
	if err != nil || h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		h = models.DefaultCardHeight
	}
	return w, h
}
