package models

import (
	"fmt"
	"time"
)

// Snapshot is the full design state at one point in time
type Snapshot struct {
	Text      TextState       `json:"text"`
	Icon      IconState       `json:"icon"`
	Card      CardState       `json:"card"`
	Layout    LayoutDirection `json:"layout"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
}

// NewSnapshot captures the given design state stamped with now
func NewSnapshot(text TextState, icon IconState, card CardState, layout LayoutDirection, now time.Time) Snapshot {
	return Snapshot{
		Text:      text,
		Icon:      cloneIcon(icon),
		Card:      card,
		Layout:    layout,
		Timestamp: now.UnixMilli(),
	}
}

// Equal compares the design fields of two snapshots, ignoring Timestamp
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Text.Equal(o.Text) &&
		s.Icon.Equal(o.Icon) &&
		s.Card.Equal(o.Card) &&
		s.Layout == o.Layout
}

// Clone returns a deep copy, so the AI icon reference is never shared
func (s Snapshot) Clone() Snapshot {
	s.Icon = cloneIcon(s.Icon)
	return s
}

// WithTimestamp returns a copy stamped with now
func (s Snapshot) WithTimestamp(now time.Time) Snapshot {
	c := s.Clone()
	c.Timestamp = now.UnixMilli()
	return c
}

// Validate checks the closed enumerations and numeric ranges of a snapshot
// coming from outside the process
func (s Snapshot) Validate() error {
	if !s.Layout.Valid() {
		return fmt.Errorf("invalid layout %q", string(s.Layout))
	}
	if !s.Text.TextTransform.Valid() {
		return fmt.Errorf("invalid text transform %q", string(s.Text.TextTransform))
	}
	if !s.Card.Width.Unit.Valid() {
		return fmt.Errorf("invalid card width unit %q", string(s.Card.Width.Unit))
	}
	if !s.Card.Height.Unit.Valid() {
		return fmt.Errorf("invalid card height unit %q", string(s.Card.Height.Unit))
	}
	if s.Card.Width.Value <= 0 || s.Card.Height.Value <= 0 {
		return fmt.Errorf("card dimensions must be positive")
	}
	vp := DefaultViewport
	w, _ := s.Card.Width.Pixels(vp, vp.Width)
	h, _ := s.Card.Height.Pixels(vp, vp.Height)
	if !inRange(w, MinCardPixels, MaxCardPixels) || !inRange(h, MinCardPixels, MaxCardPixels) {
		return fmt.Errorf("card must resolve to %d..%dpx on each side, got %gx%g", MinCardPixels, MaxCardPixels, w, h)
	}
	if s.Text.Size < 0 || s.Icon.Size < 0 {
		return fmt.Errorf("sizes must not be negative")
	}
	if !inRange(s.Text.Size, 0, MaxElementSize) || !inRange(s.Icon.Size, 0, MaxElementSize) {
		return fmt.Errorf("text and icon sizes must not exceed %dpx", MaxElementSize)
	}
	if ai := s.Icon.AIIcon; ai != nil {
		if _, err := SanitizeSVG(ai.SVGContent); err != nil {
			return err
		}
	}
	return nil
}

// inRange is false for NaN
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// HasChanged reports whether cur differs from prev in any design field.
// A nil prev always counts as a change.
func HasChanged(prev *Snapshot, cur Snapshot) bool {
	if prev == nil {
		return true
	}
	return !prev.Equal(cur)
}

func cloneIcon(i IconState) IconState {
	if i.AIIcon != nil {
		ai := *i.AIIcon
		i.AIIcon = &ai
	}
	return i
}

// Size limits, in CSS pixels, accepted by Validate
const (
	MinCardPixels  = 1
	MaxCardPixels  = 10000
	MaxElementSize = 1000
)

// Default design values used for a fresh session
const (
	DefaultTextSize   = 24
	DefaultLineHeight = 1.2
	DefaultIconSize   = 32
	DefaultCardWidth  = 400
	DefaultCardHeight = 225
)

// DefaultSnapshot is the design a new session starts from
func DefaultSnapshot(now time.Time) Snapshot {
	black := Color{Hex: "#000000", RGB: RGB{A: 1}, HSV: HSV{A: 1}}
	white := Color{Hex: "#ffffff", RGB: RGB{R: 255, G: 255, B: 255, A: 1}, HSV: HSV{V: 100, A: 1}}
	return NewSnapshot(
		TextState{
			Text:          "Wordmark",
			Color:         black,
			Size:          DefaultTextSize,
			LineHeight:    DefaultLineHeight,
			FontWeight:    "regular",
			TextTransform: TextTransformNone,
		},
		IconState{Icon: "Sparkles", Color: black, Size: DefaultIconSize},
		CardState{
			Color:       white,
			Width:       Dimension{Value: DefaultCardWidth, Unit: UnitPx},
			Height:      Dimension{Value: DefaultCardHeight, Unit: UnitPx},
			RatioLocked: false,
		},
		LayoutLTR,
		now,
	)
}
