package models

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RGB is the red/green/blue/alpha representation of a color
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// HSV is the hue/saturation/value/alpha representation of a color
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
	A float64 `json:"a"`
}

// Color is a picked color as sent by the editor. Hex is the canonical value,
// RGB and HSV are derived from it by the color picker.
type Color struct {
	Hex string `json:"hex"`
	RGB RGB    `json:"rgb"`
	HSV HSV    `json:"hsv"`
}

// Equal compares every channel; only the hex spelling is case-insensitive
func (c Color) Equal(o Color) bool {
	return strings.EqualFold(c.Hex, o.Hex) && c.RGB == o.RGB && c.HSV == o.HSV
}

// UnitType is a CSS length unit accepted for card dimensions
type UnitType string

const (
	UnitPx   UnitType = "px"
	UnitPct  UnitType = "%"
	UnitEm   UnitType = "em"
	UnitRem  UnitType = "rem"
	UnitVh   UnitType = "vh"
	UnitVw   UnitType = "vw"
	UnitVmin UnitType = "vmin"
	UnitVmax UnitType = "vmax"
	UnitEx   UnitType = "ex"
	UnitCh   UnitType = "ch"
	UnitCm   UnitType = "cm"
	UnitMm   UnitType = "mm"
	UnitIn   UnitType = "in"
	UnitPt   UnitType = "pt"
	UnitPc   UnitType = "pc"
	UnitDvw  UnitType = "dvw"
	UnitDvh  UnitType = "dvh"
	UnitSvw  UnitType = "svw"
	UnitSvh  UnitType = "svh"
	UnitLvw  UnitType = "lvw"
	UnitLvh  UnitType = "lvh"
	UnitVb   UnitType = "vb"
	UnitVi   UnitType = "vi"
)

// Viewport is the reference box used to resolve relative units
type Viewport struct {
	Width  float64
	Height float64
}

// DefaultViewport matches the editor preview area
var DefaultViewport = Viewport{Width: 1280, Height: 800}

const (
	rootFontSizePx = 16.0
	pxPerInch      = 96.0
)

// Valid reports whether u is one of the supported CSS units
func (u UnitType) Valid() bool {
	_, err := u.toPixels(1, DefaultViewport, DefaultViewport.Width)
	return err == nil
}

// toPixels converts value expressed in u into CSS pixels.
// parent is the length percentages resolve against.
func (u UnitType) toPixels(value float64, vp Viewport, parent float64) (float64, error) {
	switch u {
	case UnitPx:
		return value, nil
	case UnitPct:
		return value * parent / 100, nil
	case UnitEm, UnitRem:
		return value * rootFontSizePx, nil
	case UnitEx, UnitCh:
		return value * rootFontSizePx / 2, nil
	case UnitVw, UnitDvw, UnitSvw, UnitLvw, UnitVi:
		return value * vp.Width / 100, nil
	case UnitVh, UnitDvh, UnitSvh, UnitLvh, UnitVb:
		return value * vp.Height / 100, nil
	case UnitVmin:
		return value * min(vp.Width, vp.Height) / 100, nil
	case UnitVmax:
		return value * max(vp.Width, vp.Height) / 100, nil
	case UnitCm:
		return value * pxPerInch / 2.54, nil
	case UnitMm:
		return value * pxPerInch / 25.4, nil
	case UnitIn:
		return value * pxPerInch, nil
	case UnitPt:
		return value * pxPerInch / 72, nil
	case UnitPc:
		return value * pxPerInch / 6, nil
	}
	return 0, fmt.Errorf("unsupported unit %q", string(u))
}

// Dimension is a length with its CSS unit
type Dimension struct {
	Value float64  `json:"value"`
	Unit  UnitType `json:"unit"`
}

// Pixels resolves the dimension to CSS pixels inside vp; percentages use parent.
func (d Dimension) Pixels(vp Viewport, parent float64) (float64, error) {
	return d.Unit.toPixels(d.Value, vp, parent)
}

// TextTransform mirrors the CSS text-transform values offered by the editor
type TextTransform string

const (
	TextTransformNone       TextTransform = "none"
	TextTransformUppercase  TextTransform = "uppercase"
	TextTransformLowercase  TextTransform = "lowercase"
	TextTransformCapitalize TextTransform = "capitalize"
)

// Valid reports whether t is a known transform
func (t TextTransform) Valid() bool {
	switch t {
	case TextTransformNone, TextTransformUppercase, TextTransformLowercase, TextTransformCapitalize:
		return true
	}
	return false
}

// Apply returns s transformed the way the browser would display it
func (t TextTransform) Apply(s string) string {
	switch t {
	case TextTransformUppercase:
		return strings.ToUpper(s)
	case TextTransformLowercase:
		return strings.ToLower(s)
	case TextTransformCapitalize:
		words := strings.Fields(s)
		for i, w := range words {
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
		return strings.Join(words, " ")
	case TextTransformNone:
		return s
	}
	return s
}

// TextState is the wordmark text and its typography
type TextState struct {
	Text          string        `json:"text"`
	Color         Color         `json:"color"`
	Size          float64       `json:"size"`
	LineHeight    float64       `json:"lineHeight"`
	LetterSpacing float64       `json:"letterSpacing"`
	FontWeight    string        `json:"fontWeight"`
	TextTransform TextTransform `json:"textTransform"`
}

// Equal compares every text field
func (t TextState) Equal(o TextState) bool {
	return t.Text == o.Text &&
		t.Color.Equal(o.Color) &&
		t.Size == o.Size &&
		t.LineHeight == o.LineHeight &&
		t.LetterSpacing == o.LetterSpacing &&
		t.FontWeight == o.FontWeight &&
		t.TextTransform == o.TextTransform
}

// AIIconRef points to an icon produced by the AI generator
type AIIconRef struct {
	ID         string `json:"id"`
	SVGContent string `json:"svgContent"`
	Prompt     string `json:"prompt,omitempty"`
}

// IconState is the icon part of the logo. Either Icon (a library icon name)
// or AIIcon is set.
type IconState struct {
	Icon   string     `json:"icon"`
	AIIcon *AIIconRef `json:"aiIcon,omitempty"`
	Color  Color      `json:"color"`
	Size   float64    `json:"size"`
}

// Equal compares every icon field, including the AI icon reference by value
func (i IconState) Equal(o IconState) bool {
	if i.Icon != o.Icon || !i.Color.Equal(o.Color) || i.Size != o.Size {
		return false
	}
	if (i.AIIcon == nil) != (o.AIIcon == nil) {
		return false
	}
	return i.AIIcon == nil || *i.AIIcon == *o.AIIcon
}

// CardState is the background card the logo is composed on
type CardState struct {
	Color       Color     `json:"color"`
	Width       Dimension `json:"width"`
	Height      Dimension `json:"height"`
	RatioLocked bool      `json:"ratioLocked"`
}

// Equal compares every card field
func (c CardState) Equal(o CardState) bool {
	return c.Color.Equal(o.Color) &&
		c.Width == o.Width &&
		c.Height == o.Height &&
		c.RatioLocked == o.RatioLocked
}

// LayoutDirection is the arrangement of icon and text on the card
type LayoutDirection string

const (
	LayoutLTR    LayoutDirection = "ltr"
	LayoutRTL    LayoutDirection = "rtl"
	LayoutTTD    LayoutDirection = "ttd"
	LayoutDTT    LayoutDirection = "dtt"
	LayoutText   LayoutDirection = "text"
	LayoutIcon   LayoutDirection = "icon"
	LayoutCircle LayoutDirection = "circle"
)

// LayoutDirections lists every layout in editor order
var LayoutDirections = []LayoutDirection{
	LayoutLTR, LayoutRTL, LayoutTTD, LayoutDTT, LayoutText, LayoutIcon, LayoutCircle,
}

// Valid reports whether l is a known layout
func (l LayoutDirection) Valid() bool {
	switch l {
	case LayoutLTR, LayoutRTL, LayoutTTD, LayoutDTT, LayoutText, LayoutIcon, LayoutCircle:
		return true
	}
	return false
}

// ShowsText reports whether the text is drawn in this layout
func (l LayoutDirection) ShowsText() bool {
	switch l {
	case LayoutIcon:
		return false
	case LayoutLTR, LayoutRTL, LayoutTTD, LayoutDTT, LayoutText, LayoutCircle:
		return true
	}
	return true
}

// ShowsIcon reports whether the icon is drawn in this layout
func (l LayoutDirection) ShowsIcon() bool {
	switch l {
	case LayoutText:
		return false
	case LayoutLTR, LayoutRTL, LayoutTTD, LayoutDTT, LayoutIcon, LayoutCircle:
		return true
	}
	return true
}
