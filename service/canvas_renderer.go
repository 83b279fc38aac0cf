package service

import (
	"context"
	"fmt"
	"html"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"wordmark/export"
	"wordmark/models"
)

const (
	layoutGap   = 8.0
	svgFontFace = "Go, Helvetica, Arial, sans-serif"
	// maxGlyphPixels bounds the em size of a rasterized glyph
	maxGlyphPixels = 4096
)

// CanvasRenderer draws a design natively with gg, without a browser. It is
// used by the CLI and when no Chrome binary is available.
type CanvasRenderer struct {
	regular *truetype.Font
	bold    *truetype.Font
}

var _ export.Renderer = (*CanvasRenderer)(nil)

// NewCanvasRenderer loads the embedded Go fonts
func NewCanvasRenderer() (*CanvasRenderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &CanvasRenderer{regular: regular, bold: bold}, nil
}

// Render implements export.Renderer
func (r *CanvasRenderer) Render(ctx context.Context, surface export.Surface, opts export.RenderOptions) ([]byte, error) {
	ds, ok := surface.(DesignSurface)
	if !ok {
		return nil, fmt.Errorf("surface %s does not carry a design", surface.ID())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	design := ds.Design()
	if err := design.Validate(); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", surface.ID(), err)
	}
	if err := export.CheckOutputSize(surface, scale); err != nil {
		return nil, err
	}
	if glyph := math.Max(orDefault(design.Text.Size, models.DefaultTextSize), orDefault(design.Icon.Size, models.DefaultIconSize)) * scale; glyph > maxGlyphPixels {
		return nil, fmt.Errorf("%w: %.0fpx glyphs at %gx", export.ErrOutputTooLarge, glyph, scale)
	}

	switch opts.Format {
	case models.FormatSVG:
		return []byte(r.renderSVG(design, scale)), nil
	case models.FormatPNG, models.FormatJPEG, models.FormatWebP:
		img := r.Draw(design, scale)
		return EncodeRaster(img, opts.Format, ParseColor(design.Card.Color))
	}
	return nil, fmt.Errorf("unsupported format: %s", opts.Format)
}

// cardLayout holds positions in unscaled CSS pixels
type cardLayout struct {
	width, height float64
	showText      bool
	showIcon      bool
	iconX, iconY  float64 // top-left of the icon box
	textX, textY  float64 // top-left of the text block
	textW         float64
	lines         []string
	lineHeight    float64
}

func (r *CanvasRenderer) fontFor(t models.TextState) *truetype.Font {
	switch strings.ToLower(t.FontWeight) {
	case "bold", "semibold", "extrabold", "black", "600", "700", "800", "900":
		return r.bold
	}
	return r.regular
}

func (r *CanvasRenderer) face(t models.TextState, scale float64) font.Face {
	size := t.Size
	if size <= 0 {
		size = models.DefaultTextSize
	}
	return truetype.NewFace(r.fontFor(t), &truetype.Options{Size: size * scale, Hinting: font.HintingNone})
}

// measureLine returns the advance of s including letter spacing
func measureLine(face font.Face, s string, spacing float64) float64 {
	w := float64(font.MeasureString(face, s)) / 64
	if n := utf8.RuneCountInString(s); n > 1 {
		w += spacing * float64(n-1)
	}
	return w
}

func (r *CanvasRenderer) layout(design models.Snapshot) cardLayout {
	w, h := CardPixelSize(design.Card)
	l := cardLayout{
		width:    w,
		height:   h,
		showText: design.Layout.ShowsText() && design.Text.Text != "",
		showIcon: design.Layout.ShowsIcon() && (design.Icon.Icon != "" || design.Icon.AIIcon != nil),
	}

	lineHeight := design.Text.LineHeight
	if lineHeight <= 0 {
		lineHeight = models.DefaultLineHeight
	}
	size := design.Text.Size
	if size <= 0 {
		size = models.DefaultTextSize
	}
	l.lineHeight = size * lineHeight

	var textH float64
	if l.showText {
		face := r.face(design.Text, 1)
		l.lines = strings.Split(design.Text.TextTransform.Apply(design.Text.Text), "\n")
		for _, line := range l.lines {
			l.textW = math.Max(l.textW, measureLine(face, line, design.Text.LetterSpacing))
		}
		textH = l.lineHeight * float64(len(l.lines))
	}

	iconSize := design.Icon.Size
	if iconSize <= 0 {
		iconSize = models.DefaultIconSize
	}
	if !l.showIcon {
		iconSize = 0
	}

	gap := 0.0
	if l.showText && l.showIcon {
		gap = layoutGap
	}

	horizontal := func(iconFirst bool) {
		total := iconSize + gap + l.textW
		x := (w - total) / 2
		if iconFirst {
			l.iconX, l.textX = x, x+iconSize+gap
		} else {
			l.textX, l.iconX = x, x+l.textW+gap
		}
		l.iconY = (h - iconSize) / 2
		l.textY = (h - textH) / 2
	}
	vertical := func(iconFirst bool) {
		total := iconSize + gap + textH
		y := (h - total) / 2
		if iconFirst {
			l.iconY, l.textY = y, y+iconSize+gap
		} else {
			l.textY, l.iconY = y, y+textH+gap
		}
		l.iconX = (w - iconSize) / 2
		l.textX = (w - l.textW) / 2
	}

	switch design.Layout {
	case models.LayoutLTR, models.LayoutText, models.LayoutIcon:
		horizontal(true)
	case models.LayoutRTL:
		horizontal(false)
	case models.LayoutTTD, models.LayoutCircle:
		vertical(true)
	case models.LayoutDTT:
		vertical(false)
	default:
		horizontal(true)
	}
	return l
}

// Draw rasterizes the design at scale
func (r *CanvasRenderer) Draw(design models.Snapshot, scale float64) image.Image {
	l := r.layout(design)
	W := int(math.Ceil(l.width * scale))
	H := int(math.Ceil(l.height * scale))
	dc := gg.NewContext(W, H)

	dc.SetColor(ParseColor(design.Card.Color))
	if design.Layout == models.LayoutCircle {
		dc.DrawEllipse(float64(W)/2, float64(H)/2, float64(W)/2, float64(H)/2)
	} else {
		dc.DrawRectangle(0, 0, float64(W), float64(H))
	}
	dc.Fill()

	if l.showIcon {
		r.drawIcon(dc, design, l, scale)
	}

	if l.showText {
		face := r.face(design.Text, scale)
		dc.SetFontFace(face)
		dc.SetColor(ParseColor(design.Text.Color))
		m := face.Metrics()
		ascent, descent := float64(m.Ascent)/64, float64(m.Descent)/64
		for i, line := range l.lines {
			lineW := measureLine(face, line, design.Text.LetterSpacing*scale)
			x := (l.textX + (l.textW-lineW/scale)/2) * scale
			// baseline of a glyph box centered in the line box
			y := (l.textY+float64(i)*l.lineHeight)*scale + (l.lineHeight*scale+ascent-descent)/2
			for _, ch := range line {
				s := string(ch)
				dc.DrawString(s, x, y)
				adv, _ := dc.MeasureString(s)
				x += adv + design.Text.LetterSpacing*scale
			}
		}
	}

	return dc.Image()
}

// drawIcon draws a badge standing in for the icon glyph
func (r *CanvasRenderer) drawIcon(dc *gg.Context, design models.Snapshot, l cardLayout, scale float64) {
	size := design.Icon.Size
	if size <= 0 {
		size = models.DefaultIconSize
	}
	x, y, s := l.iconX*scale, l.iconY*scale, size*scale

	dc.SetColor(ParseColor(design.Icon.Color))
	if design.Icon.AIIcon != nil {
		dc.SetLineWidth(math.Max(1, s/16))
		dc.DrawRoundedRectangle(x, y, s, s, s/5)
		dc.Stroke()
		return
	}
	dc.DrawRoundedRectangle(x, y, s, s, s/5)
	dc.Fill()

	initial, _ := utf8.DecodeRuneInString(design.Icon.Icon)
	if initial == utf8.RuneError {
		return
	}
	dc.SetFontFace(truetype.NewFace(r.bold, &truetype.Options{Size: s * 0.6}))
	dc.SetColor(ParseColor(design.Card.Color))
	dc.DrawStringAnchored(strings.ToUpper(string(initial)), x+s/2, y+s/2, 0.5, 0.35)
}

func (r *CanvasRenderer) renderSVG(design models.Snapshot, scale float64) string {
	l := r.layout(design)
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		l.width*scale, l.height*scale, l.width, l.height)
	card := ParseColor(design.Card.Color)
	if design.Layout == models.LayoutCircle {
		fmt.Fprintf(&b, `<ellipse cx="%g" cy="%g" rx="%g" ry="%g" fill="%s"/>`,
			l.width/2, l.height/2, l.width/2, l.height/2, svgColor(card))
	} else {
		fmt.Fprintf(&b, `<rect width="%g" height="%g" fill="%s"/>`, l.width, l.height, svgColor(card))
	}

	if l.showIcon {
		size := design.Icon.Size
		if size <= 0 {
			size = models.DefaultIconSize
		}
		iconColor := svgColor(ParseColor(design.Icon.Color))
		if ai := design.Icon.AIIcon; ai != nil {
			// markup that does not sanitize is left out
			clean, _ := models.SanitizeSVG(ai.SVGContent)
			fmt.Fprintf(&b, `<svg x="%g" y="%g" width="%g" height="%g">%s</svg>`, l.iconX, l.iconY, size, size, clean)
		} else {
			fmt.Fprintf(&b, `<g data-icon="%s"><rect x="%g" y="%g" width="%g" height="%g" rx="%g" fill="%s"/></g>`,
				html.EscapeString(design.Icon.Icon), l.iconX, l.iconY, size, size, size/5, iconColor)
		}
	}

	if l.showText {
		weight := "normal"
		if r.fontFor(design.Text) == r.bold {
			weight = "bold"
		}
		fill := svgColor(ParseColor(design.Text.Color))
		for i, line := range l.lines {
			y := l.textY + float64(i)*l.lineHeight + l.lineHeight/2
			fmt.Fprintf(&b, `<text x="%g" y="%g" font-family="%s" font-size="%g" font-weight="%s" letter-spacing="%g" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`,
				l.textX+l.textW/2, y, svgFontFace, design.Text.Size, weight, design.Text.LetterSpacing, fill, html.EscapeString(line))
		}
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func svgColor(c color.Color) string {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return "none"
	}
	// RGBA is alpha-premultiplied
	un := func(v uint32) uint32 { return v * 0xffff / a >> 8 }
	if a == 0xffff {
		return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", un(r), un(g), un(b), float64(a)/0xffff)
}
