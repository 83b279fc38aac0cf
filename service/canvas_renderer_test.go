package service

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmark/export"
	"wordmark/models"
)

type plainSurface struct{}

func (plainSurface) ID() string      { return "plain" }
func (plainSurface) Width() float64  { return 100 }
func (plainSurface) Height() float64 { return 100 }

func newTestRenderer(t *testing.T) *CanvasRenderer {
	t.Helper()
	r, err := NewCanvasRenderer()
	require.NoError(t, err)
	return r
}

func defaultSurface() *CardSurface {
	return NewCardSurface("card", models.DefaultSnapshot(testNow))
}

func TestCanvasRenderPNG(t *testing.T) {
	r := newTestRenderer(t)

	data, err := r.Render(context.Background(), defaultSurface(), export.RenderOptions{Format: models.FormatPNG, Scale: 2})
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 450, cfg.Height)
}

func TestCanvasRenderJPEG(t *testing.T) {
	r := newTestRenderer(t)

	data, err := r.Render(context.Background(), defaultSurface(), export.RenderOptions{Format: models.FormatJPEG, Scale: 1})
	require.NoError(t, err)
	require.Greater(t, len(data), 2)
	assert.Equal(t, []byte{0xff, 0xd8}, data[:2])
}

func TestCanvasRenderSVG(t *testing.T) {
	r := newTestRenderer(t)
	design := models.DefaultSnapshot(testNow)
	design.Text.Text = "A&B"

	data, err := r.Render(context.Background(), NewCardSurface("card", design), export.RenderOptions{Format: models.FormatSVG, Scale: 3})
	require.NoError(t, err)

	svg := string(data)
	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="675" viewBox="0 0 400 225">`))
	assert.Contains(t, svg, `<rect width="400" height="225" fill="#ffffff"/>`)
	assert.Contains(t, svg, ">A&amp;B</text>")
	assert.Contains(t, svg, `data-icon="Sparkles"`)
}

func TestCanvasRenderTextOnlyLayout(t *testing.T) {
	r := newTestRenderer(t)
	design := models.DefaultSnapshot(testNow)
	design.Layout = models.LayoutText

	data, err := r.Render(context.Background(), NewCardSurface("card", design), export.RenderOptions{Format: models.FormatSVG, Scale: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "data-icon")
	assert.Contains(t, string(data), "<text")
}

func TestCanvasDrawCircle(t *testing.T) {
	r := newTestRenderer(t)
	design := models.DefaultSnapshot(testNow)

	rect := r.Draw(design, 1)
	_, _, _, a := rect.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a, "rectangle card fills its corners")

	design.Layout = models.LayoutCircle
	circle := r.Draw(design, 1)
	_, _, _, a = circle.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), a, "circle card leaves its corners transparent")
}

func TestCanvasRenderErrors(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render(context.Background(), plainSurface{}, export.RenderOptions{Format: models.FormatPNG, Scale: 1})
	assert.Error(t, err)

	_, err = r.Render(context.Background(), defaultSurface(), export.RenderOptions{Format: "gif", Scale: 1})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, defaultSurface(), export.RenderOptions{Format: models.FormatPNG, Scale: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCanvasRenderRejectsOversizedOutput(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render(context.Background(), defaultSurface(), export.RenderOptions{Format: models.FormatPNG, Scale: 1000})
	assert.ErrorIs(t, err, export.ErrOutputTooLarge)

	design := models.DefaultSnapshot(testNow)
	design.Card.Width = models.Dimension{Value: 2000, Unit: models.UnitPx}
	design.Text.Size = 1000
	_, err = r.Render(context.Background(), NewCardSurface("card", design), export.RenderOptions{Format: models.FormatPNG, Scale: 5})
	assert.ErrorIs(t, err, export.ErrOutputTooLarge, "glyphs are bounded as well as the canvas")

	design = models.DefaultSnapshot(testNow)
	design.Card.Width = models.Dimension{Value: 0.01, Unit: models.UnitPx}
	_, err = r.Render(context.Background(), NewCardSurface("card", design), export.RenderOptions{Format: models.FormatPNG, Scale: 1})
	assert.Error(t, err, "an out-of-range card never reaches the canvas")
}

func TestCanvasRenderSVGSanitizesAIIcon(t *testing.T) {
	r := newTestRenderer(t)
	design := models.DefaultSnapshot(testNow)
	design.Icon.AIIcon = &models.AIIconRef{ID: "ai", SVGContent: `<g><script>alert(1)</script><path d="M0 0"/></g>`}

	data, err := r.Render(context.Background(), NewCardSurface("card", design), export.RenderOptions{Format: models.FormatSVG, Scale: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `<g><path d="M0 0"></path></g>`)
	assert.NotContains(t, string(data), "script")
}

func TestCardSurfaceSize(t *testing.T) {
	s := defaultSurface()
	assert.Equal(t, float64(models.DefaultCardWidth), s.Width())
	assert.Equal(t, float64(models.DefaultCardHeight), s.Height())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name  string
		color models.Color
		want  [4]uint8
	}{
		{"six digit hex", models.Color{Hex: "#ff8000", RGB: models.RGB{A: 1}}, [4]uint8{255, 128, 0, 255}},
		{"short hex", models.Color{Hex: "#f00"}, [4]uint8{255, 0, 0, 255}},
		{"hex with alpha digits", models.Color{Hex: "#00ff0080", RGB: models.RGB{A: 0.5}}, [4]uint8{0, 255, 0, 127}},
		{"rgb fallback", models.Color{Hex: "not-a-color", RGB: models.RGB{R: 10, G: 20, B: 300, A: 1}}, [4]uint8{10, 20, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseColor(tt.color)
			assert.Equal(t, tt.want, [4]uint8{c.R, c.G, c.B, c.A})
		})
	}
}

func TestTranscodePNG(t *testing.T) {
	r := newTestRenderer(t)
	png, err := r.Render(context.Background(), defaultSurface(), export.RenderOptions{Format: models.FormatPNG, Scale: 1})
	require.NoError(t, err)

	same, err := TranscodePNG(png, models.FormatPNG, nil)
	require.NoError(t, err)
	assert.Equal(t, png, same)

	jpeg, err := TranscodePNG(png, models.FormatJPEG, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, jpeg[:2])

	_, err = TranscodePNG([]byte("garbage"), models.FormatJPEG, nil)
	assert.Error(t, err)
}
