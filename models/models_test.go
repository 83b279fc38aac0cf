package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSnapshotEqualIgnoresTimestamp(t *testing.T) {
	a := DefaultSnapshot(now)
	b := a.WithTimestamp(now.Add(time.Hour))

	assert.True(t, a.Equal(b))
	assert.False(t, HasChanged(&a, b))
	assert.True(t, HasChanged(nil, b))

	b.Card.Color.Hex = "#FFFFFF"
	assert.True(t, a.Equal(b), "hex comparison is case-insensitive")

	b.Card.Color.RGB.A = 0.5
	assert.False(t, a.Equal(b), "alpha is part of color identity")
}

func TestColorEqualComparesChannels(t *testing.T) {
	a := DefaultSnapshot(now)

	b := a.Clone()
	b.Text.Color.RGB.R = 200
	assert.False(t, a.Equal(b))
	assert.True(t, HasChanged(&a, b))

	c := a.Clone()
	c.Text.Color.HSV.H = 180
	assert.Equal(t, a.Text.Color.Hex, c.Text.Color.Hex)
	assert.False(t, a.Equal(c), "a hue-only edit is a change")
	assert.True(t, HasChanged(&a, c))

	fav := Favorite{Text: a.Text, Icon: a.Icon, Card: a.Card, Layout: a.Layout}
	assert.True(t, fav.Matches(a))
	assert.False(t, fav.Matches(c))
}

func TestSnapshotEqualComparesAIIconByValue(t *testing.T) {
	a := DefaultSnapshot(now)
	a.Icon.AIIcon = &AIIconRef{ID: "ai-1", SVGContent: "<path/>"}
	b := a.Clone()

	require.NotSame(t, a.Icon.AIIcon, b.Icon.AIIcon)
	assert.True(t, a.Equal(b))

	b.Icon.AIIcon.SVGContent = "<circle/>"
	assert.False(t, a.Equal(b))
	assert.Equal(t, "<path/>", a.Icon.AIIcon.SVGContent)

	b.Icon.AIIcon = nil
	assert.False(t, a.Equal(b))
}

func TestSnapshotValidate(t *testing.T) {
	require.NoError(t, DefaultSnapshot(now).Validate())

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"layout", func(s *Snapshot) { s.Layout = "diagonal" }},
		{"text transform", func(s *Snapshot) { s.Text.TextTransform = "smallcaps" }},
		{"width unit", func(s *Snapshot) { s.Card.Width.Unit = "furlong" }},
		{"zero height", func(s *Snapshot) { s.Card.Height.Value = 0 }},
		{"negative text size", func(s *Snapshot) { s.Text.Size = -1 }},
		{"sub-pixel width", func(s *Snapshot) { s.Card.Width.Value = 0.01 }},
		{"huge width", func(s *Snapshot) { s.Card.Width.Value = 1e6 }},
		{"huge relative height", func(s *Snapshot) { s.Card.Height = Dimension{Value: 5000, Unit: UnitVh} }},
		{"huge text", func(s *Snapshot) { s.Text.Size = MaxElementSize + 1 }},
		{"huge icon", func(s *Snapshot) { s.Icon.Size = 1e9 }},
		{"malformed ai icon", func(s *Snapshot) { s.Icon.AIIcon = &AIIconRef{ID: "ai", SVGContent: "<svg><g></svg>"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSnapshot(now)
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestSnapshotValidateCardBounds(t *testing.T) {
	s := DefaultSnapshot(now)
	s.Card.Width = Dimension{Value: MaxCardPixels, Unit: UnitPx}
	s.Card.Height = Dimension{Value: MinCardPixels, Unit: UnitPx}
	assert.NoError(t, s.Validate())

	s.Card.Width = Dimension{Value: 100, Unit: UnitPct}
	assert.NoError(t, s.Validate(), "a full-viewport width is in range")

	s.Card.Height = Dimension{Value: 0.5, Unit: UnitPx}
	assert.Error(t, s.Validate())
}

func TestDimensionPixels(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 500}
	tests := []struct {
		dim  Dimension
		want float64
	}{
		{Dimension{Value: 120, Unit: UnitPx}, 120},
		{Dimension{Value: 50, Unit: UnitPct}, 400},
		{Dimension{Value: 2, Unit: UnitRem}, 32},
		{Dimension{Value: 10, Unit: UnitVw}, 100},
		{Dimension{Value: 10, Unit: UnitVmin}, 50},
		{Dimension{Value: 1, Unit: UnitIn}, 96},
		{Dimension{Value: 72, Unit: UnitPt}, 96},
	}
	for _, tt := range tests {
		t.Run(string(tt.dim.Unit), func(t *testing.T) {
			got, err := tt.dim.Pixels(vp, 800)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := Dimension{Value: 1, Unit: "furlong"}.Pixels(vp, 800)
	assert.Error(t, err)
}

func TestTextTransformApply(t *testing.T) {
	assert.Equal(t, "ACME LABS", TextTransformUppercase.Apply("Acme Labs"))
	assert.Equal(t, "acme labs", TextTransformLowercase.Apply("Acme Labs"))
	assert.Equal(t, "Acme Labs", TextTransformCapitalize.Apply("acme labs"))
	assert.Equal(t, "acme", TextTransformNone.Apply("acme"))
}

func TestParseDownloadFormat(t *testing.T) {
	f, err := ParseDownloadFormat(" PNG ")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = ParseDownloadFormat("jpg")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)
	assert.Equal(t, "image/jpeg", f.MimeType())

	_, err = ParseDownloadFormat("gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestBatchExportJobNames(t *testing.T) {
	job := BatchExportJob{
		Preset: ExportPreset{ID: "og-image", Name: "OG Image", Dimensions: Dimensions{Width: 1200, Height: 630}},
		Format: FormatWebP,
	}
	assert.Equal(t, "OG Image (WEBP)", job.Label())
	assert.Equal(t, "og-image-1200x630.webp", job.Filename())
	assert.Equal(t, "og-image.webp", job.FailureFilename())
}

func TestExportPreferencesToggle(t *testing.T) {
	p := DefaultExportPreferences()

	p = p.ToggleFormat(FormatSVG)
	assert.Equal(t, []DownloadFormat{FormatPNG, FormatSVG}, p.SelectedFormats)
	p = p.ToggleFormat(FormatPNG)
	assert.Equal(t, []DownloadFormat{FormatSVG}, p.SelectedFormats)

	// the last format stays selected
	p = p.ToggleFormat(FormatSVG)
	assert.Equal(t, []DownloadFormat{FormatSVG}, p.SelectedFormats)

	p = p.TogglePreset("favicon")
	assert.Equal(t, []string{"favicon"}, p.SelectedPresets)
	p = p.TogglePreset("favicon")
	assert.Empty(t, p.SelectedPresets)
}

func TestFavoriteMatches(t *testing.T) {
	snap := DefaultSnapshot(now)
	fav := Favorite{FavoriteID: "f1", Name: "Launch", Text: snap.Text, Icon: snap.Icon, Card: snap.Card, Layout: snap.Layout}

	assert.True(t, fav.Matches(snap.WithTimestamp(now.Add(time.Minute))))
	snap.Layout = LayoutRTL
	assert.False(t, fav.Matches(snap))
}
