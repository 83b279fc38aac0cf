package service

import (
	"bytes"
	"fmt"
	"html/template"
	"image/color"
	"strconv"
	"strings"

	"wordmark/models"
	"wordmark/templates"
)

var cardTemplate = template.Must(template.ParseFS(templates.FS, "card.html"))

var fontWeights = map[string]string{
	"thin":       "100",
	"extralight": "200",
	"light":      "300",
	"regular":    "400",
	"normal":     "400",
	"medium":     "500",
	"semibold":   "600",
	"bold":       "700",
	"extrabold":  "800",
	"black":      "900",
}

// cardPage is the data of templates/card.html
type cardPage struct {
	Title         string
	CardID        string
	Layout        string
	Width         template.CSS
	Height        template.CSS
	Background    template.CSS
	FlexDirection template.CSS
	Circle        bool
	Gap           float64

	ShowIcon  bool
	IconName  string
	IconSVG   template.HTML
	IconSize  float64
	IconColor template.CSS

	ShowText      bool
	Text          string
	TextColor     template.CSS
	TextSize      float64
	FontWeight    template.CSS
	LineHeight    float64
	LetterSpacing float64
	TextTransform template.CSS
}

// RenderCardHTML renders the page holding the #display-card element the
// headless browser screenshots
func RenderCardHTML(design models.Snapshot) (string, error) {
	if err := design.Validate(); err != nil {
		return "", fmt.Errorf("failed to render card: %w", err)
	}

	data := cardPage{
		Title:         design.Text.Text,
		CardID:        DisplayCardID,
		Layout:        string(design.Layout),
		Width:         cssLength(design.Card.Width),
		Height:        cssLength(design.Card.Height),
		Background:    cssColor(ParseColor(design.Card.Color)),
		FlexDirection: flexDirection(design.Layout),
		Circle:        design.Layout == models.LayoutCircle,
		Gap:           layoutGap,

		ShowIcon:  design.Layout.ShowsIcon(),
		IconName:  design.Icon.Icon,
		IconSize:  orDefault(design.Icon.Size, models.DefaultIconSize),
		IconColor: cssColor(ParseColor(design.Icon.Color)),

		ShowText:      design.Layout.ShowsText(),
		Text:          design.Text.Text,
		TextColor:     cssColor(ParseColor(design.Text.Color)),
		TextSize:      orDefault(design.Text.Size, models.DefaultTextSize),
		FontWeight:    cssFontWeight(design.Text.FontWeight),
		LineHeight:    orDefault(design.Text.LineHeight, models.DefaultLineHeight),
		LetterSpacing: design.Text.LetterSpacing,
		TextTransform: template.CSS(design.Text.TextTransform),
	}
	if ai := design.Icon.AIIcon; ai != nil {
		clean, err := models.SanitizeSVG(ai.SVGContent)
		if err != nil {
			return "", fmt.Errorf("failed to render card: %w", err)
		}
		// only drawing elements survive SanitizeSVG
		data.IconSVG = template.HTML(clean)
		data.IconName = ai.ID
	}

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func cssLength(d models.Dimension) template.CSS {
	return template.CSS(strconv.FormatFloat(d.Value, 'f', -1, 64) + string(d.Unit))
}

func cssColor(c color.NRGBA) template.CSS {
	if c.A == 0xff {
		return template.CSS(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}
	return template.CSS(fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A))
}

func cssFontWeight(label string) template.CSS {
	label = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), "-", ""))
	if w, ok := fontWeights[label]; ok {
		return template.CSS(w)
	}
	if _, err := strconv.Atoi(label); err == nil {
		return template.CSS(label)
	}
	return "400"
}

func flexDirection(l models.LayoutDirection) template.CSS {
	switch l {
	case models.LayoutRTL:
		return "row-reverse"
	case models.LayoutTTD, models.LayoutCircle:
		return "column"
	case models.LayoutDTT:
		return "column-reverse"
	case models.LayoutLTR, models.LayoutText, models.LayoutIcon:
		return "row"
	}
	return "row"
}
