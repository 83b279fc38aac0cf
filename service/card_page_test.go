package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmark/models"
)

func TestRenderCardHTML(t *testing.T) {
	design := models.DefaultSnapshot(testNow)
	design.Text.Text = "<b>Acme</b>"
	design.Text.FontWeight = "Semi-Bold"
	design.Layout = models.LayoutRTL

	page, err := RenderCardHTML(design)
	require.NoError(t, err)

	assert.Contains(t, page, `id="display-card"`)
	assert.Contains(t, page, "&lt;b&gt;Acme&lt;/b&gt;")
	assert.NotContains(t, page, "<b>Acme</b>")
	assert.Contains(t, page, "flex-direction: row-reverse;")
	assert.Contains(t, page, "width: 400px;")
	assert.Contains(t, page, "font-weight: 600;")
	assert.Contains(t, page, "background: #ffffff;")
	assert.NotContains(t, page, "border-radius: 50%")
}

func TestRenderCardHTMLLayouts(t *testing.T) {
	design := models.DefaultSnapshot(testNow)

	design.Layout = models.LayoutText
	page, err := RenderCardHTML(design)
	require.NoError(t, err)
	assert.NotContains(t, page, `class="wordmark-icon"`)
	assert.Contains(t, page, `class="wordmark-text"`)

	design.Layout = models.LayoutCircle
	page, err = RenderCardHTML(design)
	require.NoError(t, err)
	assert.Contains(t, page, "border-radius: 50%")
	assert.Contains(t, page, "flex-direction: column;")
}

func TestRenderCardHTMLSanitizesAIIcon(t *testing.T) {
	design := models.DefaultSnapshot(testNow)
	design.Icon.AIIcon = &models.AIIconRef{
		ID:         "ai-rocket",
		SVGContent: `<svg viewBox="0 0 24 24" onload="alert(1)"><script>fetch("http://169.254.169.254/")</script><use href="http://evil/x#a"/><circle cx="12" cy="12" r="8"/></svg>`,
	}

	page, err := RenderCardHTML(design)
	require.NoError(t, err)
	assert.Contains(t, page, `<svg viewBox="0 0 24 24"><use></use><circle cx="12" cy="12" r="8"></circle></svg>`)
	assert.Contains(t, page, `data-icon="ai-rocket"`)
	assert.NotContains(t, page, "<script")
	assert.NotContains(t, page, "onload")
	assert.NotContains(t, page, "evil")
}

func TestRenderCardHTMLRejectsInvalid(t *testing.T) {
	design := models.DefaultSnapshot(testNow)
	design.Layout = "diagonal"

	_, err := RenderCardHTML(design)
	assert.Error(t, err)
}

func TestCSSHelpers(t *testing.T) {
	assert.Equal(t, "50%", string(cssLength(models.Dimension{Value: 50, Unit: models.UnitPct})))
	assert.Equal(t, "12.5rem", string(cssLength(models.Dimension{Value: 12.5, Unit: models.UnitRem})))
	assert.Equal(t, "700", string(cssFontWeight("bold")))
	assert.Equal(t, "350", string(cssFontWeight("350")))
	assert.Equal(t, "400", string(cssFontWeight("chunky")))
	assert.Equal(t, "column-reverse", string(flexDirection(models.LayoutDTT)))
}
