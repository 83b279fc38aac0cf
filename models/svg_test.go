package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSVG(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"drawing kept",
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M1 1L2 2" fill="currentColor"/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M1 1L2 2" fill="currentColor"></path></svg>`,
		},
		{
			"script dropped with its body",
			`<svg><script>fetch("http://169.254.169.254/")</script><circle r="4"/></svg>`,
			`<svg><circle r="4"></circle></svg>`,
		},
		{
			"foreignObject dropped",
			`<svg><foreignObject><iframe src="http://internal/"></iframe></foreignObject></svg>`,
			`<svg></svg>`,
		},
		{
			"event handlers dropped",
			`<svg onload="alert(1)"><rect ONCLICK="x()" width="2"/></svg>`,
			`<svg><rect width="2"></rect></svg>`,
		},
		{
			"external references dropped",
			`<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="http://evil/x.svg#a"/><use href="#local"/><rect fill="url(http://evil/p)"/><rect fill="url(#grad)"/></svg>`,
			`<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use></use><use href="#local"></use><rect></rect><rect fill="url(#grad)"></rect></svg>`,
		},
		{
			"style and javascript urls dropped",
			`<svg><a href="javascript:alert(1)"><text>hi</text></a><g style="background:url(http://x/)" filter="javascript:x"/></svg>`,
			`<svg><g></g></svg>`,
		},
		{
			"text escaped",
			`<svg><text>a &lt;b&gt; &amp; c</text></svg>`,
			`<svg><text>a &lt;b&gt; &amp; c</text></svg>`,
		},
		{
			"comments and doctype dropped",
			`<!DOCTYPE svg><!-- note --><svg><title>Logo</title></svg>`,
			`<svg><title>Logo</title></svg>`,
		},
		{"fragment", `<path d="M0 0"/>`, `<path d="M0 0"></path>`},
		{"empty", ``, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeSVG(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := SanitizeSVG(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestSanitizeSVGRejects(t *testing.T) {
	for _, in := range []string{
		`<svg><g></svg>`,
		`<svg>`,
		`</svg>`,
		`<svg>&xxe;</svg>`,
		strings.Repeat("<g></g>", MaxSVGBytes/7+1),
	} {
		_, err := SanitizeSVG(in)
		assert.ErrorIs(t, err, ErrInvalidSVG)
	}
}

func TestSnapshotSanitized(t *testing.T) {
	s := DefaultSnapshot(now)
	clean, err := s.Sanitized()
	require.NoError(t, err)
	assert.True(t, s.Equal(clean))

	s.Icon.AIIcon = &AIIconRef{ID: "ai", SVGContent: `<svg><script>x</script></svg>`}
	clean, err = s.Sanitized()
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", clean.Icon.AIIcon.SVGContent)
	assert.Equal(t, `<svg><script>x</script></svg>`, s.Icon.AIIcon.SVGContent, "the receiver is untouched")
}
