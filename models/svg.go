package models

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxSVGBytes caps the markup of a generated icon
const MaxSVGBytes = 256 << 10

// ErrInvalidSVG is returned for icon markup that is not well-formed or too large
var ErrInvalidSVG = errors.New("invalid svg content")

// svgElements are the drawing elements SanitizeSVG keeps, by lower-cased local name
var svgElements = map[string]bool{
	"svg":            true,
	"g":              true,
	"defs":           true,
	"symbol":         true,
	"use":            true,
	"path":           true,
	"rect":           true,
	"circle":         true,
	"ellipse":        true,
	"line":           true,
	"polyline":       true,
	"polygon":        true,
	"text":           true,
	"tspan":          true,
	"lineargradient": true,
	"radialgradient": true,
	"stop":           true,
	"clippath":       true,
	"mask":           true,
	"pattern":        true,
	"title":          true,
	"desc":           true,
}

// SanitizeSVG re-serializes icon markup keeping only drawing elements and
// their safe attributes. Any other element is dropped with its whole subtree,
// so script and foreignObject never survive. Event handlers, style attributes
// and references that leave the document are removed.
func SanitizeSVG(markup string) (string, error) {
	if len(markup) > MaxSVGBytes {
		return "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidSVG, MaxSVGBytes)
	}

	type open struct {
		name string
		kept bool
	}
	var (
		b     strings.Builder
		stack []open
	)
	dropping := func() bool {
		return len(stack) > 0 && !stack[len(stack)-1].kept
	}

	d := xml.NewDecoder(strings.NewReader(markup))
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidSVG, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := qualifiedName(t.Name)
			kept := !dropping() && svgElements[strings.ToLower(t.Name.Local)]
			stack = append(stack, open{name: name, kept: kept})
			if !kept {
				continue
			}
			b.WriteString("<" + name)
			for _, a := range t.Attr {
				if !safeSVGAttr(a) {
					continue
				}
				b.WriteString(" " + qualifiedName(a.Name) + `="`)
				if err := xml.EscapeText(&b, []byte(a.Value)); err != nil {
					return "", fmt.Errorf("%w: %v", ErrInvalidSVG, err)
				}
				b.WriteString(`"`)
			}
			b.WriteString(">")
		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 || stack[len(stack)-1].name != name {
				return "", fmt.Errorf("%w: unexpected </%s>", ErrInvalidSVG, name)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.kept {
				b.WriteString("</" + name + ">")
			}
		case xml.CharData:
			if dropping() {
				continue
			}
			if err := xml.EscapeText(&b, t); err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidSVG, err)
			}
		}
		// comments, processing instructions and doctypes are dropped
	}
	if len(stack) > 0 {
		return "", fmt.Errorf("%w: unclosed <%s>", ErrInvalidSVG, stack[len(stack)-1].name)
	}
	return b.String(), nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func safeSVGAttr(a xml.Attr) bool {
	name := strings.ToLower(a.Name.Local)
	value := strings.ToLower(strings.Join(strings.Fields(a.Value), ""))

	if strings.HasPrefix(name, "on") || name == "style" {
		return false
	}
	// CSS escapes could hide a url( or javascript: token
	if strings.ContainsAny(value, `\&`) || strings.Contains(value, "javascript:") {
		return false
	}
	if name == "href" || name == "src" {
		return strings.HasPrefix(value, "#")
	}
	rest := value
	for {
		i := strings.Index(rest, "url(")
		if i < 0 {
			return true
		}
		rest = strings.TrimLeft(rest[i+len("url("):], `'"`)
		if !strings.HasPrefix(rest, "#") {
			return false
		}
	}
}

// Sanitized returns a copy whose AI icon markup went through SanitizeSVG
func (s Snapshot) Sanitized() (Snapshot, error) {
	c := s.Clone()
	if ai := c.Icon.AIIcon; ai != nil {
		clean, err := SanitizeSVG(ai.SVGContent)
		if err != nil {
			return Snapshot{}, err
		}
		ai.SVGContent = clean
	}
	return c, nil
}
