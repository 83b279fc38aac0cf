// Package templates holds the HTML pages served to the headless browser
package templates

import "embed"

//go:embed *.html
var FS embed.FS
