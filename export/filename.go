package export

import (
	"fmt"
	"strings"
	"time"

	"wordmark/models"
)

const (
	// DefaultPrefix starts every generated file name
	DefaultPrefix = "spaik"

	maxTextPart = 30
)

var unsafeFilenameChars = strings.NewReplacer(
	"/", "-", `\`, "-", "?", "-", "%", "-", "*", "-",
	":", "-", "|", "-", `"`, "-", "<", "-", ">", "-",
)

// Timestamp formats t as an ISO-8601 UTC time with millisecond precision,
// with ':' and '.' replaced so it is safe inside a file name
func Timestamp(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso)
}

// ArchiveName is the download name of a batch archive finished at t
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("%s-export-%s.zip", DefaultPrefix, Timestamp(t))
}

// GenerateFilename names a single export after its text content, e.g.
// "spaik-Acme-2026-03-01T12-00-00-000Z.png"
func GenerateFilename(text string, format models.DownloadFormat, prefix string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	part := unsafeFilenameChars.Replace(strings.TrimSpace(text))
	if r := []rune(part); len(r) > maxTextPart {
		part = string(r[:maxTextPart])
	}
	if part == "" {
		part = prefix
	}
	return fmt.Sprintf("%s-%s-%s.%s", prefix, part, Timestamp(t), format.Extension())
}
