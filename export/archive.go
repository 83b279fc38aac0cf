package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// Entry is one file going into an archive
type Entry struct {
	Filename string
	Data     []byte
}

// Packager builds a single archive out of rendered files
type Packager interface {
	Package(entries []Entry) ([]byte, error)
}

// ZipPackager writes entries into a deflated zip archive
type ZipPackager struct {
	// Modified stamps every entry; zero means the packaging time
	Modified time.Time
}

var _ Packager = ZipPackager{}

// Package implements Packager
func (z ZipPackager) Package(entries []Entry) ([]byte, error) {
	modified := z.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Filename == "" {
			return nil, fmt.Errorf("archive entry without a name")
		}
		if seen[e.Filename] {
			return nil, fmt.Errorf("duplicate archive entry %s", e.Filename)
		}
		seen[e.Filename] = true

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Filename,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", e.Filename, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", e.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
