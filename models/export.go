package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for a format outside DownloadFormats
var ErrUnsupportedFormat = errors.New("unsupported format")

// DownloadFormat is an output encoding offered by the export dialog
type DownloadFormat string

const (
	FormatPNG  DownloadFormat = "png"
	FormatSVG  DownloadFormat = "svg"
	FormatJPEG DownloadFormat = "jpeg"
	FormatWebP DownloadFormat = "webp"
)

// DownloadFormats lists every format in dialog order
var DownloadFormats = []DownloadFormat{FormatPNG, FormatSVG, FormatJPEG, FormatWebP}

// ParseDownloadFormat normalizes and validates a format name
func ParseDownloadFormat(s string) (DownloadFormat, error) {
	f := DownloadFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "jpg" {
		f = FormatJPEG
	}
	if !f.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// Valid reports whether f is a supported format
func (f DownloadFormat) Valid() bool {
	switch f {
	case FormatPNG, FormatSVG, FormatJPEG, FormatWebP:
		return true
	}
	return false
}

// Extension is the file extension without the dot
func (f DownloadFormat) Extension() string {
	return string(f)
}

// MimeType returns the content type for the format
func (f DownloadFormat) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	}
	return "application/octet-stream"
}

// IsRaster reports whether the format is a pixel format
func (f DownloadFormat) IsRaster() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatWebP:
		return true
	case FormatSVG:
		return false
	}
	return false
}

// PresetCategory groups presets in the export dialog
type PresetCategory string

const (
	CategoryInternalTools PresetCategory = "internal-tools"
	CategoryMicroSaaS     PresetCategory = "micro-saas"
	CategorySocial        PresetCategory = "social"
	CategoryPrint         PresetCategory = "print"
)

// PresetCategories lists categories in dialog tab order
var PresetCategories = []PresetCategory{CategoryInternalTools, CategoryMicroSaaS, CategorySocial, CategoryPrint}

// Label returns the human-readable category name
func (c PresetCategory) Label() string {
	switch c {
	case CategoryInternalTools:
		return "Internal Tools"
	case CategoryMicroSaaS:
		return "Micro-SaaS"
	case CategorySocial:
		return "Social Media"
	case CategoryPrint:
		return "Print"
	}
	return string(c)
}

// Valid reports whether c is a known category
func (c PresetCategory) Valid() bool {
	switch c {
	case CategoryInternalTools, CategoryMicroSaaS, CategorySocial, CategoryPrint:
		return true
	}
	return false
}

// Dimensions is a pixel size
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ExportPreset is a named output target from the static catalog
type ExportPreset struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    PresetCategory   `json:"category"`
	Dimensions  Dimensions       `json:"dimensions"`
	Formats     []DownloadFormat `json:"formats"`
	Description string           `json:"description,omitempty"`
}

// SupportsFormat reports whether f is one of the preset's formats
func (p ExportPreset) SupportsFormat(f DownloadFormat) bool {
	for _, pf := range p.Formats {
		if pf == f {
			return true
		}
	}
	return false
}

// BatchExportJob is one concrete (preset, format) rendering task
type BatchExportJob struct {
	Preset ExportPreset   `json:"preset"`
	Format DownloadFormat `json:"format"`
}

// Label is the progress label shown while the job renders, e.g. "Favicon (PNG)"
func (j BatchExportJob) Label() string {
	return fmt.Sprintf("%s (%s)", j.Preset.Name, strings.ToUpper(string(j.Format)))
}

// Filename is the archive entry name for a successful render
func (j BatchExportJob) Filename() string {
	return fmt.Sprintf("%s-%dx%d.%s", j.Preset.ID, j.Preset.Dimensions.Width, j.Preset.Dimensions.Height, j.Format.Extension())
}

// FailureFilename is the name reported for a failed render
func (j BatchExportJob) FailureFilename() string {
	return fmt.Sprintf("%s.%s", j.Preset.ID, j.Format.Extension())
}

// BatchExportResult is the outcome of one job
type BatchExportResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Error    string `json:"error,omitempty"`
}

// BatchExportProgress is reported before each job renders
type BatchExportProgress struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CurrentItem string `json:"currentItem"`
}
