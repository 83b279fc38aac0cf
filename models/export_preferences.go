package models

// ExportPreferences remembers the last selection in the export dialog
type ExportPreferences struct {
	SelectedPresets []string         `json:"selectedPresets"`
	SelectedFormats []DownloadFormat `json:"selectedFormats"`
}

// DefaultExportPreferences selects PNG and no presets
func DefaultExportPreferences() ExportPreferences {
	return ExportPreferences{
		SelectedPresets: []string{},
		SelectedFormats: []DownloadFormat{FormatPNG},
	}
}

// ToggleFormat adds or removes f. The last remaining format cannot be removed.
func (p ExportPreferences) ToggleFormat(f DownloadFormat) ExportPreferences {
	formats := make([]DownloadFormat, 0, len(p.SelectedFormats)+1)
	found := false
	for _, sf := range p.SelectedFormats {
		if sf == f {
			found = true
			continue
		}
		formats = append(formats, sf)
	}
	if !found {
		formats = append(formats, f)
	} else if len(formats) == 0 {
		return p
	}
	p.SelectedFormats = formats
	return p
}

// TogglePreset adds or removes a preset id
func (p ExportPreferences) TogglePreset(id string) ExportPreferences {
	presets := make([]string, 0, len(p.SelectedPresets)+1)
	found := false
	for _, sp := range p.SelectedPresets {
		if sp == id {
			found = true
			continue
		}
		presets = append(presets, sp)
	}
	if !found {
		presets = append(presets, id)
	}
	p.SelectedPresets = presets
	return p
}
