package export

import "wordmark/models"

// Expand turns the selected presets and formats into concrete jobs. Each
// preset contributes one job per format it supports that is also selected,
// in the preset's own format order. A preset listed twice yields its jobs once.
func Expand(presets []models.ExportPreset, selectedFormats []models.DownloadFormat) []models.BatchExportJob {
	selected := make(map[models.DownloadFormat]bool, len(selectedFormats))
	for _, f := range selectedFormats {
		selected[f] = true
	}

	type key struct {
		preset string
		format models.DownloadFormat
	}
	seen := make(map[key]bool)

	jobs := []models.BatchExportJob{}
	for _, p := range presets {
		for _, f := range p.Formats {
			k := key{p.ID, f}
			if selected[f] && !seen[k] {
				seen[k] = true
				jobs = append(jobs, models.BatchExportJob{Preset: p, Format: f})
			}
		}
	}
	return jobs
}
