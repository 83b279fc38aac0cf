package export

import (
	"errors"
	"fmt"

	"wordmark/models"
)

// ErrUnknownPreset is returned when a preset id is not in the catalog
var ErrUnknownPreset = errors.New("unknown export preset")

var catalog = []models.ExportPreset{
	// Internal tools
	{ID: "favicon", Name: "Favicon", Category: models.CategoryInternalTools, Dimensions: models.Dimensions{Width: 32, Height: 32}, Formats: []models.DownloadFormat{models.FormatPNG}, Description: "Browser tab icon"},
	{ID: "app-icon", Name: "App Icon", Category: models.CategoryInternalTools, Dimensions: models.Dimensions{Width: 512, Height: 512}, Formats: []models.DownloadFormat{models.FormatPNG}, Description: "Home screen and PWA icon"},
	{ID: "sidebar-logo", Name: "Sidebar Logo", Category: models.CategoryInternalTools, Dimensions: models.Dimensions{Width: 120, Height: 40}, Formats: []models.DownloadFormat{models.FormatPNG, models.FormatSVG}, Description: "Navigation and sidebar branding"},

	// Micro-SaaS
	{ID: "og-image", Name: "OG Image", Category: models.CategoryMicroSaaS, Dimensions: models.Dimensions{Width: 1200, Height: 630}, Formats: []models.DownloadFormat{models.FormatPNG}, Description: "Open Graph link preview"},
	{ID: "twitter-card", Name: "Twitter Card", Category: models.CategoryMicroSaaS, Dimensions: models.Dimensions{Width: 1200, Height: 600}, Formats: []models.DownloadFormat{models.FormatPNG}, Description: "Large summary card"},
	{ID: "email-header", Name: "Email Header", Category: models.CategoryMicroSaaS, Dimensions: models.Dimensions{Width: 600, Height: 150}, Formats: []models.DownloadFormat{models.FormatPNG}, Description: "Newsletter banner"},
	{ID: "web-hero", Name: "Website Hero", Category: models.CategoryMicroSaaS, Dimensions: models.Dimensions{Width: 1920, Height: 1080}, Formats: []models.DownloadFormat{models.FormatPNG, models.FormatJPEG, models.FormatWebP}, Description: "Landing page hero image"},

	// Social
	{ID: "instagram", Name: "Instagram Post", Category: models.CategorySocial, Dimensions: models.Dimensions{Width: 1080, Height: 1080}, Formats: []models.DownloadFormat{models.FormatPNG}, Description: "Square feed post"},
	{ID: "linkedin-banner", Name: "LinkedIn Banner", Category: models.CategorySocial, Dimensions: models.Dimensions{Width: 1128, Height: 191}, Formats: []models.DownloadFormat{models.FormatPNG}, Description: "Company page cover"},

	// Print
	{ID: "business-card", Name: "Business Card", Category: models.CategoryPrint, Dimensions: models.Dimensions{Width: 1050, Height: 600}, Formats: []models.DownloadFormat{models.FormatPNG, models.FormatSVG}, Description: "3.5 x 2 in at 300 dpi"},
}

// CategoryGroup is one tab of the export dialog
type CategoryGroup struct {
	Category models.PresetCategory `json:"category"`
	Label    string                `json:"label"`
	Presets  []models.ExportPreset `json:"presets"`
}

// Presets returns a copy of the whole catalog in dialog order
func Presets() []models.ExportPreset {
	out := make([]models.ExportPreset, len(catalog))
	for i, p := range catalog {
		out[i] = clonePreset(p)
	}
	return out
}

// PresetByID looks up a preset
func PresetByID(id string) (models.ExportPreset, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return clonePreset(p), true
		}
	}
	return models.ExportPreset{}, false
}

// PresetsByCategory returns the presets of one category in catalog order
func PresetsByCategory(category models.PresetCategory) []models.ExportPreset {
	var out []models.ExportPreset
	for _, p := range catalog {
		if p.Category == category {
			out = append(out, clonePreset(p))
		}
	}
	return out
}

// Grouped returns the catalog split by category with display labels
func Grouped() []CategoryGroup {
	groups := make([]CategoryGroup, 0, len(models.PresetCategories))
	for _, c := range models.PresetCategories {
		groups = append(groups, CategoryGroup{
			Category: c,
			Label:    c.Label(),
			Presets:  PresetsByCategory(c),
		})
	}
	return groups
}

// ResolvePresets maps ids to catalog entries, keeping catalog order and
// ignoring duplicates
func ResolvePresets(ids []string) ([]models.ExportPreset, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := PresetByID(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, id)
		}
		wanted[id] = true
	}
	var out []models.ExportPreset
	for _, p := range catalog {
		if wanted[p.ID] {
			out = append(out, clonePreset(p))
		}
	}
	return out, nil
}

// ToggleCategory selects every preset of category, or deselects them all
// when every one of them is already selected
func ToggleCategory(prefs models.ExportPreferences, category models.PresetCategory) models.ExportPreferences {
	selected := make(map[string]bool, len(prefs.SelectedPresets))
	for _, id := range prefs.SelectedPresets {
		selected[id] = true
	}
	inCategory := PresetsByCategory(category)
	allSelected := len(inCategory) > 0
	for _, p := range inCategory {
		if !selected[p.ID] {
			allSelected = false
			break
		}
	}

	next := make([]string, 0, len(prefs.SelectedPresets)+len(inCategory))
	if allSelected {
		drop := make(map[string]bool, len(inCategory))
		for _, p := range inCategory {
			drop[p.ID] = true
		}
		for _, id := range prefs.SelectedPresets {
			if !drop[id] {
				next = append(next, id)
			}
		}
	} else {
		next = append(next, prefs.SelectedPresets...)
		for _, p := range inCategory {
			if !selected[p.ID] {
				next = append(next, p.ID)
			}
		}
	}
	prefs.SelectedPresets = next
	return prefs
}

func clonePreset(p models.ExportPreset) models.ExportPreset {
	p.Formats = append([]models.DownloadFormat(nil), p.Formats...)
	return p
}
