package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wordmark/config"
	"wordmark/export"
	"wordmark/models"
	"wordmark/service"
)

var (
	exportSnapshot string
	exportPresets  []string
	exportCategory string
	exportFormats  []string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Batch export a design without running the server",
	Long: `Render a design snapshot at every selected preset and format with the
native canvas renderer and write one zip archive.

Examples:
  wordmark export --presets favicon,og-image --formats png,svg
  wordmark export --snapshot design.json --category social --out dist
  wordmark export --snapshot design.json --presets app-icon,web-hero --formats png,jpeg,webp`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSnapshot, "snapshot", "", "Design snapshot JSON file (default: the starter design)")
	exportCmd.Flags().StringSliceVar(&exportPresets, "presets", nil, "Preset ids to export")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "Export every preset of a category")
	exportCmd.Flags().StringSliceVar(&exportFormats, "formats", []string{string(models.FormatPNG)}, "Formats to export (png, svg, jpeg, webp)")
	exportCmd.Flags().StringVar(&exportOut, "out", ".", "Output directory")
}

func loadSnapshot(path string) (models.Snapshot, error) {
	if path == "" {
		return models.DefaultSnapshot(time.Now()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if err := snap.Validate(); err != nil {
		return models.Snapshot{}, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	return snap, nil
}

func selectedJobs(presetIDs []string, category string, rawFormats []string) ([]models.BatchExportJob, error) {
	ids := append([]string(nil), presetIDs...)
	if category != "" {
		pc := models.PresetCategory(category)
		if !pc.Valid() {
			return nil, fmt.Errorf("unknown category: %s", category)
		}
		for _, p := range export.PresetsByCategory(pc) {
			ids = append(ids, p.ID)
		}
	}
	presets, err := export.ResolvePresets(ids)
	if err != nil {
		return nil, err
	}

	formats := make([]models.DownloadFormat, 0, len(rawFormats))
	for _, raw := range rawFormats {
		f, err := models.ParseDownloadFormat(raw)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return export.Expand(presets, formats), nil
}

func runExport(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(exportSnapshot)
	if err != nil {
		return err
	}

	jobs, err := selectedJobs(exportPresets, exportCategory, exportFormats)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("nothing to export: select presets with --presets or --category that support the chosen formats")
	}

	renderer, err := service.NewCanvasRenderer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Only draw the progress line on a terminal
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	onProgress := func(p models.BatchExportProgress) {
		if interactive {
			fmt.Printf("\r\033[K[%d/%d] %s", p.Current, p.Total, p.CurrentItem)
		}
	}

	orchestrator := export.NewOrchestrator(renderer, export.ZipPackager{}, config.GetExportJobTimeout())
	out, err := orchestrator.Run(ctx, service.NewCardSurface("cli", snap), jobs, snap.Text.Text, onProgress)
	if interactive {
		fmt.Println()
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(exportOut, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	archivePath := filepath.Join(exportOut, out.ArchiveName)
	if err := os.WriteFile(archivePath, out.Archive, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	for _, res := range out.Results {
		if res.Success {
			fmt.Printf("  ✓ %s\n", res.Filename)
		} else {
			fmt.Printf("  ✗ %s: %s\n", res.Filename, res.Error)
		}
	}
	fmt.Printf("\n%d/%d exported → %s\n", out.Succeeded, len(out.Results), archivePath)
	if out.Canceled {
		fmt.Println("Export was interrupted; the archive holds the items finished before that.")
	}
	if failed := len(out.Results) - out.Succeeded; failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(out.Results))
	}
	return nil
}

// presetsCmd lists the catalog
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the export preset catalog",
	Args:  cobra.NoArgs,
	RunE:  runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	for _, group := range export.Grouped() {
		fmt.Fprintf(w, "%s (%s)\n", group.Label, group.Category)
		for _, p := range group.Presets {
			formats := make([]string, len(p.Formats))
			for i, f := range p.Formats {
				formats[i] = string(f)
			}
			fmt.Fprintf(w, "  %-22s %5dx%-5d %-20s %s\n", p.ID, p.Dimensions.Width, p.Dimensions.Height, strings.Join(formats, ","), p.Name)
		}
		fmt.Fprintln(w)
	}
	return nil
}
