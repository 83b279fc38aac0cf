package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"wordmark/models"
)

const (
	// DefaultJobTimeout bounds a single render
	DefaultJobTimeout = 30 * time.Second
	// MaxOutputPixels bounds the device pixels of a single render
	MaxOutputPixels = 50_000_000
)

var (
	// ErrMissingSurface is returned when there is nothing to render
	ErrMissingSurface = errors.New("render surface is missing")
	// ErrNoJobs is returned for an empty batch
	ErrNoJobs = errors.New("no export jobs selected")
	// ErrOutputTooLarge is returned when a render would exceed MaxOutputPixels
	ErrOutputTooLarge = errors.New("render output too large")
)

// Surface is the shared visual region every job renders
type Surface interface {
	ID() string
	// Width and Height are the on-screen size of the surface in CSS pixels
	Width() float64
	Height() float64
}

// CheckOutputSize fails when surface rendered at scale would exceed
// MaxOutputPixels
func CheckOutputSize(surface Surface, scale float64) error {
	w := math.Ceil(surface.Width() * scale)
	h := math.Ceil(surface.Height() * scale)
	if !(w*h <= MaxOutputPixels) {
		return fmt.Errorf("%w: %.0fx%.0f at %gx exceeds %d pixels", ErrOutputTooLarge, w, h, scale, MaxOutputPixels)
	}
	return nil
}

// RenderOptions selects the encoding and device pixel ratio of one render
type RenderOptions struct {
	Format models.DownloadFormat
	Scale  float64
}

// Renderer turns a surface into encoded bytes
type Renderer interface {
	Render(ctx context.Context, surface Surface, opts RenderOptions) ([]byte, error)
}

// ProgressFunc receives a progress update before each job renders
type ProgressFunc func(models.BatchExportProgress)

// BatchOutput is the result of a whole batch
type BatchOutput struct {
	Archive     []byte
	ArchiveName string
	Results     []models.BatchExportResult
	Succeeded   int
	Canceled    bool
}

// PackagingError means every render finished but the archive could not be built
type PackagingError struct {
	Err error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("failed to package export archive: %v", e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

// Orchestrator renders jobs one by one against a single surface and packages
// the successful outputs
type Orchestrator struct {
	renderer Renderer
	packager Packager
	timeout  time.Duration
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator. A nil packager uses ZipPackager and
// a non-positive timeout uses DefaultJobTimeout.
func NewOrchestrator(renderer Renderer, packager Packager, timeout time.Duration) *Orchestrator {
	if packager == nil {
		packager = ZipPackager{}
	}
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &Orchestrator{
		renderer: renderer,
		packager: packager,
		timeout:  timeout,
		now:      time.Now,
	}
}

// ScaleFor is the smallest integer scale >= 1 at which a surface of
// surfaceWidth reaches the preset width
func ScaleFor(presetWidth int, surfaceWidth float64) float64 {
	if surfaceWidth <= 0 {
		return 1
	}
	return math.Max(1, math.Ceil(float64(presetWidth)/surfaceWidth))
}

type queuedJob struct {
	index int
	job   models.BatchExportJob
}

// Run executes the batch. A failing job is recorded in its result and never
// stops the batch; only a missing surface, an empty job list or a packaging
// failure fail the whole call. When ctx is canceled between jobs the rest are
// recorded as failed and whatever succeeded is still packaged.
func (o *Orchestrator) Run(ctx context.Context, surface Surface, jobs []models.BatchExportJob, textContent string, onProgress ProgressFunc) (*BatchOutput, error) {
	if surface == nil {
		return nil, ErrMissingSurface
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	if onProgress == nil {
		onProgress = func(models.BatchExportProgress) {}
	}

	queue := make(chan queuedJob, len(jobs))
	for i, job := range jobs {
		queue <- queuedJob{index: i, job: job}
	}
	close(queue)

	log.Printf("📦 Starting export of %d items for %q (surface %s)", len(jobs), textContent, surface.ID())

	results := make([]models.BatchExportResult, len(jobs))
	entries := make([]Entry, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	canceled := false

	for q := range queue {
		if !canceled && ctx.Err() != nil {
			canceled = true
			log.Printf("⚠️  Export canceled before item %d/%d", q.index+1, len(jobs))
		}
		if canceled {
			results[q.index] = failure(q.job, ctx.Err())
			continue
		}

		if seen[q.job.Filename()] {
			log.Printf("⚠️  Skipping duplicate export %s", q.job.Filename())
			results[q.index] = failure(q.job, fmt.Errorf("duplicate job for %s", q.job.Filename()))
			continue
		}
		seen[q.job.Filename()] = true

		onProgress(models.BatchExportProgress{
			Current:     q.index + 1,
			Total:       len(jobs),
			CurrentItem: q.job.Label(),
		})

		data, err := o.renderJob(ctx, surface, q.job)
		if err != nil {
			log.Printf("❌ Failed to export %s: %v", q.job.Label(), err)
			results[q.index] = failure(q.job, err)
			continue
		}
		entries = append(entries, Entry{Filename: q.job.Filename(), Data: data})
		results[q.index] = models.BatchExportResult{Success: true, Filename: q.job.Filename()}
		log.Printf("✓ Exported %s (%d bytes)", q.job.Filename(), len(data))
	}

	archive, err := o.packager.Package(entries)
	if err != nil {
		return nil, &PackagingError{Err: err}
	}

	out := &BatchOutput{
		Archive:     archive,
		ArchiveName: ArchiveName(o.now()),
		Results:     results,
		Succeeded:   len(entries),
		Canceled:    canceled,
	}
	log.Printf("🎉 Export finished: %d/%d succeeded, archive %s", out.Succeeded, len(jobs), out.ArchiveName)
	return out, nil
}

// renderJob runs one render under the per-job timeout and turns a panic into
// an error so one broken job cannot take the batch down
func (o *Orchestrator) renderJob(ctx context.Context, surface Surface, job models.BatchExportJob) (data []byte, err error) {
	jobCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	opts := RenderOptions{
		Format: job.Format,
		Scale:  ScaleFor(job.Preset.Dimensions.Width, surface.Width()),
	}
	if err := CheckOutputSize(surface, opts.Scale); err != nil {
		return nil, err
	}
	data, err = o.renderer.Render(jobCtx, surface, opts)
	if err != nil {
		if errors.Is(jobCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("render timed out after %s", o.timeout)
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("renderer returned no data")
	}
	return data, nil
}

func failure(job models.BatchExportJob, err error) models.BatchExportResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return models.BatchExportResult{
		Success:  false,
		Filename: job.FailureFilename(),
		Error:    msg,
	}
}
