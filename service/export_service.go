package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wordmark/export"
	"wordmark/models"
)

// DefaultExportScale is the device pixel ratio of a single export
const DefaultExportScale = 2

var (
	// ErrArchiveNotFound is returned for an unknown or expired archive id
	ErrArchiveNotFound = errors.New("archive expired or not found")
	// ErrDriveDisabled is returned when no Drive folder is configured
	ErrDriveDisabled = errors.New("drive upload is not configured")
)

// BatchRequest selects presets and formats by id. Empty lists fall back to
// the session's saved export preferences.
type BatchRequest struct {
	Presets []string `json:"presets"`
	Formats []string `json:"formats"`
}

// BatchResponse describes a finished batch and where to download it
type BatchResponse struct {
	ArchiveID   string                     `json:"archiveId"`
	ArchiveName string                     `json:"archiveName"`
	DownloadURL string                     `json:"downloadUrl"`
	Results     []models.BatchExportResult `json:"results"`
	Total       int                        `json:"total"`
	Succeeded   int                        `json:"succeeded"`
	Failed      int                        `json:"failed"`
	Canceled    bool                       `json:"canceled"`
	DriveFileID string                     `json:"driveFileId,omitempty"`
}

// StoredArchive is a packaged batch kept for download
type StoredArchive struct {
	Name      string
	Data      []byte
	CreatedAt time.Time
}

// SingleExport is one rendered image
type SingleExport struct {
	Filename string
	MimeType string
	Data     []byte
}

// ExportService runs batch and single exports of a session's design card and
// keeps finished archives downloadable for a limited time
type ExportService struct {
	orchestrator *export.Orchestrator
	renderer     export.Renderer
	drive        DriveServiceInterface
	driveFolder  string
	retention    time.Duration
	now          func() time.Time

	mu          sync.RWMutex
	archives    map[string]StoredArchive
	order       []string // archive ids, oldest first
	storedBytes int64
	maxArchives int
	maxBytes    int64
}

// Default caps on the archives kept in memory
const (
	DefaultMaxArchives     = 20
	DefaultMaxArchiveBytes = 256 << 20
)

// NewExportService creates an ExportService. drive may be nil to skip uploads.
func NewExportService(renderer export.Renderer, jobTimeout, retention time.Duration, drive DriveServiceInterface, driveFolder string) *ExportService {
	if retention <= 0 {
		retention = 10 * time.Minute
	}
	return &ExportService{
		orchestrator: export.NewOrchestrator(renderer, export.ZipPackager{}, jobTimeout),
		renderer:     renderer,
		drive:        drive,
		driveFolder:  driveFolder,
		retention:    retention,
		now:          time.Now,
		archives:     make(map[string]StoredArchive),
		maxArchives:  DefaultMaxArchives,
		maxBytes:     DefaultMaxArchiveBytes,
	}
}

// SetArchiveLimits caps how many archives are kept and their total size.
// Non-positive values keep the defaults. Older archives are evicted first.
func (s *ExportService) SetArchiveLimits(count int, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count > 0 {
		s.maxArchives = count
	}
	if bytes > 0 {
		s.maxBytes = bytes
	}
	s.evictLocked()
}

// Jobs resolves a request into the job list, saving the selection as the
// session's export preferences
func (s *ExportService) Jobs(session *DesignSession, req BatchRequest) ([]models.BatchExportJob, error) {
	prefs := session.Preferences()

	presetIDs := req.Presets
	if len(presetIDs) == 0 {
		presetIDs = prefs.SelectedPresets
	}
	presets, err := export.ResolvePresets(presetIDs)
	if err != nil {
		return nil, err
	}

	formats := prefs.SelectedFormats
	if len(req.Formats) > 0 {
		formats = make([]models.DownloadFormat, 0, len(req.Formats))
		for _, raw := range req.Formats {
			f, err := models.ParseDownloadFormat(raw)
			if err != nil {
				return nil, err
			}
			formats = append(formats, f)
		}
	}

	ids := make([]string, len(presets))
	for i, p := range presets {
		ids[i] = p.ID
	}
	if _, err := session.SetPreferences(models.ExportPreferences{SelectedPresets: ids, SelectedFormats: formats}); err != nil {
		return nil, err
	}

	return export.Expand(presets, formats), nil
}

// RunBatch renders every selected (preset, format) pair of the session's
// design card and stores the archive
func (s *ExportService) RunBatch(ctx context.Context, session *DesignSession, req BatchRequest, onProgress export.ProgressFunc) (*BatchResponse, error) {
	jobs, err := s.Jobs(session, req)
	if err != nil {
		return nil, err
	}

	design := session.Design()
	log.Printf("📦 Batch export for session %s: %d jobs", session.ID(), len(jobs))

	out, err := s.orchestrator.Run(ctx, NewCardSurface(session.ID(), design), jobs, design.Text.Text, onProgress)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	s.store(id, StoredArchive{Name: out.ArchiveName, Data: out.Archive, CreatedAt: s.now()})

	resp := &BatchResponse{
		ArchiveID:   id,
		ArchiveName: out.ArchiveName,
		DownloadURL: fmt.Sprintf("/api/exports/%s", id),
		Results:     out.Results,
		Total:       len(out.Results),
		Succeeded:   out.Succeeded,
		Failed:      len(out.Results) - out.Succeeded,
		Canceled:    out.Canceled,
	}

	if s.drive != nil && s.driveFolder != "" {
		fileID, err := s.drive.UploadArchive(s.driveFolder, out.ArchiveName, out.Archive)
		if err != nil {
			log.Printf("⚠️  Drive upload of %s failed: %v", out.ArchiveName, err)
		} else {
			resp.DriveFileID = fileID
		}
	}

	log.Printf("✓ Archive %s stored as %s for %s", out.ArchiveName, id, s.retention)
	return resp, nil
}

// store keeps an archive and schedules its removal after the retention period.
// Older archives are evicted when the count or size cap is exceeded.
func (s *ExportService) store(id string, archive StoredArchive) {
	s.mu.Lock()
	s.archives[id] = archive
	s.order = append(s.order, id)
	s.storedBytes += int64(len(archive.Data))
	s.evictLocked()
	s.mu.Unlock()

	time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		s.removeLocked(id)
		s.mu.Unlock()
	})
}

// evictLocked drops the oldest archives until both caps hold. The newest
// archive is always kept. Caller must hold mu.
func (s *ExportService) evictLocked() {
	for len(s.order) > 1 && (len(s.order) > s.maxArchives || s.storedBytes > s.maxBytes) {
		oldest := s.order[0]
		log.Printf("⚠️  Evicting archive %s (%s) to stay within limits", oldest, s.archives[oldest].Name)
		s.removeLocked(oldest)
	}
}

func (s *ExportService) removeLocked(id string) {
	archive, ok := s.archives[id]
	if !ok {
		return
	}
	delete(s.archives, id)
	s.storedBytes -= int64(len(archive.Data))
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Archive returns a stored archive
func (s *ExportService) Archive(id string) (StoredArchive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	archive, ok := s.archives[id]
	if !ok {
		return StoredArchive{}, fmt.Errorf("%w: %s", ErrArchiveNotFound, id)
	}
	return archive, nil
}

// DriveArchives lists the archives uploaded to the Drive folder, newest first
func (s *ExportService) DriveArchives() ([]DriveArchive, error) {
	if s.drive == nil || s.driveFolder == "" {
		return nil, ErrDriveDisabled
	}
	archives, err := s.drive.ListArchives(s.driveFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to list drive archives: %w", err)
	}
	if archives == nil {
		archives = []DriveArchive{}
	}
	return archives, nil
}

// ExportSingle renders the session's design card once. A non-positive scale
// uses DefaultExportScale.
func (s *ExportService) ExportSingle(ctx context.Context, session *DesignSession, format models.DownloadFormat, scale float64) (*SingleExport, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, format)
	}
	if scale <= 0 {
		scale = DefaultExportScale
	}

	design := session.Design()
	data, err := s.renderer.Render(ctx, NewCardSurface(session.ID(), design), export.RenderOptions{Format: format, Scale: scale})
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", format, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to export %s: empty render output", format)
	}

	return &SingleExport{
		Filename: export.GenerateFilename(strings.TrimSpace(design.Text.Text), format, export.DefaultPrefix, s.now()),
		MimeType: format.MimeType(),
		Data:     data,
	}, nil
}
