package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmark/export"
	"wordmark/models"
)

type stubRenderer struct {
	calls []export.RenderOptions
	fail  models.DownloadFormat
}

func (r *stubRenderer) Render(_ context.Context, surface export.Surface, opts export.RenderOptions) ([]byte, error) {
	r.calls = append(r.calls, opts)
	if opts.Format == r.fail {
		return nil, errors.New("encoder exploded")
	}
	return []byte(surface.ID() + ":" + string(opts.Format)), nil
}

type fakeDrive struct {
	uploaded []string
	err      error
}

func (d *fakeDrive) UploadArchive(folderID, name string, data []byte) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.uploaded = append(d.uploaded, folderID+"/"+name)
	return "drive-file-1", nil
}

func (d *fakeDrive) ListArchives(folderID string) ([]DriveArchive, error) {
	return []DriveArchive{{ID: "drive-file-1", Name: "spaik-export.zip"}}, nil
}

func newTestExportService(r export.Renderer, drive DriveServiceInterface) *ExportService {
	s := NewExportService(r, 0, 0, drive, "folder-1")
	s.now = func() time.Time { return testNow }
	return s
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	return names
}

func TestRunBatch(t *testing.T) {
	session, _ := newTestSession(t)
	renderer := &stubRenderer{}
	svc := newTestExportService(renderer, nil)

	var progress []models.BatchExportProgress
	resp, err := svc.RunBatch(context.Background(), session, BatchRequest{
		Presets: []string{"sidebar-logo", "favicon"},
		Formats: []string{"png", "svg"},
	}, func(p models.BatchExportProgress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 3, resp.Succeeded)
	assert.Equal(t, 0, resp.Failed)
	assert.Len(t, progress, 3)
	assert.Equal(t, "/api/exports/"+resp.ArchiveID, resp.DownloadURL)
	assert.Regexp(t, `^spaik-export-\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z\.zip$`, resp.ArchiveName)

	archive, err := svc.Archive(resp.ArchiveID)
	require.NoError(t, err)
	assert.Equal(t, resp.ArchiveName, archive.Name)
	// catalog order, each preset's own format order
	assert.Equal(t, []string{
		"favicon-32x32.png",
		"sidebar-logo-120x40.png",
		"sidebar-logo-120x40.svg",
	}, zipNames(t, archive.Data))

	prefs := session.Preferences()
	assert.Equal(t, []string{"favicon", "sidebar-logo"}, prefs.SelectedPresets)
	assert.Equal(t, []models.DownloadFormat{models.FormatPNG, models.FormatSVG}, prefs.SelectedFormats)
}

func TestRunBatchPartialFailure(t *testing.T) {
	session, _ := newTestSession(t)
	svc := newTestExportService(&stubRenderer{fail: models.FormatSVG}, nil)

	resp, err := svc.RunBatch(context.Background(), session, BatchRequest{
		Presets: []string{"sidebar-logo"},
		Formats: []string{"png", "svg"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "sidebar-logo.svg", resp.Results[1].Filename)
	assert.Contains(t, resp.Results[1].Error, "encoder exploded")
}

func TestRunBatchUsesSavedPreferences(t *testing.T) {
	session, _ := newTestSession(t)
	_, err := session.SetPreferences(models.ExportPreferences{SelectedPresets: []string{"favicon"}})
	require.NoError(t, err)
	svc := newTestExportService(&stubRenderer{}, nil)

	resp, err := svc.RunBatch(context.Background(), session, BatchRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestRunBatchErrors(t *testing.T) {
	session, _ := newTestSession(t)
	svc := newTestExportService(&stubRenderer{}, nil)
	ctx := context.Background()

	_, err := svc.RunBatch(ctx, session, BatchRequest{Presets: []string{"billboard"}}, nil)
	assert.ErrorIs(t, err, export.ErrUnknownPreset)

	_, err = svc.RunBatch(ctx, session, BatchRequest{Presets: []string{"favicon"}, Formats: []string{"gif"}}, nil)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)

	_, err = svc.RunBatch(ctx, session, BatchRequest{}, nil)
	assert.ErrorIs(t, err, export.ErrNoJobs)

	// favicon has no svg output
	_, err = svc.RunBatch(ctx, session, BatchRequest{Presets: []string{"favicon"}, Formats: []string{"svg"}}, nil)
	assert.ErrorIs(t, err, export.ErrNoJobs)

	_, err = svc.Archive("unknown")
	assert.ErrorIs(t, err, ErrArchiveNotFound)
}

func TestRunBatchUploadsToDrive(t *testing.T) {
	session, _ := newTestSession(t)
	drive := &fakeDrive{}
	svc := newTestExportService(&stubRenderer{}, drive)

	resp, err := svc.RunBatch(context.Background(), session, BatchRequest{Presets: []string{"favicon"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "drive-file-1", resp.DriveFileID)
	assert.Equal(t, []string{"folder-1/" + resp.ArchiveName}, drive.uploaded)

	archives, err := svc.DriveArchives()
	require.NoError(t, err)
	assert.Len(t, archives, 1)
}

func TestRunBatchDriveFailureKeepsArchive(t *testing.T) {
	session, _ := newTestSession(t)
	svc := newTestExportService(&stubRenderer{}, &fakeDrive{err: errors.New("quota exceeded")})

	resp, err := svc.RunBatch(context.Background(), session, BatchRequest{Presets: []string{"favicon"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.DriveFileID)
	_, err = svc.Archive(resp.ArchiveID)
	assert.NoError(t, err)
}

func TestDriveArchivesDisabled(t *testing.T) {
	svc := newTestExportService(&stubRenderer{}, nil)
	_, err := svc.DriveArchives()
	assert.ErrorIs(t, err, ErrDriveDisabled)
}

func TestExportSingle(t *testing.T) {
	session, sched := newTestSession(t)
	edit(t, session, sched, "Acme: Labs")
	renderer := &stubRenderer{}
	svc := newTestExportService(renderer, nil)

	out, err := svc.ExportSingle(context.Background(), session, models.FormatJPEG, 0)
	require.NoError(t, err)
	assert.Equal(t, "spaik-Acme- Labs-2026-03-01T12-00-00-000Z.jpeg", out.Filename)
	assert.Equal(t, "image/jpeg", out.MimeType)
	assert.True(t, strings.HasPrefix(string(out.Data), "test-session:"))
	require.Len(t, renderer.calls, 1)
	assert.Equal(t, float64(DefaultExportScale), renderer.calls[0].Scale)

	_, err = svc.ExportSingle(context.Background(), session, "tiff", 1)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestArchiveLimitsEvictOldest(t *testing.T) {
	svc := newTestExportService(&stubRenderer{}, nil)
	svc.SetArchiveLimits(2, 100)

	for _, id := range []string{"a", "b", "c"} {
		svc.store(id, StoredArchive{Name: id + ".zip", Data: make([]byte, 10), CreatedAt: testNow})
	}
	_, err := svc.Archive("a")
	assert.ErrorIs(t, err, ErrArchiveNotFound, "the count cap drops the oldest")
	for _, id := range []string{"b", "c"} {
		_, err := svc.Archive(id)
		assert.NoError(t, err)
	}

	svc.store("d", StoredArchive{Name: "d.zip", Data: make([]byte, 95), CreatedAt: testNow})
	for _, id := range []string{"b", "c"} {
		_, err := svc.Archive(id)
		assert.ErrorIs(t, err, ErrArchiveNotFound, "the size cap drops %s", id)
	}
	assert.Equal(t, int64(95), svc.storedBytes)

	svc.store("e", StoredArchive{Name: "e.zip", Data: make([]byte, 500), CreatedAt: testNow})
	_, err = svc.Archive("e")
	assert.NoError(t, err, "the newest archive is kept even above the size cap")
	assert.Equal(t, []string{"e"}, svc.order)
	assert.Equal(t, int64(500), svc.storedBytes)
}

func TestRunBatchEvictsOldArchives(t *testing.T) {
	session, _ := newTestSession(t)
	svc := newTestExportService(&stubRenderer{}, nil)
	svc.SetArchiveLimits(1, 0)

	req := BatchRequest{Presets: []string{"favicon"}, Formats: []string{"png"}}
	first, err := svc.RunBatch(context.Background(), session, req, nil)
	require.NoError(t, err)
	second, err := svc.RunBatch(context.Background(), session, req, nil)
	require.NoError(t, err)

	_, err = svc.Archive(first.ArchiveID)
	assert.ErrorIs(t, err, ErrArchiveNotFound)
	_, err = svc.Archive(second.ArchiveID)
	assert.NoError(t, err)
}
