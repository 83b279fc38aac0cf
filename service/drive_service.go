package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const zipMimeType = "application/zip"

// DriveArchive is an export archive stored in Google Drive
type DriveArchive struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatedTime string `json:"createdTime"`
	Size        int64  `json:"size"`
}

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// NewDriveService creates a new DriveService instance
// credentialsPath should be the path to the Service Account JSON file
func NewDriveService(credentialsPath string) (*DriveService, error) {
	ctx := context.Background()

	// option.WithCredentialsFile automatically handles Service Account authentication
	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client: driveService,
	}, nil
}

// UploadArchive stores a zip archive in folderID and returns the new file id
func (ds *DriveService) UploadArchive(folderID, name string, data []byte) (string, error) {
	file := &drive.File{
		Name:     name,
		MimeType: zipMimeType,
	}
	if folderID != "" {
		file.Parents = []string{folderID}
	}

	created, err := ds.client.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id, name").
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}

	log.Printf("✓ Uploaded %s to Drive (id=%s, %d bytes)", created.Name, created.Id, len(data))
	return created.Id, nil
}

// ListArchives lists the export archives in a Google Drive folder, newest first
func (ds *DriveService) ListArchives(folderID string) ([]DriveArchive, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", folderID, zipMimeType)

	var archives []DriveArchive
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			OrderBy("createdTime desc").
			Fields("nextPageToken, files(id, name, createdTime, size)")

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		for _, f := range r.Files {
			archives = append(archives, DriveArchive{
				ID:          f.Id,
				Name:        f.Name,
				CreatedTime: f.CreatedTime,
				Size:        f.Size,
			})
		}
		pageToken = r.NextPageToken

		if pageToken == "" {
			break
		}
	}

	return archives, nil
}
