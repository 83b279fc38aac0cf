package service

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	UploadArchive(folderID, name string, data []byte) (string, error)
	ListArchives(folderID string) ([]DriveArchive, error)
}
