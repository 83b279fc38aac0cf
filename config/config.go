package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wordmark/db"
)

// Storage backends
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Renderers
const (
	RendererChrome = "chrome"
	RendererCanvas = "canvas"
)

// SetDefaults registers the default of every setting. Keys map to upper-case
// environment variables through viper.AutomaticEnv.
func SetDefaults() {
	viper.SetDefault("port", "8080")
	viper.SetDefault("base_url", "")
	viper.SetDefault("history_max_size", 50)
	viper.SetDefault("autosave_debounce_ms", 500)
	viper.SetDefault("export_job_timeout_seconds", 30)
	viper.SetDefault("export_retention_minutes", 10)
	viper.SetDefault("export_max_archives", 20)
	viper.SetDefault("export_max_archive_mb", 256)
	viper.SetDefault("storage_backend", StorageFile)
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("renderer", RendererChrome)
	viper.SetDefault("chrome_path", "")
	viper.SetDefault("favorites_max", 0)
	viper.SetDefault("google_application_credentials", "")
	viper.SetDefault("drive_export_folder_id", "")
}

// GetPort returns the listen port without a leading colon
func GetPort() string {
	return strings.TrimPrefix(viper.GetString("port"), ":")
}

// GetBaseURL returns the URL the headless browser uses to reach this server
func GetBaseURL() string {
	if u := viper.GetString("base_url"); u != "" {
		return strings.TrimSuffix(u, "/")
	}
	return fmt.Sprintf("http://localhost:%s", GetPort())
}

// GetHistoryMaxSize returns how many versions a session keeps
func GetHistoryMaxSize() int {
	return viper.GetInt("history_max_size")
}

// GetAutosaveDebounce returns the quiet period before an edit is saved
func GetAutosaveDebounce() time.Duration {
	return time.Duration(viper.GetInt("autosave_debounce_ms")) * time.Millisecond
}

// GetExportJobTimeout returns the limit for one render of a batch
func GetExportJobTimeout() time.Duration {
	return time.Duration(viper.GetInt("export_job_timeout_seconds")) * time.Second
}

// GetExportRetention returns how long finished archives stay downloadable
func GetExportRetention() time.Duration {
	return time.Duration(viper.GetInt("export_retention_minutes")) * time.Minute
}

// GetExportMaxArchives returns how many finished archives are kept at once
func GetExportMaxArchives() int {
	return viper.GetInt("export_max_archives")
}

// GetExportMaxArchiveBytes returns the total size finished archives may use
func GetExportMaxArchiveBytes() int64 {
	return viper.GetInt64("export_max_archive_mb") << 20
}

// GetStorageBackend returns "file" or "postgres"
func GetStorageBackend() string {
	return strings.ToLower(viper.GetString("storage_backend"))
}

// GetDataDir returns the directory of the file storage backend
func GetDataDir() string {
	return viper.GetString("data_dir")
}

// GetRenderer returns "chrome" or "canvas"
func GetRenderer() string {
	return strings.ToLower(viper.GetString("renderer"))
}

// GetChromePath returns an explicit browser binary, empty to auto-detect
func GetChromePath() string {
	return viper.GetString("chrome_path")
}

// GetFavoritesMax returns the favorites cap, 0 for unbounded
func GetFavoritesMax() int {
	return viper.GetInt("favorites_max")
}

// GetDriveCredentials returns the service account file for archive upload
func GetDriveCredentials() string {
	return viper.GetString("google_application_credentials")
}

// GetDriveFolderID returns the Drive folder archives are uploaded to
func GetDriveFolderID() string {
	return viper.GetString("drive_export_folder_id")
}

// GetDatabaseConnString builds the postgres DSN from DATABASE_URL or DB_*
func GetDatabaseConnString() (string, error) {
	return db.ConnString(viper.GetString("database_url"), db.Params{
		Host:     viper.GetString("db_host"),
		Port:     viper.GetString("db_port"),
		User:     viper.GetString("db_user"),
		Password: viper.GetString("db_password"),
		Name:     viper.GetString("db_name"),
		SSLMode:  viper.GetString("db_sslmode"),
	})
}
