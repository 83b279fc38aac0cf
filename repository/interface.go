package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing is stored under the key
var ErrNotFound = errors.New("state not found")

// Storage keys of a design session
const (
	KeyVersionHistory    = "wordmark_version_history"
	KeyUndoRedo          = "wordmark_undo_redo"
	KeyFavorites         = "wordmark_favorite_versions"
	KeyExportPreferences = "wordmark-export-preferences"
	KeyCardState         = "wordmark_card_state"
)

// StateRepositoryInterface defines the contract for per-session key/value persistence
type StateRepositoryInterface interface {
	Load(ctx context.Context, sessionID, key string) ([]byte, error)
	Save(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]string, error)
}
