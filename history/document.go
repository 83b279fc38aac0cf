package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wordmark/models"
)

// DocumentVersion is the schema version written into exported documents
const DocumentVersion = 1

// ErrInvalidDocument is returned when an imported document cannot be used
var ErrInvalidDocument = errors.New("invalid history document")

// Document is the portable form of a session's versions and favorites
type Document struct {
	Version    int               `json:"version"`
	ExportedAt string            `json:"exportedAt"`
	History    []models.Snapshot `json:"history"`
	Favorites  []models.Favorite `json:"favorites"`
}

// NewDocument builds an export document stamped with now
func NewDocument(history []models.Snapshot, favorites []models.Favorite, now time.Time) Document {
	if history == nil {
		history = []models.Snapshot{}
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	return Document{
		Version:    DocumentVersion,
		ExportedAt: now.UTC().Format(time.RFC3339Nano),
		History:    history,
		Favorites:  favorites,
	}
}

// ParseDocument decodes and validates an imported document. Every snapshot and
// favorite must validate; a single bad entry rejects the whole document. AI
// icon markup comes back sanitized.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version <= 0 || doc.Version > DocumentVersion {
		return Document{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidDocument, doc.Version)
	}
	for i, s := range doc.History {
		if err := s.Validate(); err != nil {
			return Document{}, fmt.Errorf("%w: history[%d]: %v", ErrInvalidDocument, i, err)
		}
		clean, err := s.Sanitized()
		if err != nil {
			return Document{}, fmt.Errorf("%w: history[%d]: %v", ErrInvalidDocument, i, err)
		}
		doc.History[i] = clean
	}
	seen := make(map[string]bool, len(doc.Favorites))
	for i, f := range doc.Favorites {
		if f.FavoriteID == "" {
			return Document{}, fmt.Errorf("%w: favorites[%d]: missing favoriteId", ErrInvalidDocument, i)
		}
		if seen[f.FavoriteID] {
			return Document{}, fmt.Errorf("%w: favorites[%d]: duplicate favoriteId %s", ErrInvalidDocument, i, f.FavoriteID)
		}
		seen[f.FavoriteID] = true
		if err := f.Snapshot().Validate(); err != nil {
			return Document{}, fmt.Errorf("%w: favorites[%d]: %v", ErrInvalidDocument, i, err)
		}
		clean, err := f.Snapshot().Sanitized()
		if err != nil {
			return Document{}, fmt.Errorf("%w: favorites[%d]: %v", ErrInvalidDocument, i, err)
		}
		doc.Favorites[i].Icon = clean.Icon
	}
	if doc.History == nil {
		doc.History = []models.Snapshot{}
	}
	if doc.Favorites == nil {
		doc.Favorites = []models.Favorite{}
	}
	return doc, nil
}
