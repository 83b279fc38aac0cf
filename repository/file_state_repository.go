package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStateRepository keeps one JSON document per session in a directory.
// Writes go to a temp file that is renamed over the original.
type FileStateRepository struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStateRepository creates a repository rooted at dir
func NewFileStateRepository(dir string) (*FileStateRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileStateRepository{dir: dir}, nil
}

// Ensure FileStateRepository implements StateRepositoryInterface
var _ StateRepositoryInterface = (*FileStateRepository)(nil)

// Load retrieves the value stored for a session key
func (r *FileStateRepository) Load(_ context.Context, sessionID, key string) ([]byte, error) {
	path, err := r.path(sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

// Save stores value under key, keeping the other keys of the session
func (r *FileStateRepository) Save(_ context.Context, sessionID, key string, value []byte) error {
	path, err := r.path(sessionID)
	if err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("failed to save %s: value is not valid JSON", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := readDocument(path)
	if err != nil {
		// a corrupt document is replaced rather than blocking every later save
		doc = map[string]json.RawMessage{}
	}
	doc[key] = json.RawMessage(value)
	return writeAtomic(path, doc)
}

// Delete removes the session document
func (r *FileStateRepository) Delete(_ context.Context, sessionID string) error {
	path, err := r.path(sessionID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// ListSessions returns the ids of all stored sessions, sorted
func (r *FileStateRepository) ListSessions(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *FileStateRepository) path(sessionID string) (string, error) {
	if sessionID == "" || sessionID != filepath.Base(sessionID) || strings.HasPrefix(sessionID, ".") {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(r.dir, sessionID+".json"), nil
}

// readDocument returns an empty document when the file does not exist
func readDocument(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func writeAtomic(path string, doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
