package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wordmark/repository"
)

// ErrSessionNotFound is returned for an unknown session id
var ErrSessionNotFound = errors.New("session not found")

// SessionManager keeps the open design sessions and reopens persisted ones
// on demand
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*DesignSession
	repo     repository.StateRepositoryInterface
	opts     SessionOptions
}

// NewSessionManager creates a manager persisting through repo. A nil repo
// keeps every session in memory.
func NewSessionManager(repo repository.StateRepositoryInterface, opts SessionOptions) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*DesignSession),
		repo:     repo,
		opts:     opts.withDefaults(),
	}
}

// Create opens a new session on the default design
func (m *SessionManager) Create() *DesignSession {
	id := uuid.New().String()
	s := NewDesignSession(id, m.repo, m.opts)

	s.mu.Lock()
	s.saveJSON(repository.KeyCardState, s.design)
	s.persistHistoryLocked()
	s.saveJSON(repository.KeyExportPreferences, s.prefs)
	s.mu.Unlock()

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Printf("✓ Session %s created", id)
	return s
}

// Get returns an open session, reopening it from storage if needed
func (m *SessionManager) Get(ctx context.Context, id string) (*DesignSession, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if m.repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	restored := NewDesignSession(id, m.repo, m.opts)
	if !restored.restore(ctx) {
		restored.Close()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have reopened it meanwhile
	if s, ok := m.sessions[id]; ok {
		restored.Close()
		return s, nil
	}
	m.sessions[id] = restored
	log.Printf("✓ Session %s restored from storage", id)
	return restored, nil
}

// Delete closes a session and removes its stored state
func (m *SessionManager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.autosave.Stop()
	}
	if m.repo == nil {
		if !ok {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil
	}
	if !ok {
		if _, err := m.repo.Load(ctx, id, repository.KeyCardState); errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
	}
	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	log.Printf("✓ Session %s deleted", id)
	return nil
}

// List returns the ids of open and stored sessions, sorted
func (m *SessionManager) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	m.mu.RLock()
	for id := range m.sessions {
		seen[id] = true
	}
	m.mu.RUnlock()

	if m.repo != nil {
		stored, err := m.repo.ListSessions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		for _, id := range stored {
			seen[id] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close saves pending edits of every open session
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := make([]*DesignSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*DesignSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	log.Printf("✓ Closed %d sessions", len(sessions))
}
