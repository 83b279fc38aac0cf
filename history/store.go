package history

import (
	"errors"
	"fmt"

	"wordmark/models"
)

// DefaultMaxSize is the number of versions kept when no size is configured
const DefaultMaxSize = 50

// ErrIndexOutOfRange is returned when a version index does not exist
var ErrIndexOutOfRange = errors.New("history index out of range")

// Store is a bounded, ordered list of versions with a cursor on the active one.
// Oldest versions are evicted first once the store is full.
type Store struct {
	snapshots []models.Snapshot
	cursor    int
	max       int
}

// NewStore creates an empty store keeping at most max versions
func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxSize
	}
	return &Store{
		snapshots: make([]models.Snapshot, 0, max),
		cursor:    -1,
		max:       max,
	}
}

// NewStoreFrom rebuilds a store from persisted versions. Versions beyond max
// are dropped from the front and an out-of-range cursor points at the newest.
func NewStoreFrom(snapshots []models.Snapshot, cursor int, max int) *Store {
	s := NewStore(max)
	for _, snap := range snapshots {
		s.Append(snap)
	}
	if excess := len(snapshots) - len(s.snapshots); excess > 0 {
		cursor -= excess
	}
	if cursor >= 0 && cursor < len(s.snapshots) {
		s.cursor = cursor
	}
	return s
}

// Append adds a version at the end and moves the cursor to it
func (s *Store) Append(snap models.Snapshot) {
	s.snapshots = append(s.snapshots, snap.Clone())
	if len(s.snapshots) > s.max {
		// copy down instead of reslicing so the backing array does not grow forever
		n := copy(s.snapshots, s.snapshots[len(s.snapshots)-s.max:])
		s.snapshots = s.snapshots[:n]
	}
	s.cursor = len(s.snapshots) - 1
}

// At returns the version at index
func (s *Store) At(index int) (models.Snapshot, error) {
	if index < 0 || index >= len(s.snapshots) {
		return models.Snapshot{}, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, index, len(s.snapshots))
	}
	return s.snapshots[index].Clone(), nil
}

// Jump moves the cursor to index and returns that version
func (s *Store) Jump(index int) (models.Snapshot, error) {
	snap, err := s.At(index)
	if err != nil {
		return models.Snapshot{}, err
	}
	s.cursor = index
	return snap, nil
}

// Len returns the number of stored versions
func (s *Store) Len() int {
	return len(s.snapshots)
}

// Cursor returns the index of the active version, -1 when empty
func (s *Store) Cursor() int {
	return s.cursor
}

// Max returns the capacity of the store
func (s *Store) Max() int {
	return s.max
}

// Snapshots returns a copy of all versions, oldest first
func (s *Store) Snapshots() []models.Snapshot {
	out := make([]models.Snapshot, len(s.snapshots))
	for i, snap := range s.snapshots {
		out[i] = snap.Clone()
	}
	return out
}

// Clear drops all versions
func (s *Store) Clear() {
	s.snapshots = s.snapshots[:0]
	s.cursor = -1
}
