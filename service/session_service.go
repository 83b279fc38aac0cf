package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"wordmark/history"
	"wordmark/models"
	"wordmark/repository"
)

const storageTimeout = 5 * time.Second

var (
	// ErrFavoriteNotFound is returned for an unknown favorite id
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrInvalidDesign wraps validation failures of an incoming design
	ErrInvalidDesign = errors.New("invalid design")
)

// SessionOptions tunes a design session
type SessionOptions struct {
	HistoryMax   int
	Debounce     time.Duration
	FavoritesMax int
	Scheduler    history.Scheduler
	Now          func() time.Time
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.HistoryMax <= 0 {
		o.HistoryMax = history.DefaultMaxSize
	}
	if o.Debounce <= 0 {
		o.Debounce = history.DefaultDebounce
	}
	if o.Scheduler == nil {
		o.Scheduler = history.TimerScheduler{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// versionHistoryState is the persisted shape of the version list
type versionHistoryState struct {
	Snapshots []models.Snapshot `json:"snapshots"`
	Cursor    int               `json:"cursor"`
}

// HistoryView is what the editor needs to draw the undo buttons and the
// version list
type HistoryView struct {
	Present      models.Snapshot   `json:"present"`
	CanUndo      bool              `json:"canUndo"`
	CanRedo      bool              `json:"canRedo"`
	UndoDepth    int               `json:"undoDepth"`
	RedoDepth    int               `json:"redoDepth"`
	Versions     []models.Snapshot `json:"versions"`
	Cursor       int               `json:"cursor"`
	VersionCount int               `json:"versionCount"`
	IsFavorited  bool              `json:"isFavorited"`
}

// DesignSession owns the editable design of one open document together with
// its undo timeline, version list, favorites and export preferences.
// Lock order is mu, then the autosaver's lock; Flush is never called with mu held.
type DesignSession struct {
	id   string
	opts SessionOptions
	repo repository.StateRepositoryInterface

	mu        sync.Mutex
	design    models.Snapshot
	timeline  history.UndoRedoState
	versions  *history.Store
	favorites *history.Favorites
	prefs     models.ExportPreferences
	autosave  *history.AutoSaver
	onApply   func(models.Snapshot)
}

// NewDesignSession creates a session starting from the default design.
// A nil repo keeps the session in memory only.
func NewDesignSession(id string, repo repository.StateRepositoryInterface, opts SessionOptions) *DesignSession {
	opts = opts.withDefaults()
	initial := models.DefaultSnapshot(opts.Now())

	s := &DesignSession{
		id:        id,
		opts:      opts,
		repo:      repo,
		design:    initial,
		timeline:  history.NewUndoRedoState(initial),
		versions:  history.NewStore(opts.HistoryMax),
		favorites: history.NewFavorites(nil, opts.FavoritesMax),
		prefs:     models.DefaultExportPreferences(),
	}
	s.versions.Append(initial)
	s.autosave = history.NewAutoSaver(opts.Scheduler, opts.Debounce, s.autoPush)
	s.autosave.Prime(initial)
	return s
}

// ID returns the session id
func (s *DesignSession) ID() string {
	return s.id
}

// OnApply registers a callback invoked with every design written back by
// undo, redo or a restore
func (s *DesignSession) OnApply(fn func(models.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onApply = fn
}

// Design returns the current editable design
func (s *DesignSession) Design() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.design.Clone()
}

// Surface captures the design card for rendering
func (s *DesignSession) Surface() *CardSurface {
	return NewCardSurface(s.id, s.Design())
}

// UpdateDesign replaces the editable design and schedules an auto-save.
// It reports whether an auto-save was scheduled.
func (s *DesignSession) UpdateDesign(design models.Snapshot) (bool, error) {
	if err := design.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidDesign, err)
	}
	design, err := design.Sanitized()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidDesign, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.design = design.WithTimestamp(s.opts.Now())
	s.saveJSON(repository.KeyCardState, s.design)
	return s.autosave.Observe(s.design), nil
}

// SaveSnapshot pushes the current design right away, dropping any pending
// auto-save. It returns false when the design equals the present state.
func (s *DesignSession) SaveSnapshot() bool {
	s.autosave.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.design.WithTimestamp(s.opts.Now())
	s.autosave.Prime(snap)
	return s.pushLocked(snap, true)
}

// FlushAutosave runs a pending auto-save now
func (s *DesignSession) FlushAutosave() bool {
	return s.autosave.Flush()
}

func (s *DesignSession) autoPush(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// a timer that fired before an undo or restore replaced the design is stale
	if !snap.Equal(s.design) {
		log.Printf("⚠️  Session %s: dropped stale auto-save", s.id)
		return
	}
	s.pushLocked(snap, true)
}

// pushLocked records snap on the timeline and, when appendVersion is set, in
// the version list. Caller must hold mu.
func (s *DesignSession) pushLocked(snap models.Snapshot, appendVersion bool) bool {
	next, changed := history.Push(s.timeline, snap, s.opts.HistoryMax)
	if !changed {
		return false
	}
	s.timeline = next
	if appendVersion {
		s.versions.Append(snap)
	}
	s.persistHistoryLocked()
	log.Printf("✓ Session %s: snapshot pushed (%d undo, %d versions)", s.id, len(s.timeline.Past), s.versions.Len())
	return true
}

// Undo steps back one state. changed is false with an empty past.
func (s *DesignSession) Undo() (HistoryView, bool) {
	return s.step(history.Undo)
}

// Redo steps forward one undone state. changed is false with an empty future.
func (s *DesignSession) Redo() (HistoryView, bool) {
	return s.step(history.Redo)
}

func (s *DesignSession) step(move func(history.UndoRedoState) (history.UndoRedoState, bool)) (HistoryView, bool) {
	// an edit still waiting for its auto-save belongs on the timeline first
	s.autosave.Flush()

	s.mu.Lock()
	next, changed := move(s.timeline)
	if !changed {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, false
	}
	s.timeline = next
	applied := s.applyLocked(*next.Present)
	s.persistHistoryLocked()
	view := s.viewLocked()
	onApply := s.onApply
	s.mu.Unlock()

	if onApply != nil {
		onApply(applied)
	}
	return view, true
}

// applyLocked writes snap back into the editable design. Caller must hold mu.
func (s *DesignSession) applyLocked(snap models.Snapshot) models.Snapshot {
	s.design = snap.Clone()
	s.autosave.Stop()
	s.autosave.Prime(s.design)
	s.saveJSON(repository.KeyCardState, s.design)
	return s.design.Clone()
}

// RestoreVersion makes the version at index the current design. The version
// list keeps its entries; only its cursor moves.
func (s *DesignSession) RestoreVersion(index int) (HistoryView, error) {
	s.autosave.Flush()

	s.mu.Lock()
	snap, err := s.versions.Jump(index)
	if err != nil {
		s.mu.Unlock()
		return HistoryView{}, err
	}
	applied := s.applyLocked(snap)
	if !s.pushLocked(snap, false) {
		s.persistHistoryLocked()
	}
	view := s.viewLocked()
	onApply := s.onApply
	s.mu.Unlock()

	log.Printf("✓ Session %s: restored version %d", s.id, index)
	if onApply != nil {
		onApply(applied)
	}
	return view, nil
}

// History returns the timeline and version list
func (s *DesignSession) History() HistoryView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *DesignSession) viewLocked() HistoryView {
	present := s.design.Clone()
	if s.timeline.Present != nil {
		present = s.timeline.Present.Clone()
	}
	return HistoryView{
		Present:      present,
		CanUndo:      s.timeline.CanUndo(),
		CanRedo:      s.timeline.CanRedo(),
		UndoDepth:    len(s.timeline.Past),
		RedoDepth:    len(s.timeline.Future),
		Versions:     s.versions.Snapshots(),
		Cursor:       s.versions.Cursor(),
		VersionCount: s.versions.Len(),
		IsFavorited:  s.favorites.IsFavorited(s.design),
	}
}

// Favorites lists the saved favorites in insertion order
func (s *DesignSession) Favorites() []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.List()
}

// AddFavorite saves the current design under name
func (s *DesignSession) AddFavorite(name string) (models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fav, err := s.favorites.Add(name, s.design, s.opts.Now())
	if err != nil {
		return models.Favorite{}, err
	}
	s.saveJSON(repository.KeyFavorites, s.favorites.List())
	log.Printf("✓ Session %s: favorite %q added (%s)", s.id, fav.Name, fav.FavoriteID)
	return fav, nil
}

// RemoveFavorite deletes a favorite. It returns false if id is unknown.
func (s *DesignSession) RemoveFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.favorites.Remove(id) {
		return false
	}
	s.saveJSON(repository.KeyFavorites, s.favorites.List())
	return true
}

// ToggleFavorite removes the favorite matching the current design, or adds
// the design under name when none matches
func (s *DesignSession) ToggleFavorite(name string) (models.Favorite, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fav, added, err := s.favorites.Toggle(name, s.design, s.opts.Now())
	if err != nil {
		return models.Favorite{}, false, err
	}
	s.saveJSON(repository.KeyFavorites, s.favorites.List())
	return fav, added, nil
}

// RestoreFavorite makes a favorite the current design and records it as a
// new version
func (s *DesignSession) RestoreFavorite(id string) (models.Snapshot, error) {
	s.autosave.Flush()

	s.mu.Lock()
	fav, ok := s.favorites.Get(id)
	if !ok {
		s.mu.Unlock()
		return models.Snapshot{}, fmt.Errorf("%w: %s", ErrFavoriteNotFound, id)
	}
	snap := history.Restore(fav).WithTimestamp(s.opts.Now())
	applied := s.applyLocked(snap)
	s.pushLocked(snap, true)
	onApply := s.onApply
	s.mu.Unlock()

	if onApply != nil {
		onApply(applied)
	}
	return applied, nil
}

// ExportDocument serializes versions and favorites for download
func (s *DesignSession) ExportDocument() ([]byte, error) {
	s.mu.Lock()
	doc := history.NewDocument(s.versions.Snapshots(), s.favorites.List(), s.opts.Now())
	s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history document: %w", err)
	}
	return data, nil
}

// ImportDocument replaces the version list with the document's history and
// adds its favorites that are not already present
func (s *DesignSession) ImportDocument(data []byte) (HistoryView, error) {
	doc, err := history.ParseDocument(data)
	if err != nil {
		return HistoryView{}, err
	}
	s.autosave.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.favorites.List()
	for _, fav := range doc.Favorites {
		if _, exists := s.favorites.Get(fav.FavoriteID); !exists {
			merged = append(merged, fav)
		}
	}
	if limit := s.opts.FavoritesMax; limit > 0 && len(merged) > limit {
		return HistoryView{}, fmt.Errorf("%w (%d): import would hold %d favorites", history.ErrFavoritesFull, limit, len(merged))
	}

	s.versions = history.NewStoreFrom(doc.History, len(doc.History)-1, s.opts.HistoryMax)
	s.favorites = history.NewFavorites(merged, s.opts.FavoritesMax)

	s.persistHistoryLocked()
	s.saveJSON(repository.KeyFavorites, s.favorites.List())
	log.Printf("✓ Session %s: imported %d versions and %d favorites", s.id, len(doc.History), len(doc.Favorites))
	return s.viewLocked(), nil
}

// Preferences returns the export dialog selection
func (s *DesignSession) Preferences() models.ExportPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePreferences(s.prefs)
}

// SetPreferences replaces the export dialog selection. An empty format list
// keeps the current formats.
func (s *DesignSession) SetPreferences(p models.ExportPreferences) (models.ExportPreferences, error) {
	for _, f := range p.SelectedFormats {
		if !f.Valid() {
			return models.ExportPreferences{}, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, f)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := clonePreferences(p)
	if next.SelectedPresets == nil {
		next.SelectedPresets = []string{}
	}
	if len(next.SelectedFormats) == 0 {
		next.SelectedFormats = s.prefs.SelectedFormats
	}
	s.prefs = next
	s.saveJSON(repository.KeyExportPreferences, s.prefs)
	return clonePreferences(s.prefs), nil
}

// UpdatePreferences applies fn to the export dialog selection and stores the result
func (s *DesignSession) UpdatePreferences(fn func(models.ExportPreferences) models.ExportPreferences) models.ExportPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = fn(clonePreferences(s.prefs))
	s.saveJSON(repository.KeyExportPreferences, s.prefs)
	return clonePreferences(s.prefs)
}

func clonePreferences(p models.ExportPreferences) models.ExportPreferences {
	return models.ExportPreferences{
		SelectedPresets: append([]string(nil), p.SelectedPresets...),
		SelectedFormats: append([]models.DownloadFormat(nil), p.SelectedFormats...),
	}
}

// Close stops the auto-saver after saving a pending edit
func (s *DesignSession) Close() {
	s.autosave.Flush()
	s.autosave.Stop()
}

func (s *DesignSession) persistHistoryLocked() {
	s.saveJSON(repository.KeyUndoRedo, s.timeline)
	s.saveJSON(repository.KeyVersionHistory, versionHistoryState{
		Snapshots: s.versions.Snapshots(),
		Cursor:    s.versions.Cursor(),
	})
}

// saveJSON stores value under key. Failures are logged and the session
// carries on in memory.
func (s *DesignSession) saveJSON(key string, value interface{}) {
	if s.repo == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("⚠️  Session %s: failed to marshal %s: %v", s.id, key, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, s.id, key, data); err != nil {
		log.Printf("⚠️  Session %s: failed to save %s: %v", s.id, key, err)
	}
}

// loadJSON reads key into dst. It returns false when the key is missing,
// unreadable or corrupt, leaving dst untouched.
func (s *DesignSession) loadJSON(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.repo.Load(ctx, s.id, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("⚠️  Session %s: failed to load %s: %v", s.id, key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Printf("⚠️  Session %s: ignoring corrupt %s: %v", s.id, key, err)
		return false
	}
	return true
}

// restore loads every persisted key. Missing or corrupt keys keep their
// defaults; it reports whether anything was found.
func (s *DesignSession) restore(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false

	var design models.Snapshot
	if s.loadJSON(ctx, repository.KeyCardState, &design) && design.Validate() == nil {
		if clean, err := design.Sanitized(); err == nil {
			s.design = clean
			found = true
		}
	}

	var timeline history.UndoRedoState
	if s.loadJSON(ctx, repository.KeyUndoRedo, &timeline) && timeline.Present != nil {
		if timeline.Past == nil {
			timeline.Past = []models.Snapshot{}
		}
		if timeline.Future == nil {
			timeline.Future = []models.Snapshot{}
		}
		s.timeline = timeline
		found = true
	} else {
		s.timeline = history.NewUndoRedoState(s.design)
	}

	var versions versionHistoryState
	if s.loadJSON(ctx, repository.KeyVersionHistory, &versions) {
		s.versions = history.NewStoreFrom(versions.Snapshots, versions.Cursor, s.opts.HistoryMax)
		found = true
	}

	var favorites []models.Favorite
	if s.loadJSON(ctx, repository.KeyFavorites, &favorites) {
		s.favorites = history.NewFavorites(favorites, s.opts.FavoritesMax)
		found = true
	}

	prefs := models.DefaultExportPreferences()
	if s.loadJSON(ctx, repository.KeyExportPreferences, &prefs) {
		if len(prefs.SelectedFormats) == 0 {
			prefs.SelectedFormats = models.DefaultExportPreferences().SelectedFormats
		}
		if prefs.SelectedPresets == nil {
			prefs.SelectedPresets = []string{}
		}
		s.prefs = prefs
		found = true
	}

	s.autosave.Prime(s.design)
	return found
}
