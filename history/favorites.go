package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"wordmark/models"
)

// ErrFavoritesFull is returned by Add when a cap is configured and reached
var ErrFavoritesFull = errors.New("favorites limit reached")

// Favorites is the user-curated list of named designs. It is independent of
// the undo history and never pruned automatically.
type Favorites struct {
	items []models.Favorite
	max   int // 0 means unbounded
}

// NewFavorites creates a favorites list holding items; max 0 means unbounded
func NewFavorites(items []models.Favorite, max int) *Favorites {
	f := &Favorites{items: make([]models.Favorite, 0, len(items)), max: max}
	for _, it := range items {
		f.items = append(f.items, cloneFavorite(it))
	}
	return f
}

// NewFavoriteID returns a time-ordered id with a random suffix
func NewFavoriteID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

// Add appends snap under name. An empty name becomes "Favorite #N".
func (f *Favorites) Add(name string, snap models.Snapshot, now time.Time) (models.Favorite, error) {
	if f.max > 0 && len(f.items) >= f.max {
		return models.Favorite{}, fmt.Errorf("%w (%d)", ErrFavoritesFull, f.max)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Favorite #%d", len(f.items)+1)
	}
	c := snap.Clone()
	fav := models.Favorite{
		FavoriteID: NewFavoriteID(now),
		Name:       name,
		Text:       c.Text,
		Icon:       c.Icon,
		Card:       c.Card,
		Layout:     c.Layout,
		Timestamp:  now.UnixMilli(),
	}
	f.items = append(f.items, fav)
	return cloneFavorite(fav), nil
}

// Remove deletes the favorite with id. It returns false if there was none.
func (f *Favorites) Remove(id string) bool {
	kept := f.items[:0]
	removed := false
	for _, it := range f.items {
		if it.FavoriteID == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return removed
}

// Get looks a favorite up by id
func (f *Favorites) Get(id string) (models.Favorite, bool) {
	for _, it := range f.items {
		if it.FavoriteID == id {
			return cloneFavorite(it), true
		}
	}
	return models.Favorite{}, false
}

// Restore returns the design stored in fav. The caller applies it to the
// editable state; the list itself is not touched.
func Restore(fav models.Favorite) models.Snapshot {
	return fav.Snapshot()
}

// FindMatching returns the first favorite holding the same design as snap,
// ignoring id, name and timestamps
func (f *Favorites) FindMatching(snap models.Snapshot) (models.Favorite, bool) {
	for _, it := range f.items {
		if it.Matches(snap) {
			return cloneFavorite(it), true
		}
	}
	return models.Favorite{}, false
}

// IsFavorited reports whether snap is saved as a favorite
func (f *Favorites) IsFavorited(snap models.Snapshot) bool {
	_, ok := f.FindMatching(snap)
	return ok
}

// Toggle removes the favorite matching snap, or adds snap under name when
// there is none. added reports which of the two happened.
func (f *Favorites) Toggle(name string, snap models.Snapshot, now time.Time) (fav models.Favorite, added bool, err error) {
	if existing, ok := f.FindMatching(snap); ok {
		f.Remove(existing.FavoriteID)
		return existing, false, nil
	}
	fav, err = f.Add(name, snap, now)
	if err != nil {
		return models.Favorite{}, false, err
	}
	return fav, true, nil
}

// Len returns the number of favorites
func (f *Favorites) Len() int {
	return len(f.items)
}

// List returns a copy of all favorites in insertion order
func (f *Favorites) List() []models.Favorite {
	out := make([]models.Favorite, len(f.items))
	for i, it := range f.items {
		out[i] = cloneFavorite(it)
	}
	return out
}

func cloneFavorite(fav models.Favorite) models.Favorite {
	if fav.Icon.AIIcon != nil {
		ai := *fav.Icon.AIIcon
		fav.Icon.AIIcon = &ai
	}
	return fav
}
