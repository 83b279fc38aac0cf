package models

// Favorite is a user-named design kept independently of the undo history
type Favorite struct {
	FavoriteID string          `json:"favoriteId"`
	Name       string          `json:"name"`
	Text       TextState       `json:"text"`
	Icon       IconState       `json:"icon"`
	Card       CardState       `json:"card"`
	Layout     LayoutDirection `json:"layout"`
	Timestamp  int64           `json:"timestamp"`
}

// Snapshot returns the design fields of the favorite as a snapshot
func (f Favorite) Snapshot() Snapshot {
	return Snapshot{
		Text:      f.Text,
		Icon:      cloneIcon(f.Icon),
		Card:      f.Card,
		Layout:    f.Layout,
		Timestamp: f.Timestamp,
	}
}

// Matches reports whether the favorite holds the same design as s
func (f Favorite) Matches(s Snapshot) bool {
	return f.Snapshot().Equal(s)
}
