package history

import "wordmark/models"

// UndoRedoState is the past/present/future timeline of a design session.
// Values are treated as immutable: every transition returns a new state and
// never writes into the slices of the state it was given.
type UndoRedoState struct {
	Past    []models.Snapshot `json:"past"`
	Present *models.Snapshot  `json:"present"`
	Future  []models.Snapshot `json:"future"`
}

// NewUndoRedoState starts a timeline whose present is initial
func NewUndoRedoState(initial models.Snapshot) UndoRedoState {
	p := initial.Clone()
	return UndoRedoState{Past: []models.Snapshot{}, Present: &p, Future: []models.Snapshot{}}
}

// CanUndo reports whether there is a past state to go back to
func (s UndoRedoState) CanUndo() bool {
	return len(s.Past) > 0
}

// CanRedo reports whether there is an undone state to go forward to
func (s UndoRedoState) CanRedo() bool {
	return len(s.Future) > 0
}

// Push records candidate as the new present. The old present moves to the end
// of past (trimmed to max, oldest first) and future is discarded. Pushing a
// candidate equal to the present returns s unchanged and false.
func Push(s UndoRedoState, candidate models.Snapshot, max int) (UndoRedoState, bool) {
	if max <= 0 {
		max = DefaultMaxSize
	}
	if s.Present != nil && s.Present.Equal(candidate) {
		return s, false
	}

	past := make([]models.Snapshot, 0, min(len(s.Past)+1, max))
	past = append(past, s.Past...)
	if s.Present != nil {
		past = append(past, *s.Present)
	}
	if len(past) > max {
		past = past[len(past)-max:]
	}

	p := candidate.Clone()
	return UndoRedoState{Past: past, Present: &p, Future: []models.Snapshot{}}, true
}

// Undo moves the last past state into present and the old present to the
// front of future. With an empty past s is returned unchanged and false.
func Undo(s UndoRedoState) (UndoRedoState, bool) {
	if !s.CanUndo() || s.Present == nil {
		return s, false
	}

	last := len(s.Past) - 1
	prev := s.Past[last].Clone()

	past := make([]models.Snapshot, last)
	copy(past, s.Past[:last])

	future := make([]models.Snapshot, 0, len(s.Future)+1)
	future = append(future, *s.Present)
	future = append(future, s.Future...)

	return UndoRedoState{Past: past, Present: &prev, Future: future}, true
}

// Redo is the inverse of Undo. With an empty future s is returned unchanged
// and false.
func Redo(s UndoRedoState) (UndoRedoState, bool) {
	if !s.CanRedo() || s.Present == nil {
		return s, false
	}

	next := s.Future[0].Clone()

	future := make([]models.Snapshot, len(s.Future)-1)
	copy(future, s.Future[1:])

	past := make([]models.Snapshot, 0, len(s.Past)+1)
	past = append(past, s.Past...)
	past = append(past, *s.Present)

	return UndoRedoState{Past: past, Present: &next, Future: future}, true
}
