// Package editor holds the in-memory state of one overlay editing session:
// the ordered overlay list, a single selection and a linear undo/redo
// history.
//
// An Editor is owned by a single session and is not safe for concurrent use.
package editor

import (
	"github.com/dmitrijs2005/photogallery/internal/overlay"
)

// Editor is the overlay editing state machine.
//
// Invariants:
//   - 0 <= index < len(history)
//   - history[index] equals the live overlay list
//   - a mutation after undo discards history beyond index before appending
type Editor struct {
	overlays []overlay.TextOverlay
	selected string
	history  [][]overlay.TextOverlay
	index    int
	limit    int
	newID    func() string
}

// Option configures an Editor.
type Option func(*Editor)

// WithHistoryLimit caps the number of retained snapshots; the oldest are
// dropped first. Zero or negative means unbounded.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithIDGenerator replaces the overlay identity generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New starts a session whose first history entry is initial.
func New(initial []overlay.TextOverlay, opts ...Option) *Editor {
	e := &Editor{newID: overlay.NewID}
	for _, opt := range opts {
		opt(e)
	}
	e.overlays = overlay.Clone(initial)
	e.history = [][]overlay.TextOverlay{overlay.Clone(initial)}
	return e
}

// Overlays returns a copy of the live overlay list.
func (e *Editor) Overlays() []overlay.TextOverlay {
	return overlay.Clone(e.overlays)
}

// Selected returns the selected overlay id, if any.
func (e *Editor) Selected() (string, bool) {
	return e.selected, e.selected != ""
}

// Select makes id the selection. Selection is not part of history.
func (e *Editor) Select(id string) bool {
	if e.find(id) < 0 {
		return false
	}
	e.selected = id
	return true
}

// Get returns the overlay with the given id.
func (e *Editor) Get(id string) (overlay.TextOverlay, bool) {
	i := e.find(id)
	if i < 0 {
		return overlay.TextOverlay{}, false
	}
	return e.overlays[i], true
}

// Add appends a default overlay, selects it and records a snapshot.
func (e *Editor) Add() overlay.TextOverlay {
	o := overlay.New()
	o.ID = e.newID()

	e.overlays = append(overlay.Clone(e.overlays), o)
	e.selected = o.ID
	e.push()
	return o
}

// Update replaces the fields present in p on overlay id and records a
// snapshot, even when nothing changed. Unknown ids are ignored.
func (e *Editor) Update(id string, p overlay.Patch) bool {
	i := e.find(id)
	if i < 0 {
		return false
	}
	next := overlay.Clone(e.overlays)
	next[i] = p.Apply(next[i])
	e.overlays = next
	e.push()
	return true
}

// Duplicate copies overlay id under a new identity, shifted by
// overlay.DuplicateOffset on both axes, selects the copy and records a
// snapshot. Unknown ids are ignored.
func (e *Editor) Duplicate(id string) (overlay.TextOverlay, bool) {
	i := e.find(id)
	if i < 0 {
		return overlay.TextOverlay{}, false
	}
	dup := e.overlays[i]
	dup.ID = e.newID()
	dup.X += overlay.DuplicateOffset
	dup.Y += overlay.DuplicateOffset

	e.overlays = append(overlay.Clone(e.overlays), dup)
	e.selected = dup.ID
	e.push()
	return dup, true
}

// Delete removes overlay id, clears the selection whichever overlay was
// selected, and records a snapshot.
func (e *Editor) Delete(id string) {
	next := make([]overlay.TextOverlay, 0, len(e.overlays))
	for _, o := range e.overlays {
		if o.ID != id {
			next = append(next, o)
		}
	}
	e.overlays = next
	e.selected = ""
	e.push()
}

// Undo steps back one snapshot and clears the selection. It reports false at
// the oldest snapshot.
func (e *Editor) Undo() bool {
	if !e.CanUndo() {
		return false
	}
	e.index--
	e.restore()
	return true
}

// Redo steps forward one snapshot and clears the selection. It reports false
// at the newest snapshot.
func (e *Editor) Redo() bool {
	if !e.CanRedo() {
		return false
	}
	e.index++
	e.restore()
	return true
}

// CanUndo reports whether an older snapshot exists.
func (e *Editor) CanUndo() bool { return e.index > 0 }

// CanRedo reports whether a newer snapshot exists.
func (e *Editor) CanRedo() bool { return e.index < len(e.history)-1 }

// HistoryLen returns the number of retained snapshots.
func (e *Editor) HistoryLen() int { return len(e.history) }

// HistoryIndex returns the position of the live snapshot.
func (e *Editor) HistoryIndex() int { return e.index }

func (e *Editor) find(id string) int {
	if id == "" {
		return -1
	}
	for i, o := range e.overlays {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) push() {
	e.history = append(e.history[:e.index+1], overlay.Clone(e.overlays))
	if e.limit > 0 && len(e.history) > e.limit {
		drop := len(e.history) - e.limit
		e.history = append([][]overlay.TextOverlay(nil), e.history[drop:]...)
	}
	e.index = len(e.history) - 1
}

func (e *Editor) restore() {
	e.overlays = overlay.Clone(e.history[e.index])
	e.selected = ""
}
