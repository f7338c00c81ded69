// Package history keeps linear undo/redo history for one editing session.
//
// History is snapshot based: every commit stores a full copy of the surface.
// Brush strokes are pixel dense and do not reduce to compact diffs, and the
// history only lives as long as the session.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Entry is an immutable snapshot taken at a commit boundary.
//
// Entries are never modified after Commit, so presentation code may read them
// without locking. Callers must not write to Surface.
type Entry struct {
	ID          uuid.UUID
	Label       string
	CommittedAt time.Time
	Surface     *imaging.Surface
}

// History is an ordered list of entries plus a cursor.
//
// Invariant: 0 <= cursor < len(entries). The entry at the cursor is the state
// the live surface was last synchronized with.
//
// History is not safe for concurrent mutation.
type History struct {
	entries    []Entry
	cursor     int
	maxEntries int
	now        func() time.Time
}

// New starts a history whose first entry is a copy of initial, so undoing
// every later commit restores it.
//
// maxEntries bounds the number of entries kept; the oldest entries are dropped
// past it. Zero or negative means unbounded.
func New(initial *imaging.Surface, maxEntries int) *History {
	h := &History{maxEntries: maxEntries, now: time.Now}
	h.entries = []Entry{h.entry(initial, "open")}
	return h
}

func (h *History) entry(s *imaging.Surface, label string) Entry {
	return Entry{
		ID:          uuid.New(),
		Label:       label,
		CommittedAt: h.now(),
		Surface:     s.Clone(),
	}
}

// Commit appends a snapshot of s after the cursor. Entries after the cursor
// (the redo branch) are discarded first, so redo after a fresh commit is
// impossible.
func (h *History) Commit(s *imaging.Surface, label string) Entry {
	h.entries = append(h.entries[:h.cursor+1], h.entry(s, label))
	if h.maxEntries > 0 && len(h.entries) > h.maxEntries {
		drop := len(h.entries) - h.maxEntries
		h.entries = append([]Entry(nil), h.entries[drop:]...)
	}
	h.cursor = len(h.entries) - 1
	return h.entries[h.cursor]
}

// Undo moves the cursor back and returns a copy of that snapshot to use as the
// new live surface. With nothing to undo it returns (nil, false).
func (h *History) Undo() (*imaging.Surface, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor].Surface.Clone(), true
}

// Redo moves the cursor forward and returns a copy of that snapshot. With
// nothing to redo it returns (nil, false).
func (h *History) Redo() (*imaging.Surface, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor].Surface.Clone(), true
}

// CanUndo reports whether Undo would change the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would change the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Len returns the number of entries, including the initial one.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the current entry.
func (h *History) Cursor() int { return h.cursor }

// Current returns the entry at the cursor.
func (h *History) Current() Entry { return h.entries[h.cursor] }

// Entries returns the entries in commit order. The slice is a copy; the
// snapshots are shared and read-only.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}
