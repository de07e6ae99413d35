package engine

import (
	"slices"

	"github.com/piwi3910/RoomFit/internal/model"
)

const defaultMaxDepth = 50

// Snapshot captures the placements at a point in time.
type Snapshot struct {
	Placements []model.Placement
	Label      string // Human-readable description (e.g. "Place Sofa")
}

// MakeSnapshot copies the session's placements with a label.
func MakeSnapshot(s Session, label string) Snapshot {
	return Snapshot{Placements: slices.Clone(s.Placements()), Label: label}
}

// History manages undo/redo stacks of placement snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{maxDepth: defaultMaxDepth}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// Call it with the state from before the change.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo pops the most recent snapshot and pushes current onto the redo stack.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo pops the most recent undone snapshot and pushes current onto the
// undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

// UndoLabel names the change Undo would revert, or "" when there is none.
func (h *History) UndoLabel() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Label
}

// RedoLabel names the change Redo would reapply, or "" when there is none.
func (h *History) RedoLabel() string {
	if len(h.redoStack) == 0 {
		return ""
	}
	return h.redoStack[len(h.redoStack)-1].Label
}

// CanUndo returns true if there is at least one snapshot to undo.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo returns true if there is at least one snapshot to redo.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// Apply runs a on s and records the previous placements when a changes
// them. Actions that do not touch placements are applied without a
// history entry. Reset clears the history.
func (h *History) Apply(s Session, a Action, label string) (Session, bool) {
	next, changed := s.Apply(a)
	if !changed {
		return s, false
	}
	switch a.(type) {
	case Place, Remove:
		h.Push(MakeSnapshot(s, label))
	case Reset:
		h.Clear()
	}
	return next, true
}

// UndoSession restores the placements from before the last recorded change.
// The change keeps its label on the redo stack.
func (h *History) UndoSession(s Session) (Session, bool) {
	snap, ok := h.Undo(MakeSnapshot(s, h.UndoLabel()))
	if !ok {
		return s, false
	}
	return s.Apply(Restore{Placements: snap.Placements})
}

// RedoSession reapplies the last undone change.
func (h *History) RedoSession(s Session) (Session, bool) {
	snap, ok := h.Redo(MakeSnapshot(s, h.RedoLabel()))
	if !ok {
		return s, false
	}
	return s.Apply(Restore{Placements: snap.Placements})
}
