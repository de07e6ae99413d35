package engine

import (
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// Session is the complete state of one design session. It is a value:
// Apply returns a new Session and leaves the receiver untouched, so any
// earlier Session can be kept for comparison or replay.
type Session struct {
	Room     grid.Room
	Catalog  *model.Catalog
	Registry *Registry
	Door     *model.Door

	Selected int // catalog index of the kind to place
	Rotation model.Rotation

	// Pending is true while an evaluation is in flight. Generation tags
	// the in-flight run so results from an abandoned run are dropped.
	Pending    bool
	Generation int
	Result     *model.EvaluationResult
}

// NewSession starts an empty session with the first catalog kind selected.
func NewSession(room grid.Room, catalog *model.Catalog, door *model.Door) Session {
	return Session{
		Room:     room,
		Catalog:  catalog,
		Registry: NewRegistry(nil),
		Door:     door,
	}
}

// Action is a discrete user intent applied to a Session.
type Action interface {
	apply(s Session) (Session, bool)
}

// Apply returns the session after a. The boolean reports whether anything
// changed; rejected actions return the receiver unchanged.
func (s Session) Apply(a Action) (Session, bool) {
	if a == nil {
		return s, false
	}
	return a.apply(s)
}

// SelectedKind returns the kind currently selected in the palette.
func (s Session) SelectedKind() *model.FurnitureKind {
	return s.Catalog.At(s.Selected)
}

// Placements returns a copy of the placed items in insertion order.
func (s Session) Placements() []model.Placement {
	if s.Registry == nil {
		return nil
	}
	return s.Registry.Snapshot()
}

// Layout returns a read-only snapshot for describing and exporting.
func (s Session) Layout() model.Layout {
	return model.Layout{Room: s.Room, Door: s.Door, Placements: s.Placements()}
}

// Hover reports whether the selected kind could be placed at cell with
// the current rotation.
func (s Session) Hover(cell grid.Cell) bool {
	return s.HoverVerdict(cell).Valid
}

// HoverVerdict is Hover with the failed rule.
func (s Session) HoverVerdict(cell grid.Cell) Verdict {
	return Check(s.SelectedKind(), cell, s.Rotation, s.Placements(), s.Door, s.Room)
}

// SelectKind selects a catalog entry by index. Selecting always resets the
// rotation.
type SelectKind struct {
	Index int
}

func (a SelectKind) apply(s Session) (Session, bool) {
	if s.Catalog.At(a.Index) == nil {
		return s, false
	}
	if s.Selected == a.Index && s.Rotation == model.Rot0 {
		return s, false
	}
	s.Selected = a.Index
	s.Rotation = model.Rot0
	return s, true
}

// Rotate turns the selection one more quarter.
type Rotate struct{}

func (Rotate) apply(s Session) (Session, bool) {
	s.Rotation = s.Rotation.Next()
	return s, true
}

// Place puts the kind at catalog index Index at Cell with Rotation. The
// placement is rejected, without any change, if it fails the validity rules.
type Place struct {
	Index    int
	Rotation model.Rotation
	Cell     grid.Cell
}

// PlaceSelected builds a Place action from the current selection.
func (s Session) PlaceSelected(cell grid.Cell) Place {
	return Place{Index: s.Selected, Rotation: s.Rotation, Cell: cell}
}

func (a Place) apply(s Session) (Session, bool) {
	kind := s.Catalog.At(a.Index)
	if kind == nil {
		return s, false
	}
	if !IsValid(kind, a.Cell, a.Rotation, s.Placements(), s.Door, s.Room) {
		return s, false
	}
	s.Registry = s.Registry.Clone()
	s.Registry.Add(kind, a.Cell, a.Rotation)
	return s, true
}

// Remove deletes the most recently placed item whose base row covers Cell.
type Remove struct {
	Cell grid.Cell
}

func (a Remove) apply(s Session) (Session, bool) {
	reg := s.Registry.Clone()
	if _, ok := reg.RemoveAt(a.Cell); !ok {
		return s, false
	}
	s.Registry = reg
	return s, true
}

// Restore replaces all placements, used by undo and redo.
type Restore struct {
	Placements []model.Placement
}

func (a Restore) apply(s Session) (Session, bool) {
	s.Registry = NewRegistry(a.Placements)
	return s, true
}

// TriggerEvaluation marks an evaluation as in flight and clears the
// previous result. It is ignored while another evaluation is pending.
type TriggerEvaluation struct{}

func (TriggerEvaluation) apply(s Session) (Session, bool) {
	if s.Pending {
		return s, false
	}
	s.Pending = true
	s.Generation++
	s.Result = nil
	return s, true
}

// CompleteEvaluation stores the result of the run tagged Generation.
// Results for any other run are dropped.
type CompleteEvaluation struct {
	Generation int
	Result     model.EvaluationResult
}

func (a CompleteEvaluation) apply(s Session) (Session, bool) {
	if !s.Pending || a.Generation != s.Generation {
		return s, false
	}
	res := a.Result
	s.Pending = false
	s.Result = &res
	return s, true
}

// Reset clears placements and any result, abandons a pending evaluation
// and installs a new door.
type Reset struct {
	Door *model.Door
}

func (a Reset) apply(s Session) (Session, bool) {
	s.Registry = NewRegistry(nil)
	s.Door = a.Door
	s.Rotation = model.Rot0
	s.Result = nil
	if s.Pending {
		s.Pending = false
		s.Generation++
	}
	return s, true
}
