package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/RoomFit/internal/grid"
)

// Rotation is a quarter-turn orientation. Only 0 and 90 degrees are used.
type Rotation int

const (
	Rot0  Rotation = iota // As drawn in the catalog
	Rot90                 // Quarter turn, width and height swapped
)

// Next returns the rotation after one more quarter turn. Two turns
// return to Rot0.
func (r Rotation) Next() Rotation {
	return (r + 1) % 2
}

// Degrees returns the rotation angle in degrees.
func (r Rotation) Degrees() int {
	return int(r%2) * 90
}

// OddQuarter reports whether the rotation swaps width and height.
func (r Rotation) OddQuarter() bool {
	return r%2 == 1
}

func (r Rotation) String() string {
	if r.OddQuarter() {
		return "90"
	}
	return "0"
}

// RotationFromDegrees maps 0/90/180/270 onto the two supported rotations.
func RotationFromDegrees(deg int) Rotation {
	if (deg/90)%2 != 0 {
		return Rot90
	}
	return Rot0
}

// Size is a width/height pair in cells.
type Size struct {
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// Rotated returns the size after applying rotation r.
func (s Size) Rotated(r Rotation) Size {
	if r.OddQuarter() {
		return Size{W: s.H, H: s.W}
	}
	return s
}

// Area returns W*H.
func (s Size) Area() int {
	return s.W * s.H
}

// FurnitureKind is an immutable catalog entry. Placements share it by
// pointer; it is never copied per placement or mutated after loading.
type FurnitureKind struct {
	Name       string `json:"name" yaml:"name"`
	Footprint  Size   `json:"footprint" yaml:"footprint"`             // Unrotated extent; only the first row blocks other items
	Visual     Size   `json:"visual" yaml:"visual,omitempty"`         // Sprite extent, defaults to the footprint
	Appearance string `json:"appearance" yaml:"appearance,omitempty"` // "#RRGGBB" or "sprite:<file>"
}

// VisualSize returns the rendered extent, falling back to the footprint
// when the catalog left it unset.
func (k *FurnitureKind) VisualSize() Size {
	if k.Visual.W <= 0 || k.Visual.H <= 0 {
		return k.Footprint
	}
	return k.Visual
}

// Placement is one instance of a furniture kind on the grid.
type Placement struct {
	ID       string         `json:"id"`
	Kind     *FurnitureKind `json:"-"`
	Cell     grid.Cell      `json:"cell"` // Top-left anchor
	Rotation Rotation       `json:"rotation"`
}

// NewPlacement creates a placement with a generated ID.
func NewPlacement(kind *FurnitureKind, cell grid.Cell, rot Rotation) Placement {
	return Placement{
		ID:       uuid.New().String()[:8],
		Kind:     kind,
		Cell:     cell,
		Rotation: rot,
	}
}

// KindName returns the name of the placed kind.
func (p Placement) KindName() string {
	if p.Kind == nil {
		return ""
	}
	return p.Kind.Name
}

// EffectiveFootprint returns the footprint with width and height swapped
// for odd quarter turns.
func (p Placement) EffectiveFootprint() Size {
	return EffectiveFootprint(p.Kind, p.Rotation)
}

// BaseRect returns the unit-depth rectangle: the anchor row only, full
// rotated width, height 1. Used for overlap and removal hit tests.
func (p Placement) BaseRect() grid.Rect {
	return BaseRect(p.Kind, p.Cell, p.Rotation)
}

// VisualRect returns the full effective footprint rectangle.
func (p Placement) VisualRect() grid.Rect {
	return VisualRect(p.Kind, p.Cell, p.Rotation)
}

// EffectiveFootprint returns kind's footprint after rotation.
func EffectiveFootprint(kind *FurnitureKind, rot Rotation) Size {
	if kind == nil {
		return Size{}
	}
	return kind.Footprint.Rotated(rot)
}

// BaseRect returns the unit-depth rectangle for a candidate placement.
func BaseRect(kind *FurnitureKind, at grid.Cell, rot Rotation) grid.Rect {
	fp := EffectiveFootprint(kind, rot)
	return grid.Rect{X: at.X, Y: at.Y, W: fp.W, H: 1}
}

// VisualRect returns the full rotated footprint rectangle for a candidate.
func VisualRect(kind *FurnitureKind, at grid.Cell, rot Rotation) grid.Rect {
	fp := EffectiveFootprint(kind, rot)
	return grid.Rect{X: at.X, Y: at.Y, W: fp.W, H: fp.H}
}

// Door is the reserved 1x1 entrance cell on a wall.
type Door struct {
	Cell grid.Cell `json:"cell" yaml:"cell"`
}

// Rect returns the door as a 1x1 rectangle.
func (d Door) Rect() grid.Rect {
	return grid.Rect{X: d.Cell.X, Y: d.Cell.Y, W: 1, H: 1}
}

// EvaluationState names the stages of one evaluation run.
type EvaluationState int

const (
	StateIdle EvaluationState = iota
	StateDescribing
	StateEmbedding
	StateScoring
	StateFeedbackPending
	StateDone
	StateFailed
)

func (s EvaluationState) String() string {
	switch s {
	case StateDescribing:
		return "DESCRIBING"
	case StateEmbedding:
		return "EMBEDDING"
	case StateScoring:
		return "SCORING"
	case StateFeedbackPending:
		return "FEEDBACK_PENDING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "IDLE"
	}
}

// MarshalText encodes the state by name.
func (s EvaluationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *EvaluationState) UnmarshalText(text []byte) error {
	for st := StateIdle; st <= StateFailed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown evaluation state %q", text)
}

// Terminal reports whether no further transition can happen.
func (s EvaluationState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// MaxScore is the top of the satisfaction scale.
const MaxScore = 5.0

// EvaluationResult is the immutable outcome of one evaluation trigger.
type EvaluationResult struct {
	Score       float64         `json:"score"`
	Description string          `json:"description"`
	Feedback    string          `json:"feedback"`
	State       EvaluationState `json:"state"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Failed reports whether the pipeline ended in the failure state.
func (r EvaluationResult) Failed() bool {
	return r.State == StateFailed
}

// Layout is a read-only snapshot of a room design.
type Layout struct {
	Room       grid.Room   `json:"room"`
	Door       *Door       `json:"door,omitempty"`
	Placements []Placement `json:"placements"`
}

// OccupiedArea returns the total full-footprint area of all placements.
func (l Layout) OccupiedArea() int {
	total := 0
	for _, p := range l.Placements {
		total += p.EffectiveFootprint().Area()
	}
	return total
}
