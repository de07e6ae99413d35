package engine

import (
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// StackingPolicy documents how tall items interact. Overlap between items
// is tested on their unit-depth base rows only, so a tall item may extend
// visually over cells behind it that another item already uses. The room
// boundary and the door are tested against the full rotated footprint.
const StackingPolicy = "tall items may overlap above their base row"

// Rule names the rule a candidate placement failed.
type Rule int

const (
	RuleNone     Rule = iota // Candidate is valid
	RuleBoundary             // Footprint leaves the room
	RuleOverlap              // Base row collides with an occupant's base row
	RuleDoor                 // Footprint covers the door cell
)

func (c Rule) String() string {
	switch c {
	case RuleBoundary:
		return "boundary"
	case RuleOverlap:
		return "overlap"
	case RuleDoor:
		return "door"
	default:
		return "ok"
	}
}

// Verdict is the outcome of a validity check.
type Verdict struct {
	Valid  bool
	Failed Rule
	// Blocker is the occupant whose base was hit when Failed is RuleOverlap.
	Blocker *model.Placement
}

// IsValid reports whether kind can be placed at cell with rotation rot.
func IsValid(kind *model.FurnitureKind, cell grid.Cell, rot model.Rotation, occupants []model.Placement, door *model.Door, room grid.Room) bool {
	return Check(kind, cell, rot, occupants, door, room).Valid
}

// Check runs the boundary, overlap and door rules in that order and stops
// at the first failure. Overlap compares base rows only; see
// StackingPolicy.
func Check(kind *model.FurnitureKind, cell grid.Cell, rot model.Rotation, occupants []model.Placement, door *model.Door, room grid.Room) Verdict {
	if kind == nil {
		return Verdict{Failed: RuleBoundary}
	}

	visual := model.VisualRect(kind, cell, rot)
	if !room.InBounds(visual) {
		return Verdict{Failed: RuleBoundary}
	}

	base := model.BaseRect(kind, cell, rot)
	for i := range occupants {
		if base.Intersects(occupants[i].BaseRect()) {
			blocker := occupants[i]
			return Verdict{Failed: RuleOverlap, Blocker: &blocker}
		}
	}

	if door != nil && visual.Contains(door.Cell) {
		return Verdict{Failed: RuleDoor}
	}

	return Verdict{Valid: true}
}
