package model

import (
	"testing"

	"github.com/piwi3910/RoomFit/internal/grid"
)

func TestRotationNextCycles(t *testing.T) {
	if Rot0.Next() != Rot90 {
		t.Errorf("expected Rot90 after Rot0")
	}
	if Rot0.Next().Next() != Rot0 {
		t.Errorf("two quarter turns should return to Rot0")
	}
	if RotationFromDegrees(270) != Rot90 || RotationFromDegrees(180) != Rot0 {
		t.Errorf("unexpected mapping for 180/270 degrees")
	}
}

func TestPlacementRects(t *testing.T) {
	shelf := &FurnitureKind{Name: "Shelf", Footprint: Size{W: 2, H: 1}, Visual: Size{W: 2, H: 2}}

	p := NewPlacement(shelf, grid.Cell{X: 3, Y: 4}, Rot0)
	if len(p.ID) != 8 {
		t.Errorf("expected an 8 character ID, got %q", p.ID)
	}
	if got := p.BaseRect(); got != (grid.Rect{X: 3, Y: 4, W: 2, H: 1}) {
		t.Errorf("unexpected base rect %+v", got)
	}

	p.Rotation = Rot90
	if fp := p.EffectiveFootprint(); fp != (Size{W: 1, H: 2}) {
		t.Errorf("expected rotated footprint 1x2, got %+v", fp)
	}
	if got := p.BaseRect(); got != (grid.Rect{X: 3, Y: 4, W: 1, H: 1}) {
		t.Errorf("rotated base rect should be unit depth, got %+v", got)
	}
	if got := p.VisualRect(); got != (grid.Rect{X: 3, Y: 4, W: 1, H: 2}) {
		t.Errorf("unexpected visual rect %+v", got)
	}
}

func TestLayoutOccupiedAreaUsesFullFootprint(t *testing.T) {
	bed := &FurnitureKind{Name: "Bed", Footprint: Size{W: 2, H: 3}}
	chair := &FurnitureKind{Name: "Chair", Footprint: Size{W: 1, H: 1}}

	l := Layout{Placements: []Placement{
		{Kind: bed, Rotation: Rot90},
		{Kind: chair},
	}}
	if got := l.OccupiedArea(); got != 7 {
		t.Errorf("expected area 7, got %d", got)
	}
}

func TestEvaluationStateTerminal(t *testing.T) {
	for _, s := range []EvaluationState{StateIdle, StateDescribing, StateEmbedding, StateScoring, StateFeedbackPending} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !StateDone.Terminal() || !StateFailed.Terminal() {
		t.Error("DONE and FAILED are terminal")
	}
}

func TestEvaluationStateText(t *testing.T) {
	text, err := StateFeedbackPending.MarshalText()
	if err != nil || string(text) != "FEEDBACK_PENDING" {
		t.Fatalf("unexpected text %q err=%v", text, err)
	}
	var s EvaluationState
	if err := s.UnmarshalText([]byte("DONE")); err != nil || s != StateDone {
		t.Errorf("expected DONE, got %v err=%v", s, err)
	}
	if err := s.UnmarshalText([]byte("LOST")); err == nil {
		t.Error("expected error for unknown state")
	}
}
