package server

import (
	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/llm"
	"github.com/piwi3910/RoomFit/internal/model"
)

// CellRequest addresses one grid cell.
type CellRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell converts the request to a grid cell.
func (c CellRequest) Cell() grid.Cell {
	return grid.Cell{X: c.X, Y: c.Y}
}

// SelectRequest picks a catalog kind by index.
type SelectRequest struct {
	Index int `json:"index"`
}

// ShareCode carries an encoded layout.
type ShareCode struct {
	Code string `json:"code"`
}

// PlacementView is one placed item as clients see it.
type PlacementView struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Cell     grid.Cell `json:"cell"`
	Rotation int       `json:"rotation"`
	Base     grid.Rect `json:"base"`
	Bounds   grid.Rect `json:"bounds"`
}

// VerdictResponse answers a hover query.
type VerdictResponse struct {
	Valid   bool   `json:"valid"`
	Rule    string `json:"rule"`
	Blocker string `json:"blocker,omitempty"`
}

func newVerdictResponse(v engine.Verdict) VerdictResponse {
	resp := VerdictResponse{Valid: v.Valid, Rule: v.Failed.String()}
	if v.Blocker != nil {
		resp.Blocker = v.Blocker.ID
	}
	return resp
}

// StateResponse is the full session as seen by clients. Placements are in
// drawing order.
type StateResponse struct {
	Room       grid.Room               `json:"room"`
	Door       *model.Door             `json:"door,omitempty"`
	Placements []PlacementView         `json:"placements"`
	Selected   string                  `json:"selected"`
	Rotation   int                     `json:"rotation"`
	Brief      string                  `json:"brief"`
	Live       bool                    `json:"live"`
	Pending    bool                    `json:"pending"`
	State      string                  `json:"state"`
	Result     *model.EvaluationResult `json:"result,omitempty"`
	CanUndo    bool                    `json:"can_undo"`
	CanRedo    bool                    `json:"can_redo"`
	UndoLabel  string                  `json:"undo_label,omitempty"`
	RedoLabel  string                  `json:"redo_label,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

func newStateResponse(s engine.Session, state model.EvaluationState, brief llm.Brief, canUndo, canRedo bool) StateResponse {
	resp := StateResponse{
		Room:       s.Room,
		Door:       s.Door,
		Placements: []PlacementView{},
		Rotation:   s.Rotation.Degrees(),
		Brief:      brief.Text,
		Live:       brief.Live,
		Pending:    s.Pending,
		State:      state.String(),
		Result:     s.Result,
		CanUndo:    canUndo,
		CanRedo:    canRedo,
	}
	if k := s.SelectedKind(); k != nil {
		resp.Selected = k.Name
	}
	for p := range s.Registry.DepthSorted() {
		resp.Placements = append(resp.Placements, PlacementView{
			ID:       p.ID,
			Kind:     p.KindName(),
			Cell:     p.Cell,
			Rotation: p.Rotation.Degrees(),
			Base:     p.BaseRect(),
			Bounds:   p.VisualRect(),
		})
	}
	return resp
}
