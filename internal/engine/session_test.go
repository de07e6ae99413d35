package engine

import (
	"testing"

	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) Session {
	t.Helper()
	cat, err := model.NewCatalog([]model.FurnitureKind{
		{Name: "Sofa", Footprint: model.Size{W: 3, H: 2}},
		{Name: "Chair", Footprint: model.Size{W: 1, H: 1}},
	})
	require.NoError(t, err)
	return NewSession(testRoom(), cat, &model.Door{Cell: grid.Cell{X: 0, Y: 4}})
}

func TestSession_ApplyDoesNotMutateReceiver(t *testing.T) {
	s := testSession(t)

	next, changed := s.Apply(s.PlaceSelected(grid.Cell{X: 3, Y: 3}))
	require.True(t, changed)
	assert.Equal(t, 0, s.Registry.Len(), "original session is untouched")
	assert.Equal(t, 1, next.Registry.Len())

	after, changed := next.Apply(Remove{Cell: grid.Cell{X: 4, Y: 3}})
	require.True(t, changed)
	assert.Equal(t, 1, next.Registry.Len())
	assert.Equal(t, 0, after.Registry.Len())
}

func TestSession_InvalidPlacementRejected(t *testing.T) {
	s := testSession(t)
	s, _ = s.Apply(s.PlaceSelected(grid.Cell{X: 3, Y: 3}))

	next, changed := s.Apply(s.PlaceSelected(grid.Cell{X: 4, Y: 3}))
	assert.False(t, changed)
	assert.Equal(t, s.Placements(), next.Placements())

	_, changed = s.Apply(Place{Index: 1, Cell: grid.Cell{X: 0, Y: 4}})
	assert.False(t, changed, "door cell is reserved")

	_, changed = s.Apply(Place{Index: 9, Cell: grid.Cell{X: 0, Y: 0}})
	assert.False(t, changed, "unknown catalog index")
}

func TestSession_SelectResetsRotation(t *testing.T) {
	s := testSession(t)
	s, _ = s.Apply(Rotate{})
	assert.Equal(t, model.Rot90, s.Rotation)

	s, changed := s.Apply(SelectKind{Index: 1})
	require.True(t, changed)
	assert.Equal(t, 1, s.Selected)
	assert.Equal(t, model.Rot0, s.Rotation)
	assert.Equal(t, "Chair", s.SelectedKind().Name)

	_, changed = s.Apply(SelectKind{Index: 1})
	assert.False(t, changed, "reselecting with no rotation is a no-op")

	_, changed = s.Apply(SelectKind{Index: -1})
	assert.False(t, changed)
}

func TestSession_HoverTracksRotation(t *testing.T) {
	s := testSession(t)
	at := grid.Cell{X: 8, Y: 0}

	assert.False(t, s.Hover(at), "3-wide sofa leaves the room")
	s, _ = s.Apply(Rotate{})
	assert.True(t, s.Hover(at), "rotated sofa is 2 wide")
	assert.Equal(t, RuleBoundary, s.HoverVerdict(grid.Cell{X: 9, Y: 0}).Failed)
}

func TestSession_EvaluationLifecycle(t *testing.T) {
	s := testSession(t)

	s, changed := s.Apply(TriggerEvaluation{})
	require.True(t, changed)
	assert.True(t, s.Pending)
	gen := s.Generation

	_, changed = s.Apply(TriggerEvaluation{})
	assert.False(t, changed, "trigger while pending is ignored")

	_, changed = s.Apply(CompleteEvaluation{Generation: gen - 1, Result: model.EvaluationResult{Score: 1}})
	assert.False(t, changed, "stale result is dropped")

	s, changed = s.Apply(CompleteEvaluation{Generation: gen, Result: model.EvaluationResult{Score: 4.2, State: model.StateDone}})
	require.True(t, changed)
	assert.False(t, s.Pending)
	require.NotNil(t, s.Result)
	assert.InDelta(t, 4.2, s.Result.Score, 1e-9)

	s, _ = s.Apply(TriggerEvaluation{})
	assert.Nil(t, s.Result, "a new trigger clears the previous result")
}

func TestSession_ResetAbandonsPendingEvaluation(t *testing.T) {
	s := testSession(t)
	s, _ = s.Apply(s.PlaceSelected(grid.Cell{X: 3, Y: 3}))
	s, _ = s.Apply(TriggerEvaluation{})
	gen := s.Generation

	newDoor := &model.Door{Cell: grid.Cell{X: 5, Y: 0}}
	s, changed := s.Apply(Reset{Door: newDoor})
	require.True(t, changed)
	assert.Equal(t, 0, s.Registry.Len())
	assert.False(t, s.Pending)
	assert.Nil(t, s.Result)
	assert.Equal(t, newDoor, s.Door)

	_, changed = s.Apply(CompleteEvaluation{Generation: gen, Result: model.EvaluationResult{Score: 3}})
	assert.False(t, changed, "result of the abandoned run is dropped")
}

func TestHistory_UndoRedoPlacements(t *testing.T) {
	h := NewHistory()
	s := testSession(t)

	s, ok := h.Apply(s, s.PlaceSelected(grid.Cell{X: 3, Y: 3}), "Place Sofa")
	require.True(t, ok)
	s, ok = h.Apply(s, Place{Index: 1, Cell: grid.Cell{X: 8, Y: 1}}, "Place Chair")
	require.True(t, ok)
	require.Equal(t, 2, s.Registry.Len())

	s, ok = h.UndoSession(s)
	require.True(t, ok)
	assert.Equal(t, 1, s.Registry.Len())
	assert.True(t, h.CanRedo())

	s, ok = h.RedoSession(s)
	require.True(t, ok)
	assert.Equal(t, 2, s.Registry.Len())

	_, ok = h.RedoSession(s)
	assert.False(t, ok, "nothing left to redo")
}

func TestHistory_RejectedActionNotRecorded(t *testing.T) {
	h := NewHistory()
	s := testSession(t)

	_, ok := h.Apply(s, Remove{Cell: grid.Cell{X: 1, Y: 1}}, "Remove")
	assert.False(t, ok)
	assert.False(t, h.CanUndo())

	_, ok = h.Apply(s, Rotate{}, "Rotate")
	assert.True(t, ok)
	assert.False(t, h.CanUndo(), "rotation does not touch placements")
}

func TestHistory_PushNewClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Push(Snapshot{Label: "a"})
	h.Push(Snapshot{Label: "b"})

	_, ok := h.Undo(Snapshot{Label: "current"})
	require.True(t, ok)
	assert.True(t, h.CanRedo())

	h.Push(Snapshot{Label: "c"})
	assert.False(t, h.CanRedo())
}

func TestHistory_LabelsFollowUndoAndRedo(t *testing.T) {
	h := NewHistory()
	s := testSession(t)
	assert.Empty(t, h.UndoLabel())
	assert.Empty(t, h.RedoLabel())

	s, _ = h.Apply(s, s.PlaceSelected(grid.Cell{X: 3, Y: 3}), "Place Sofa")
	s, _ = h.Apply(s, s.PlaceSelected(grid.Cell{X: 3, Y: 5}), "Place Sofa again")
	assert.Equal(t, "Place Sofa again", h.UndoLabel())

	s, ok := h.UndoSession(s)
	require.True(t, ok)
	assert.Equal(t, "Place Sofa", h.UndoLabel())
	assert.Equal(t, "Place Sofa again", h.RedoLabel())

	_, ok = h.RedoSession(s)
	require.True(t, ok)
	assert.Equal(t, "Place Sofa again", h.UndoLabel())
	assert.Empty(t, h.RedoLabel())
}

func TestHistory_MaxDepth(t *testing.T) {
	h := NewHistory()
	for i := 0; i < defaultMaxDepth+10; i++ {
		h.Push(Snapshot{Label: "step"})
	}
	assert.Len(t, h.undoStack, defaultMaxDepth)
}

func TestHistory_ResetClears(t *testing.T) {
	h := NewHistory()
	s := testSession(t)
	s, _ = h.Apply(s, s.PlaceSelected(grid.Cell{X: 3, Y: 3}), "Place")
	require.True(t, h.CanUndo())

	_, ok := h.Apply(s, Reset{}, "Reset")
	require.True(t, ok)
	assert.False(t, h.CanUndo())
}
