package engine

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sofa  = &model.FurnitureKind{Name: "Sofa", Footprint: model.Size{W: 3, H: 2}}
	chair = &model.FurnitureKind{Name: "Chair", Footprint: model.Size{W: 1, H: 1}}
	shelf = &model.FurnitureKind{Name: "Shelf", Footprint: model.Size{W: 2, H: 1}, Visual: model.Size{W: 2, H: 2}}
	tall  = &model.FurnitureKind{Name: "Wardrobe", Footprint: model.Size{W: 2, H: 3}}
)

func testRoom() grid.Room {
	return grid.Room{Width: 10, Height: 8, CellSize: 64}
}

func cells(seq func(func(model.Placement) bool)) []grid.Cell {
	var out []grid.Cell
	for p := range seq {
		out = append(out, p.Cell)
	}
	return out
}

func TestRegistry_DepthSortedOrdersByRowThenColumn(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(chair, grid.Cell{X: 5, Y: 3}, model.Rot0)
	r.Add(chair, grid.Cell{X: 1, Y: 1}, model.Rot0)
	r.Add(chair, grid.Cell{X: 0, Y: 3}, model.Rot0)
	r.Add(chair, grid.Cell{X: 4, Y: 1}, model.Rot0)

	got := cells(r.DepthSorted())
	assert.Equal(t, []grid.Cell{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 0, Y: 3}, {X: 5, Y: 3}}, got)
}

func TestRegistry_DepthSortedStableAndRestartable(t *testing.T) {
	r := NewRegistry(nil)
	first := r.Add(chair, grid.Cell{X: 2, Y: 2}, model.Rot0)
	second := r.Add(sofa, grid.Cell{X: 2, Y: 2}, model.Rot0)

	var ids []string
	for p := range r.DepthSorted() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{first.ID, second.ID}, ids, "ties keep insertion order")

	seq := r.DepthSorted()
	r.Add(chair, grid.Cell{X: 0, Y: 0}, model.Rot0)
	assert.Len(t, cells(seq), 3, "sequence reflects the registry when iteration starts")
	assert.Len(t, cells(seq), 3, "sequence can be ranged over again")
}

func TestRegistry_RemoveAtHitsUnitDepthBase(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(sofa, grid.Cell{X: 2, Y: 2}, model.Rot0)

	_, ok := r.RemoveAt(grid.Cell{X: 3, Y: 3})
	assert.False(t, ok, "second footprint row is not part of the base")
	assert.Equal(t, 1, r.Len())

	p, ok := r.RemoveAt(grid.Cell{X: 4, Y: 2})
	require.True(t, ok)
	assert.Equal(t, "Sofa", p.KindName())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RemoveAtPrefersMostRecent(t *testing.T) {
	r := NewRegistry(nil)
	older := r.Add(sofa, grid.Cell{X: 0, Y: 0}, model.Rot0)
	newer := r.Add(chair, grid.Cell{X: 1, Y: 0}, model.Rot0)

	p, ok := r.RemoveAt(grid.Cell{X: 1, Y: 0})
	require.True(t, ok)
	assert.Equal(t, newer.ID, p.ID)
	assert.Equal(t, []model.Placement{older}, r.Snapshot())
}

func TestRegistry_RemoveAtPrefersMostRecentAcrossRotations(t *testing.T) {
	r := NewRegistry(nil)
	turned := r.Add(sofa, grid.Cell{X: 2, Y: 2}, model.Rot90)
	upright := r.Add(sofa, grid.Cell{X: 2, Y: 2}, model.Rot0)
	require.Equal(t, grid.Rect{X: 2, Y: 2, W: 2, H: 1}, turned.BaseRect())
	require.Equal(t, grid.Rect{X: 2, Y: 2, W: 3, H: 1}, upright.BaseRect())

	p, ok := r.RemoveAt(grid.Cell{X: 3, Y: 2})
	require.True(t, ok)
	assert.Equal(t, upright.ID, p.ID)
	assert.Equal(t, model.Rot0, p.Rotation)
	assert.Equal(t, []model.Placement{turned}, r.Snapshot())

	_, ok = r.RemoveAt(grid.Cell{X: 4, Y: 2})
	assert.False(t, ok, "column 4 lies outside the rotated base")

	p, ok = r.RemoveAt(grid.Cell{X: 3, Y: 2})
	require.True(t, ok)
	assert.Equal(t, turned.ID, p.ID)
}

func TestRegistry_TopAtMatchesRemoveAt(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(sofa, grid.Cell{X: 0, Y: 0}, model.Rot0)
	newer := r.Add(chair, grid.Cell{X: 1, Y: 0}, model.Rot0)

	top, ok := r.TopAt(grid.Cell{X: 1, Y: 0})
	require.True(t, ok)
	assert.Equal(t, newer.ID, top.ID)
	assert.Equal(t, 2, r.Len(), "TopAt does not remove")

	_, ok = r.TopAt(grid.Cell{X: 1, Y: 1})
	assert.False(t, ok)
}

func TestRegistry_RemoveAtMissIsNoOp(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(chair, grid.Cell{X: 0, Y: 0}, model.Rot0)
	before := r.Snapshot()

	_, ok := r.RemoveAt(grid.Cell{X: 9, Y: 7})
	assert.False(t, ok)
	assert.Equal(t, before, r.Snapshot())
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(chair, grid.Cell{X: 0, Y: 0}, model.Rot0)
	c := r.Clone()
	c.Add(chair, grid.Cell{X: 1, Y: 0}, model.Rot0)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, c.Len())
}

func TestCheck_BoundaryUsesFullFootprint(t *testing.T) {
	room := testRoom()

	v := Check(sofa, grid.Cell{X: 7, Y: 6}, model.Rot0, nil, nil, room)
	assert.True(t, v.Valid, "3x2 sofa at (7,6) touches the far corner")

	v = Check(sofa, grid.Cell{X: 7, Y: 7}, model.Rot0, nil, nil, room)
	assert.False(t, v.Valid)
	assert.Equal(t, RuleBoundary, v.Failed)

	v = Check(sofa, grid.Cell{X: 8, Y: 0}, model.Rot90, nil, nil, room)
	assert.True(t, v.Valid, "rotated sofa is 2 wide")

	v = Check(sofa, grid.Cell{X: -1, Y: 0}, model.Rot0, nil, nil, room)
	assert.Equal(t, RuleBoundary, v.Failed)
}

func TestCheck_OverlapUsesBaseRows(t *testing.T) {
	room := testRoom()
	occupants := []model.Placement{model.NewPlacement(sofa, grid.Cell{X: 2, Y: 2}, model.Rot0)}

	v := Check(chair, grid.Cell{X: 3, Y: 2}, model.Rot0, occupants, nil, room)
	assert.Equal(t, RuleOverlap, v.Failed)
	require.NotNil(t, v.Blocker)
	assert.Equal(t, occupants[0].ID, v.Blocker.ID)

	v = Check(chair, grid.Cell{X: 3, Y: 3}, model.Rot0, occupants, nil, room)
	assert.True(t, v.Valid, "the sofa's second row is free for other bases")

	v = Check(chair, grid.Cell{X: 5, Y: 2}, model.Rot0, occupants, nil, room)
	assert.True(t, v.Valid, "touching the right edge is not an overlap")
}

func TestCheck_TallItemsStackAboveBase(t *testing.T) {
	room := testRoom()
	occupants := []model.Placement{model.NewPlacement(chair, grid.Cell{X: 4, Y: 5}, model.Rot0)}

	// Wardrobe at (4,3) extends over the chair's cell visually, but its
	// base row is y=3.
	assert.True(t, IsValid(tall, grid.Cell{X: 4, Y: 3}, model.Rot0, occupants, nil, room))
}

func TestCheck_DoorBlocksFullFootprint(t *testing.T) {
	room := testRoom()
	door := &model.Door{Cell: grid.Cell{X: 4, Y: 7}}

	v := Check(tall, grid.Cell{X: 3, Y: 5}, model.Rot0, nil, door, room)
	assert.Equal(t, RuleDoor, v.Failed, "door lies in the wardrobe's third row")

	v = Check(tall, grid.Cell{X: 5, Y: 5}, model.Rot0, nil, door, room)
	assert.True(t, v.Valid)
}

func TestCheck_ShortCircuitsInOrder(t *testing.T) {
	room := testRoom()
	occupants := []model.Placement{model.NewPlacement(chair, grid.Cell{X: 9, Y: 7}, model.Rot0)}
	door := &model.Door{Cell: grid.Cell{X: 9, Y: 7}}

	v := Check(sofa, grid.Cell{X: 8, Y: 7}, model.Rot0, occupants, door, room)
	assert.Equal(t, RuleBoundary, v.Failed, "boundary wins over overlap and door")

	v = Check(chair, grid.Cell{X: 9, Y: 7}, model.Rot0, occupants, door, room)
	assert.Equal(t, RuleOverlap, v.Failed, "overlap wins over door")
}

func TestCheck_Deterministic(t *testing.T) {
	room := testRoom()
	occupants := []model.Placement{model.NewPlacement(shelf, grid.Cell{X: 1, Y: 1}, model.Rot0)}
	for i := 0; i < 5; i++ {
		assert.False(t, IsValid(chair, grid.Cell{X: 2, Y: 1}, model.Rot0, occupants, nil, room))
		assert.True(t, IsValid(chair, grid.Cell{X: 2, Y: 2}, model.Rot0, occupants, nil, room))
	}
}

func TestRandomDoor_NeverCorner(t *testing.T) {
	room := testRoom()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		d := RandomDoor(rng, room)
		require.NotNil(t, d)
		c := d.Cell
		onWall := c.X == 0 || c.Y == 0 || c.X == room.Width-1 || c.Y == room.Height-1
		assert.True(t, onWall, "door %v is not on a wall", c)
		assert.False(t, IsCorner(room, c), "door %v is a corner", c)
	}
}

func TestWallCells_CountAndUnique(t *testing.T) {
	room := testRoom()
	wall := WallCells(room)
	assert.Len(t, wall, 2*(room.Width-2)+2*(room.Height-2))

	sorted := slices.Clone(wall)
	slices.SortFunc(sorted, func(a, b grid.Cell) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	assert.Len(t, slices.Compact(sorted), len(wall))
}

func TestRandomDoor_TinyRoom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Nil(t, RandomDoor(rng, grid.Room{Width: 2, Height: 5, CellSize: 10}))
}
