package engine

import (
	"math/rand"

	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// WallCells returns every cell on the room perimeter except the four
// corners, in clockwise order starting at the top wall.
func WallCells(room grid.Room) []grid.Cell {
	var cells []grid.Cell
	w, h := room.Width, room.Height
	for x := 1; x < w-1; x++ {
		cells = append(cells, grid.Cell{X: x, Y: 0})
	}
	if w > 1 {
		for y := 1; y < h-1; y++ {
			cells = append(cells, grid.Cell{X: w - 1, Y: y})
		}
	}
	if h > 1 {
		for x := w - 2; x >= 1; x-- {
			cells = append(cells, grid.Cell{X: x, Y: h - 1})
		}
	}
	for y := h - 2; y >= 1; y-- {
		cells = append(cells, grid.Cell{X: 0, Y: y})
	}
	return cells
}

// IsCorner reports whether c is one of the room's four corner cells.
func IsCorner(room grid.Room, c grid.Cell) bool {
	return (c.X == 0 || c.X == room.Width-1) && (c.Y == 0 || c.Y == room.Height-1)
}

// RandomDoor picks a wall cell that is not a corner. Rooms too small to
// have one (any side shorter than 3 cells) get no door.
func RandomDoor(rng *rand.Rand, room grid.Room) *model.Door {
	if room.Width < 3 || room.Height < 3 {
		return nil
	}
	cells := WallCells(room)
	if len(cells) == 0 {
		return nil
	}
	return &model.Door{Cell: cells[rng.Intn(len(cells))]}
}
