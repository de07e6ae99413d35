// Package grid defines the discrete floor plan: room dimensions, cell
// addressing, pixel-to-cell transforms and half-open rectangles.
package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidRoom is returned when a room is configured with a non-positive
// dimension or cell size.
var ErrInvalidRoom = errors.New("invalid room configuration")

// Cell is an integer grid coordinate. X grows to the right, Y grows down
// (towards the entrance side of the room).
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle in cell units with half-open
// semantics: it covers [X, X+W) x [Y, Y+H).
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Area returns the number of cells covered.
func (r Rect) Area() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Intersects reports whether two rectangles share at least one cell.
// Rectangles touching at an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether the cell lies inside the rectangle.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.Right() && c.Y >= r.Y && c.Y < r.Bottom()
}

// Room is the floor plan: Width x Height cells, each CellSize pixels wide.
type Room struct {
	Width    int `json:"width" yaml:"width"`
	Height   int `json:"height" yaml:"height"`
	CellSize int `json:"cell_size" yaml:"cell_size"`
}

// NewRoom builds a Room, rejecting non-positive values.
func NewRoom(width, height, cellSize int) (Room, error) {
	r := Room{Width: width, Height: height, CellSize: cellSize}
	if err := r.Validate(); err != nil {
		return Room{}, err
	}
	return r, nil
}

// Validate checks the room configuration.
func (r Room) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidRoom, r.Width, r.Height)
	}
	if r.CellSize <= 0 {
		return fmt.Errorf("%w: cell size %d must be positive", ErrInvalidRoom, r.CellSize)
	}
	return nil
}

// Cells returns the floor area in cells.
func (r Room) Cells() int {
	return r.Width * r.Height
}

// Bounds returns the room as a rectangle anchored at the origin.
func (r Room) Bounds() Rect {
	return Rect{X: 0, Y: 0, W: r.Width, H: r.Height}
}

// InBounds reports whether rect lies fully inside the room. Any edge
// crossing 0 or Width/Height makes it out of bounds.
func (r Room) InBounds(rect Rect) bool {
	return rect.X >= 0 && rect.Y >= 0 &&
		rect.Right() <= r.Width && rect.Bottom() <= r.Height
}

// ContainsCell reports whether c is a valid cell of the room.
func (r Room) ContainsCell(c Cell) bool {
	return r.Bounds().Contains(c)
}

// ToCell converts a pixel coordinate into the cell under it.
func (r Room) ToCell(px, py int) Cell {
	return ToCell(px, py, r.CellSize)
}

// PixelSize returns the rendered room size in pixels.
func (r Room) PixelSize() (int, int) {
	return r.Width * r.CellSize, r.Height * r.CellSize
}

// ToCell converts a pixel coordinate to a cell with integer floor division,
// so pixels left of or above the origin map to negative cells.
func ToCell(px, py, cellSize int) Cell {
	return Cell{X: floorDiv(px, cellSize), Y: floorDiv(py, cellSize)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
