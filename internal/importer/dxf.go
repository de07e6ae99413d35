package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/RoomFit/internal/grid"
)

// RoomImportResult holds the room size read from a floor plan drawing.
type RoomImportResult struct {
	Width    int // cells
	Height   int // cells
	Errors   []string
	Warnings []string
}

// Room converts the result to a grid room with the given cell size.
func (r RoomImportResult) Room(cellSize int) (grid.Room, error) {
	if len(r.Errors) > 0 {
		return grid.Room{}, fmt.Errorf("room import: %s", r.Errors[0])
	}
	return grid.NewRoom(r.Width, r.Height, cellSize)
}

type bounds struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func newBounds() bounds {
	return bounds{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1), empty: true}
}

func (b *bounds) add(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.minY = math.Min(b.minY, y)
	b.maxX = math.Max(b.maxX, x)
	b.maxY = math.Max(b.maxY, y)
	b.empty = false
}

// ImportRoomDXF reads a floor plan drawing and sizes the room from the
// bounding box of its LINE, LWPOLYLINE and CIRCLE entities. unitsPerCell
// is the drawing length of one grid cell; partial cells are dropped.
func ImportRoomDXF(path string, unitsPerCell float64) RoomImportResult {
	result := RoomImportResult{}
	if unitsPerCell <= 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Units per cell must be positive, got %g", unitsPerCell))
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	b := newBounds()
	skipped := 0
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.Line:
			b.add(e.Start[0], e.Start[1])
			b.add(e.End[0], e.End[1])
		case *entity.LwPolyline:
			for _, v := range e.Vertices {
				b.add(v[0], v[1])
			}
		case *entity.Circle:
			b.add(e.Center[0]-e.Radius, e.Center[1]-e.Radius)
			b.add(e.Center[0]+e.Radius, e.Center[1]+e.Radius)
		default:
			skipped++
		}
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d unsupported entities", skipped))
	}
	if b.empty {
		result.Errors = append(result.Errors, "No line geometry found in DXF file")
		return result
	}

	// Small epsilon so 640.0/64 does not floor to 9 after rounding noise
	const eps = 1e-6
	result.Width = int(math.Floor((b.maxX-b.minX)/unitsPerCell + eps))
	result.Height = int(math.Floor((b.maxY-b.minY)/unitsPerCell + eps))
	if result.Width <= 0 || result.Height <= 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Drawing is smaller than one cell (%.2f x %.2f units)", b.maxX-b.minX, b.maxY-b.minY))
	}
	return result
}
