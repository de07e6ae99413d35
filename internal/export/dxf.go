package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/RoomFit/internal/grid"
	"github.com/piwi3910/RoomFit/internal/model"
)

// DXF layer names.
const (
	LayerRoom      = "ROOM"
	LayerDoor      = "DOOR"
	LayerFurniture = "FURNITURE"
	LayerLabels    = "LABELS"
)

// ExportDXF writes the floor plan as a drawing with one unit per
// unitsPerCell of drawing length. The grid's y axis points down, so rows
// are flipped to keep the entrance at the bottom of the drawing.
func ExportDXF(path string, l model.Layout, unitsPerCell float64) error {
	if unitsPerCell <= 0 {
		return fmt.Errorf("units per cell must be positive, got %g", unitsPerCell)
	}
	if err := l.Room.Validate(); err != nil {
		return err
	}

	d := dxf.NewDrawing()
	for _, layer := range []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerRoom, color.White},
		{LayerDoor, color.Red},
		{LayerFurniture, color.Cyan},
		{LayerLabels, color.Yellow},
	} {
		if _, err := d.AddLayer(layer.name, layer.col, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", layer.name, err)
		}
	}

	plot := func(r grid.Rect) error {
		x0 := float64(r.X) * unitsPerCell
		x1 := float64(r.Right()) * unitsPerCell
		y0 := float64(l.Room.Height-r.Bottom()) * unitsPerCell
		y1 := float64(l.Room.Height-r.Y) * unitsPerCell
		edges := [4][4]float64{
			{x0, y0, x1, y0},
			{x1, y0, x1, y1},
			{x1, y1, x0, y1},
			{x0, y1, x0, y0},
		}
		for _, e := range edges {
			if _, err := d.Line(e[0], e[1], 0, e[2], e[3], 0); err != nil {
				return err
			}
		}
		return nil
	}

	d.ChangeLayer(LayerRoom)
	if err := plot(l.Room.Bounds()); err != nil {
		return err
	}

	if l.Door != nil {
		d.ChangeLayer(LayerDoor)
		if err := plot(l.Door.Rect()); err != nil {
			return err
		}
	}

	for _, p := range l.Placements {
		d.ChangeLayer(LayerFurniture)
		r := p.VisualRect()
		if err := plot(r); err != nil {
			return err
		}
		d.ChangeLayer(LayerLabels)
		x := (float64(r.X) + 0.1) * unitsPerCell
		y := (float64(l.Room.Height-r.Y) - 0.4) * unitsPerCell
		if _, err := d.Text(p.KindName(), x, y, 0, unitsPerCell*0.25); err != nil {
			return err
		}
	}

	return d.SaveAs(path)
}
