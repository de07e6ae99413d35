package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RoomFit/internal/evaluation"
	"github.com/piwi3910/RoomFit/internal/model"
)

// Workbook sheet names.
const (
	SheetTally      = "Tally"
	SheetPlacements = "Placements"
)

// ExportTally writes a workbook with a per-kind tally and the full
// placement list in insertion order.
func ExportTally(path string, l model.Layout) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTally); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetPlacements); err != nil {
		return err
	}

	s := evaluation.Summarize(l)
	footprints := make(map[string]model.Size)
	for _, p := range l.Placements {
		if p.Kind != nil {
			footprints[p.KindName()] = p.Kind.Footprint
		}
	}

	rows := [][]interface{}{{"Kind", "Count", "Footprint", "Cells"}}
	for _, kc := range s.Counts {
		fp := footprints[kc.Name]
		rows = append(rows, []interface{}{kc.Name, kc.Count, fmt.Sprintf("%dx%d", fp.W, fp.H), kc.Count * fp.Area()})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Occupied cells", s.OccupiedArea},
		[]interface{}{"Room cells", l.Room.Cells()},
		[]interface{}{"Density", s.Tier.String()},
	)
	if err := writeRows(f, SheetTally, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"ID", "Kind", "X", "Y", "Rotation"}}
	for _, p := range l.Placements {
		rows = append(rows, []interface{}{p.ID, p.KindName(), p.Cell.X, p.Cell.Y, p.Rotation.Degrees()})
	}
	if err := writeRows(f, SheetPlacements, rows); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
