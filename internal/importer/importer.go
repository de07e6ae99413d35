// Package importer loads furniture catalogs from YAML, CSV and Excel files.
// Tabular sources get automatic delimiter detection, flexible column mapping
// and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RoomFit/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Kinds    []model.FurnitureKind
	Errors   []string
	Warnings []string
}

// OK reports whether at least one kind was read and no row failed.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Kinds) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name       int
	Width      int
	Height     int
	VisualW    int
	VisualH    int
	Appearance int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":       {"name", "kind", "item", "furniture", "label", "description"},
	"width":      {"width", "w", "cols", "footprint width", "footprint w"},
	"height":     {"height", "h", "depth", "rows", "footprint height", "footprint h"},
	"visualw":    {"visual width", "visual w", "sprite width"},
	"visualh":    {"visual height", "visual h", "sprite height"},
	"appearance": {"appearance", "color", "colour", "sprite", "look"},
}

// csvDelimiters are tried in order; ties keep the earlier candidate.
var csvDelimiters = []rune{',', ';', '\t', '|'}

// DetectCSVDelimiter guesses the delimiter of a catalog sheet. A candidate
// must split the first line into at least two fields; among those, the one
// whose rows most often match the first line's width wins, with wider
// rows breaking ties.
func DetectCSVDelimiter(data []byte) rune {
	best, bestRank := ',', -1
	for _, delim := range csvDelimiters {
		r := csv.NewReader(bytes.NewReader(data))
		r.Comma = delim
		r.LazyQuotes = true
		r.FieldsPerRecord = -1

		rows, err := r.ReadAll()
		if err != nil || len(rows) == 0 || len(rows[0]) < 2 {
			continue
		}
		width, matching := len(rows[0]), 0
		for _, row := range rows {
			if len(row) == width {
				matching++
			}
		}
		if rank := matching*10 + width; rank > bestRank {
			best, bestRank = delim, rank
		}
	}
	return best
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or a default
// positional mapping (name, width, height, appearance) and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Width: -1, Height: -1, VisualW: -1, VisualH: -1, Appearance: -1}
	slots := map[string]*int{
		"name":       &mapping.Name,
		"width":      &mapping.Width,
		"height":     &mapping.Height,
		"visualw":    &mapping.VisualW,
		"visualh":    &mapping.VisualH,
		"appearance": &mapping.Appearance,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Width: 1, Height: 2, VisualW: -1, VisualH: -1, Appearance: 3}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseCells(rowLabel, field, s string) (int, string) {
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, field)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, field, s)
	}
	if n <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, field)
	}
	return n, ""
}

// parseRow extracts a FurnitureKind from a row using the given column mapping.
// Returns the kind, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.FurnitureKind, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		return model.FurnitureKind{}, fmt.Sprintf("%s: Missing name", rowLabel), ""
	}

	w, errMsg := parseCells(rowLabel, "width", getCell(row, mapping.Width))
	if errMsg != "" {
		return model.FurnitureKind{}, errMsg, ""
	}
	h, errMsg := parseCells(rowLabel, "height", getCell(row, mapping.Height))
	if errMsg != "" {
		return model.FurnitureKind{}, errMsg, ""
	}

	kind := model.FurnitureKind{Name: name, Footprint: model.Size{W: w, H: h}}

	var warning string
	vw, vh := getCell(row, mapping.VisualW), getCell(row, mapping.VisualH)
	if vw != "" || vh != "" {
		vwN, errW := parseCells(rowLabel, "visual width", vw)
		vhN, errH := parseCells(rowLabel, "visual height", vh)
		if errW == "" && errH == "" {
			kind.Visual = model.Size{W: vwN, H: vhN}
		} else {
			warning = fmt.Sprintf("%s: Ignoring visual size '%sx%s', using footprint", rowLabel, vw, vh)
		}
	}

	kind.Appearance = getCell(row, mapping.Appearance)
	if err := kind.Validate(); err != nil {
		warning = fmt.Sprintf("%s: %v, using default appearance", rowLabel, err)
		kind.Appearance = ""
	}

	return kind, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports furniture kinds from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, errMsg := readCSV(bytes.NewReader(data), delimiter)
	if errMsg != "" {
		result.Errors = append(result.Errors, errMsg)
		return result
	}
	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports furniture kinds from a CSV reader with a
// known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, errMsg := readCSV(reader, delimiter)
	if errMsg != "" {
		return ImportResult{Errors: []string{errMsg}}
	}
	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, string) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Sprintf("Cannot read CSV: %v", err)
	}
	if len(records) == 0 {
		return nil, "File is empty"
	}
	return records, ""
}

// ImportExcel imports furniture kinds from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Name == -1 {
			missing = append(missing, "Name")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// Unrecognised header with a non-numeric width column
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		kind, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Kinds = append(result.Kinds, kind)
	}

	return result
}
