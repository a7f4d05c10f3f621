// Package workbook parses the uploaded demand and in-transit spreadsheets
// into the planner's raw input rows.
package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"delivery-planner/internal/planner"
)

// Column headers are matched case-insensitively against these synonym sets.
// The canonical names come from the source spreadsheets (Tabela1/Tabela2).
var (
	batchCols    = []string{"batch"}
	materialCols = []string{"material"}
	leafCols     = []string{"leaf"}
	dateCols     = []string{"requirement date", "requirement_date", "date"}
	demandCols   = []string{"net demand", "gross demand", "demand", "net_demand_kg", "gross_demand_kg"}
	convCols     = []string{"conv", "conversion factor", "conversion_factor"}
	transitCols  = []string{"w_drodze", "in transit", "in_transit", "in_transit_kg"}
)

// ReadDemand parses the demand workbook (first sheet) into raw demand rows.
// A missing required column is a DataShapeError.
func ReadDemand(r io.Reader) ([]planner.DemandInput, error) {
	const op = "workbook.ReadDemand"

	rows, header, err := sheetRows(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	batch, err := findColumn(header, batchCols)
	if err != nil {
		return nil, err
	}
	material, err := findColumn(header, materialCols)
	if err != nil {
		return nil, err
	}
	leaf, err := findColumn(header, leafCols)
	if err != nil {
		return nil, err
	}
	date, err := findColumn(header, dateCols)
	if err != nil {
		return nil, err
	}
	mass, err := findColumn(header, demandCols)
	if err != nil {
		return nil, err
	}
	conv, err := findColumn(header, convCols)
	if err != nil {
		return nil, err
	}

	var out []planner.DemandInput
	for i, row := range rows {
		if blankRow(row) {
			continue
		}

		d, err := parseDate(cell(row, date))
		if err != nil {
			return nil, &planner.DataShapeError{Reason: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		grossKg, err := parseMass(cell(row, mass))
		if err != nil {
			return nil, &planner.DataShapeError{Reason: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		factor, err := parseMass(cell(row, conv))
		if err != nil {
			return nil, &planner.DataShapeError{Reason: fmt.Sprintf("row %d: %v", i+2, err)}
		}

		out = append(out, planner.DemandInput{
			Batch:            cell(row, batch),
			Material:         cell(row, material),
			Leaf:             cell(row, leaf),
			RequirementDate:  d,
			GrossDemandKg:    grossKg,
			ConversionFactor: factor,
		})
	}

	return out, nil
}

// ReadTransit parses the in-transit workbook (first sheet).
func ReadTransit(r io.Reader) ([]planner.TransitInput, error) {
	const op = "workbook.ReadTransit"

	rows, header, err := sheetRows(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	batch, err := findColumn(header, batchCols)
	if err != nil {
		return nil, err
	}
	material, err := findColumn(header, materialCols)
	if err != nil {
		return nil, err
	}
	leaf, err := findColumn(header, leafCols)
	if err != nil {
		return nil, err
	}
	date, err := findColumn(header, dateCols)
	if err != nil {
		return nil, err
	}
	mass, err := findColumn(header, transitCols)
	if err != nil {
		return nil, err
	}

	var out []planner.TransitInput
	for i, row := range rows {
		if blankRow(row) {
			continue
		}

		d, err := parseDate(cell(row, date))
		if err != nil {
			return nil, &planner.DataShapeError{Reason: fmt.Sprintf("row %d: %v", i+2, err)}
		}
		kg, err := parseMass(cell(row, mass))
		if err != nil {
			return nil, &planner.DataShapeError{Reason: fmt.Sprintf("row %d: %v", i+2, err)}
		}

		out = append(out, planner.TransitInput{
			Batch:           cell(row, batch),
			Material:        cell(row, material),
			Leaf:            cell(row, leaf),
			RequirementDate: d,
			InTransitKg:     kg,
		})
	}

	return out, nil
}

// sheetRows opens the workbook and returns the data rows and header of the
// first sheet.
func sheetRows(r io.Reader) ([][]string, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &planner.DataShapeError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, &planner.DataShapeError{Reason: fmt.Sprintf("sheet %q is empty", sheets[0])}
	}

	return rows[1:], rows[0], nil
}

func findColumn(header []string, names []string) (int, error) {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i, nil
			}
		}
	}
	return 0, &planner.DataShapeError{Reason: fmt.Sprintf("missing column %q", names[0])}
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "01-02-06", "2006-01-02 15:04:05"}

// parseDate accepts calendar dates in the common spreadsheet layouts, or an
// Excel serial number when the cell kept its numeric form.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid excel date %q: %w", s, err)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseMass reads a float cell; an empty cell counts as zero, a decimal
// comma is accepted.
func parseMass(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
