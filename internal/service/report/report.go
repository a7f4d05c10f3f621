// Package report renders a stored allocation plan as an Excel workbook or
// a flat CSV file for download.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/storage"
)

type PlanStorage interface {
	GetPlan(ctx context.Context, id string) (*storage.Plan, error)
}

type Service struct {
	storage PlanStorage
}

func NewService(st PlanStorage) *Service {
	return &Service{storage: st}
}

const (
	sheetOrders   = "Vehicle Orders"
	sheetCoverage = "Coverage"
	sheetSummary  = "Summary"
)

// ExcelReport builds the three-sheet workbook: aggregated vehicle orders,
// the coverage curve, and the summary metrics.
func (s *Service) ExcelReport(ctx context.Context, planID string) ([]byte, error) {
	const op = "service.report.ExcelReport"

	plan, err := s.storage.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders := planner.AggregateLoads(plan.Loads)

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetOrders)
	if _, err = f.NewSheet(sheetCoverage); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = f.NewSheet(sheetSummary); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	// Vehicle orders sheet.
	ordersHeader := []string{"Vehicle", "Batch", "Material", "Leaf", "Cartons", "Conv", "Total mass (kg)"}
	for i, name := range ordersHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetOrders, cell, name)
	}
	for rowIdx, o := range orders {
		rowNum := rowIdx + 2
		f.SetCellValue(sheetOrders, cellName(1, rowNum), o.VehicleNumber)
		f.SetCellValue(sheetOrders, cellName(2, rowNum), o.Batch)
		f.SetCellValue(sheetOrders, cellName(3, rowNum), o.Material)
		f.SetCellValue(sheetOrders, cellName(4, rowNum), o.Leaf)
		f.SetCellValue(sheetOrders, cellName(5, rowNum), o.Cartons)
		f.SetCellValue(sheetOrders, cellName(6, rowNum), o.ConversionFactor)
		f.SetCellValue(sheetOrders, cellName(7, rowNum), o.TotalMassKg)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(ordersHeader), 1)
	f.SetCellStyle(sheetOrders, "A1", lastCol, headerStyle)
	f.SetPanes(sheetOrders, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheetOrders, "A", "G", 15)

	// Coverage sheet.
	coverageHeader := []string{"Date", "Need before", "Need after"}
	for i, name := range coverageHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetCoverage, cell, name)
	}
	for rowIdx, c := range plan.Coverage {
		rowNum := rowIdx + 2
		f.SetCellValue(sheetCoverage, cellName(1, rowNum), c.Date.Format("2006-01-02"))
		f.SetCellValue(sheetCoverage, cellName(2, rowNum), c.NeedBefore)
		f.SetCellValue(sheetCoverage, cellName(3, rowNum), c.NeedAfter)
	}
	f.SetCellStyle(sheetCoverage, "A1", "C1", headerStyle)
	f.SetColWidth(sheetCoverage, "A", "C", 15)

	// Summary sheet.
	totalCartons, totalMass := 0, 0.0
	vehicles := make(map[int]struct{})
	for _, o := range orders {
		totalCartons += o.Cartons
		totalMass += o.TotalMassKg
		vehicles[o.VehicleNumber] = struct{}{}
	}
	avg := 0.0
	if len(vehicles) > 0 {
		avg = float64(totalCartons) / float64(len(vehicles))
	}

	summary := [][2]interface{}{
		{"Total cartons", totalCartons},
		{"Total mass (kg)", totalMass},
		{"Vehicles used", len(vehicles)},
		{"Avg cartons per vehicle", avg},
		{"Target date", plan.TargetDate.Format("2006-01-02")},
	}
	f.SetCellValue(sheetSummary, "A1", "Metric")
	f.SetCellValue(sheetSummary, "B1", "Value")
	for i, kv := range summary {
		f.SetCellValue(sheetSummary, cellName(1, i+2), kv[0])
		f.SetCellValue(sheetSummary, cellName(2, i+2), kv[1])
	}
	f.SetCellStyle(sheetSummary, "A1", "B1", headerStyle)
	f.SetColWidth(sheetSummary, "A", "B", 25)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

// CSVReport writes the aggregated vehicle orders as a flat delimited file.
func (s *Service) CSVReport(ctx context.Context, planID string) ([]byte, error) {
	const op = "service.report.CSVReport"

	plan, err := s.storage.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err = w.Write([]string{"vehicle", "batch", "material", "leaf", "cartons", "conversion_factor", "total_mass_kg"}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, o := range planner.AggregateLoads(plan.Loads) {
		record := []string{
			strconv.Itoa(o.VehicleNumber),
			o.Batch,
			o.Material,
			o.Leaf,
			strconv.Itoa(o.Cartons),
			strconv.FormatFloat(o.ConversionFactor, 'f', -1, 64),
			strconv.FormatFloat(o.TotalMassKg, 'f', -1, 64),
		}
		if err = w.Write(record); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
