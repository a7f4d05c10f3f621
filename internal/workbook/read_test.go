package workbook

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"delivery-planner/internal/planner"
)

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadDemand(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "Net Demand", "Conv"},
		{"B1", "M1", "L1", "2025-03-01", 101.5, 50},
		{"B2", "M2", "L2", "2025-03-02", "75,25", 25},
		{}, // blank row is skipped
		{"B3", "M3", "L3", "2025-03-03", "", 10},
	})

	rows, err := ReadDemand(buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, planner.DemandInput{
		Batch: "B1", Material: "M1", Leaf: "L1",
		RequirementDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		GrossDemandKg:    101.5,
		ConversionFactor: 50,
	}, rows[0])

	// Decimal comma.
	assert.Equal(t, 75.25, rows[1].GrossDemandKg)
	// Empty mass cell counts as zero.
	assert.Equal(t, 0.0, rows[2].GrossDemandKg)
}

func TestReadDemand_HeaderCaseInsensitive(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"BATCH", "material", " Leaf ", "requirement_date", "Gross Demand", "Conversion Factor"},
		{"B1", "M1", "L1", "2025-03-01", 10, 5},
	})

	rows, err := ReadDemand(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10.0, rows[0].GrossDemandKg)
	assert.Equal(t, 5.0, rows[0].ConversionFactor)
}

func TestReadDemand_MissingColumn(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "Net Demand"},
		{"B1", "M1", "L1", "2025-03-01", 10},
	})

	_, err := ReadDemand(buf)
	var shape *planner.DataShapeError
	require.ErrorAs(t, err, &shape)
	assert.Contains(t, shape.Reason, "conv")
}

func TestReadDemand_BadDate(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "Net Demand", "Conv"},
		{"B1", "M1", "L1", "soon", 10, 5},
	})

	_, err := ReadDemand(buf)
	var shape *planner.DataShapeError
	assert.ErrorAs(t, err, &shape)
}

func TestReadDemand_DottedDateLayout(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "Net Demand", "Conv"},
		{"B1", "M1", "L1", "05.03.2025", 10, 5},
	})

	rows, err := ReadDemand(buf)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), rows[0].RequirementDate)
}

func TestReadTransit(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "W_drodze"},
		{"B1", "M1", "L1", "2025-03-01", 40},
	})

	rows, err := ReadTransit(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, planner.TransitInput{
		Batch: "B1", Material: "M1", Leaf: "L1",
		RequirementDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		InTransitKg:     40,
	}, rows[0])
}

func TestReadTransit_MissingMassColumn(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "Quantity"},
		{"B1", "M1", "L1", "2025-03-01", 40},
	})

	_, err := ReadTransit(buf)
	var shape *planner.DataShapeError
	assert.ErrorAs(t, err, &shape)
}

func TestReadDemand_NotAWorkbook(t *testing.T) {
	_, err := ReadDemand(bytes.NewBufferString("definitely not xlsx"))
	assert.Error(t, err)
}
