package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/storage"
)

type MockPlanStorage struct {
	mock.Mock
}

func (m *MockPlanStorage) GetPlan(ctx context.Context, id string) (*storage.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Plan), args.Error(1)
}

func planFixture() *storage.Plan {
	target := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	return &storage.Plan{
		ID:        "plan-1",
		DatasetID: "ds-1",
		AllocationPlan: planner.AllocationPlan{
			TargetDate:    target,
			NumVehicles:   2,
			Capacity:      50,
			TotalCapacity: 100,
			Loads: []planner.LoadEntry{
				{VehicleNumber: 1, Batch: "B1", Material: "M1", Leaf: "L1", ConversionFactor: 10, CartonsLoaded: 30},
				{VehicleNumber: 1, Batch: "B2", Material: "M2", Leaf: "L2", ConversionFactor: 10, CartonsLoaded: 20},
				{VehicleNumber: 2, Batch: "B2", Material: "M2", Leaf: "L2", ConversionFactor: 10, CartonsLoaded: 20},
				{VehicleNumber: 2, Batch: "B3", Material: "M3", Leaf: "L3", ConversionFactor: 10, CartonsLoaded: 30},
			},
			Coverage: []planner.CoveragePoint{
				{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), NeedBefore: 30, NeedAfter: 0},
				{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), NeedBefore: 70, NeedAfter: 0},
				{Date: target, NeedBefore: 110, NeedAfter: 10},
			},
		},
	}
}

func TestExcelReport(t *testing.T) {
	mockStorage := new(MockPlanStorage)
	mockStorage.On("GetPlan", mock.Anything, "plan-1").Return(planFixture(), nil)

	svc := NewService(mockStorage)

	data, err := svc.ExcelReport(context.Background(), "plan-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{sheetOrders, sheetCoverage, sheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(sheetOrders)
	require.NoError(t, err)
	// Header plus four aggregated lines (B2 split stays two lines).
	require.Len(t, rows, 5)
	assert.Equal(t, "Vehicle", rows[0][0])
	assert.Equal(t, []string{"1", "B1", "M1", "L1", "30", "10", "300"}, rows[1])
	assert.Equal(t, []string{"2", "B3", "M3", "L3", "30", "10", "300"}, rows[4])

	coverage, err := f.GetRows(sheetCoverage)
	require.NoError(t, err)
	require.Len(t, coverage, 4)
	assert.Equal(t, []string{"2025-03-03", "110", "10"}, coverage[3])

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 6)
	assert.Equal(t, []string{"Total cartons", "100"}, summary[1])
	assert.Equal(t, []string{"Vehicles used", "2"}, summary[3])
	assert.Equal(t, []string{"Target date", "2025-03-03"}, summary[5])

	mockStorage.AssertExpectations(t)
}

func TestCSVReport(t *testing.T) {
	mockStorage := new(MockPlanStorage)
	mockStorage.On("GetPlan", mock.Anything, "plan-1").Return(planFixture(), nil)

	svc := NewService(mockStorage)

	data, err := svc.CSVReport(context.Background(), "plan-1")
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Equal(t, "vehicle,batch,material,leaf,cartons,conversion_factor,total_mass_kg", string(lines[0]))
	assert.Equal(t, "1,B1,M1,L1,30,10,300", string(lines[1]))
	assert.Equal(t, "2,B2,M2,L2,20,10,200", string(lines[3]))
}

func TestExcelReport_UnknownPlan(t *testing.T) {
	mockStorage := new(MockPlanStorage)
	mockStorage.On("GetPlan", mock.Anything, "nope").Return(nil, storage.ErrNotFound)

	svc := NewService(mockStorage)

	_, err := svc.ExcelReport(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
