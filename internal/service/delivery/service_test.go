package delivery

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"delivery-planner/internal/config"
	"delivery-planner/internal/planner"
	"delivery-planner/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveDataset(ctx context.Context, ds *storage.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *MockStorage) GetDataset(ctx context.Context, id string) (*storage.Dataset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Dataset), args.Error(1)
}

func (m *MockStorage) SavePlan(ctx context.Context, p *storage.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func testFleet() config.Fleet {
	return config.Fleet{MaxVehicles: 50, MinCapacity: 50, MaxCapacity: 200}
}

func sheetBuf(t *testing.T, rows [][]interface{}) *bytes.Buffer {
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

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestProcessUpload(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("SaveDataset", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(mockStorage, testFleet())

	demandBuf := sheetBuf(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "Net Demand", "Conv"},
		{"B1", "M1", "L1", "2025-03-01", 101, 50},
		{"B2", "M2", "L2", "2025-03-02", 200, 20},
	})
	transitBuf := sheetBuf(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "W_drodze"},
		{"B2", "M2", "L2", "2025-03-02", 60},
	})

	res, err := svc.ProcessUpload(context.Background(), "march plan", demandBuf, transitBuf)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Dataset.ID)
	assert.Equal(t, "march plan", res.Dataset.Name)
	require.Len(t, res.Dataset.Rows, 2)

	// B1: 101 kg / 50 -> 3 cartons; B2: 140 kg / 20 -> 7 cartons.
	assert.Equal(t, 3, res.Dataset.Rows[0].CartonsNeeded)
	assert.Equal(t, 140.0, res.Dataset.Rows[1].NetNeedKg)
	assert.Equal(t, 7, res.Dataset.Rows[1].CartonsNeeded)

	assert.Equal(t, 241.0, res.Summary.TotalNetNeedKg)
	assert.Equal(t, 60.0, res.Summary.TotalInTransitKg)
	assert.Equal(t, 2, res.Summary.Batches)
	assert.Equal(t, 10, res.Summary.TotalCartons)

	mockStorage.AssertExpectations(t)
}

func TestProcessUpload_ShapeErrorNotSaved(t *testing.T) {
	mockStorage := new(MockStorage)
	svc := NewService(mockStorage, testFleet())

	demandBuf := sheetBuf(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "Net Demand"}, // no Conv column
		{"B1", "M1", "L1", "2025-03-01", 101},
	})
	transitBuf := sheetBuf(t, [][]interface{}{
		{"Batch", "Material", "Leaf", "Requirement Date", "W_drodze"},
	})

	_, err := svc.ProcessUpload(context.Background(), "", demandBuf, transitBuf)
	var shape *planner.DataShapeError
	assert.ErrorAs(t, err, &shape)

	mockStorage.AssertNotCalled(t, "SaveDataset", mock.Anything, mock.Anything)
}

func datasetFixture() *storage.Dataset {
	return &storage.Dataset{
		ID:        "ds-1",
		Name:      "fixture",
		CreatedAt: day(1),
		Rows: []planner.DemandRow{
			{Batch: "B1", Material: "M1", Leaf: "L1", RequirementDate: day(1), NetNeedKg: 300, ConversionFactor: 10, CartonsNeeded: 30},
			{Batch: "B2", Material: "M2", Leaf: "L2", RequirementDate: day(2), NetNeedKg: 400, ConversionFactor: 10, CartonsNeeded: 40},
			{Batch: "B3", Material: "M1", Leaf: "L3", RequirementDate: day(3), NetNeedKg: 400, ConversionFactor: 10, CartonsNeeded: 40},
		},
	}
}

func TestAllocateDataset(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("GetDataset", mock.Anything, "ds-1").Return(datasetFixture(), nil)
	mockStorage.On("SavePlan", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(mockStorage, testFleet())

	res, err := svc.AllocateDataset(context.Background(), "ds-1", AllocationParams{
		TargetDate:         day(3),
		NumVehicles:        2,
		CapacityPerVehicle: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, "ds-1", res.Plan.DatasetID)
	assert.Equal(t, 100, res.Plan.TotalCapacity)

	assert.Equal(t, 100, res.Summary.AllocatedCartons)
	assert.Equal(t, 1000.0, res.Summary.TotalMassKg)
	assert.Equal(t, 2, res.Summary.VehiclesUsed)
	// 100 of 110 cartons covered.
	assert.InDelta(t, 90.909, res.Summary.CoveragePercent, 0.001)
	assert.Equal(t, 50.0, res.Summary.AvgCartonsPerVehicle)

	// M1 gets B1's 30 plus B3's 30, M2 gets B2's 40.
	assert.Equal(t, map[string]int{"M1": 60, "M2": 40}, res.MaterialBreakdown)

	mockStorage.AssertExpectations(t)
}

func TestAllocateDataset_ParamBounds(t *testing.T) {
	cases := []struct {
		name   string
		params AllocationParams
	}{
		{"zero vehicles", AllocationParams{TargetDate: day(2), NumVehicles: 0, CapacityPerVehicle: 100}},
		{"too many vehicles", AllocationParams{TargetDate: day(2), NumVehicles: 51, CapacityPerVehicle: 100}},
		{"capacity below range", AllocationParams{TargetDate: day(2), NumVehicles: 5, CapacityPerVehicle: 10}},
		{"capacity above range", AllocationParams{TargetDate: day(2), NumVehicles: 5, CapacityPerVehicle: 500}},
		{"target before range", AllocationParams{TargetDate: day(1).AddDate(0, -1, 0), NumVehicles: 5, CapacityPerVehicle: 100}},
		{"target after range", AllocationParams{TargetDate: day(25), NumVehicles: 5, CapacityPerVehicle: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockStorage := new(MockStorage)
			mockStorage.On("GetDataset", mock.Anything, "ds-1").Return(datasetFixture(), nil)

			svc := NewService(mockStorage, testFleet())

			_, err := svc.AllocateDataset(context.Background(), "ds-1", tc.params)
			var invalid *InvalidParamsError
			assert.ErrorAs(t, err, &invalid)

			mockStorage.AssertNotCalled(t, "SavePlan", mock.Anything, mock.Anything)
		})
	}
}

func TestAllocateDataset_UnknownDataset(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("GetDataset", mock.Anything, "nope").Return(nil, storage.ErrNotFound)

	svc := NewService(mockStorage, testFleet())

	_, err := svc.AllocateDataset(context.Background(), "nope", AllocationParams{
		TargetDate: day(1), NumVehicles: 2, CapacityPerVehicle: 100,
	})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
