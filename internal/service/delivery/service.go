// Package delivery wires the pure allocation core to the upload, storage
// and reporting boundaries.
package delivery

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"delivery-planner/internal/config"
	"delivery-planner/internal/planner"
	"delivery-planner/internal/storage"
	"delivery-planner/internal/workbook"
)

type Storage interface {
	SaveDataset(ctx context.Context, ds *storage.Dataset) error
	GetDataset(ctx context.Context, id string) (*storage.Dataset, error)
	SavePlan(ctx context.Context, p *storage.Plan) error
}

type Service struct {
	storage Storage
	fleet   config.Fleet
}

func NewService(st Storage, fleet config.Fleet) *Service {
	return &Service{storage: st, fleet: fleet}
}

// InvalidParamsError reports an allocation request outside the accepted
// bounds. Handlers map it to a client error.
type InvalidParamsError struct {
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return "invalid parameters: " + e.Reason
}

type UploadResult struct {
	Dataset *storage.Dataset       `json:"dataset"`
	Summary storage.DatasetSummary `json:"summary"`
}

// ProcessUpload parses the two workbooks in parallel, normalizes them into
// one net-need table and persists the result.
func (s *Service) ProcessUpload(ctx context.Context, name string, demandFile, transitFile io.Reader) (*UploadResult, error) {
	const op = "service.delivery.ProcessUpload"

	var (
		demand  []planner.DemandInput
		transit []planner.TransitInput
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		demand, err = workbook.ReadDemand(demandFile)
		if err != nil {
			return fmt.Errorf("demand table: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		transit, err = workbook.ReadTransit(transitFile)
		if err != nil {
			return fmt.Errorf("in-transit table: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := planner.Normalize(demand, transit)
	if err != nil {
		return nil, err
	}

	ds := &storage.Dataset{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Rows:      rows,
	}

	if err = s.storage.SaveDataset(ctx, ds); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &UploadResult{Dataset: ds, Summary: SummarizeDataset(rows)}, nil
}

type AllocationParams struct {
	TargetDate         time.Time `json:"target_date"`
	NumVehicles        int       `json:"num_vehicles"`
	CapacityPerVehicle int       `json:"capacity_per_vehicle"`
}

type PlanSummary struct {
	AllocatedCartons     int     `json:"allocated_cartons"`
	TotalMassKg          float64 `json:"total_mass_kg"`
	VehiclesUsed         int     `json:"vehicles_used"`
	CoveragePercent      float64 `json:"coverage_percent"`
	AvgCartonsPerVehicle float64 `json:"avg_cartons_per_vehicle"`
}

type AllocationResult struct {
	Plan              *storage.Plan          `json:"plan"`
	Orders            []planner.VehicleOrder `json:"orders"`
	Summary           PlanSummary            `json:"summary"`
	MaterialBreakdown map[string]int         `json:"material_breakdown"`
}

// AllocateDataset loads the stored net-need table, runs the allocation
// engine and persists the resulting plan.
func (s *Service) AllocateDataset(ctx context.Context, datasetID string, params AllocationParams) (*AllocationResult, error) {
	const op = "service.delivery.AllocateDataset"

	ds, err := s.storage.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.validateParams(ds.Rows, params); err != nil {
		return nil, err
	}

	result, err := planner.Allocate(ds.Rows, params.TargetDate, params.NumVehicles, params.CapacityPerVehicle)
	if err != nil {
		return nil, err
	}

	p := &storage.Plan{
		ID:             uuid.NewString(),
		DatasetID:      ds.ID,
		CreatedAt:      time.Now().UTC(),
		AllocationPlan: *result,
	}

	if err = s.storage.SavePlan(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders := planner.AggregateLoads(p.Loads)

	return &AllocationResult{
		Plan:              p,
		Orders:            orders,
		Summary:           SummarizePlan(p, orders, totalCartons(ds.Rows)),
		MaterialBreakdown: planner.MaterialBreakdown(orders),
	}, nil
}

func (s *Service) validateParams(rows []planner.DemandRow, params AllocationParams) error {
	if params.NumVehicles < 1 || params.NumVehicles > s.fleet.MaxVehicles {
		return &InvalidParamsError{Reason: fmt.Sprintf(
			"num_vehicles must be between 1 and %d", s.fleet.MaxVehicles)}
	}
	if params.CapacityPerVehicle < s.fleet.MinCapacity || params.CapacityPerVehicle > s.fleet.MaxCapacity {
		return &InvalidParamsError{Reason: fmt.Sprintf(
			"capacity_per_vehicle must be between %d and %d", s.fleet.MinCapacity, s.fleet.MaxCapacity)}
	}

	if len(rows) == 0 {
		return &InvalidParamsError{Reason: "dataset has no rows"}
	}

	min, max := rows[0].RequirementDate, rows[0].RequirementDate
	for _, r := range rows[1:] {
		if r.RequirementDate.Before(min) {
			min = r.RequirementDate
		}
		if r.RequirementDate.After(max) {
			max = r.RequirementDate
		}
	}
	if params.TargetDate.Before(min) || params.TargetDate.After(max) {
		return &InvalidParamsError{Reason: fmt.Sprintf(
			"target_date must lie between %s and %s",
			min.Format("2006-01-02"), max.Format("2006-01-02"))}
	}

	return nil
}

// SummarizeDataset computes the header metrics shown after an upload.
func SummarizeDataset(rows []planner.DemandRow) storage.DatasetSummary {
	var sum storage.DatasetSummary
	batches := make(map[string]struct{})
	for _, r := range rows {
		sum.TotalNetNeedKg += r.NetNeedKg
		sum.TotalInTransitKg += r.InTransitKg
		sum.TotalCartons += r.CartonsNeeded
		batches[r.Batch] = struct{}{}
	}
	sum.Batches = len(batches)
	return sum
}

// SummarizePlan computes the allocation metrics: loaded cartons, mass,
// vehicles used and the coverage percentage against the full need.
func SummarizePlan(p *storage.Plan, orders []planner.VehicleOrder, totalNeeded int) PlanSummary {
	var sum PlanSummary
	vehicles := make(map[int]struct{})
	for _, o := range orders {
		sum.AllocatedCartons += o.Cartons
		sum.TotalMassKg += o.TotalMassKg
		vehicles[o.VehicleNumber] = struct{}{}
	}
	sum.VehiclesUsed = len(vehicles)
	if totalNeeded > 0 {
		sum.CoveragePercent = float64(sum.AllocatedCartons) / float64(totalNeeded) * 100
	}
	if sum.VehiclesUsed > 0 {
		sum.AvgCartonsPerVehicle = float64(sum.AllocatedCartons) / float64(sum.VehiclesUsed)
	}
	return sum
}

func totalCartons(rows []planner.DemandRow) int {
	total := 0
	for _, r := range rows {
		total += r.CartonsNeeded
	}
	return total
}
