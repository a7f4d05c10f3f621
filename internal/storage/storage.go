package storage

import (
	"errors"
	"time"

	"delivery-planner/internal/planner"
)

// ErrNotFound is returned when a dataset or plan id is unknown.
var ErrNotFound = errors.New("not found")

// Dataset is a processed net-need table kept for interactive reuse: the
// core itself is stateless, the storage layer owns the cached results.
type Dataset struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	CreatedAt time.Time           `json:"created_at"`
	Rows      []planner.DemandRow `json:"rows,omitempty"`
}

// DatasetSummary carries the header metrics shown after an upload.
type DatasetSummary struct {
	TotalNetNeedKg   float64 `json:"total_net_need_kg"`
	TotalInTransitKg float64 `json:"total_in_transit_kg"`
	Batches          int     `json:"batches"`
	TotalCartons     int     `json:"total_cartons"`
}

// Plan is a stored allocation result tied to the dataset it was computed
// from. Vehicle orders are derived from Loads on read, not stored.
type Plan struct {
	ID        string    `json:"id"`
	DatasetID string    `json:"dataset_id"`
	CreatedAt time.Time `json:"created_at"`
	planner.AllocationPlan
}
