package planner

import "fmt"

// DataShapeError reports a malformed or inconsistent input table: a missing
// required column, or one key carrying conflicting conversion factors.
type DataShapeError struct {
	Reason string
}

func (e *DataShapeError) Error() string {
	return "data shape: " + e.Reason
}

// InvalidConversionError reports a non-positive conversion factor for a row.
type InvalidConversionError struct {
	Batch    string
	Material string
	Leaf     string
	Factor   float64
}

func (e *InvalidConversionError) Error() string {
	return fmt.Sprintf("invalid conversion factor %v for batch=%s material=%s leaf=%s",
		e.Factor, e.Batch, e.Material, e.Leaf)
}

// NoCapacityError reports a degenerate allocation request with zero total
// capacity. It is raised before any allocation work begins.
type NoCapacityError struct {
	NumVehicles int
	Capacity    int
}

func (e *NoCapacityError) Error() string {
	return fmt.Sprintf("no capacity: %d vehicles x %d cartons", e.NumVehicles, e.Capacity)
}
