package planner

import "time"

// DemandInput is one row of the raw demand table (Tabela1): gross demand in
// kg plus the kg-per-carton conversion factor for the key.
type DemandInput struct {
	Batch            string    `json:"batch"`
	Material         string    `json:"material"`
	Leaf             string    `json:"leaf"`
	RequirementDate  time.Time `json:"requirement_date"`
	GrossDemandKg    float64   `json:"gross_demand_kg"`
	ConversionFactor float64   `json:"conversion_factor"`
}

// TransitInput is one row of the raw in-transit table (Tabela2).
type TransitInput struct {
	Batch           string    `json:"batch"`
	Material        string    `json:"material"`
	Leaf            string    `json:"leaf"`
	RequirementDate time.Time `json:"requirement_date"`
	InTransitKg     float64   `json:"in_transit_kg"`
}

// DemandRow is one normalized net-need row, keyed by
// (batch, material, leaf, requirement date). Rows are immutable once
// produced by Normalize; the allocation engine never changes CartonsNeeded.
type DemandRow struct {
	Batch            string    `json:"batch"`
	Material         string    `json:"material"`
	Leaf             string    `json:"leaf"`
	RequirementDate  time.Time `json:"requirement_date"`
	GrossDemandKg    float64   `json:"gross_demand_kg"`
	InTransitKg      float64   `json:"in_transit_kg"`
	NetNeedKg        float64   `json:"net_need_kg"`
	ConversionFactor float64   `json:"conversion_factor"`
	CartonsNeeded    int       `json:"cartons_needed"`
}

// LoadEntry is one (vehicle, row) fragment of the load manifest. A demand
// row split across a vehicle boundary produces one entry per vehicle.
type LoadEntry struct {
	VehicleNumber    int     `json:"vehicle_number"`
	Batch            string  `json:"batch"`
	Material         string  `json:"material"`
	Leaf             string  `json:"leaf"`
	ConversionFactor float64 `json:"conversion_factor"`
	CartonsLoaded    int     `json:"cartons_loaded"`
}

// CoveragePoint is one date of the coverage curve: outstanding cartons for
// all rows due on or before Date, before and after the plan is applied.
type CoveragePoint struct {
	Date       time.Time `json:"date"`
	NeedBefore int       `json:"need_before"`
	NeedAfter  int       `json:"need_after"`
}

// AllocationPlan is the output of one allocation call. It holds no
// reference back to the net-need table.
type AllocationPlan struct {
	TargetDate    time.Time       `json:"target_date"`
	NumVehicles   int             `json:"num_vehicles"`
	Capacity      int             `json:"capacity_per_vehicle"`
	TotalCapacity int             `json:"total_capacity"`
	Loads         []LoadEntry     `json:"loads"`
	Coverage      []CoveragePoint `json:"coverage"`
}

// VehicleOrder is one line of the aggregated per-vehicle manifest:
// LoadEntries collapsed over dates, with the mass recomputed from cartons.
type VehicleOrder struct {
	VehicleNumber    int     `json:"vehicle_number"`
	Batch            string  `json:"batch"`
	Material         string  `json:"material"`
	Leaf             string  `json:"leaf"`
	Cartons          int     `json:"cartons"`
	ConversionFactor float64 `json:"conversion_factor"`
	TotalMassKg      float64 `json:"total_mass_kg"`
}
