package planner

import (
	"sort"
	"time"
)

// Allocate distributes the fleet's cartons across the net-need table in
// urgency order: rows due earliest are filled first, a vehicle is filled to
// capacity before the next one is opened, and a row whose remaining need
// crosses a vehicle boundary is split across consecutive vehicle numbers.
//
// Rows due after targetDate get no allocation. The coverage series reports
// cumulative outstanding cartons per distinct requirement date up to and
// including targetDate, before and after the plan.
//
// The input table is never mutated; the plan is a fresh value.
func Allocate(rows []DemandRow, targetDate time.Time, numVehicles, capacityPerVehicle int) (*AllocationPlan, error) {
	totalCapacity := numVehicles * capacityPerVehicle
	if totalCapacity <= 0 {
		return nil, &NoCapacityError{NumVehicles: numVehicles, Capacity: capacityPerVehicle}
	}

	target := dayOf(targetDate)

	for _, r := range rows {
		if r.ConversionFactor <= 0 {
			return nil, &InvalidConversionError{
				Batch:    r.Batch,
				Material: r.Material,
				Leaf:     r.Leaf,
				Factor:   r.ConversionFactor,
			}
		}
	}

	eligible := make([]DemandRow, 0, len(rows))
	for _, r := range rows {
		if !r.RequirementDate.After(target) {
			eligible = append(eligible, r)
		}
	}

	// Earliest due first; ties resolved by (batch, material, leaf) so the
	// same inputs always produce the same plan.
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if !a.RequirementDate.Equal(b.RequirementDate) {
			return a.RequirementDate.Before(b.RequirementDate)
		}
		if a.Batch != b.Batch {
			return a.Batch < b.Batch
		}
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		return a.Leaf < b.Leaf
	})

	plan := &AllocationPlan{
		TargetDate:    target,
		NumVehicles:   numVehicles,
		Capacity:      capacityPerVehicle,
		TotalCapacity: totalCapacity,
	}

	remaining := totalCapacity
	filled := 0
	allocatedByDate := make(map[time.Time]int)

	for _, r := range eligible {
		if remaining == 0 {
			break
		}

		take := r.CartonsNeeded
		if take > remaining {
			take = remaining
		}
		if take == 0 {
			continue
		}

		allocatedByDate[r.RequirementDate] += take
		remaining -= take

		// Fill the current vehicle to capacity, then open the next one.
		for take > 0 {
			vehicle := filled/capacityPerVehicle + 1
			free := capacityPerVehicle - filled%capacityPerVehicle

			load := take
			if load > free {
				load = free
			}

			plan.Loads = append(plan.Loads, LoadEntry{
				VehicleNumber:    vehicle,
				Batch:            r.Batch,
				Material:         r.Material,
				Leaf:             r.Leaf,
				ConversionFactor: r.ConversionFactor,
				CartonsLoaded:    load,
			})

			filled += load
			take -= load
		}
	}

	plan.Coverage = coverageSeries(rows, target, allocatedByDate)

	return plan, nil
}

// coverageSeries builds the cumulative before/after curve over the distinct
// requirement dates of the full table up to and including target.
func coverageSeries(rows []DemandRow, target time.Time, allocatedByDate map[time.Time]int) []CoveragePoint {
	neededByDate := make(map[time.Time]int)
	for _, r := range rows {
		if r.RequirementDate.After(target) {
			continue
		}
		neededByDate[r.RequirementDate] += r.CartonsNeeded
	}

	dates := make([]time.Time, 0, len(neededByDate))
	for d := range neededByDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := make([]CoveragePoint, 0, len(dates))
	cumNeed, cumAlloc := 0, 0
	for _, d := range dates {
		cumNeed += neededByDate[d]
		cumAlloc += allocatedByDate[d]
		series = append(series, CoveragePoint{
			Date:       d,
			NeedBefore: cumNeed,
			NeedAfter:  cumNeed - cumAlloc,
		})
	}

	return series
}
