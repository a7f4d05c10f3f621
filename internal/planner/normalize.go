package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

type rowKey struct {
	batch    string
	material string
	leaf     string
	date     time.Time
}

// Normalize merges the raw demand and in-transit tables into one net-need
// table, one row per distinct (batch, material, leaf, requirement date) key
// present in either input. A key missing from one side defaults its mass to
// zero. Duplicate keys inside one input sum their masses but must agree on
// the conversion factor. Rows with zero net need are retained so the
// coverage curve stays complete.
func Normalize(demand []DemandInput, transit []TransitInput) ([]DemandRow, error) {
	rows := make(map[rowKey]*DemandRow)

	// Conversion factors only appear in the demand table, so remember them
	// per leaf and per material for keys seen only in transit.
	factorByLeaf := make(map[[3]string]float64)
	factorByMaterial := make(map[[2]string]float64)

	for _, d := range demand {
		if d.GrossDemandKg < 0 {
			return nil, &DataShapeError{Reason: fmt.Sprintf(
				"negative gross demand for batch=%s material=%s leaf=%s", d.Batch, d.Material, d.Leaf)}
		}

		k := rowKey{d.Batch, d.Material, d.Leaf, dayOf(d.RequirementDate)}
		r, ok := rows[k]
		if !ok {
			r = &DemandRow{
				Batch:            d.Batch,
				Material:         d.Material,
				Leaf:             d.Leaf,
				RequirementDate:  k.date,
				ConversionFactor: d.ConversionFactor,
			}
			rows[k] = r
		} else if r.ConversionFactor != d.ConversionFactor {
			return nil, &DataShapeError{Reason: fmt.Sprintf(
				"conflicting conversion factors %v and %v for batch=%s material=%s leaf=%s",
				r.ConversionFactor, d.ConversionFactor, d.Batch, d.Material, d.Leaf)}
		}
		r.GrossDemandKg += d.GrossDemandKg

		lk := [3]string{d.Batch, d.Material, d.Leaf}
		if prev, ok := factorByLeaf[lk]; ok && prev != d.ConversionFactor {
			return nil, &DataShapeError{Reason: fmt.Sprintf(
				"conflicting conversion factors %v and %v for batch=%s material=%s leaf=%s",
				prev, d.ConversionFactor, d.Batch, d.Material, d.Leaf)}
		}
		factorByLeaf[lk] = d.ConversionFactor
		factorByMaterial[[2]string{d.Batch, d.Material}] = d.ConversionFactor
	}

	for _, t := range transit {
		if t.InTransitKg < 0 {
			return nil, &DataShapeError{Reason: fmt.Sprintf(
				"negative in-transit mass for batch=%s material=%s leaf=%s", t.Batch, t.Material, t.Leaf)}
		}

		k := rowKey{t.Batch, t.Material, t.Leaf, dayOf(t.RequirementDate)}
		r, ok := rows[k]
		if !ok {
			r = &DemandRow{
				Batch:           t.Batch,
				Material:        t.Material,
				Leaf:            t.Leaf,
				RequirementDate: k.date,
			}
			rows[k] = r
		}
		r.InTransitKg += t.InTransitKg
	}

	out := make([]DemandRow, 0, len(rows))
	for _, r := range rows {
		if r.ConversionFactor == 0 {
			// Transit-only key: borrow the factor from the demand table.
			if f, ok := factorByLeaf[[3]string{r.Batch, r.Material, r.Leaf}]; ok {
				r.ConversionFactor = f
			} else if f, ok := factorByMaterial[[2]string{r.Batch, r.Material}]; ok {
				r.ConversionFactor = f
			} else {
				return nil, &DataShapeError{Reason: fmt.Sprintf(
					"no conversion factor known for batch=%s material=%s leaf=%s", r.Batch, r.Material, r.Leaf)}
			}
		}

		r.NetNeedKg = r.GrossDemandKg - r.InTransitKg
		if r.NetNeedKg < 0 {
			r.NetNeedKg = 0
		}

		cartons, err := CartonsFor(r.NetNeedKg, r.ConversionFactor)
		if err != nil {
			var conv *InvalidConversionError
			if errors.As(err, &conv) {
				conv.Batch = r.Batch
				conv.Material = r.Material
				conv.Leaf = r.Leaf
			}
			return nil, err
		}
		r.CartonsNeeded = cartons

		out = append(out, *r)
	}

	// Deterministic merge order: the engine's tie-break relies on it.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
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

	return out, nil
}

// CartonsFor converts a net-need mass into whole cartons. Rounding is always
// upward: a partial carton still has to be shipped as a full one.
func CartonsFor(netNeedKg, conversionFactor float64) (int, error) {
	if conversionFactor <= 0 {
		return 0, &InvalidConversionError{Factor: conversionFactor}
	}
	if netNeedKg <= 0 {
		return 0, nil
	}
	return int(math.Ceil(netNeedKg / conversionFactor)), nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
