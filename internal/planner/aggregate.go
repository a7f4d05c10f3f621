package planner

// AggregateLoads collapses the manifest from (vehicle, row) fragments to one
// line per (vehicle, batch, material, leaf), summing cartons and recomputing
// the mass from the carton count. Order follows the first appearance of each
// group in the manifest, so output is deterministic for a given plan.
func AggregateLoads(loads []LoadEntry) []VehicleOrder {
	type groupKey struct {
		vehicle  int
		batch    string
		material string
		leaf     string
	}

	index := make(map[groupKey]int)
	orders := make([]VehicleOrder, 0, len(loads))

	for _, l := range loads {
		k := groupKey{l.VehicleNumber, l.Batch, l.Material, l.Leaf}
		i, ok := index[k]
		if !ok {
			i = len(orders)
			index[k] = i
			orders = append(orders, VehicleOrder{
				VehicleNumber:    l.VehicleNumber,
				Batch:            l.Batch,
				Material:         l.Material,
				Leaf:             l.Leaf,
				ConversionFactor: l.ConversionFactor,
			})
		}
		orders[i].Cartons += l.CartonsLoaded
		orders[i].TotalMassKg = float64(orders[i].Cartons) * orders[i].ConversionFactor
	}

	return orders
}

// MaterialBreakdown sums loaded cartons per material across the aggregated
// manifest, for the distribution chart in the reporting layer.
func MaterialBreakdown(orders []VehicleOrder) map[string]int {
	breakdown := make(map[string]int)
	for _, o := range orders {
		breakdown[o.Material] += o.Cartons
	}
	return breakdown
}
