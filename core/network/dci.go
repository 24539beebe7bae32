package network

// HabitatTotals returns, per species, the summed length of all edges with habitat.
func HabitatTotals(g *Graph) []float64 {
	totals := make([]float64, g.Context.Len())
	for i := range g.edges {
		e := &g.edges[i]
		for s := range e.Species {
			if e.Species[s].Habitat {
				totals[s] += e.Length
			}
		}
	}
	return totals
}

// DCI returns the dendritic connectivity index of e for the species at index s:
// the share of total habitat length on e, discounted by downstream passability,
// on a 0 to 100 scale. Edges without habitat and species without any habitat score 0.
func DCI(e *Edge, s int, totalHabitatLength float64) float64 {
	if !e.Species[s].Habitat || totalHabitatLength <= 0 {
		return 0
	}
	return (e.Length / totalHabitatLength) * e.Species[s].DownstreamPassability * 100
}
