package network

import (
	"fmt"

	"github.com/siherrmann/fishpass/model"
)

// Project reads the accumulators of every edge into one result row per
// segment, in edge order. The graph is not modified.
func Project(g *Graph) ([]*model.SegmentResult, error) {
	results := make([]*model.SegmentResult, 0, len(g.edges))

	for i := range g.edges {
		e := &g.edges[i]
		if e.State != Visited {
			return nil, fmt.Errorf("%w: segment %s is %s", model.ErrNotPropagated, e.SegmentID, e.State)
		}

		r := &model.SegmentResult{
			SegmentID: e.SegmentID,
			Species:   make(map[string]*model.SpeciesResult, len(e.Metrics)),
			All: model.AggregateResult{
				UpstreamSpawnHabitat:           e.All.UpstreamSpawnHabitat,
				UpstreamRearHabitat:            e.All.UpstreamRearHabitat,
				UpstreamHabitat:                e.All.UpstreamHabitat,
				UpstreamFunctionalSpawnHabitat: e.All.UpstreamFunctionalSpawnHabitat,
				UpstreamFunctionalRearHabitat:  e.All.UpstreamFunctionalRearHabitat,
				UpstreamFunctionalHabitat:      e.All.UpstreamFunctionalHabitat,
			},
		}

		for s, code := range g.Context.Species {
			m := &e.Metrics[s]
			r.Species[code] = &model.SpeciesResult{
				UpstreamAccessibleLength:          m.UpstreamAccessibleLength,
				UpstreamSpawnHabitat:              m.UpstreamSpawnHabitat,
				UpstreamRearHabitat:               m.UpstreamRearHabitat,
				UpstreamHabitat:                   m.UpstreamHabitat,
				UpstreamFunctionalSpawnHabitat:    m.UpstreamFunctionalSpawnHabitat,
				UpstreamFunctionalRearHabitat:     m.UpstreamFunctionalRearHabitat,
				UpstreamFunctionalHabitat:         m.UpstreamFunctionalHabitat,
				DCI:                               m.DCI,
				WeightedUpstreamHabitat:           m.WeightedUpstreamHabitat,
				WeightedUpstreamFunctionalHabitat: m.WeightedUpstreamFunctionalHabitat,
			}
		}

		results = append(results, r)
	}

	return results, nil
}
