package network

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/model"
)

// CyclicGraphError is returned when some edges could not be ordered from the
// headwaters, which only happens when the network contains a cycle.
type CyclicGraphError struct {
	Unvisited []uuid.UUID
}

func (e *CyclicGraphError) Error() string {
	ids := make([]string, 0, len(e.Unvisited))
	for i, id := range e.Unvisited {
		if i == 10 {
			ids = append(ids, fmt.Sprintf("and %d more", len(e.Unvisited)-i))
			break
		}
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("%s: %d segments not reachable in downstream order: %s", model.ErrCyclicGraph, len(e.Unvisited), strings.Join(ids, ", "))
}

// Is matches model.ErrCyclicGraph.
func (e *CyclicGraphError) Is(target error) bool {
	return target == model.ErrCyclicGraph
}

// PropagationStats summarizes a propagation.
type PropagationStats struct {
	Headwaters     int
	NodesProcessed int
	EdgesVisited   int
	HabitatTotals  map[string]float64
}

// Propagator sweeps a graph from headwaters to outlets.
type Propagator struct {
	log *slog.Logger
}

// NewPropagator creates a propagator logging to logger.
func NewPropagator(logger *slog.Logger) *Propagator {
	return &Propagator{log: logger}
}

// confluence holds the totals merged from all in-edges of a node.
type confluence struct {
	metrics       []SpeciesMetrics
	barrierCounts []int
	all           AggregateMetrics
}

func newConfluence(species int) *confluence {
	return &confluence{
		metrics:       make([]SpeciesMetrics, species),
		barrierCounts: make([]int, species),
	}
}

func (c *confluence) reset() {
	for s := range c.metrics {
		c.metrics[s] = SpeciesMetrics{}
		c.barrierCounts[s] = 0
	}
	c.all = AggregateMetrics{}
}

func (c *confluence) merge(e *Edge) {
	for s := range c.metrics {
		c.metrics[s].add(&e.Metrics[s])
		c.barrierCounts[s] += e.Species[s].UpstreamBarrierCount
	}
	c.all.add(&e.All)
}

// Propagate resets every edge and fills its accumulators. A node is processed
// once all of its in-edges are visited, so confluences see every branch.
// Running it again on the same graph gives identical values.
func (p *Propagator) Propagate(g *Graph) (*PropagationStats, error) {
	n := g.Context.Len()
	totals := HabitatTotals(g)

	for i := range g.edges {
		g.edges[i].reset()
	}

	remaining := make([]int, len(g.nodes))
	queue := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		remaining[i] = len(g.nodes[i].InEdges)
		if remaining[i] == 0 {
			queue = append(queue, NodeID(i))
		}
	}

	stats := &PropagationStats{
		Headwaters:    len(queue),
		HabitatTotals: make(map[string]float64, n),
	}
	for s, code := range g.Context.Species {
		stats.HabitatTotals[code] = totals[s]
		if totals[s] == 0 {
			p.log.Warn("Species without habitat, connectivity index is zero", slog.String("species", code))
		}
	}

	// Every node enters the queue at most once.
	limit := len(g.nodes) + len(g.edges)

	c := newConfluence(n)
	for head := 0; head < len(queue) && head < limit; head++ {
		node := &g.nodes[queue[head]]

		c.reset()
		for _, id := range node.InEdges {
			c.merge(&g.edges[id])
		}

		for _, id := range node.OutEdges {
			out := &g.edges[id]
			derive(out, c, totals)
			stats.EdgesVisited++

			remaining[out.To]--
			if remaining[out.To] == 0 {
				queue = append(queue, out.To)
			}
		}
		stats.NodesProcessed++
	}

	if stats.EdgesVisited != len(g.edges) {
		unvisited := make([]uuid.UUID, 0, len(g.edges)-stats.EdgesVisited)
		for i := range g.edges {
			if g.edges[i].State != Visited {
				unvisited = append(unvisited, g.edges[i].SegmentID)
			}
		}
		return stats, &CyclicGraphError{Unvisited: unvisited}
	}

	p.log.Info("Propagated segment network",
		slog.Int("headwaters", stats.Headwaters),
		slog.Int("nodes", stats.NodesProcessed),
		slog.Int("edges", stats.EdgesVisited),
	)

	return stats, nil
}

// derive computes the accumulators of out from the merged totals of its
// upstream node and its own attributes, then marks it visited.
func derive(out *Edge, c *confluence, totals []float64) {
	// The aggregate functional values restart when the barrier counts differ
	// for any species.
	countsDiffer := false

	for s := range out.Species {
		attr := &out.Species[s]
		in := &c.metrics[s]
		m := &out.Metrics[s]

		m.UpstreamAccessibleLength = carry(in.UpstreamAccessibleLength, out.Length, attr.Accessibility.Reachable())
		m.UpstreamSpawnHabitat = carry(in.UpstreamSpawnHabitat, out.Length, attr.SpawnHabitat)
		m.UpstreamRearHabitat = carry(in.UpstreamRearHabitat, out.Length, attr.RearHabitat)
		m.UpstreamHabitat = carry(in.UpstreamHabitat, out.Length, attr.Habitat)
		m.WeightedUpstreamHabitat = carry(in.WeightedUpstreamHabitat, out.WeightedLength, attr.Habitat)

		restart := attr.UpstreamBarrierCount != c.barrierCounts[s]
		countsDiffer = countsDiffer || restart

		m.UpstreamFunctionalSpawnHabitat = functional(in.UpstreamFunctionalSpawnHabitat, out.Length, attr.SpawnHabitat, restart)
		m.UpstreamFunctionalRearHabitat = functional(in.UpstreamFunctionalRearHabitat, out.Length, attr.RearHabitat, restart)
		m.UpstreamFunctionalHabitat = functional(in.UpstreamFunctionalHabitat, out.Length, attr.Habitat, restart)
		m.WeightedUpstreamFunctionalHabitat = functional(in.WeightedUpstreamFunctionalHabitat, out.WeightedLength, attr.Habitat, restart)

		m.DCI = DCI(out, s, totals[s])
	}

	out.All.UpstreamSpawnHabitat = carry(c.all.UpstreamSpawnHabitat, out.Length, out.SpawnHabitatAll)
	out.All.UpstreamRearHabitat = carry(c.all.UpstreamRearHabitat, out.Length, out.RearHabitatAll)
	out.All.UpstreamHabitat = carry(c.all.UpstreamHabitat, out.Length, out.HabitatAll)
	out.All.UpstreamFunctionalSpawnHabitat = functional(c.all.UpstreamFunctionalSpawnHabitat, out.Length, out.SpawnHabitatAll, countsDiffer)
	out.All.UpstreamFunctionalRearHabitat = functional(c.all.UpstreamFunctionalRearHabitat, out.Length, out.RearHabitatAll, countsDiffer)
	out.All.UpstreamFunctionalHabitat = functional(c.all.UpstreamFunctionalHabitat, out.Length, out.HabitatAll, countsDiffer)

	out.State = Visited
}

// carry adds length to the merged total when the edge has the attribute.
func carry(merged, length float64, has bool) float64 {
	if has {
		return merged + length
	}
	return merged
}

// functional is carry for continuous habitat: a new barrier directly above
// the edge starts a new run at the edge itself.
func functional(merged, length float64, has, restart bool) float64 {
	if !restart {
		return carry(merged, length, has)
	}
	if has {
		return length
	}
	return 0
}
