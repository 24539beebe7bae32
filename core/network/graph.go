// Package network builds a directed graph of stream segments and accumulates
// per-species habitat, length and barrier metrics from headwaters to outlets.
//
// Nodes and edges live in arenas owned by the Graph and refer to each other by
// NodeID and EdgeID handles.
package network

import (
	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/model"
)

// NodeID is the handle of a node within its Graph.
type NodeID int

// EdgeID is the handle of an edge within its Graph.
type EdgeID int

// EdgeState tracks whether the accumulators of an edge are final.
type EdgeState int

const (
	Pending EdgeState = iota
	Visited
)

func (s EdgeState) String() string {
	if s == Visited {
		return "visited"
	}
	return "pending"
}

// Node is a confluence, headwater or outlet point.
type Node struct {
	Coordinate model.Coordinate
	InEdges    []EdgeID
	OutEdges   []EdgeID
}

// SpeciesAttributes are the static per-species attributes of an edge.
type SpeciesAttributes struct {
	UpstreamBarrierCount  int
	DownstreamBarrierIDs  []uuid.UUID
	DownstreamPassability float64
	Accessibility         model.Accessibility
	SpawnHabitat          bool
	RearHabitat           bool
	Habitat               bool
}

// SpeciesMetrics are the per-species accumulators of an edge. The upstream
// values include the edge itself.
type SpeciesMetrics struct {
	UpstreamAccessibleLength          float64
	UpstreamSpawnHabitat              float64
	UpstreamRearHabitat               float64
	UpstreamHabitat                   float64
	UpstreamFunctionalSpawnHabitat    float64
	UpstreamFunctionalRearHabitat     float64
	UpstreamFunctionalHabitat         float64
	WeightedUpstreamHabitat           float64
	WeightedUpstreamFunctionalHabitat float64
	DCI                               float64
}

func (m *SpeciesMetrics) add(o *SpeciesMetrics) {
	m.UpstreamAccessibleLength += o.UpstreamAccessibleLength
	m.UpstreamSpawnHabitat += o.UpstreamSpawnHabitat
	m.UpstreamRearHabitat += o.UpstreamRearHabitat
	m.UpstreamHabitat += o.UpstreamHabitat
	m.UpstreamFunctionalSpawnHabitat += o.UpstreamFunctionalSpawnHabitat
	m.UpstreamFunctionalRearHabitat += o.UpstreamFunctionalRearHabitat
	m.UpstreamFunctionalHabitat += o.UpstreamFunctionalHabitat
	m.WeightedUpstreamHabitat += o.WeightedUpstreamHabitat
	m.WeightedUpstreamFunctionalHabitat += o.WeightedUpstreamFunctionalHabitat
}

// AggregateMetrics are the species-agnostic accumulators of an edge.
type AggregateMetrics struct {
	UpstreamSpawnHabitat           float64
	UpstreamRearHabitat            float64
	UpstreamHabitat                float64
	UpstreamFunctionalSpawnHabitat float64
	UpstreamFunctionalRearHabitat  float64
	UpstreamFunctionalHabitat      float64
}

func (m *AggregateMetrics) add(o *AggregateMetrics) {
	m.UpstreamSpawnHabitat += o.UpstreamSpawnHabitat
	m.UpstreamRearHabitat += o.UpstreamRearHabitat
	m.UpstreamHabitat += o.UpstreamHabitat
	m.UpstreamFunctionalSpawnHabitat += o.UpstreamFunctionalSpawnHabitat
	m.UpstreamFunctionalRearHabitat += o.UpstreamFunctionalRearHabitat
	m.UpstreamFunctionalHabitat += o.UpstreamFunctionalHabitat
}

// Edge is one stream segment, directed from From (upstream) to To (downstream).
// Species and Metrics are index-aligned with the graph's RunContext.
type Edge struct {
	SegmentID      uuid.UUID
	From           NodeID
	To             NodeID
	Length         float64
	WeightedLength float64
	StrahlerOrder  int
	Species        []SpeciesAttributes

	SpawnHabitatAll bool
	RearHabitatAll  bool
	HabitatAll      bool

	Metrics []SpeciesMetrics
	All     AggregateMetrics
	State   EdgeState
}

func (e *Edge) reset() {
	for i := range e.Metrics {
		e.Metrics[i] = SpeciesMetrics{}
	}
	e.All = AggregateMetrics{}
	e.State = Pending
}

// weightedLength discounts low order streams for ranking.
func weightedLength(length float64, strahlerOrder int) float64 {
	switch strahlerOrder {
	case 1:
		return length * 0.25
	case 2:
		return length * 0.75
	default:
		return length
	}
}

// Graph owns all nodes and edges of one run.
type Graph struct {
	Context *RunContext

	nodes     []Node
	edges     []Edge
	nodeIndex map[model.Coordinate]NodeID
	edgeIndex map[uuid.UUID]EdgeID
}

func newGraph(runCtx *RunContext, segments int) *Graph {
	return &Graph{
		Context:   runCtx,
		nodes:     make([]Node, 0, segments+1),
		edges:     make([]Edge, 0, segments),
		nodeIndex: make(map[model.Coordinate]NodeID, segments+1),
		edgeIndex: make(map[uuid.UUID]EdgeID, segments),
	}
}

// nodeAt returns the node at c, creating it on first sight.
func (g *Graph) nodeAt(c model.Coordinate) NodeID {
	if id, ok := g.nodeIndex[c]; ok {
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{Coordinate: c})
	g.nodeIndex[c] = id
	return id
}

// addEdge appends e and registers it on both endpoint nodes.
func (g *Graph) addEdge(e Edge) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.edgeIndex[e.SegmentID] = id
	g.nodes[e.From].OutEdges = append(g.nodes[e.From].OutEdges, id)
	g.nodes[e.To].InEdges = append(g.nodes[e.To].InEdges, id)
	return id
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Node returns the node for id.
func (g *Graph) Node(id NodeID) *Node { return &g.nodes[id] }

// Edge returns the edge for id.
func (g *Graph) Edge(id EdgeID) *Edge { return &g.edges[id] }

// EdgeBySegment returns the edge handle of a segment.
func (g *Graph) EdgeBySegment(segmentID uuid.UUID) (EdgeID, bool) {
	id, ok := g.edgeIndex[segmentID]
	return id, ok
}

// NodeAt returns the node at coordinate c.
func (g *Graph) NodeAt(c model.Coordinate) (NodeID, bool) {
	id, ok := g.nodeIndex[c]
	return id, ok
}

// Headwaters returns the nodes without in-edges in creation order.
func (g *Graph) Headwaters() []NodeID {
	var ids []NodeID
	for i := range g.nodes {
		if len(g.nodes[i].InEdges) == 0 {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Outlets returns the nodes without out-edges in creation order.
func (g *Graph) Outlets() []NodeID {
	var ids []NodeID
	for i := range g.nodes {
		if len(g.nodes[i].OutEdges) == 0 {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}
