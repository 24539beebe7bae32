package network

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/model"
)

// TraversalResult contains an edge and its distance in segments from the source.
type TraversalResult struct {
	Edge      EdgeID
	SegmentID uuid.UUID
	Distance  int
	Path      []uuid.UUID // Path from source to this segment
}

// Upstream returns the segments draining into segmentID in breadth-first order,
// starting with the source itself. A negative maxHops means no limit.
func (g *Graph) Upstream(segmentID uuid.UUID, maxHops int) ([]*TraversalResult, error) {
	return g.bfs(segmentID, maxHops, func(e *Edge) []EdgeID {
		return g.nodes[e.From].InEdges
	})
}

// Downstream returns the segments segmentID drains into in breadth-first
// order, starting with the source itself. A negative maxHops means no limit.
func (g *Graph) Downstream(segmentID uuid.UUID, maxHops int) ([]*TraversalResult, error) {
	return g.bfs(segmentID, maxHops, func(e *Edge) []EdgeID {
		return g.nodes[e.To].OutEdges
	})
}

func (g *Graph) bfs(segmentID uuid.UUID, maxHops int, next func(e *Edge) []EdgeID) ([]*TraversalResult, error) {
	source, ok := g.edgeIndex[segmentID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown segment %s", model.ErrMalformedInput, segmentID)
	}

	visited := map[EdgeID]bool{source: true}
	queue := []*TraversalResult{{
		Edge:      source,
		SegmentID: segmentID,
		Distance:  0,
		Path:      []uuid.UUID{segmentID},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, current)

		// Stop if we've reached max hops
		if maxHops >= 0 && current.Distance >= maxHops {
			continue
		}

		for _, id := range next(&g.edges[current.Edge]) {
			if visited[id] {
				continue
			}
			visited[id] = true

			target := g.edges[id].SegmentID
			newPath := make([]uuid.UUID, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			newPath = append(newPath, target)

			queue = append(queue, &TraversalResult{
				Edge:      id,
				SegmentID: target,
				Distance:  current.Distance + 1,
				Path:      newPath,
			})
		}
	}

	return results, nil
}
