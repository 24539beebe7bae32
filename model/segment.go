package model

import "github.com/google/uuid"

// Coordinate is a 2D position. Segments sharing a coordinate meet at the same node.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SegmentSpecies holds the static per-species attributes of a segment.
type SegmentSpecies struct {
	UpstreamBarrierCount int           `json:"upstream_barrier_count"`
	DownstreamBarrierIDs []uuid.UUID   `json:"downstream_barrier_ids"`
	Accessibility        Accessibility `json:"accessibility"`
	SpawnHabitat         bool          `json:"spawn_habitat"`
	RearHabitat          bool          `json:"rear_habitat"`
	Habitat              bool          `json:"habitat"`
}

// SegmentRow is one input row: a stream segment with its endpoints and the
// attributes for every species of the run, keyed by species code.
type SegmentRow struct {
	ID            uuid.UUID                  `json:"id"`
	Length        float64                    `json:"length"`
	From          Coordinate                 `json:"from"`
	To            Coordinate                 `json:"to"`
	StrahlerOrder int                        `json:"strahler_order"`
	Species       map[string]*SegmentSpecies `json:"species"`
}
