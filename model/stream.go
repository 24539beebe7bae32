package model

import "github.com/google/uuid"

// Stream is a segment record as seeded into the store.
type Stream struct {
	ID            uuid.UUID                  `json:"id"`
	StrahlerOrder int                        `json:"strahler_order"`
	Geometry      string                     `json:"geometry"` // hex EWKB
	Species       map[string]*SegmentSpecies `json:"species,omitempty"`
}

// Barrier is a barrier record snapped onto the network. StreamIDUp is the
// segment directly upstream of the barrier, StreamIDDown the one directly downstream.
type Barrier struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	StreamIDUp   uuid.NullUUID `json:"stream_id_up"`
	StreamIDDown uuid.NullUUID `json:"stream_id_down"`
}

// BarrierUpstreamValues is the result merged onto a barrier for one species,
// in the unit produced by the configured divisor.
type BarrierUpstreamValues struct {
	BarrierID                         uuid.UUID `json:"barrier_id"`
	Species                           string    `json:"species"`
	UpstreamBarrierCount              *int      `json:"upstream_barrier_count"`
	DownstreamBarrierCount            *int      `json:"downstream_barrier_count"`
	UpstreamAccessibleLength          *float64  `json:"upstream_accessible_length"`
	UpstreamHabitat                   *float64  `json:"upstream_habitat"`
	UpstreamFunctionalHabitat         *float64  `json:"upstream_functional_habitat"`
	WeightedUpstreamHabitat           *float64  `json:"weighted_upstream_habitat"`
	WeightedUpstreamFunctionalHabitat *float64  `json:"weighted_upstream_functional_habitat"`
}
