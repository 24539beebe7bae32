package model

import "github.com/google/uuid"

// SpeciesResult holds the accumulated values of one segment for one species.
// Lengths are in the store's working unit.
type SpeciesResult struct {
	UpstreamAccessibleLength          float64 `json:"upstream_accessible_length"`
	UpstreamSpawnHabitat              float64 `json:"upstream_spawn_habitat"`
	UpstreamRearHabitat               float64 `json:"upstream_rear_habitat"`
	UpstreamHabitat                   float64 `json:"upstream_habitat"`
	UpstreamFunctionalSpawnHabitat    float64 `json:"upstream_functional_spawn_habitat"`
	UpstreamFunctionalRearHabitat     float64 `json:"upstream_functional_rear_habitat"`
	UpstreamFunctionalHabitat         float64 `json:"upstream_functional_habitat"`
	DCI                               float64 `json:"dci"`
	WeightedUpstreamHabitat           float64 `json:"weighted_upstream_habitat"`
	WeightedUpstreamFunctionalHabitat float64 `json:"weighted_upstream_functional_habitat"`
}

// AggregateResult holds the species-agnostic values of one segment.
type AggregateResult struct {
	UpstreamSpawnHabitat           float64 `json:"upstream_spawn_habitat_all"`
	UpstreamRearHabitat            float64 `json:"upstream_rear_habitat_all"`
	UpstreamHabitat                float64 `json:"upstream_habitat_all"`
	UpstreamFunctionalSpawnHabitat float64 `json:"upstream_functional_spawn_habitat_all"`
	UpstreamFunctionalRearHabitat  float64 `json:"upstream_functional_rear_habitat_all"`
	UpstreamFunctionalHabitat      float64 `json:"upstream_functional_habitat_all"`
}

// SegmentResult is one output row keyed by segment id.
type SegmentResult struct {
	SegmentID uuid.UUID                 `json:"segment_id"`
	Species   map[string]*SpeciesResult `json:"species"`
	All       AggregateResult           `json:"all"`
}

// speciesColumnPrefixes lists the per-species output columns in row order.
var speciesColumnPrefixes = []string{
	"upstream_accessible_length_",
	"upstream_spawn_habitat_",
	"upstream_rear_habitat_",
	"upstream_habitat_",
	"upstream_functional_spawn_habitat_",
	"upstream_functional_rear_habitat_",
	"upstream_functional_habitat_",
	"dci_",
	"weighted_upstream_habitat_",
	"weighted_upstream_functional_habitat_",
}

// AggregateColumns lists the species-agnostic output columns in row order.
var AggregateColumns = []string{
	"upstream_spawn_habitat_all",
	"upstream_rear_habitat_all",
	"upstream_habitat_all",
	"upstream_functional_spawn_habitat_all",
	"upstream_functional_rear_habitat_all",
	"upstream_functional_habitat_all",
}

// SpeciesResultColumns returns the per-species output columns for code.
func SpeciesResultColumns(code string) []string {
	columns := make([]string, len(speciesColumnPrefixes))
	for i, prefix := range speciesColumnPrefixes {
		columns[i] = prefix + code
	}
	return columns
}

// ResultColumns returns the full output schema for the species codes:
// segment_id, the per-species columns for each code, then the aggregates.
func ResultColumns(codes []string) []string {
	columns := []string{"segment_id"}
	for _, code := range codes {
		columns = append(columns, SpeciesResultColumns(code)...)
	}
	return append(columns, AggregateColumns...)
}

// Values flattens the result in ResultColumns order.
// A species missing from the result yields zeros.
func (r *SegmentResult) Values(codes []string) []interface{} {
	values := make([]interface{}, 0, 1+len(codes)*len(speciesColumnPrefixes)+len(AggregateColumns))
	values = append(values, r.SegmentID)

	for _, code := range codes {
		s, ok := r.Species[code]
		if !ok {
			s = &SpeciesResult{}
		}
		values = append(values,
			s.UpstreamAccessibleLength,
			s.UpstreamSpawnHabitat,
			s.UpstreamRearHabitat,
			s.UpstreamHabitat,
			s.UpstreamFunctionalSpawnHabitat,
			s.UpstreamFunctionalRearHabitat,
			s.UpstreamFunctionalHabitat,
			s.DCI,
			s.WeightedUpstreamHabitat,
			s.WeightedUpstreamFunctionalHabitat,
		)
	}

	return append(values,
		r.All.UpstreamSpawnHabitat,
		r.All.UpstreamRearHabitat,
		r.All.UpstreamHabitat,
		r.All.UpstreamFunctionalSpawnHabitat,
		r.All.UpstreamFunctionalRearHabitat,
		r.All.UpstreamFunctionalHabitat,
	)
}
