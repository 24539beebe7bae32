package network

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/model"
)

// PassabilityLookup resolves the passability score of a barrier for a species.
// ok is false when no score is known.
type PassabilityLookup interface {
	Passability(barrierID uuid.UUID, species string) (score float64, ok bool)
}

// BuildStats summarizes a built graph.
type BuildStats struct {
	Segments      int
	Nodes         int
	Headwaters    int
	Outlets       int
	MissingScores int
}

// Builder turns segment rows into a Graph.
type Builder struct {
	runCtx *RunContext
	lookup PassabilityLookup
	log    *slog.Logger
}

// NewBuilder creates a builder for the species context. Unknown passability
// scores from lookup are treated as impassable.
func NewBuilder(runCtx *RunContext, lookup PassabilityLookup, logger *slog.Logger) *Builder {
	return &Builder{
		runCtx: runCtx,
		lookup: lookup,
		log:    logger,
	}
}

// Build creates one edge per row and the nodes at their endpoints.
// Any row inconsistent with the species context fails the whole build.
func (b *Builder) Build(rows []*model.SegmentRow) (*Graph, *BuildStats, error) {
	g := newGraph(b.runCtx, len(rows))
	stats := &BuildStats{}

	for _, row := range rows {
		if row == nil {
			return nil, nil, fmt.Errorf("%w: nil segment row", model.ErrMalformedInput)
		}
		if _, ok := g.edgeIndex[row.ID]; ok {
			return nil, nil, fmt.Errorf("%w: duplicate segment %s", model.ErrMalformedInput, row.ID)
		}
		if row.Length < 0 || math.IsNaN(row.Length) || math.IsInf(row.Length, 0) {
			return nil, nil, fmt.Errorf("%w: segment %s has invalid length %v", model.ErrMalformedInput, row.ID, row.Length)
		}

		species, missing, err := b.speciesAttributes(row)
		if err != nil {
			return nil, nil, err
		}
		stats.MissingScores += missing

		e := Edge{
			SegmentID:      row.ID,
			From:           g.nodeAt(row.From),
			To:             g.nodeAt(row.To),
			Length:         row.Length,
			WeightedLength: weightedLength(row.Length, row.StrahlerOrder),
			StrahlerOrder:  row.StrahlerOrder,
			Species:        species,
			Metrics:        make([]SpeciesMetrics, len(species)),
		}
		for _, s := range species {
			e.SpawnHabitatAll = e.SpawnHabitatAll || s.SpawnHabitat
			e.RearHabitatAll = e.RearHabitatAll || s.RearHabitat
			e.HabitatAll = e.HabitatAll || s.Habitat
		}

		g.addEdge(e)
	}

	stats.Segments = g.NumEdges()
	stats.Nodes = g.NumNodes()
	stats.Headwaters = len(g.Headwaters())
	stats.Outlets = len(g.Outlets())

	if stats.MissingScores > 0 {
		b.log.Warn("Barriers without passability score treated as impassable", slog.Int("count", stats.MissingScores))
	}
	b.log.Info("Built segment network",
		slog.Int("segments", stats.Segments),
		slog.Int("nodes", stats.Nodes),
		slog.Int("headwaters", stats.Headwaters),
		slog.Int("outlets", stats.Outlets),
	)

	return g, stats, nil
}

// speciesAttributes resolves the per-species attributes of row in context
// order and returns how many barrier scores were unknown.
func (b *Builder) speciesAttributes(row *model.SegmentRow) ([]SpeciesAttributes, int, error) {
	attrs := make([]SpeciesAttributes, b.runCtx.Len())
	missing := 0

	for i, code := range b.runCtx.Species {
		s, ok := row.Species[code]
		if !ok || s == nil {
			return nil, 0, fmt.Errorf("%w: segment %s has no attributes for species %q", model.ErrMalformedInput, row.ID, code)
		}
		if !s.Accessibility.Valid() {
			return nil, 0, fmt.Errorf("%w: segment %s has invalid accessibility %q for species %q", model.ErrMalformedInput, row.ID, s.Accessibility, code)
		}
		if s.UpstreamBarrierCount < 0 {
			return nil, 0, fmt.Errorf("%w: segment %s has negative barrier count for species %q", model.ErrMalformedInput, row.ID, code)
		}

		passability := 1.0
		for _, barrierID := range s.DownstreamBarrierIDs {
			score, ok := b.lookup.Passability(barrierID, code)
			if !ok {
				missing++
				b.log.Debug("Missing passability score", slog.String("barrier_id", barrierID.String()), slog.String("species", code))
				score = 0
			}
			if score < 0 || score > 1 || math.IsNaN(score) {
				return nil, 0, fmt.Errorf("%w: barrier %s has passability %v for species %q outside [0,1]", model.ErrMalformedInput, barrierID, score, code)
			}
			passability *= score
		}

		ids := make([]uuid.UUID, len(s.DownstreamBarrierIDs))
		copy(ids, s.DownstreamBarrierIDs)

		attrs[i] = SpeciesAttributes{
			UpstreamBarrierCount:  s.UpstreamBarrierCount,
			DownstreamBarrierIDs:  ids,
			DownstreamPassability: passability,
			Accessibility:         s.Accessibility,
			SpawnHabitat:          s.SpawnHabitat,
			RearHabitat:           s.RearHabitat,
			Habitat:               s.Habitat,
		}
	}

	return attrs, missing, nil
}
