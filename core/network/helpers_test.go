package network

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return helper.NewLogger(io.Discard, slog.LevelDebug)
}

func testRunContext(t *testing.T, species ...string) *RunContext {
	runCtx, err := NewRunContext(species)
	require.NoError(t, err, "Expected run context to be created")
	return runCtx
}

// habitatSpecies is an accessible habitat segment without barriers.
func habitatSpecies() *model.SegmentSpecies {
	return &model.SegmentSpecies{
		Accessibility: model.AccessibilityAccessible,
		SpawnHabitat:  true,
		RearHabitat:   true,
		Habitat:       true,
	}
}

func segment(length float64, from, to model.Coordinate, species map[string]*model.SegmentSpecies) *model.SegmentRow {
	return &model.SegmentRow{
		ID:            uuid.New(),
		Length:        length,
		From:          from,
		To:            to,
		StrahlerOrder: 3,
		Species:       species,
	}
}

func pt(x float64) model.Coordinate {
	return model.Coordinate{X: x, Y: 0}
}

// chain returns a linear chain of segments flowing from x=0 towards larger x.
func chain(code string, lengths ...float64) []*model.SegmentRow {
	rows := make([]*model.SegmentRow, len(lengths))
	for i, length := range lengths {
		rows[i] = segment(length, pt(float64(i)), pt(float64(i+1)), map[string]*model.SegmentSpecies{code: habitatSpecies()})
	}
	return rows
}

func build(t *testing.T, runCtx *RunContext, rows []*model.SegmentRow, lookup PassabilityLookup) *Graph {
	if lookup == nil {
		lookup = model.PassabilityTable{}
	}
	g, _, err := NewBuilder(runCtx, lookup, testLogger()).Build(rows)
	require.NoError(t, err, "Expected graph to be built")
	return g
}

func propagate(t *testing.T, g *Graph) *PropagationStats {
	stats, err := NewPropagator(testLogger()).Propagate(g)
	require.NoError(t, err, "Expected propagation to succeed")
	return stats
}

func edgeOf(t *testing.T, g *Graph, row *model.SegmentRow) *Edge {
	id, ok := g.EdgeBySegment(row.ID)
	require.True(t, ok, "Expected segment to be in graph")
	return g.Edge(id)
}

func score(v float64) *float64 {
	return &v
}
