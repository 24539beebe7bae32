package network

import (
	"log/slog"

	"github.com/siherrmann/fishpass/model"
)

// Compute builds the graph for rows, propagates it and projects the results.
// The returned graph stays valid for traversal after projection.
func Compute(runCtx *RunContext, rows []*model.SegmentRow, lookup PassabilityLookup, logger *slog.Logger) (*Graph, []*model.SegmentResult, error) {
	g, _, err := NewBuilder(runCtx, lookup, logger).Build(rows)
	if err != nil {
		return nil, nil, err
	}

	if _, err := NewPropagator(logger).Propagate(g); err != nil {
		return g, nil, err
	}

	results, err := Project(g)
	if err != nil {
		return g, nil, err
	}

	return g, results, nil
}
