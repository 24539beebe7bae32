package fishpass

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/core/network"
	"github.com/siherrmann/fishpass/database"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
	loadSql "github.com/siherrmann/fishpass/sql"
)

// FishPass provides a unified interface to all database handlers and runs
// the upstream accumulation for one watershed at a time.
type FishPass struct {
	DB       *helper.Database
	Species  *database.SpeciesDBHandler
	Streams  *database.StreamsDBHandler
	Barriers *database.BarriersDBHandler
	Results  *database.ResultsDBHandler
	// Logging
	log *slog.Logger
}

// RunSummary describes a finished run. Graph stays usable for traversal.
type RunSummary struct {
	WatershedID      string
	Species          []string
	Build            *network.BuildStats
	Propagation      *network.PropagationStats
	BarriersAssigned int
	Written          *database.WriteStats
	Graph            *network.Graph
	Results          []*model.SegmentResult
	Duration         time.Duration
}

// NewFishPass creates a new FishPass instance with all handlers initialized
func NewFishPass(config *helper.DatabaseConfiguration) (*FishPass, error) {
	return NewFishPassWithLogger(config, helper.NewLogger(os.Stdout, slog.LevelInfo))
}

// NewFishPassWithLogger is NewFishPass logging to logger.
func NewFishPassWithLogger(config *helper.DatabaseConfiguration, logger *slog.Logger) (*FishPass, error) {
	// Initialize database
	db := helper.NewDatabase("fishpass", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (species first, passability references it)
	// force=false to not reload if functions already exist
	species, err := database.NewSpeciesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create species handler", err)
	}

	streams, err := database.NewStreamsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create streams handler", err)
	}

	barriers, err := database.NewBarriersDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create barriers handler", err)
	}

	results, err := database.NewResultsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create results handler", err)
	}

	return &FishPass{
		DB:       db,
		Species:  species,
		Streams:  streams,
		Barriers: barriers,
		Results:  results,
		log:      logger,
	}, nil
}

// Close closes the database connection
func (f *FishPass) Close() error {
	if f.DB != nil && f.DB.Instance != nil {
		return f.DB.Instance.Close()
	}
	return nil
}

// PrepareSpecies adds the per-species columns of codes to streams and barriers.
// It is idempotent.
func (f *FishPass) PrepareSpecies(ctx context.Context, codes []string) error {
	for _, code := range codes {
		if err := f.Streams.AddSpeciesColumns(ctx, code); err != nil {
			return helper.NewError("add stream columns", err)
		}
		if err := f.Barriers.AddSpeciesColumns(ctx, code); err != nil {
			return helper.NewError("add barrier columns", err)
		}
	}
	return nil
}

// ComputeUpstreamValues runs the accumulation for run: it assigns barrier
// counts, reads segments and passability scores once, propagates the network
// in memory and writes all results back in one transaction.
func (f *FishPass) ComputeUpstreamValues(ctx context.Context, run *model.RunConfig) (*RunSummary, error) {
	start := time.Now()

	if err := run.Validate(); err != nil {
		return nil, helper.NewError("validate run", err)
	}

	log := f.log.With(slog.String("watershed", run.WatershedID))
	log.Info("Computing upstream values", slog.Any("species", run.Species))

	species, err := f.Species.SelectSpeciesByCodes(ctx, run.Species)
	if err != nil {
		return nil, helper.NewError("select species", err)
	}
	codes := model.SpeciesCodes(species)

	runCtx, err := network.NewRunContext(codes)
	if err != nil {
		return nil, helper.NewError("create run context", err)
	}

	if err := f.PrepareSpecies(ctx, codes); err != nil {
		return nil, helper.NewError("prepare species", err)
	}

	summary := &RunSummary{
		WatershedID: run.WatershedID,
		Species:     codes,
	}

	for _, code := range codes {
		assigned, err := f.Barriers.AssignBarrierCounts(ctx, code)
		if err != nil {
			return nil, helper.NewError("assign barrier counts", err)
		}
		summary.BarriersAssigned = assigned
	}

	rows, err := f.Streams.SelectSegments(ctx, codes)
	if err != nil {
		return nil, helper.NewError("select segments", err)
	}

	scores, err := f.Barriers.SelectPassability(ctx, downstreamBarrierIDs(rows), codes)
	if err != nil {
		return nil, helper.NewError("select passability", err)
	}

	g, buildStats, err := network.NewBuilder(runCtx, model.NewPassabilityTable(scores), log).Build(rows)
	if err != nil {
		return nil, helper.NewError("build network", err)
	}
	summary.Build = buildStats
	summary.Graph = g

	summary.Propagation, err = network.NewPropagator(log).Propagate(g)
	if err != nil {
		return nil, helper.NewError("propagate network", err)
	}

	summary.Results, err = network.Project(g)
	if err != nil {
		return nil, helper.NewError("project results", err)
	}

	summary.Written, err = f.Results.WriteResults(ctx, codes, summary.Results, run.UnitDivisor)
	if err != nil {
		return nil, helper.NewError("write results", err)
	}

	summary.Duration = time.Since(start)
	log.Info("Computed upstream values",
		slog.Int("segments", buildStats.Segments),
		slog.Int("barriers", summary.Written.Barriers),
		slog.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// downstreamBarrierIDs returns every barrier id referenced by rows once.
func downstreamBarrierIDs(rows []*model.SegmentRow) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, row := range rows {
		for _, s := range row.Species {
			for _, id := range s.DownstreamBarrierIDs {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	return ids
}
