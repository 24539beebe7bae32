package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
	loadSql "github.com/siherrmann/fishpass/sql"
)

// ResultsDBHandlerFunctions defines the interface for writing run results.
type ResultsDBHandlerFunctions interface {
	WriteResults(ctx context.Context, codes []string, results []*model.SegmentResult, unitDivisor float64) (*WriteStats, error)
}

// WriteStats counts the rows touched by WriteResults.
type WriteStats struct {
	Rows     int
	Streams  int
	Barriers int
}

// ResultsDBHandler writes segment results back onto streams and barriers.
type ResultsDBHandler struct {
	db *helper.Database
}

// NewResultsDBHandler creates a new results database handler.
// The streams and barriers tables must exist when results are written.
// If force is true, it will reload the SQL functions even if they already exist.
func NewResultsDBHandler(db *helper.Database, force bool) (*ResultsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	resultsDbHandler := &ResultsDBHandler{
		db: db,
	}

	err := loadSql.LoadResultsSql(resultsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load results sql", err)
	}

	db.Logger.Info("Initialized ResultsDBHandler")

	return resultsDbHandler, nil
}

// WriteResults copies all results into a transaction scoped stream_results
// table and merges them in one transaction: dci onto streams, every other
// value divided by unitDivisor onto the barrier directly below each segment.
func (h *ResultsDBHandler) WriteResults(ctx context.Context, codes []string, results []*model.SegmentResult, unitDivisor float64) (*WriteStats, error) {
	if err := model.ValidateSpeciesCodes(codes); err != nil {
		return nil, helper.NewError("validate species", err)
	}
	if unitDivisor <= 0 {
		return nil, helper.NewError("validate unit divisor", fmt.Errorf("unit divisor must be positive, got %v", unitDivisor))
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return nil, helper.NewError("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `SELECT create_stream_results($1)`, pq.Array(codes))
	if err != nil {
		return nil, helper.NewError("create stream_results", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("stream_results", model.ResultColumns(codes)...))
	if err != nil {
		return nil, helper.NewError("prepare copy", err)
	}

	for _, r := range results {
		_, err = stmt.ExecContext(ctx, r.Values(codes)...)
		if err != nil {
			stmt.Close()
			return nil, helper.NewError(fmt.Sprintf("copy segment %s", r.SegmentID), err)
		}
	}

	_, err = stmt.ExecContext(ctx)
	if err != nil {
		stmt.Close()
		return nil, helper.NewError("flush copy", err)
	}
	err = stmt.Close()
	if err != nil {
		return nil, helper.NewError("close copy", err)
	}

	stats := &WriteStats{Rows: len(results)}

	err = tx.QueryRowContext(ctx, `SELECT merge_stream_results($1)`, pq.Array(codes)).Scan(&stats.Streams)
	if err != nil {
		return nil, helper.NewError("merge stream results", err)
	}

	err = tx.QueryRowContext(ctx, `SELECT merge_barrier_results($1, $2)`, pq.Array(codes), unitDivisor).Scan(&stats.Barriers)
	if err != nil {
		return nil, helper.NewError("merge barrier results", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, helper.NewError("commit", err)
	}
	committed = true

	h.db.Logger.Info("Wrote results",
		"rows", stats.Rows,
		"streams", stats.Streams,
		"barriers", stats.Barriers,
	)

	return stats, nil
}
