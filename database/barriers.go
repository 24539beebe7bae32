package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
	loadSql "github.com/siherrmann/fishpass/sql"
)

// BarriersDBHandlerFunctions defines the interface for barrier and passability operations.
type BarriersDBHandlerFunctions interface {
	AddSpeciesColumns(ctx context.Context, code string) error
	InsertBarrier(barrier *model.Barrier) error
	InsertPassability(passability *model.BarrierPassability) error
	SelectPassability(ctx context.Context, barrierIDs []uuid.UUID, codes []string) ([]*model.BarrierPassability, error)
	AssignBarrierCounts(ctx context.Context, code string) (int, error)
	SelectBarrierUpstreamValues(id uuid.UUID, code string) (*model.BarrierUpstreamValues, error)
}

// BarriersDBHandler handles the barriers and barrier_passability tables.
type BarriersDBHandler struct {
	db *helper.Database
}

// NewBarriersDBHandler creates a new barriers database handler.
// The fish_species table must exist, passability rows reference it.
// If force is true, it will reload the SQL functions even if they already exist.
func NewBarriersDBHandler(db *helper.Database, force bool) (*BarriersDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	barriersDbHandler := &BarriersDBHandler{
		db: db,
	}

	err := loadSql.LoadBarriersSql(barriersDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load barriers sql", err)
	}

	err = barriersDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized BarriersDBHandler")

	return barriersDbHandler, nil
}

// CreateTable creates the 'barriers' and 'barrier_passability' tables in the database.
// If the tables already exist, it does not create them again.
func (h *BarriersDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_barriers();`)
	if err != nil {
		log.Panicf("error initializing barriers table: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables barriers and barrier_passability")

	return nil
}

// AddSpeciesColumns adds the barrier count and upstream value columns for code.
func (h *BarriersDBHandler) AddSpeciesColumns(ctx context.Context, code string) error {
	if err := model.ValidateSpeciesCodes([]string{code}); err != nil {
		return helper.NewError("validate species", err)
	}

	_, err := h.db.Instance.ExecContext(ctx, `SELECT add_barrier_species_columns($1)`, code)
	if err != nil {
		return helper.NewError("exec", err)
	}

	h.db.Logger.Debug("Checked/added barrier species columns", "species", code)

	return nil
}

// InsertBarrier inserts or replaces a barrier.
func (h *BarriersDBHandler) InsertBarrier(barrier *model.Barrier) error {
	if barrier.ID == uuid.Nil {
		barrier.ID = uuid.New()
	}

	err := h.db.Instance.QueryRow(
		`SELECT insert_barrier($1, $2, $3, $4, $5)`,
		barrier.ID,
		barrier.Name,
		barrier.Type,
		barrier.StreamIDUp,
		barrier.StreamIDDown,
	).Scan(&barrier.ID)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// InsertPassability stores the score of a barrier for a species. A nil score
// records a barrier without an assessment.
func (h *BarriersDBHandler) InsertPassability(passability *model.BarrierPassability) error {
	if passability.Score != nil && (*passability.Score < 0 || *passability.Score > 1) {
		return helper.NewError("validate passability", fmt.Errorf("%w: passability %v outside [0,1]", model.ErrMalformedInput, *passability.Score))
	}

	_, err := h.db.Instance.Exec(
		`SELECT insert_passability($1, $2, $3)`,
		passability.BarrierID,
		passability.Species,
		passability.Score,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// SelectPassability retrieves the scores of all barrier and species pairs in one query.
// Pairs without a row are absent from the result.
func (h *BarriersDBHandler) SelectPassability(ctx context.Context, barrierIDs []uuid.UUID, codes []string) ([]*model.BarrierPassability, error) {
	ids := make([]string, len(barrierIDs))
	for i, id := range barrierIDs {
		ids[i] = id.String()
	}

	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT * FROM select_passability($1, $2)`,
		pq.Array(ids),
		pq.Array(codes),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var scores []*model.BarrierPassability
	for rows.Next() {
		p := &model.BarrierPassability{}
		var status sql.NullFloat64

		err := rows.Scan(
			&p.BarrierID,
			&p.Species,
			&status,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		if status.Valid {
			p.Score = &status.Float64
		}

		scores = append(scores, p)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return scores, nil
}

// AssignBarrierCounts copies the barrier counts of code from the adjacent
// segments onto every barrier and returns how many barriers have an upstream segment.
func (h *BarriersDBHandler) AssignBarrierCounts(ctx context.Context, code string) (int, error) {
	var updated int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT assign_barrier_counts($1)`, code).Scan(&updated)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	h.db.Logger.Debug("Assigned barrier counts", "species", code, "barriers", updated)

	return updated, nil
}

// SelectBarrierUpstreamValues retrieves the values merged onto a barrier for code.
func (h *BarriersDBHandler) SelectBarrierUpstreamValues(id uuid.UUID, code string) (*model.BarrierUpstreamValues, error) {
	row := h.db.Instance.QueryRow(`SELECT * FROM select_barrier_upstream_values($1, $2)`, id, code)

	values := &model.BarrierUpstreamValues{
		BarrierID: id,
		Species:   code,
	}
	var upCount, downCount sql.NullInt64
	var accessible, habitat, functional, weighted, weightedFunctional sql.NullFloat64

	err := row.Scan(
		&upCount,
		&downCount,
		&accessible,
		&habitat,
		&functional,
		&weighted,
		&weightedFunctional,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	values.UpstreamBarrierCount = nullInt(upCount)
	values.DownstreamBarrierCount = nullInt(downCount)
	values.UpstreamAccessibleLength = nullFloat(accessible)
	values.UpstreamHabitat = nullFloat(habitat)
	values.UpstreamFunctionalHabitat = nullFloat(functional)
	values.WeightedUpstreamHabitat = nullFloat(weighted)
	values.WeightedUpstreamFunctionalHabitat = nullFloat(weightedFunctional)

	return values, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
