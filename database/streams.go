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

// StreamsDBHandlerFunctions defines the interface for stream segment operations.
type StreamsDBHandlerFunctions interface {
	AddSpeciesColumns(ctx context.Context, code string) error
	InsertStream(stream *model.Stream) error
	UpdateStreamSpecies(id uuid.UUID, code string, species *model.SegmentSpecies) error
	SelectSegments(ctx context.Context, codes []string) ([]*model.SegmentRow, error)
	SelectStreamDCI(id uuid.UUID, code string) (*float64, error)
}

// StreamsDBHandler handles the streams table.
type StreamsDBHandler struct {
	db *helper.Database
}

// NewStreamsDBHandler creates a new streams database handler.
// It loads the stream SQL functions and creates the streams table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewStreamsDBHandler(db *helper.Database, force bool) (*StreamsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	streamsDbHandler := &StreamsDBHandler{
		db: db,
	}

	err := loadSql.LoadStreamsSql(streamsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load streams sql", err)
	}

	err = streamsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized StreamsDBHandler")

	return streamsDbHandler, nil
}

// CreateTable creates the 'streams' table in the database.
// If the table already exists, it does not create it again.
// It also creates the spatial index on the geometry.
func (h *StreamsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_streams();`)
	if err != nil {
		log.Panicf("error initializing streams table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table streams")

	return nil
}

// AddSpeciesColumns adds the per-species input columns and dci column for code.
func (h *StreamsDBHandler) AddSpeciesColumns(ctx context.Context, code string) error {
	if err := model.ValidateSpeciesCodes([]string{code}); err != nil {
		return helper.NewError("validate species", err)
	}

	_, err := h.db.Instance.ExecContext(ctx, `SELECT add_stream_species_columns($1)`, code)
	if err != nil {
		return helper.NewError("exec", err)
	}

	h.db.Logger.Debug("Checked/added stream species columns", "species", code)

	return nil
}

// InsertStream inserts or replaces a stream segment and sets the attributes
// of every species in stream.Species. The species columns must exist.
func (h *StreamsDBHandler) InsertStream(stream *model.Stream) error {
	row := h.db.Instance.QueryRow(
		`SELECT insert_stream($1, $2, $3)`,
		stream.ID,
		stream.StrahlerOrder,
		stream.Geometry,
	)

	err := row.Scan(&stream.ID)
	if err != nil {
		return helper.NewError("scan", err)
	}

	for code, species := range stream.Species {
		err = h.UpdateStreamSpecies(stream.ID, code, species)
		if err != nil {
			return helper.NewError("update species", err)
		}
	}

	return nil
}

// UpdateStreamSpecies sets the attributes of one species on a stream segment.
func (h *StreamsDBHandler) UpdateStreamSpecies(id uuid.UUID, code string, species *model.SegmentSpecies) error {
	if err := model.ValidateSpeciesCodes([]string{code}); err != nil {
		return helper.NewError("validate species", err)
	}

	barrierIDs := make([]string, len(species.DownstreamBarrierIDs))
	for i, barrierID := range species.DownstreamBarrierIDs {
		barrierIDs[i] = barrierID.String()
	}

	var updated int
	err := h.db.Instance.QueryRow(
		`SELECT update_stream_species($1, $2, $3, $4, $5, $6, $7, $8)`,
		id,
		code,
		species.UpstreamBarrierCount,
		pq.Array(barrierIDs),
		species.Accessibility,
		species.SpawnHabitat,
		species.RearHabitat,
		species.Habitat,
	).Scan(&updated)
	if err != nil {
		return helper.NewError("scan", err)
	}
	if updated == 0 {
		return helper.NewError("update stream species", fmt.Errorf("stream %s not found", id))
	}

	return nil
}

// SelectSegments reads every stream segment with the attributes of codes.
// A NULL in a per-species column is malformed input.
func (h *StreamsDBHandler) SelectSegments(ctx context.Context, codes []string) ([]*model.SegmentRow, error) {
	if err := model.ValidateSpeciesCodes(codes); err != nil {
		return nil, helper.NewError("validate species", err)
	}

	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_streams()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var segments []*model.SegmentRow
	index := map[uuid.UUID]*model.SegmentRow{}
	for rows.Next() {
		segment := &model.SegmentRow{
			Species: make(map[string]*model.SegmentSpecies, len(codes)),
		}

		var geometry string
		err := rows.Scan(
			&segment.ID,
			&segment.Length,
			&geometry,
			&segment.StrahlerOrder,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		segment.From, segment.To, err = model.EndpointsFromEWKBHex(geometry)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("segment %s", segment.ID), err)
		}

		segments = append(segments, segment)
		index[segment.ID] = segment
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	for _, code := range codes {
		err = h.selectSegmentSpecies(ctx, code, index)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("species %s", code), err)
		}
	}

	h.db.Logger.Debug("Selected stream segments", "segments", len(segments), "species", len(codes))

	return segments, nil
}

func (h *StreamsDBHandler) selectSegmentSpecies(ctx context.Context, code string, index map[uuid.UUID]*model.SegmentRow) error {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_stream_species($1)`, code)
	if err != nil {
		return helper.NewError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var count sql.NullInt64
		var barrierIDs pq.StringArray
		var accessibility sql.NullString
		var spawn, rear, habitat sql.NullBool

		err := rows.Scan(
			&id,
			&count,
			&barrierIDs,
			&accessibility,
			&spawn,
			&rear,
			&habitat,
		)
		if err != nil {
			return helper.NewError("scan", err)
		}

		if !count.Valid || barrierIDs == nil || !accessibility.Valid || !spawn.Valid || !rear.Valid || !habitat.Valid {
			return fmt.Errorf("%w: segment %s has NULL attributes", model.ErrMalformedInput, id)
		}

		a, err := model.ParseAccessibility(accessibility.String)
		if err != nil {
			return fmt.Errorf("segment %s: %w", id, err)
		}

		ids := make([]uuid.UUID, len(barrierIDs))
		for i, s := range barrierIDs {
			ids[i], err = uuid.Parse(s)
			if err != nil {
				return fmt.Errorf("%w: segment %s has invalid barrier id %q", model.ErrMalformedInput, id, s)
			}
		}

		segment, ok := index[id]
		if !ok {
			continue
		}
		segment.Species[code] = &model.SegmentSpecies{
			UpstreamBarrierCount: int(count.Int64),
			DownstreamBarrierIDs: ids,
			Accessibility:        a,
			SpawnHabitat:         spawn.Bool,
			RearHabitat:          rear.Bool,
			Habitat:              habitat.Bool,
		}
	}

	if err := rows.Err(); err != nil {
		return helper.NewError("rows error", err)
	}

	return nil
}

// SelectStreamDCI returns the stored dci of a segment for code, nil if unset.
func (h *StreamsDBHandler) SelectStreamDCI(id uuid.UUID, code string) (*float64, error) {
	var dci sql.NullFloat64
	err := h.db.Instance.QueryRow(`SELECT select_stream_dci($1, $2)`, id, code).Scan(&dci)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	if !dci.Valid {
		return nil, nil
	}
	return &dci.Float64, nil
}
