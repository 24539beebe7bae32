package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
	loadSql "github.com/siherrmann/fishpass/sql"
)

// SpeciesDBHandlerFunctions defines the interface for species registry operations.
type SpeciesDBHandlerFunctions interface {
	InsertSpecies(species *model.Species) error
	SelectSpeciesByCodes(ctx context.Context, codes []string) ([]*model.Species, error)
	SelectAllSpecies() ([]*model.Species, error)
}

// SpeciesDBHandler handles the fish_species registry.
type SpeciesDBHandler struct {
	db *helper.Database
}

// NewSpeciesDBHandler creates a new species database handler.
// It loads the species SQL functions and creates the fish_species table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewSpeciesDBHandler(db *helper.Database, force bool) (*SpeciesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	speciesDbHandler := &SpeciesDBHandler{
		db: db,
	}

	err := loadSql.LoadSpeciesSql(speciesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load species sql", err)
	}

	err = speciesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized SpeciesDBHandler")

	return speciesDbHandler, nil
}

// CreateTable creates the 'fish_species' table in the database.
// If the table already exists, it does not create it again.
func (h *SpeciesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_species();`)
	if err != nil {
		log.Panicf("error initializing fish_species table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table fish_species")

	return nil
}

// InsertSpecies inserts a species or renames the existing one with the same code.
func (h *SpeciesDBHandler) InsertSpecies(species *model.Species) error {
	if err := model.ValidateSpeciesCodes([]string{species.Code}); err != nil {
		return helper.NewError("validate species", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_species($1, $2)`,
		species.Code,
		species.Name,
	)

	err := row.Scan(
		&species.ID,
		&species.Code,
		&species.Name,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectSpeciesByCodes retrieves the species for codes in the order of codes.
// Every code must be registered.
func (h *SpeciesDBHandler) SelectSpeciesByCodes(ctx context.Context, codes []string) ([]*model.Species, error) {
	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT * FROM select_species_by_codes($1)`,
		pq.Array(codes),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	species, err := scanSpecies(rows)
	if err != nil {
		return nil, err
	}

	if len(species) != len(codes) {
		found := make(map[string]bool, len(species))
		for _, s := range species {
			found[s.Code] = true
		}
		for _, code := range codes {
			if !found[code] {
				return nil, helper.NewError("select species", fmt.Errorf("%w: species %q is not registered", model.ErrMalformedInput, code))
			}
		}
	}

	return species, nil
}

// SelectAllSpecies retrieves all registered species ordered by code.
func (h *SpeciesDBHandler) SelectAllSpecies() ([]*model.Species, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_species()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanSpecies(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanSpecies(rows rowScanner) ([]*model.Species, error) {
	var species []*model.Species
	for rows.Next() {
		s := &model.Species{}
		err := rows.Scan(
			&s.ID,
			&s.Code,
			&s.Name,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		species = append(species, s)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return species, nil
}
