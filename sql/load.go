package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed species.sql
var speciesSQL string

//go:embed streams.sql
var streamsSQL string

//go:embed barriers.sql
var barriersSQL string

//go:embed results.sql
var resultsSQL string

// Function lists for verification
var SpeciesFunctions = []string{
	"init_species",
	"insert_species",
	"select_species_by_codes",
	"select_all_species",
}

var StreamsFunctions = []string{
	"init_streams",
	"add_stream_species_columns",
	"insert_stream",
	"update_stream_species",
	"select_streams",
	"select_stream_species",
	"select_stream_dci",
}

var BarriersFunctions = []string{
	"init_barriers",
	"add_barrier_species_columns",
	"insert_barrier",
	"insert_passability",
	"select_passability",
	"assign_barrier_counts",
	"select_barrier_upstream_values",
}

var ResultsFunctions = []string{
	"create_stream_results",
	"merge_stream_results",
	"merge_barrier_results",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadSpeciesSql loads species-related SQL functions
func LoadSpeciesSql(db *sql.DB, force bool) error {
	return load(db, "species", speciesSQL, SpeciesFunctions, force)
}

// LoadStreamsSql loads stream-related SQL functions
func LoadStreamsSql(db *sql.DB, force bool) error {
	return load(db, "streams", streamsSQL, StreamsFunctions, force)
}

// LoadBarriersSql loads barrier and passability SQL functions
func LoadBarriersSql(db *sql.DB, force bool) error {
	return load(db, "barriers", barriersSQL, BarriersFunctions, force)
}

// LoadResultsSql loads the result merge SQL functions
func LoadResultsSql(db *sql.DB, force bool) error {
	return load(db, "results", resultsSQL, ResultsFunctions, force)
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadSpeciesSql(db, force); err != nil {
		return err
	}

	if err := LoadStreamsSql(db, force); err != nil {
		return err
	}

	if err := LoadBarriersSql(db, force); err != nil {
		return err
	}

	if err := LoadResultsSql(db, force); err != nil {
		return err
	}

	return nil
}

// load executes src unless all functions exist already. With force it always executes.
func load(db *sql.DB, name string, src string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(src)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
