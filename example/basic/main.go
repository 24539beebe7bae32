package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
)

// line encodes a straight segment as hex EWKB.
func line(x0, y0, x1, y1 float64) string {
	ls := geom.NewLineString(geom.XY).MustSetCoords([]geom.Coord{{x0, y0}, {x1, y1}}).SetSRID(3005)
	s, err := ewkbhex.Encode(ls, binary.LittleEndian)
	if err != nil {
		log.Fatalf("Failed to encode geometry: %v", err)
	}
	return s
}

func main() {
	ctx := context.Background()

	// Start a test PostGIS container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	f, err := fishpass.NewFishPass(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create fishpass: %v", err)
	}
	defer f.Close()

	// Register species and their columns
	for _, s := range []*model.Species{{Code: "bt", Name: "Bull Trout"}, {Code: "ch", Name: "Chinook Salmon"}} {
		if err := f.Species.InsertSpecies(s); err != nil {
			log.Fatalf("Failed to insert species: %v", err)
		}
	}
	if err := f.PrepareSpecies(ctx, []string{"bt", "ch"}); err != nil {
		log.Fatalf("Failed to prepare species: %v", err)
	}

	// Two tributaries join above a culvert, the main stem continues to the outlet:
	//
	//   west (1500 m) \
	//                  >-- reach (500 m) --[culvert]-- outlet (4000 m)
	//   east (2500 m) /
	culvertID := uuid.New()
	habitat := func(count int, downstream []uuid.UUID, a model.Accessibility) map[string]*model.SegmentSpecies {
		return map[string]*model.SegmentSpecies{
			"bt": {UpstreamBarrierCount: count, DownstreamBarrierIDs: downstream, Accessibility: a, SpawnHabitat: true, RearHabitat: true, Habitat: true},
			"ch": {UpstreamBarrierCount: count, DownstreamBarrierIDs: downstream, Accessibility: a, RearHabitat: true, Habitat: count > 0},
		}
	}

	west := &model.Stream{ID: uuid.New(), StrahlerOrder: 1, Geometry: line(0, 1500, 0, 0), Species: habitat(0, []uuid.UUID{culvertID}, model.AccessibilityPotential)}
	east := &model.Stream{ID: uuid.New(), StrahlerOrder: 1, Geometry: line(2500, 0, 0, 0), Species: habitat(0, []uuid.UUID{culvertID}, model.AccessibilityPotential)}
	reach := &model.Stream{ID: uuid.New(), StrahlerOrder: 2, Geometry: line(0, 0, 0, -500), Species: habitat(0, []uuid.UUID{culvertID}, model.AccessibilityPotential)}
	outlet := &model.Stream{ID: uuid.New(), StrahlerOrder: 3, Geometry: line(0, -500, 0, -4500), Species: habitat(1, []uuid.UUID{}, model.AccessibilityAccessible)}

	names := map[uuid.UUID]string{}
	for name, s := range map[string]*model.Stream{"west": west, "east": east, "reach": reach, "outlet": outlet} {
		if err := f.Streams.InsertStream(s); err != nil {
			log.Fatalf("Failed to insert stream: %v", err)
		}
		names[s.ID] = name
	}

	culvert := &model.Barrier{
		ID:           culvertID,
		Name:         "Highway culvert",
		Type:         "culvert",
		StreamIDUp:   uuid.NullUUID{UUID: reach.ID, Valid: true},
		StreamIDDown: uuid.NullUUID{UUID: outlet.ID, Valid: true},
	}
	if err := f.Barriers.InsertBarrier(culvert); err != nil {
		log.Fatalf("Failed to insert barrier: %v", err)
	}

	btScore, chScore := 0.6, 0.2
	for _, p := range []*model.BarrierPassability{
		{BarrierID: culvertID, Species: "bt", Score: &btScore},
		{BarrierID: culvertID, Species: "ch", Score: &chScore},
	} {
		if err := f.Barriers.InsertPassability(p); err != nil {
			log.Fatalf("Failed to insert passability: %v", err)
		}
	}

	run := model.DefaultRunConfig()
	run.WatershedID = "EXAMPLE"
	run.Species = []string{"bt", "ch"}

	fmt.Println("Computing upstream values...")
	summary, err := f.ComputeUpstreamValues(ctx, &run)
	if err != nil {
		log.Fatalf("Failed to compute upstream values: %v", err)
	}

	fmt.Printf("\nProcessed %d segments with %d headwaters in %s\n", summary.Build.Segments, summary.Build.Headwaters, summary.Duration)
	for _, r := range summary.Results {
		fmt.Printf("\n--- %s ---\n", names[r.SegmentID])
		for _, code := range summary.Species {
			s := r.Species[code]
			fmt.Printf("%s: habitat %.0f m, functional %.0f m, weighted %.0f m, dci %.2f\n",
				code, s.UpstreamHabitat, s.UpstreamFunctionalHabitat, s.WeightedUpstreamHabitat, s.DCI)
		}
		fmt.Printf("all: habitat %.0f m\n", r.All.UpstreamHabitat)
	}

	values, err := f.Barriers.SelectBarrierUpstreamValues(culvertID, "bt")
	if err != nil {
		log.Fatalf("Failed to select barrier values: %v", err)
	}
	fmt.Printf("\nHabitat above the culvert for bt: %.2f km\n", *values.UpstreamHabitat)

	fmt.Println("\nBasic example completed successfully!")
}
