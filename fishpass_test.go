package fishpass

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
)

func initFishPass(t *testing.T) *FishPass {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	f, err := NewFishPass(dbConfig)
	require.NoError(t, err, "failed to create fishpass")
	require.NotNil(t, f, "expected fishpass to be non-nil")

	_, err = f.DB.Instance.Exec(`TRUNCATE streams, barriers CASCADE;`)
	require.NoError(t, err, "failed to empty tables")

	t.Cleanup(func() {
		f.Close()
	})

	return f
}

func line(t *testing.T, x0, x1 float64) string {
	ls := geom.NewLineString(geom.XY).MustSetCoords([]geom.Coord{{x0, 0}, {x1, 0}})
	s, err := ewkbhex.Encode(ls, binary.LittleEndian)
	require.NoError(t, err, "failed to encode geometry")
	return s
}

func TestNewFishPass(t *testing.T) {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)

	t.Run("Valid call NewFishPass", func(t *testing.T) {
		f, err := NewFishPass(dbConfig)
		require.NoError(t, err, "Expected NewFishPass to not return an error")
		require.NotNil(t, f, "Expected NewFishPass to return a non-nil instance")
		assert.NotNil(t, f.DB, "Expected fishpass to have a database instance")
		assert.NotNil(t, f.Species, "Expected fishpass to have species handler")
		assert.NotNil(t, f.Streams, "Expected fishpass to have streams handler")
		assert.NotNil(t, f.Barriers, "Expected fishpass to have barriers handler")
		assert.NotNil(t, f.Results, "Expected fishpass to have results handler")
		assert.NoError(t, f.Close(), "Expected Close to not return an error")
	})
}

func TestComputeUpstreamValues(t *testing.T) {
	f := initFishPass(t)
	ctx := context.Background()

	for _, s := range []*model.Species{{Code: "bt", Name: "Bull Trout"}, {Code: "ch", Name: "Chinook"}} {
		require.NoError(t, f.Species.InsertSpecies(s), "Expected InsertSpecies to not return an error")
	}
	require.NoError(t, f.PrepareSpecies(ctx, []string{"bt", "ch"}), "Expected PrepareSpecies to not return an error")

	// Three segments flowing from x=0 to x=6000 with a culvert between the first two.
	culvertID := uuid.New()
	seg1 := &model.Stream{ID: uuid.New(), StrahlerOrder: 1, Geometry: line(t, 0, 1000)}
	seg2 := &model.Stream{ID: uuid.New(), StrahlerOrder: 2, Geometry: line(t, 1000, 3000)}
	seg3 := &model.Stream{ID: uuid.New(), StrahlerOrder: 3, Geometry: line(t, 3000, 6000)}

	attrs := func(count int, downstream []uuid.UUID, a model.Accessibility) map[string]*model.SegmentSpecies {
		return map[string]*model.SegmentSpecies{
			"bt": {UpstreamBarrierCount: count, DownstreamBarrierIDs: downstream, Accessibility: a, SpawnHabitat: true, Habitat: true},
			"ch": {UpstreamBarrierCount: count, DownstreamBarrierIDs: downstream, Accessibility: a, RearHabitat: true},
		}
	}
	seg1.Species = attrs(0, []uuid.UUID{culvertID}, model.AccessibilityPotential)
	seg2.Species = attrs(1, []uuid.UUID{}, model.AccessibilityAccessible)
	seg3.Species = attrs(1, []uuid.UUID{}, model.AccessibilityAccessible)

	for _, s := range []*model.Stream{seg1, seg2, seg3} {
		require.NoError(t, f.Streams.InsertStream(s), "Expected InsertStream to not return an error")
	}

	culvert := &model.Barrier{
		ID:           culvertID,
		Name:         "Culvert",
		Type:         "culvert",
		StreamIDUp:   uuid.NullUUID{UUID: seg1.ID, Valid: true},
		StreamIDDown: uuid.NullUUID{UUID: seg2.ID, Valid: true},
	}
	require.NoError(t, f.Barriers.InsertBarrier(culvert), "Expected InsertBarrier to not return an error")

	half := 0.5
	require.NoError(t, f.Barriers.InsertPassability(&model.BarrierPassability{BarrierID: culvertID, Species: "bt", Score: &half}))

	run := model.DefaultRunConfig()
	run.WatershedID = "TEST"
	run.Species = []string{"bt", "ch"}

	t.Run("Valid call ComputeUpstreamValues", func(t *testing.T) {
		summary, err := f.ComputeUpstreamValues(ctx, &run)
		require.NoError(t, err, "Expected ComputeUpstreamValues to not return an error")

		assert.Equal(t, []string{"bt", "ch"}, summary.Species, "Expected run species")
		assert.Equal(t, 3, summary.Build.Segments, "Expected three segments")
		assert.Equal(t, 1, summary.Build.MissingScores, "Expected missing ch score to be counted")
		assert.Equal(t, 1, summary.BarriersAssigned, "Expected culvert to get counts")
		assert.Equal(t, 3, summary.Written.Rows, "Expected one row per segment")
		assert.Equal(t, 1, summary.Written.Barriers, "Expected culvert to get results")
		require.Len(t, summary.Results, 3, "Expected one result per segment")

		byID := map[uuid.UUID]*model.SegmentResult{}
		for _, r := range summary.Results {
			byID[r.SegmentID] = r
		}

		bt3 := byID[seg3.ID].Species["bt"]
		assert.InDelta(t, 6000.0, bt3.UpstreamHabitat, 1e-6, "Expected all habitat at the outlet")
		assert.InDelta(t, 5000.0, bt3.UpstreamFunctionalHabitat, 1e-6, "Expected functional habitat below the culvert")
		assert.InDelta(t, 250+1500+3000.0, bt3.WeightedUpstreamHabitat, 1e-6, "Expected weighted habitat")

		bt1 := byID[seg1.ID].Species["bt"]
		assert.InDelta(t, 1000.0/6000*0.5*100, bt1.DCI, 1e-9, "Expected dci discounted by the culvert")
		assert.Equal(t, 0.0, byID[seg1.ID].Species["ch"].DCI, "Expected zero dci without ch habitat")

		values, err := f.Barriers.SelectBarrierUpstreamValues(culvertID, "bt")
		require.NoError(t, err, "Expected SelectBarrierUpstreamValues to not return an error")
		require.NotNil(t, values.UpstreamHabitat, "Expected culvert habitat to be written")
		assert.InDelta(t, 1.0, *values.UpstreamHabitat, 1e-9, "Expected habitat above the culvert in km")
		require.NotNil(t, values.UpstreamBarrierCount, "Expected culvert upstream count")
		assert.Equal(t, 0, *values.UpstreamBarrierCount, "Expected no barrier above the culvert")

		dci, err := f.Streams.SelectStreamDCI(seg2.ID, "bt")
		require.NoError(t, err, "Expected SelectStreamDCI to not return an error")
		require.NotNil(t, dci, "Expected dci to be written")
		assert.InDelta(t, 2000.0/6000*100, *dci, 1e-9, "Expected stored dci")

		upstream, err := summary.Graph.Upstream(seg3.ID, -1)
		require.NoError(t, err, "Expected Upstream to not return an error")
		assert.Len(t, upstream, 3, "Expected whole chain upstream of the outlet")
	})

	t.Run("Repeated ComputeUpstreamValues is identical", func(t *testing.T) {
		first, err := f.ComputeUpstreamValues(ctx, &run)
		require.NoError(t, err, "Expected ComputeUpstreamValues to not return an error")
		second, err := f.ComputeUpstreamValues(ctx, &run)
		require.NoError(t, err, "Expected ComputeUpstreamValues to not return an error")
		assert.Equal(t, first.Results, second.Results, "Expected identical results")
	})

	t.Run("Invalid call ComputeUpstreamValues with unregistered species", func(t *testing.T) {
		bad := model.DefaultRunConfig()
		bad.WatershedID = "TEST"
		bad.Species = []string{"bt", "sk"}

		_, err := f.ComputeUpstreamValues(ctx, &bad)
		assert.ErrorIs(t, err, model.ErrMalformedInput, "Expected unregistered species to fail")
	})

	t.Run("Invalid call ComputeUpstreamValues with invalid run", func(t *testing.T) {
		_, err := f.ComputeUpstreamValues(ctx, &model.RunConfig{})
		assert.Error(t, err, "Expected invalid run to fail")
	})
}
