package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/fishpass/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamsNewStreamsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewStreamsDBHandler", func(t *testing.T) {
		streamsDbHandler, err := NewStreamsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewStreamsDBHandler to not return an error")
		require.NotNil(t, streamsDbHandler, "Expected NewStreamsDBHandler to return a non-nil instance")
	})

	t.Run("Invalid call NewStreamsDBHandler with nil database", func(t *testing.T) {
		_, err := NewStreamsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating StreamsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestStreamsSelectSegments(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()
	_, streamsDbHandler, _, _ := handlers(t, database)

	require.NoError(t, streamsDbHandler.AddSpeciesColumns(ctx, "bt"), "Expected AddSpeciesColumns to not return an error")
	require.NoError(t, streamsDbHandler.AddSpeciesColumns(ctx, "bt"), "Expected AddSpeciesColumns to be idempotent")

	barrierID := uuid.New()
	stream := &model.Stream{
		ID:            uuid.New(),
		StrahlerOrder: 2,
		Geometry:      lineHex(t, 0, 0, 30, 40),
		Species: map[string]*model.SegmentSpecies{
			"bt": {
				UpstreamBarrierCount: 1,
				DownstreamBarrierIDs: []uuid.UUID{barrierID},
				Accessibility:        model.AccessibilityPotential,
				SpawnHabitat:         true,
				Habitat:              true,
			},
		},
	}

	t.Run("Insert stream", func(t *testing.T) {
		err := streamsDbHandler.InsertStream(stream)
		assert.NoError(t, err, "Expected InsertStream to not return an error")
	})

	t.Run("Select segments", func(t *testing.T) {
		segments, err := streamsDbHandler.SelectSegments(ctx, []string{"bt"})
		require.NoError(t, err, "Expected SelectSegments to not return an error")
		require.Len(t, segments, 1, "Expected one segment")

		s := segments[0]
		assert.Equal(t, stream.ID, s.ID, "Expected stream id")
		assert.InDelta(t, 50.0, s.Length, 1e-9, "Expected length from geometry")
		assert.Equal(t, model.Coordinate{X: 0, Y: 0}, s.From, "Expected first coordinate")
		assert.Equal(t, model.Coordinate{X: 30, Y: 40}, s.To, "Expected last coordinate")
		assert.Equal(t, 2, s.StrahlerOrder, "Expected strahler order")
		require.Contains(t, s.Species, "bt", "Expected bt attributes")
		assert.Equal(t, stream.Species["bt"], s.Species["bt"], "Expected stored attributes")
	})

	t.Run("Select segments with NULL attributes", func(t *testing.T) {
		require.NoError(t, streamsDbHandler.AddSpeciesColumns(ctx, "ch"))

		_, err := streamsDbHandler.SelectSegments(ctx, []string{"bt", "ch"})
		assert.ErrorIs(t, err, model.ErrMalformedInput, "Expected NULL attributes to be malformed")
	})

	t.Run("Update species of unknown stream", func(t *testing.T) {
		err := streamsDbHandler.UpdateStreamSpecies(uuid.New(), "bt", &model.SegmentSpecies{Accessibility: model.AccessibilityNot})
		assert.Error(t, err, "Expected unknown stream to fail")
	})

	t.Run("Update species with invalid accessibility", func(t *testing.T) {
		err := streamsDbHandler.UpdateStreamSpecies(stream.ID, "bt", &model.SegmentSpecies{Accessibility: "SOMETIMES"})
		assert.Error(t, err, "Expected invalid accessibility to be rejected")
		assert.Contains(t, err.Error(), "unknown accessibility", "Expected accessibility in message")
	})

	t.Run("Select unset dci", func(t *testing.T) {
		dci, err := streamsDbHandler.SelectStreamDCI(stream.ID, "bt")
		require.NoError(t, err, "Expected SelectStreamDCI to not return an error")
		assert.Nil(t, dci, "Expected no dci before a run")
	})
}
