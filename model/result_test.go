package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultColumns(t *testing.T) {
	t.Run("Columns in output order", func(t *testing.T) {
		columns := ResultColumns([]string{"bt", "ch"})

		require.Len(t, columns, 1+2*10+6, "Expected id, per-species and aggregate columns")
		assert.Equal(t, "segment_id", columns[0], "Expected segment id first")
		assert.Equal(t, "upstream_accessible_length_bt", columns[1], "Expected first bt column")
		assert.Equal(t, "dci_bt", columns[8], "Expected dci in eighth species position")
		assert.Equal(t, "weighted_upstream_functional_habitat_bt", columns[10], "Expected last bt column")
		assert.Equal(t, "upstream_accessible_length_ch", columns[11], "Expected ch columns after bt")
		assert.Equal(t, "upstream_spawn_habitat_all", columns[21], "Expected aggregates after species")
		assert.Equal(t, "upstream_functional_habitat_all", columns[26], "Expected last aggregate column")
	})
}

func TestSegmentResultValues(t *testing.T) {
	t.Run("Values follow column order", func(t *testing.T) {
		id := uuid.New()
		r := &SegmentResult{
			SegmentID: id,
			Species: map[string]*SpeciesResult{
				"bt": {UpstreamAccessibleLength: 1, DCI: 8, WeightedUpstreamFunctionalHabitat: 10},
			},
			All: AggregateResult{UpstreamSpawnHabitat: 21, UpstreamFunctionalHabitat: 26},
		}

		codes := []string{"bt", "ch"}
		values := r.Values(codes)

		require.Len(t, values, len(ResultColumns(codes)), "Expected one value per column")
		assert.Equal(t, id, values[0], "Expected segment id first")
		assert.Equal(t, 1.0, values[1], "Expected accessible length")
		assert.Equal(t, 8.0, values[8], "Expected dci")
		assert.Equal(t, 10.0, values[10], "Expected weighted functional habitat")
		assert.Equal(t, 0.0, values[11], "Expected zero for missing species")
		assert.Equal(t, 21.0, values[21], "Expected aggregate spawn habitat")
		assert.Equal(t, 26.0, values[26], "Expected aggregate functional habitat")
	})
}
