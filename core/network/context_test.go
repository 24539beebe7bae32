package network

import (
	"testing"

	"github.com/siherrmann/fishpass/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunContext(t *testing.T) {
	t.Run("Valid call NewRunContext", func(t *testing.T) {
		codes := []string{"bt", "ch"}
		runCtx, err := NewRunContext(codes)
		require.NoError(t, err, "Expected NewRunContext to not return an error")
		assert.Equal(t, 2, runCtx.Len(), "Expected two species")

		codes[0] = "xx"
		assert.Equal(t, "bt", runCtx.Species[0], "Expected run context to own its species slice")

		i, ok := runCtx.Index("ch")
		assert.True(t, ok, "Expected ch to be known")
		assert.Equal(t, 1, i, "Expected ch at index 1")

		_, ok = runCtx.Index("co")
		assert.False(t, ok, "Expected co to be unknown")
	})

	t.Run("Invalid call NewRunContext with empty species", func(t *testing.T) {
		_, err := NewRunContext(nil)
		assert.ErrorIs(t, err, model.ErrMalformedInput, "Expected empty species to be malformed")
	})

	t.Run("Invalid call NewRunContext with duplicate species", func(t *testing.T) {
		_, err := NewRunContext([]string{"bt", "bt"})
		assert.ErrorIs(t, err, model.ErrMalformedInput, "Expected duplicate species to be malformed")
	})
}
