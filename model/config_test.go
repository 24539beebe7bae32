package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunConfigValidate(t *testing.T) {
	valid := func() RunConfig {
		c := DefaultRunConfig()
		c.WatershedID = "BULK"
		c.Species = []string{"bt", "ch"}
		return c
	}

	t.Run("Valid call Validate", func(t *testing.T) {
		c := valid()
		assert.NoError(t, c.Validate(), "Expected valid configuration")
		assert.Equal(t, 1000.0, c.UnitDivisor, "Expected default divisor")
	})

	t.Run("Invalid call Validate without watershed", func(t *testing.T) {
		c := valid()
		c.WatershedID = ""
		assert.Error(t, c.Validate(), "Expected missing watershed to fail")
	})

	t.Run("Invalid call Validate with bad species code", func(t *testing.T) {
		c := valid()
		c.Species = []string{"bt", "Bad-Code"}
		assert.ErrorIs(t, c.Validate(), ErrMalformedInput, "Expected invalid code to fail")
	})

	t.Run("Invalid call Validate with zero divisor", func(t *testing.T) {
		c := valid()
		c.UnitDivisor = 0
		assert.Error(t, c.Validate(), "Expected zero divisor to fail")
	})
}

func TestSpeciesCodes(t *testing.T) {
	t.Run("Valid call SpeciesCodes", func(t *testing.T) {
		codes := SpeciesCodes([]*Species{{Code: "ch"}, {Code: "bt"}})
		assert.Equal(t, []string{"ch", "bt"}, codes, "Expected codes in order")
	})
}
