package model

import "fmt"

// RunConfig describes one watershed run.
type RunConfig struct {
	WatershedID string   `json:"watershed_id"`
	Name        string   `json:"name"`
	Species     []string `json:"species"`

	// UnitDivisor converts working-unit lengths for barrier records (1000 for m to km).
	UnitDivisor float64 `json:"unit_divisor"`
}

// DefaultRunConfig returns a configuration without watershed or species.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		UnitDivisor: 1000,
	}
}

// Validate checks the configuration before a run.
func (c *RunConfig) Validate() error {
	if c.WatershedID == "" {
		return fmt.Errorf("watershed id is required")
	}
	if err := ValidateSpeciesCodes(c.Species); err != nil {
		return err
	}
	if c.UnitDivisor <= 0 {
		return fmt.Errorf("unit divisor must be positive, got %v", c.UnitDivisor)
	}
	return nil
}
