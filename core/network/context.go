package network

import (
	"fmt"

	"github.com/siherrmann/fishpass/model"
)

// RunContext is the immutable species context of one run.
type RunContext struct {
	Species []string
	index   map[string]int
}

// NewRunContext validates the species codes and fixes their order.
func NewRunContext(species []string) (*RunContext, error) {
	if err := model.ValidateSpeciesCodes(species); err != nil {
		return nil, fmt.Errorf("run context: %w", err)
	}

	codes := make([]string, len(species))
	copy(codes, species)

	index := make(map[string]int, len(codes))
	for i, code := range codes {
		index[code] = i
	}

	return &RunContext{Species: codes, index: index}, nil
}

// Index returns the position of a species code.
func (c *RunContext) Index(code string) (int, bool) {
	i, ok := c.index[code]
	return i, ok
}

// Len returns the number of species.
func (c *RunContext) Len() int { return len(c.Species) }
