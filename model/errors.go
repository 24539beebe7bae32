package model

import "errors"

var (
	// ErrMalformedInput marks input rows that are inconsistent with the species context.
	ErrMalformedInput = errors.New("malformed input")
	// ErrCyclicGraph marks a segment network that cannot be ordered from headwaters to outlets.
	ErrCyclicGraph = errors.New("cyclic segment network")
	// ErrNotPropagated marks a read of accumulators before propagation finished.
	ErrNotPropagated = errors.New("network not propagated")
)
