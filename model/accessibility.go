package model

import (
	"database/sql/driver"
	"fmt"
)

// Accessibility is the per-species reachability state of a segment.
type Accessibility string

const (
	AccessibilityAccessible Accessibility = "ACCESSIBLE"
	AccessibilityPotential  Accessibility = "POTENTIAL"
	AccessibilityNot        Accessibility = "NOT"
)

// Valid reports whether a is one of the three known states.
func (a Accessibility) Valid() bool {
	switch a {
	case AccessibilityAccessible, AccessibilityPotential, AccessibilityNot:
		return true
	}
	return false
}

// Reachable reports whether the segment counts towards upstream accessible length.
func (a Accessibility) Reachable() bool {
	return a == AccessibilityAccessible || a == AccessibilityPotential
}

// ParseAccessibility converts a stored value into an Accessibility.
func ParseAccessibility(s string) (Accessibility, error) {
	a := Accessibility(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: unknown accessibility %q", ErrMalformedInput, s)
	}
	return a, nil
}

// ClassifyAccessibility derives the state from the number of gradient barriers
// and of other barriers downstream of a segment.
func ClassifyAccessibility(gradientBarrierDownCount, barrierDownCount int) Accessibility {
	switch {
	case gradientBarrierDownCount == 0 && barrierDownCount == 0:
		return AccessibilityAccessible
	case gradientBarrierDownCount == 0 && barrierDownCount > 0:
		return AccessibilityPotential
	default:
		return AccessibilityNot
	}
}

// Value implements the driver.Valuer interface for database storage
func (a Accessibility) Value() (driver.Value, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: unknown accessibility %q", ErrMalformedInput, string(a))
	}
	return string(a), nil
}
