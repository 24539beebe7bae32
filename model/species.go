package model

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Species is a row of the species registry.
type Species struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

// speciesCodePattern restricts codes to what can be embedded in column names.
var speciesCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,15}$`)

// ValidateSpeciesCodes checks that codes is a non-empty ordered set of valid codes.
func ValidateSpeciesCodes(codes []string) error {
	if len(codes) == 0 {
		return fmt.Errorf("%w: at least one species code is required", ErrMalformedInput)
	}

	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if !speciesCodePattern.MatchString(code) {
			return fmt.Errorf("%w: invalid species code %q", ErrMalformedInput, code)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate species code %q", ErrMalformedInput, code)
		}
		seen[code] = true
	}
	return nil
}

// SpeciesCodes returns the codes of species in order.
func SpeciesCodes(species []*Species) []string {
	codes := make([]string, len(species))
	for i, s := range species {
		codes[i] = s.Code
	}
	return codes
}
