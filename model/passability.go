package model

import "github.com/google/uuid"

// PassabilityKey identifies the score of one barrier for one species.
type PassabilityKey struct {
	BarrierID uuid.UUID
	Species   string
}

// BarrierPassability is one row of the passability lookup. A nil Score is a
// barrier without an assessment for the species.
type BarrierPassability struct {
	BarrierID uuid.UUID `json:"barrier_id"`
	Species   string    `json:"species"`
	Score     *float64  `json:"passability_status"`
}

// PassabilityTable maps barrier/species pairs to a score, nil for a stored null.
type PassabilityTable map[PassabilityKey]*float64

// NewPassabilityTable indexes rows by barrier and species.
func NewPassabilityTable(rows []*BarrierPassability) PassabilityTable {
	table := make(PassabilityTable, len(rows))
	for _, row := range rows {
		table[PassabilityKey{BarrierID: row.BarrierID, Species: row.Species}] = row.Score
	}
	return table
}

// Passability returns the score for the pair. ok is false when the pair is
// absent or its score is null.
func (t PassabilityTable) Passability(barrierID uuid.UUID, species string) (float64, bool) {
	score, found := t[PassabilityKey{BarrierID: barrierID, Species: species}]
	if !found || score == nil {
		return 0, false
	}
	return *score, true
}
