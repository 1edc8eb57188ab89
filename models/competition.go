package models

import "time"

type CompetitionKind string

const (
	CompetitionIndividual CompetitionKind = "individual"
	CompetitionTeam       CompetitionKind = "team"
)

type BracketType string

const (
	BracketSingleElimination BracketType = "single_elimination"
	BracketDoubleElimination BracketType = "double_elimination"
	BracketRoundRobin        BracketType = "round_robin"
)

func (t BracketType) IsElimination() bool {
	return t == BracketSingleElimination || t == BracketDoubleElimination
}

type ThirdPlaceMode string

const (
	// ThirdPlaceShared - оба проигравших в полуфинале делят 3-е место.
	ThirdPlaceShared ThirdPlaceMode = "shared"
	// ThirdPlacePlayoff - отдельный матч за 3-е место.
	ThirdPlacePlayoff ThirdPlaceMode = "playoff"
)

// BracketSettings are the per-competition knobs that shape the generated bracket.
type BracketSettings struct {
	ThirdPlace       ThirdPlaceMode `json:"third_place" db:"third_place_mode"`
	BracketReset     bool           `json:"bracket_reset" db:"bracket_reset"`
	RoundRobinPasses int            `json:"round_robin_passes" db:"round_robin_passes"`
}

// Normalized fills defaults for zero values.
func (s BracketSettings) Normalized() BracketSettings {
	if s.ThirdPlace == "" {
		s.ThirdPlace = ThirdPlaceShared
	}
	if s.RoundRobinPasses < 1 || s.RoundRobinPasses > 2 {
		s.RoundRobinPasses = 1
	}
	return s
}

type Competition struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Kind        CompetitionKind `json:"kind" db:"kind"`
	BracketType BracketType     `json:"bracket_type" db:"bracket_type"`
	BracketSettings
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type WeightCategory struct {
	ID            int    `json:"id" db:"id"`
	CompetitionID int    `json:"competition_id" db:"competition_id"`
	Name          string `json:"name" db:"name"`
}
