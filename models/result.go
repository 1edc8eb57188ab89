package models

import "time"

// ResultRecord is the derived placement of one entrant in one bracket.
// Recomputed on every match change, never edited by hand.
type ResultRecord struct {
	ID            int         `json:"id" db:"id"`
	CompetitionID int         `json:"competition_id" db:"competition_id"`
	BracketID     int         `json:"bracket_id" db:"bracket_id"`
	EntrantKind   EntrantKind `json:"entrant_kind" db:"entrant_kind"`
	EntrantID     int         `json:"entrant_id" db:"entrant_id"`
	Position      int         `json:"position" db:"position"`
	Points        *int        `json:"points,omitempty" db:"points"` // только для круговой системы
	GamesPlayed   int         `json:"games_played" db:"games_played"`
	Wins          int         `json:"wins" db:"wins"`
	Losses        int         `json:"losses" db:"losses"`
	ScoreFor      int         `json:"score_for" db:"score_for"`
	ScoreAgainst  int         `json:"score_against" db:"score_against"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}
