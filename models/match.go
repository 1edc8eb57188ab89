package models

import "time"

type MatchStatus string

const (
	// StatusPending - хотя бы один слот ещё не определён (TBD).
	StatusPending    MatchStatus = "pending"
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
	StatusCancelled  MatchStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed without a correction.
func (s MatchStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type ResultMethod string

const (
	MethodPoints           ResultMethod = "points"
	MethodDecision         ResultMethod = "decision"
	MethodKnockout         ResultMethod = "knockout"
	MethodWalkover         ResultMethod = "walkover"
	MethodDisqualification ResultMethod = "disqualification"
	// MethodBye is set by the engine only, callers cannot report it.
	MethodBye ResultMethod = "bye"
)

func (m ResultMethod) IsValid() bool {
	switch m {
	case MethodPoints, MethodDecision, MethodKnockout, MethodWalkover, MethodDisqualification:
		return true
	}
	return false
}

// RequiresScore reports whether both numeric scores must be present.
func (m ResultMethod) RequiresScore() bool {
	return m == MethodPoints || m == MethodDecision
}

type BracketSide string

const (
	SideWinners    BracketSide = "winners"
	SideLosers     BracketSide = "losers"
	SideThirdPlace BracketSide = "third_place"
	SideGrandFinal BracketSide = "grand_final"
	SideRoundRobin BracketSide = "round_robin"
)

type SlotKind string

const (
	SlotTBD     SlotKind = "tbd"
	SlotBye     SlotKind = "bye"
	SlotEntrant SlotKind = "entrant"
)

// Slot is one of the two places of a match: an entrant id, a BYE or TBD.
type Slot struct {
	Kind      SlotKind `json:"kind"`
	EntrantID *int     `json:"entrant_id,omitempty"`
}

func TBDSlot() Slot { return Slot{Kind: SlotTBD} }

func ByeSlot() Slot { return Slot{Kind: SlotBye} }

func EntrantSlot(id int) Slot {
	return Slot{Kind: SlotEntrant, EntrantID: &id}
}

func (s Slot) IsResolved() bool { return s.Kind != SlotTBD }

func (s Slot) IsBye() bool { return s.Kind == SlotBye }

func (s Slot) HasEntrant() bool { return s.Kind == SlotEntrant && s.EntrantID != nil }

// Holds reports whether the slot is occupied by the given entrant.
func (s Slot) Holds(entrantID int) bool {
	return s.HasEntrant() && *s.EntrantID == entrantID
}

// SlotRef points at one slot (0 = A, 1 = B) of another match in the same bracket.
type SlotRef struct {
	MatchUID string `json:"match_uid"`
	Slot     int    `json:"slot"`
}

type Match struct {
	ID            int          `json:"id"`
	BracketID     int          `json:"bracket_id"`
	UID           string       `json:"uid"`
	Side          BracketSide  `json:"side"`
	Round         int          `json:"round"`
	Position      int          `json:"position"`
	SlotA         Slot         `json:"slot_a"`
	SlotB         Slot         `json:"slot_b"`
	Status        MatchStatus  `json:"status"`
	WinnerID      *int         `json:"winner_id,omitempty"`
	Method        ResultMethod `json:"method,omitempty"`
	ScoreA        *int         `json:"score_a,omitempty"`
	ScoreB        *int         `json:"score_b,omitempty"`
	ScheduledTime *time.Time   `json:"scheduled_time,omitempty"`
	WinnerNext    *SlotRef     `json:"winner_next,omitempty"`
	LoserNext     *SlotRef     `json:"loser_next,omitempty"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Slot returns a pointer to slot 0 (A) or 1 (B).
func (m *Match) Slot(i int) *Slot {
	if i == 0 {
		return &m.SlotA
	}
	return &m.SlotB
}

// LoserID returns the entrant that lost a completed match, if any.
func (m *Match) LoserID() *int {
	if m.Status != StatusCompleted || m.WinnerID == nil {
		return nil
	}
	if m.SlotA.HasEntrant() && *m.SlotA.EntrantID != *m.WinnerID {
		return m.SlotA.EntrantID
	}
	if m.SlotB.HasEntrant() && *m.SlotB.EntrantID != *m.WinnerID {
		return m.SlotB.EntrantID
	}
	return nil
}

// IsBye reports whether the match was resolved without play.
func (m *Match) IsBye() bool {
	return m.Method == MethodBye
}
