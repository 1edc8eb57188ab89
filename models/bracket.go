package models

import (
	"fmt"
	"slices"
	"time"
)

// GroupKey identifies the entrant group a bracket is built for:
// a weight category of an individual competition, or the whole team competition.
type GroupKey struct {
	CompetitionID    int
	WeightCategoryID *int
}

func (k GroupKey) String() string {
	if k.WeightCategoryID == nil {
		return fmt.Sprintf("competition:%d", k.CompetitionID)
	}
	return fmt.Sprintf("competition:%d:category:%d", k.CompetitionID, *k.WeightCategoryID)
}

// CategoryOrZero is used where a nullable category has to become a lock or storage key.
func (k GroupKey) CategoryOrZero() int {
	if k.WeightCategoryID == nil {
		return 0
	}
	return *k.WeightCategoryID
}

type Bracket struct {
	ID               int         `json:"id"`
	CompetitionID    int         `json:"competition_id"`
	Type             BracketType `json:"type"`
	WeightCategoryID *int        `json:"weight_category_id,omitempty"`
	EntrantKind      EntrantKind `json:"entrant_kind"`
	// EntrantIDs хранит порядок посева.
	EntrantIDs []int           `json:"entrants"`
	Settings   BracketSettings `json:"settings"`
	CreatedAt  time.Time       `json:"created_at"`

	Matches []*Match `json:"matches,omitempty"`
}

func (b *Bracket) GroupKey() GroupKey {
	return GroupKey{CompetitionID: b.CompetitionID, WeightCategoryID: b.WeightCategoryID}
}

// SameShape reports whether other would be built into an identical match graph.
func (b *Bracket) SameShape(other *Bracket) bool {
	return b.Type == other.Type &&
		b.EntrantKind == other.EntrantKind &&
		b.Settings.Normalized() == other.Settings.Normalized() &&
		slices.Equal(b.EntrantIDs, other.EntrantIDs)
}
