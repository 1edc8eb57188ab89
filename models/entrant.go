package models

type EntrantKind string

const (
	EntrantAthlete EntrantKind = "athlete"
	EntrantTeam    EntrantKind = "team"
)

// Entrant is either an athlete or a team. A bracket only ever holds one kind.
type Entrant struct {
	Kind             EntrantKind `json:"kind"`
	ID               int         `json:"id"`
	WeightCategoryID *int        `json:"weight_category_id,omitempty"`
	TeamID           *int        `json:"team_id,omitempty"`
}

func Athlete(id int, weightCategoryID, teamID *int) Entrant {
	return Entrant{Kind: EntrantAthlete, ID: id, WeightCategoryID: weightCategoryID, TeamID: teamID}
}

func Team(id int) Entrant {
	return Entrant{Kind: EntrantTeam, ID: id}
}

// EntrantIDs returns the ids in seeding order.
func EntrantIDs(entrants []Entrant) []int {
	ids := make([]int, len(entrants))
	for i, e := range entrants {
		ids[i] = e.ID
	}
	return ids
}
