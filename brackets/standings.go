package brackets

import (
	"sort"

	"github.com/Dosada05/competition-brackets/models"
)

// Standing is a computed placement of one entrant in a bracket.
type Standing struct {
	EntrantID    int  `json:"entrant_id"`
	Position     int  `json:"position"`
	Points       *int `json:"points,omitempty"`
	GamesPlayed  int  `json:"games_played"`
	Wins         int  `json:"wins"`
	Losses       int  `json:"losses"`
	ScoreFor     int  `json:"score_for"`
	ScoreAgainst int  `json:"score_against"`
}

// ComputeStandings derives placements from the current match state.
// Elimination brackets may share a position between entrants that went out
// in the same round, entrants still in contention share position 1.
// Round robin positions are unique: wins, then points, then wins among the
// tied entrants, then the lower entrant id.
func ComputeStandings(b *models.Bracket) []Standing {
	table := tally(b)

	if b.Type == models.BracketRoundRobin {
		rankRoundRobin(b, table)
	} else {
		placeElimination(b, table)
	}

	standings := make([]Standing, 0, len(table))
	for _, st := range table {
		standings = append(standings, *st)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Position != standings[j].Position {
			return standings[i].Position < standings[j].Position
		}
		return standings[i].EntrantID < standings[j].EntrantID
	})
	return standings
}

func played(m *models.Match) bool {
	return m.Status == models.StatusCompleted && !m.IsBye() &&
		m.SlotA.HasEntrant() && m.SlotB.HasEntrant() && m.WinnerID != nil
}

func tally(b *models.Bracket) map[int]*Standing {
	table := make(map[int]*Standing, len(b.EntrantIDs))
	entry := func(id int) *Standing {
		st, ok := table[id]
		if !ok {
			st = &Standing{EntrantID: id, Position: 1}
			table[id] = st
		}
		return st
	}
	for _, id := range b.EntrantIDs {
		entry(id)
	}

	for _, m := range b.Matches {
		if !played(m) {
			continue
		}
		a, c := entry(*m.SlotA.EntrantID), entry(*m.SlotB.EntrantID)
		a.GamesPlayed++
		c.GamesPlayed++
		if *m.WinnerID == a.EntrantID {
			a.Wins++
			c.Losses++
		} else {
			c.Wins++
			a.Losses++
		}
		if m.ScoreA != nil && m.ScoreB != nil {
			a.ScoreFor += *m.ScoreA
			a.ScoreAgainst += *m.ScoreB
			c.ScoreFor += *m.ScoreB
			c.ScoreAgainst += *m.ScoreA
		}
	}
	return table
}

func placeElimination(b *models.Bracket, table map[int]*Standing) {
	winnersRounds := 0
	losersRounds := 0
	losersPerRound := make(map[int]int)
	byUID := make(map[string]*models.Match, len(b.Matches))
	for _, m := range b.Matches {
		byUID[m.UID] = m
		switch m.Side {
		case models.SideWinners:
			winnersRounds = max(winnersRounds, m.Round)
		case models.SideLosers:
			losersRounds = max(losersRounds, m.Round)
			losersPerRound[m.Round]++
		}
	}

	// позиция выбывшего в j-м раунде нижней сетки: 3 + число матчей в последующих раундах
	losersPosition := func(round int) int {
		pos := 3
		for r := round + 1; r <= losersRounds; r++ {
			pos += losersPerRound[r]
		}
		return pos
	}

	lossPosition := func(m *models.Match) int {
		switch m.Side {
		case models.SideWinners:
			if b.Type == models.BracketSingleElimination {
				return 1<<(winnersRounds-m.Round) + 1
			}
			if m.LoserNext != nil {
				if next := byUID[m.LoserNext.MatchUID]; next != nil && next.Side == models.SideLosers {
					return losersPosition(next.Round)
				}
			}
			return 2
		case models.SideLosers:
			return losersPosition(m.Round)
		case models.SideThirdPlace:
			return 4
		default:
			return 2
		}
	}

	place := func(id *int, position int) {
		if id == nil {
			return
		}
		if st, ok := table[*id]; ok {
			st.Position = position
		}
	}

	for _, m := range b.Matches {
		switch {
		case played(m):
			loser := m.LoserID()
			switch m.Side {
			case models.SideWinners:
				// в double elimination проигравший уходит в нижнюю сетку
				if b.Type == models.BracketSingleElimination {
					place(loser, lossPosition(m))
				}
			case models.SideLosers:
				place(loser, lossPosition(m))
			case models.SideThirdPlace:
				place(m.WinnerID, 3)
				place(loser, 4)
			case models.SideGrandFinal:
				if m.Round == 1 && !m.SlotA.Holds(*m.WinnerID) && byUID[grandFinalUID(2)] != nil {
					// будет GF2, оба ещё в борьбе
					continue
				}
				place(loser, 2)
			}
		case m.Status == models.StatusCancelled && !autoResolved(m):
			for _, slot := range []models.Slot{m.SlotA, m.SlotB} {
				if slot.HasEntrant() && table[*slot.EntrantID] != nil && table[*slot.EntrantID].Position == 1 {
					place(slot.EntrantID, lossPosition(m))
				}
			}
		}
	}
}

func rankRoundRobin(b *models.Bracket, table map[int]*Standing) {
	ids := make([]int, 0, len(table))
	for id, st := range table {
		points := st.ScoreFor
		st.Points = &points
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		a, c := table[ids[i]], table[ids[j]]
		if a.Wins != c.Wins {
			return a.Wins > c.Wins
		}
		if *a.Points != *c.Points {
			return *a.Points > *c.Points
		}
		return a.EntrantID < c.EntrantID
	})

	for i := 0; i < len(ids); {
		j := i + 1
		for j < len(ids) && table[ids[j]].Wins == table[ids[i]].Wins && *table[ids[j]].Points == *table[ids[i]].Points {
			j++
		}
		if j-i > 1 {
			group := ids[i:j]
			h2h := headToHead(b, group)
			sort.SliceStable(group, func(x, y int) bool {
				if h2h[group[x]] != h2h[group[y]] {
					return h2h[group[x]] > h2h[group[y]]
				}
				return group[x] < group[y]
			})
		}
		i = j
	}

	for i, id := range ids {
		table[id].Position = i + 1
	}
}

// headToHead counts wins of every group member in matches played inside the group.
func headToHead(b *models.Bracket, group []int) map[int]int {
	members := make(map[int]struct{}, len(group))
	for _, id := range group {
		members[id] = struct{}{}
	}
	wins := make(map[int]int, len(group))
	for _, m := range b.Matches {
		if !played(m) {
			continue
		}
		_, okA := members[*m.SlotA.EntrantID]
		_, okB := members[*m.SlotB.EntrantID]
		if okA && okB {
			wins[*m.WinnerID]++
		}
	}
	return wins
}
