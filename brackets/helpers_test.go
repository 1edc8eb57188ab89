package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-brackets/models"
)

func athletes(ids ...int) []models.Entrant {
	entrants := make([]models.Entrant, len(ids))
	for i, id := range ids {
		entrants[i] = models.Athlete(id, nil, nil)
	}
	return entrants
}

func seq(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func build(t *testing.T, bracketType models.BracketType, settings models.BracketSettings, ids ...int) *models.Bracket {
	t.Helper()
	b, err := Build(context.Background(), bracketType, GenerateBracketParams{
		CompetitionID: 1,
		Entrants:      athletes(ids...),
		Settings:      settings,
	})
	require.NoError(t, err)
	return b
}

func match(t *testing.T, b *models.Bracket, uid string) *models.Match {
	t.Helper()
	for _, m := range b.Matches {
		if m.UID == uid {
			return m
		}
	}
	t.Fatalf("match %s not found", uid)
	return nil
}

func win(t *testing.T, g *Graph, uid string, winner int) []*models.Match {
	t.Helper()
	changed, err := g.RecordResult(uid, Result{WinnerID: winner, Method: models.MethodKnockout})
	require.NoError(t, err)
	return changed
}

func entrantOf(s models.Slot) int {
	if !s.HasEntrant() {
		return 0
	}
	return *s.EntrantID
}

// playOut records results for scheduled matches until none are left and
// returns how many matches were played.
func playOut(t *testing.T, g *Graph, pick func(m *models.Match) int) int {
	t.Helper()
	played := 0
	for {
		var next *models.Match
		for _, m := range g.Bracket().Matches {
			if m.Status == models.StatusScheduled {
				next = m
				break
			}
		}
		if next == nil {
			return played
		}
		win(t, g, next.UID, pick(next))
		played++
	}
}

func slotAWins(m *models.Match) int { return *m.SlotA.EntrantID }

func slotBWins(m *models.Match) int { return *m.SlotB.EntrantID }

func positions(standings []Standing) map[int]int {
	out := make(map[int]int, len(standings))
	for _, st := range standings {
		out[st.EntrantID] = st.Position
	}
	return out
}

func countPosition(standings []Standing, position int) int {
	n := 0
	for _, st := range standings {
		if st.Position == position {
			n++
		}
	}
	return n
}

func intPtr(v int) *int { return &v }
