package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-brackets/models"
)

func TestRoundRobinSchedule(t *testing.T) {
	testCases := []struct {
		n      int
		passes int
		rounds int
	}{
		{n: 2, passes: 1, rounds: 1},
		{n: 3, passes: 1, rounds: 3},
		{n: 4, passes: 1, rounds: 3},
		{n: 5, passes: 2, rounds: 10},
		{n: 8, passes: 2, rounds: 14},
	}

	for _, tc := range testCases {
		b := build(t, models.BracketRoundRobin, models.BracketSettings{RoundRobinPasses: tc.passes}, seq(tc.n)...)
		assert.Len(t, b.Matches, tc.passes*tc.n*(tc.n-1)/2, "n=%d", tc.n)

		pairs := make(map[[2]int]int)
		busy := make(map[[2]int]bool)
		maxRound := 0
		for _, m := range b.Matches {
			require.Equal(t, models.StatusScheduled, m.Status)
			a, c := entrantOf(m.SlotA), entrantOf(m.SlotB)
			assert.NotEqual(t, a, c)
			pairs[[2]int{min(a, c), max(a, c)}]++
			for _, id := range []int{a, c} {
				key := [2]int{m.Round, id}
				assert.False(t, busy[key], "entrant %d plays twice in round %d", id, m.Round)
				busy[key] = true
			}
			maxRound = max(maxRound, m.Round)
		}
		assert.Len(t, pairs, tc.n*(tc.n-1)/2)
		for pair, count := range pairs {
			assert.Equal(t, tc.passes, count, "pair %v", pair)
		}
		assert.Equal(t, tc.rounds, maxRound, "n=%d", tc.n)
	}
}

func TestRoundRobinThreeTeams(t *testing.T) {
	b, err := buildTeams(10, 20, 30)
	require.NoError(t, err)
	require.Len(t, b.Matches, 3)
	assert.Equal(t, models.EntrantTeam, b.EntrantKind)

	g := NewGraph(b, Options{})
	recordRoundRobin(t, g, b, 10, 20, 3, 1)
	recordRoundRobin(t, g, b, 20, 30, 2, 0)
	recordRoundRobin(t, g, b, 30, 10, 2, 1)

	standings := ComputeStandings(b)
	require.Len(t, standings, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{standings[0].EntrantID, standings[1].EntrantID, standings[2].EntrantID})
	assert.Equal(t, 4, *standings[0].Points)
	for _, st := range standings {
		assert.Equal(t, 1, st.Wins)
		assert.Equal(t, 2, st.GamesPlayed)
	}
}

func TestRoundRobinHeadToHead(t *testing.T) {
	b := build(t, models.BracketRoundRobin, models.BracketSettings{}, 1, 2, 3)
	g := NewGraph(b, Options{})

	recordRoundRobin(t, g, b, 2, 1, 2, 1)
	recordRoundRobin(t, g, b, 1, 3, 3, 0)
	recordRoundRobin(t, g, b, 3, 2, 3, 2)

	// 1 и 2: по одной победе и по 4 очка, личная встреча за 2
	standings := ComputeStandings(b)
	assert.Equal(t, map[int]int{2: 1, 1: 2, 3: 3}, positions(standings))
}

func TestRoundRobinPositionsAreUnique(t *testing.T) {
	b := build(t, models.BracketRoundRobin, models.BracketSettings{}, seq(6)...)
	g := NewGraph(b, Options{})
	playOut(t, g, slotBWins)

	standings := ComputeStandings(b)
	seen := make(map[int]bool)
	for i, st := range standings {
		assert.Equal(t, i+1, st.Position)
		assert.False(t, seen[st.Position])
		seen[st.Position] = true
	}
}

func buildTeams(ids ...int) (*models.Bracket, error) {
	entrants := make([]models.Entrant, len(ids))
	for i, id := range ids {
		entrants[i] = models.Team(id)
	}
	return NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{CompetitionID: 1, Entrants: entrants})
}

// recordRoundRobin finds the match between winner and loser and records a points result.
func recordRoundRobin(t *testing.T, g *Graph, b *models.Bracket, winner, loser, winnerScore, loserScore int) {
	t.Helper()
	for _, m := range b.Matches {
		a, c := entrantOf(m.SlotA), entrantOf(m.SlotB)
		if !(a == winner && c == loser) && !(a == loser && c == winner) {
			continue
		}
		scoreA, scoreB := winnerScore, loserScore
		if a == loser {
			scoreA, scoreB = loserScore, winnerScore
		}
		_, err := g.RecordResult(m.UID, Result{
			WinnerID: winner,
			ScoreA:   intPtr(scoreA),
			ScoreB:   intPtr(scoreB),
			Method:   models.MethodPoints,
		})
		require.NoError(t, err)
		return
	}
	t.Fatalf("no match between %d and %d", winner, loser)
}
