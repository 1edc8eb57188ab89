package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-brackets/models"
)

func TestDoubleEliminationFourEntrants(t *testing.T) {
	b := build(t, models.BracketDoubleElimination, models.BracketSettings{}, 1, 2, 3, 4)
	require.Equal(t, []string{"W1M1", "W1M2", "W2M1", "L1M1", "L2M1", "GF1"}, uids(b.Matches))

	g := NewGraph(b, Options{})
	win(t, g, "W1M1", 1)
	win(t, g, "W1M2", 2)

	l1 := match(t, b, "L1M1")
	assert.Equal(t, models.StatusScheduled, l1.Status)
	assert.Equal(t, 4, entrantOf(l1.SlotA))
	assert.Equal(t, 3, entrantOf(l1.SlotB))

	win(t, g, "L1M1", 3)
	win(t, g, "W2M1", 1)

	l2 := match(t, b, "L2M1")
	assert.Equal(t, 2, entrantOf(l2.SlotA), "winners bracket loser drops into slot A")
	assert.Equal(t, 3, entrantOf(l2.SlotB))

	win(t, g, "L2M1", 2)

	gf := match(t, b, "GF1")
	assert.Equal(t, 1, entrantOf(gf.SlotA))
	assert.Equal(t, 2, entrantOf(gf.SlotB))

	win(t, g, "GF1", 1)
	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 3, 4: 4}, positions(ComputeStandings(b)))
}

func TestDoubleEliminationTwoEntrants(t *testing.T) {
	b := build(t, models.BracketDoubleElimination, models.BracketSettings{}, 7, 9)
	require.Equal(t, []string{"W1M1", "GF1"}, uids(b.Matches))

	g := NewGraph(b, Options{})
	win(t, g, "W1M1", 9)

	gf := match(t, b, "GF1")
	assert.Equal(t, models.StatusScheduled, gf.Status)
	assert.Equal(t, 9, entrantOf(gf.SlotA))
	assert.Equal(t, 7, entrantOf(gf.SlotB))
}

func TestDoubleEliminationBracketReset(t *testing.T) {
	settings := models.BracketSettings{BracketReset: true}

	t.Run("winners champion takes the first final", func(t *testing.T) {
		b := build(t, models.BracketDoubleElimination, settings, 1, 2, 3, 4)
		g := NewGraph(b, Options{})
		playOut(t, g, slotAWins)

		assert.Equal(t, models.StatusCancelled, match(t, b, "GF2").Status)
		assert.Equal(t, 1, positions(ComputeStandings(b))[1])
	})

	t.Run("losers champion forces a reset", func(t *testing.T) {
		b := build(t, models.BracketDoubleElimination, settings, 1, 2, 3, 4)
		g := NewGraph(b, Options{})
		win(t, g, "W1M1", 1)
		win(t, g, "W1M2", 2)
		win(t, g, "L1M1", 3)
		win(t, g, "W2M1", 1)
		win(t, g, "L2M1", 2)
		win(t, g, "GF1", 2)

		reset := match(t, b, "GF2")
		assert.Equal(t, models.StatusScheduled, reset.Status)
		assert.Equal(t, 1, entrantOf(reset.SlotA))
		assert.Equal(t, 2, entrantOf(reset.SlotB))

		pos := positions(ComputeStandings(b))
		assert.Equal(t, 1, pos[1])
		assert.Equal(t, 1, pos[2], "both finalists stay in contention until the reset is played")

		win(t, g, "GF2", 2)
		assert.Equal(t, map[int]int{2: 1, 1: 2, 3: 3, 4: 4}, positions(ComputeStandings(b)))
	})

	t.Run("correcting the first final reopens the reset", func(t *testing.T) {
		b := build(t, models.BracketDoubleElimination, settings, 1, 2)
		g := NewGraph(b, Options{})
		win(t, g, "W1M1", 1)
		win(t, g, "GF1", 1)
		require.Equal(t, models.StatusCancelled, match(t, b, "GF2").Status)

		_, err := g.RecordResult("GF1", Result{WinnerID: 2, Method: models.MethodKnockout, Correction: true})
		require.NoError(t, err)
		assert.Equal(t, models.StatusScheduled, match(t, b, "GF2").Status)
	})
}

func TestDoubleEliminationStructure(t *testing.T) {
	for n := 2; n <= 17; n++ {
		b := build(t, models.BracketDoubleElimination, models.BracketSettings{}, seq(n)...)

		size := BracketSize(n)
		rounds := numRounds(size)
		losersRounds := 0
		for _, m := range b.Matches {
			if m.Side == models.SideLosers {
				losersRounds = max(losersRounds, m.Round)
			}
		}
		assert.Equal(t, 2*(rounds-1), losersRounds, "n=%d", n)
		assert.Len(t, b.Matches, 2*size-2, "n=%d", n)

		g := NewGraph(b, Options{})
		played := playOut(t, g, slotAWins)
		assert.Equal(t, 2*n-2, played, "n=%d", n)

		standings := ComputeStandings(b)
		assert.Equal(t, 1, countPosition(standings, 1), "n=%d", n)
		assert.Equal(t, 1, countPosition(standings, 2), "n=%d", n)
	}
}

func TestDoubleEliminationDoubleBye(t *testing.T) {
	b := build(t, models.BracketDoubleElimination, models.BracketSettings{}, 1, 2, 3, 4, 5)

	// 2-BYE и 3-BYE: оба проигравших - BYE, матч нижней сетки отменяется
	l1m2 := match(t, b, "L1M2")
	assert.Equal(t, models.StatusCancelled, l1m2.Status)
	assert.True(t, l1m2.SlotA.IsBye())
	assert.True(t, l1m2.SlotB.IsBye())

	l2m2 := match(t, b, "L2M2")
	assert.True(t, l2m2.SlotB.IsBye())
	assert.Equal(t, models.StatusPending, l2m2.Status)

	g := NewGraph(b, Options{})
	win(t, g, "W1M2", 4)
	win(t, g, "W2M1", 1)

	// проигравший W2M1 попадает во вторую половину раунда нижней сетки
	assert.Equal(t, models.StatusCompleted, l2m2.Status)
	assert.Equal(t, 4, *l2m2.WinnerID)
	assert.True(t, l2m2.IsBye())
}

func TestDoubleEliminationLosersCrossOver(t *testing.T) {
	b := build(t, models.BracketDoubleElimination, models.BracketSettings{}, seq(8)...)

	assert.Equal(t, &models.SlotRef{MatchUID: "L2M2", Slot: 0}, match(t, b, "W2M1").LoserNext)
	assert.Equal(t, &models.SlotRef{MatchUID: "L2M1", Slot: 0}, match(t, b, "W2M2").LoserNext)
	assert.Equal(t, &models.SlotRef{MatchUID: "L4M1", Slot: 0}, match(t, b, "W3M1").LoserNext)
	assert.Equal(t, &models.SlotRef{MatchUID: "L1M1", Slot: 1}, match(t, b, "W1M2").LoserNext)
	assert.Equal(t, &models.SlotRef{MatchUID: "GF1", Slot: 1}, match(t, b, "L4M1").WinnerNext)
}
