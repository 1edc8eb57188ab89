package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-brackets/models"
)

func TestValidateGraph(t *testing.T) {
	ref := func(uid string, slot int) *models.SlotRef {
		return &models.SlotRef{MatchUID: uid, Slot: slot}
	}

	testCases := []struct {
		name    string
		matches []*models.Match
	}{
		{
			name: "cycle",
			matches: []*models.Match{
				{UID: "W1M1", Side: models.SideWinners, WinnerNext: ref("W2M1", 0)},
				{UID: "W2M1", Side: models.SideWinners, WinnerNext: ref("W1M1", 0)},
			},
		},
		{
			name: "slot fed twice",
			matches: []*models.Match{
				{UID: "W1M1", Side: models.SideWinners, WinnerNext: ref("W2M1", 0)},
				{UID: "W1M2", Side: models.SideWinners, WinnerNext: ref("W2M1", 0)},
				{UID: "W2M1", Side: models.SideWinners},
			},
		},
		{
			name: "unknown target",
			matches: []*models.Match{
				{UID: "W1M1", Side: models.SideWinners, WinnerNext: ref("W5M1", 0)},
				{UID: "W2M1", Side: models.SideWinners},
			},
		},
		{
			name: "two finals",
			matches: []*models.Match{
				{UID: "W1M1", Side: models.SideWinners},
				{UID: "W1M2", Side: models.SideWinners},
			},
		},
		{
			name: "duplicate uid",
			matches: []*models.Match{
				{UID: "W1M1", Side: models.SideWinners},
				{UID: "W1M1", Side: models.SideWinners},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := &models.Bracket{Type: models.BracketSingleElimination, Matches: tc.matches}
			assert.ErrorIs(t, ValidateGraph(b), ErrInvalidGraph)
		})
	}
}

func TestPlayOrder(t *testing.T) {
	b := build(t, models.BracketDoubleElimination, models.BracketSettings{}, seq(8)...)
	order, err := PlayOrder(b)
	require.NoError(t, err)
	require.Len(t, order, len(b.Matches))

	index := make(map[string]int, len(order))
	for i, uid := range order {
		index[uid] = i
	}
	for _, m := range b.Matches {
		for _, next := range []*models.SlotRef{m.WinnerNext, m.LoserNext} {
			if next != nil {
				assert.Less(t, index[m.UID], index[next.MatchUID], "%s before %s", m.UID, next.MatchUID)
			}
		}
	}
	assert.Equal(t, "GF1", order[len(order)-1])
}
