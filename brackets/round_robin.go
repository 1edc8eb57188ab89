package brackets

import (
	"context"

	"github.com/Dosada05/competition-brackets/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules every pair of entrants once per pass using the
// circle method, so nobody plays twice in the same round. With an odd number
// of entrants a phantom seat is added and its pairings are skipped.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	b, err := newBracket(params, models.BracketRoundRobin)
	if err != nil {
		return nil, err
	}
	if len(b.EntrantIDs) == 1 {
		return b, nil
	}

	seats := make([]*int, 0, len(b.EntrantIDs)+1)
	for i := range b.EntrantIDs {
		seats = append(seats, &b.EntrantIDs[i])
	}
	if len(seats)%2 == 1 {
		seats = append(seats, nil)
	}

	n := len(seats)
	roundsPerPass := n - 1
	for pass := 0; pass < b.Settings.RoundRobinPasses; pass++ {
		for r := 0; r < roundsPerPass; r++ {
			round := pass*roundsPerPass + r + 1
			position := 0
			for i := 0; i < n/2; i++ {
				a := seats[circleIndex(i, r, n)]
				c := seats[circleIndex(n-1-i, r, n)]
				if a == nil || c == nil {
					continue
				}
				if pass%2 == 1 {
					// во втором круге стороны меняются местами
					a, c = c, a
				}
				m := newMatch(models.SideRoundRobin, round, position, roundRobinUID(round, position))
				m.SlotA = models.EntrantSlot(*a)
				m.SlotB = models.EntrantSlot(*c)
				b.Matches = append(b.Matches, m)
				position++
			}
		}
	}

	return finish(b)
}

// circleIndex keeps seat 0 fixed and rotates the others by one per round.
func circleIndex(seat, round, n int) int {
	if seat == 0 {
		return 0
	}
	return (seat-1+round)%(n-1) + 1
}
