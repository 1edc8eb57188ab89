package brackets

import (
	"context"

	"github.com/Dosada05/competition-brackets/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds a seeded knockout bracket padded with byes up to the
// next power of two. The winner of W{r}M{p} advances to W{r+1}M{ceil(p/2)}.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	b, err := newBracket(params, models.BracketSingleElimination)
	if err != nil {
		return nil, err
	}
	if len(b.EntrantIDs) == 1 {
		// один участник: сетка без матчей, он сразу на первом месте
		return b, nil
	}

	rounds := buildWinnersRounds(b.EntrantIDs)
	for _, round := range rounds {
		b.Matches = append(b.Matches, round...)
	}

	if b.Settings.ThirdPlace == models.ThirdPlacePlayoff && len(rounds) >= 2 {
		semis := rounds[len(rounds)-2]
		tp := newMatch(models.SideThirdPlace, len(rounds), 0, thirdPlaceUID)
		semis[0].LoserNext = slotRef(tp, 0)
		semis[1].LoserNext = slotRef(tp, 1)
		b.Matches = append(b.Matches, tp)
	}

	return finish(b)
}

// buildWinnersRounds lays out the main knockout tree. Slots of round 1 are
// filled from the seed order, later rounds stay TBD until results arrive.
func buildWinnersRounds(entrantIDs []int) [][]*models.Match {
	size := BracketSize(len(entrantIDs))
	total := numRounds(size)
	pairs := FirstRoundPairs(size)

	rounds := make([][]*models.Match, total)
	for r := 1; r <= total; r++ {
		count := size >> r
		round := make([]*models.Match, count)
		for p := 0; p < count; p++ {
			m := newMatch(models.SideWinners, r, p, winnersUID(r, p))
			if r == 1 {
				m.SlotA = seedSlot(entrantIDs, pairs[p][0])
				m.SlotB = seedSlot(entrantIDs, pairs[p][1])
			}
			if r < total {
				m.WinnerNext = &models.SlotRef{MatchUID: winnersUID(r+1, p/2), Slot: p % 2}
			}
			round[p] = m
		}
		rounds[r-1] = round
	}
	return rounds
}

func seedSlot(entrantIDs []int, seed int) models.Slot {
	if seed < len(entrantIDs) {
		return models.EntrantSlot(entrantIDs[seed])
	}
	return models.ByeSlot()
}
