package brackets

import (
	"context"

	"github.com/Dosada05/competition-brackets/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket builds a winners bracket, a losers bracket fed by its
// losers and a grand final between the two bracket winners.
//
// For every winners round k < R the losers bracket gets a minor round, where
// its own survivors play each other, followed by a major round, where they
// meet the losers dropping from winners round k+1. Losers of winners round 1
// are paired among themselves in the first minor round.
func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	b, err := newBracket(params, models.BracketDoubleElimination)
	if err != nil {
		return nil, err
	}
	if len(b.EntrantIDs) == 1 {
		return b, nil
	}

	winners := buildWinnersRounds(b.EntrantIDs)
	losers := buildLosersRounds(winners)

	for _, round := range winners {
		b.Matches = append(b.Matches, round...)
	}
	for _, round := range losers {
		b.Matches = append(b.Matches, round...)
	}

	final := newMatch(models.SideGrandFinal, 1, 0, grandFinalUID(1))
	winnersFinal := winners[len(winners)-1][0]
	winnersFinal.WinnerNext = slotRef(final, 0)
	if len(losers) == 0 {
		// два участника: проигравший финал верхней сетки сразу идёт в гранд-финал
		winnersFinal.LoserNext = slotRef(final, 1)
	} else {
		losers[len(losers)-1][0].WinnerNext = slotRef(final, 1)
	}
	b.Matches = append(b.Matches, final)

	if b.Settings.BracketReset {
		// GF2 заполняется только если GF1 выиграл участник из нижней сетки
		b.Matches = append(b.Matches, newMatch(models.SideGrandFinal, 2, 0, grandFinalUID(2)))
	}

	return finish(b)
}

func buildLosersRounds(winners [][]*models.Match) [][]*models.Match {
	var losers [][]*models.Match
	round := 0

	for k := 1; k < len(winners); k++ {
		// minor
		round++
		var feeders []*models.Match
		if k == 1 {
			feeders = winners[0]
		} else {
			feeders = losers[len(losers)-1]
		}
		minor := make([]*models.Match, len(feeders)/2)
		for p := range minor {
			minor[p] = newMatch(models.SideLosers, round, p, losersUID(round, p))
		}
		for i, m := range feeders {
			ref := slotRef(minor[i/2], i%2)
			if k == 1 {
				m.LoserNext = ref
			} else {
				m.WinnerNext = ref
			}
		}
		losers = append(losers, minor)

		// major
		round++
		dropping := winners[k]
		major := make([]*models.Match, len(minor))
		for p := range major {
			major[p] = newMatch(models.SideLosers, round, p, losersUID(round, p))
		}
		swap := k%2 == 1
		for i, m := range dropping {
			m.LoserNext = slotRef(major[crossPosition(i, len(dropping), swap)], 0)
		}
		for i, m := range minor {
			m.WinnerNext = slotRef(major[i], 1)
		}
		losers = append(losers, major)
	}

	return losers
}

// crossPosition swaps the halves of a dropping round on every other major
// round so that rematches from the winners bracket are pushed back.
func crossPosition(i, n int, swap bool) int {
	if !swap || n < 2 {
		return i
	}
	return (i + n/2) % n
}
