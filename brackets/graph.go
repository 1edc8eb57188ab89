package brackets

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/Dosada05/competition-brackets/models"
)

func matchHash(m *models.Match) string { return m.UID }

// AdvancementGraph returns the directed graph of winner/loser edges of the bracket.
// Edges point from a match to the match its entrant advances into.
func AdvancementGraph(b *models.Bracket) (graph.Graph[string, *models.Match], error) {
	g := graph.New(matchHash, graph.Directed(), graph.PreventCycles())

	for _, m := range b.Matches {
		if err := g.AddVertex(m); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("%w: duplicate match uid %s", ErrInvalidGraph, m.UID)
			}
			return nil, err
		}
	}

	fed := make(map[models.SlotRef]string)
	for _, m := range b.Matches {
		for _, ref := range []*models.SlotRef{m.WinnerNext, m.LoserNext} {
			if ref == nil {
				continue
			}
			if ref.Slot != 0 && ref.Slot != 1 {
				return nil, fmt.Errorf("%w: %s points at slot %d", ErrInvalidGraph, m.UID, ref.Slot)
			}
			if other, ok := fed[*ref]; ok {
				return nil, fmt.Errorf("%w: slot %d of %s is fed by both %s and %s", ErrInvalidGraph, ref.Slot, ref.MatchUID, other, m.UID)
			}
			fed[*ref] = m.UID

			err := g.AddEdge(m.UID, ref.MatchUID)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
				// в финале верхней сетки из двух участников оба ребра ведут в GF1
			case errors.Is(err, graph.ErrVertexNotFound):
				return nil, fmt.Errorf("%w: %s advances into unknown match %s", ErrInvalidGraph, m.UID, ref.MatchUID)
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				return nil, fmt.Errorf("%w: edge %s -> %s creates a cycle", ErrInvalidGraph, m.UID, ref.MatchUID)
			default:
				return nil, err
			}
		}
	}

	return g, nil
}

// ValidateGraph checks the structural rules every generated bracket must hold:
// the advancement graph is acyclic, every slot is fed at most once and every
// non-final elimination match has a downstream match for its winner.
func ValidateGraph(b *models.Bracket) error {
	if _, err := AdvancementGraph(b); err != nil {
		return err
	}
	if !b.Type.IsElimination() {
		return nil
	}

	var sinks []string
	for _, m := range b.Matches {
		if (m.Side == models.SideWinners || m.Side == models.SideLosers) && m.WinnerNext == nil {
			sinks = append(sinks, m.UID)
		}
	}

	expected := 0
	if b.Type == models.BracketSingleElimination && len(b.Matches) > 0 {
		expected = 1
	}
	if len(sinks) != expected {
		return fmt.Errorf("%w: expected %d final match(es), found %v", ErrInvalidGraph, expected, sinks)
	}
	return nil
}

// PlayOrder returns match uids in an order where every match comes after
// the matches that feed it.
func PlayOrder(b *models.Bracket) ([]string, error) {
	g, err := AdvancementGraph(b)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(b.Matches))
	for i, m := range b.Matches {
		index[m.UID] = i
	}
	return graph.StableTopologicalSort(g, func(x, y string) bool {
		return index[x] < index[y]
	})
}
