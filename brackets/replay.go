package brackets

import (
	"github.com/Dosada05/competition-brackets/models"
)

type pairKey struct {
	side   models.BracketSide
	lo, hi int
}

func pairOf(m *models.Match) (pairKey, bool) {
	if !m.SlotA.HasEntrant() || !m.SlotB.HasEntrant() {
		return pairKey{}, false
	}
	a, b := *m.SlotA.EntrantID, *m.SlotB.EntrantID
	return pairKey{side: m.Side, lo: min(a, b), hi: max(a, b)}, true
}

// ReplayResults copies played results of old into candidate wherever the
// candidate produces a match between the same two entrants on the same side.
// Matches are visited in play order, so a replayed result may open the next
// match for replay. A pair that met several times (second round robin pass,
// grand final reset) is replayed meeting by meeting in the same order.
// Results that no longer fit are dropped. It returns the number of results
// carried over.
func ReplayResults(old, candidate *models.Bracket, opts Options) (int, error) {
	oldOrder, err := PlayOrder(old)
	if err != nil {
		return 0, err
	}
	oldByUID := make(map[string]*models.Match, len(old.Matches))
	for _, m := range old.Matches {
		oldByUID[m.UID] = m
	}

	previous := make(map[pairKey][]*models.Match)
	for _, uid := range oldOrder {
		m := oldByUID[uid]
		if !played(m) {
			continue
		}
		if key, ok := pairOf(m); ok {
			previous[key] = append(previous[key], m)
		}
	}
	if len(previous) == 0 {
		return 0, nil
	}

	order, err := PlayOrder(candidate)
	if err != nil {
		return 0, err
	}

	g := NewGraph(candidate, opts)
	replayed := 0
	for _, uid := range order {
		m := g.byUID[uid]
		if m.Status != models.StatusScheduled {
			continue
		}
		key, ok := pairOf(m)
		if !ok {
			continue
		}
		queue := previous[key]
		if len(queue) == 0 {
			continue
		}
		prev := queue[0]

		res := Result{
			WinnerID: *prev.WinnerID,
			ScoreA:   copyInt(prev.ScoreA),
			ScoreB:   copyInt(prev.ScoreB),
			Method:   prev.Method,
		}
		// слоты могли поменяться местами после пересева
		if *prev.SlotA.EntrantID != *m.SlotA.EntrantID {
			res.ScoreA, res.ScoreB = res.ScoreB, res.ScoreA
		}
		if _, err := g.RecordResult(uid, res); err != nil {
			continue
		}
		previous[key] = queue[1:]
		replayed++
	}
	return replayed, nil
}
