package brackets

import (
	"fmt"

	"github.com/Dosada05/competition-brackets/models"
)

// CancelPolicy decides what the downstream slots of a cancelled match receive.
type CancelPolicy string

const (
	// CancelLeavesTBD оставляет слоты следующих матчей незаполненными.
	CancelLeavesTBD CancelPolicy = "tbd"
	// CancelWalkover отдаёт сопернику в следующем матче техническую победу.
	CancelWalkover CancelPolicy = "walkover"
)

func (p CancelPolicy) IsValid() bool {
	return p == CancelLeavesTBD || p == CancelWalkover
}

type Options struct {
	CancelPolicy CancelPolicy
}

// Result is a reported outcome of a match.
type Result struct {
	WinnerID   int
	ScoreA     *int
	ScoreB     *int
	Method     models.ResultMethod
	Correction bool
}

// Graph drives match state transitions of one bracket and propagates
// winners and losers along the advancement edges. It mutates the matches of
// the bracket in place. Every mutating call is all-or-nothing: on error the
// matches are restored to the state they had before the call.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	bracket *models.Bracket
	byUID   map[string]*models.Match
	opts    Options
	touched map[string]struct{}
}

func NewGraph(b *models.Bracket, opts Options) *Graph {
	if !opts.CancelPolicy.IsValid() {
		opts.CancelPolicy = CancelLeavesTBD
	}
	byUID := make(map[string]*models.Match, len(b.Matches))
	for _, m := range b.Matches {
		byUID[m.UID] = m
	}
	return &Graph{bracket: b, byUID: byUID, opts: opts}
}

func (g *Graph) Bracket() *models.Bracket {
	return g.bracket
}

func (g *Graph) Match(uid string) (*models.Match, error) {
	m, ok := g.byUID[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, uid)
	}
	return m, nil
}

func (g *Graph) MatchByID(id int) (*models.Match, error) {
	for _, m := range g.bracket.Matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrMatchNotFound, id)
}

// Settle resolves every pending match whose slots are already known:
// a match with one BYE is won by the other entrant, a match with two BYEs
// is cancelled and forwards BYE on both edges.
func (g *Graph) Settle() ([]*models.Match, error) {
	return g.mutate(func() error {
		for _, m := range g.bracket.Matches {
			if err := g.settle(m); err != nil {
				return err
			}
		}
		return nil
	})
}

// Start moves a scheduled match to in_progress.
func (g *Graph) Start(uid string) ([]*models.Match, error) {
	m, err := g.Match(uid)
	if err != nil {
		return nil, err
	}
	switch m.Status {
	case models.StatusPending:
		return nil, fmt.Errorf("%w: %s", ErrSlotsNotResolved, uid)
	case models.StatusInProgress:
		return nil, fmt.Errorf("%w: %s is already in progress", ErrInvalidTransition, uid)
	case models.StatusCompleted, models.StatusCancelled:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTerminal, uid)
	}
	return g.mutate(func() error {
		m.Status = models.StatusInProgress
		g.touch(m)
		return nil
	})
}

// RecordResult completes a match and advances its winner and loser.
// A completed match can be re-recorded only as a correction and only while
// none of the matches it fed has been started or decided.
func (g *Graph) RecordResult(uid string, res Result) ([]*models.Match, error) {
	m, err := g.Match(uid)
	if err != nil {
		return nil, err
	}

	switch m.Status {
	case models.StatusCancelled:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTerminal, uid)
	case models.StatusCompleted:
		if !res.Correction || m.IsBye() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyTerminal, uid)
		}
	case models.StatusPending:
		return nil, fmt.Errorf("%w: %s", ErrSlotsNotResolved, uid)
	}
	if !m.SlotA.HasEntrant() || !m.SlotB.HasEntrant() {
		return nil, fmt.Errorf("%w: %s", ErrSlotsNotResolved, uid)
	}
	if !m.SlotA.Holds(res.WinnerID) && !m.SlotB.Holds(res.WinnerID) {
		return nil, fmt.Errorf("%w: entrant %d in %s", ErrInvalidWinner, res.WinnerID, uid)
	}
	if err := validateScore(m, res); err != nil {
		return nil, err
	}

	return g.mutate(func() error {
		if m.Status == models.StatusCompleted {
			if err := g.retract(m); err != nil {
				return err
			}
		}
		winner := res.WinnerID
		m.Status = models.StatusCompleted
		m.WinnerID = &winner
		m.Method = res.Method
		m.ScoreA = copyInt(res.ScoreA)
		m.ScoreB = copyInt(res.ScoreB)
		g.touch(m)
		return g.advance(m)
	})
}

// Cancel terminates a match without a winner. Depending on the policy the
// downstream slots either stay TBD or receive a BYE.
func (g *Graph) Cancel(uid string) ([]*models.Match, error) {
	m, err := g.Match(uid)
	if err != nil {
		return nil, err
	}
	if m.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTerminal, uid)
	}
	return g.mutate(func() error {
		m.Status = models.StatusCancelled
		m.WinnerID = nil
		m.Method = ""
		g.touch(m)

		if g.opts.CancelPolicy == CancelWalkover {
			if err := g.forward(m.WinnerNext, models.ByeSlot()); err != nil {
				return err
			}
			if err := g.forward(m.LoserNext, models.ByeSlot()); err != nil {
				return err
			}
		}
		if reset := g.resetFor(m); reset != nil && !reset.Status.IsTerminal() {
			reset.Status = models.StatusCancelled
			g.touch(reset)
		}
		return nil
	})
}

func validateScore(m *models.Match, res Result) error {
	if !res.Method.IsValid() {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidScore, res.Method)
	}
	if (res.ScoreA == nil) != (res.ScoreB == nil) {
		return fmt.Errorf("%w: both scores must be given or neither", ErrInvalidScore)
	}
	if res.ScoreA == nil {
		if res.Method.RequiresScore() {
			return fmt.Errorf("%w: method %s requires a score", ErrInvalidScore, res.Method)
		}
		return nil
	}
	if *res.ScoreA < 0 || *res.ScoreB < 0 {
		return fmt.Errorf("%w: negative score", ErrInvalidScore)
	}
	if res.Method == models.MethodPoints {
		winnerScore, loserScore := *res.ScoreA, *res.ScoreB
		if m.SlotB.Holds(res.WinnerID) {
			winnerScore, loserScore = loserScore, winnerScore
		}
		if winnerScore <= loserScore {
			return fmt.Errorf("%w: winner on points must have the higher score", ErrInvalidScore)
		}
	}
	return nil
}

func (g *Graph) mutate(fn func() error) ([]*models.Match, error) {
	saved := make([]models.Match, len(g.bracket.Matches))
	for i, m := range g.bracket.Matches {
		saved[i] = *m
	}
	g.touched = make(map[string]struct{})
	defer func() { g.touched = nil }()

	if err := fn(); err != nil {
		for i, m := range g.bracket.Matches {
			*m = saved[i]
		}
		return nil, err
	}

	changed := make([]*models.Match, 0, len(g.touched))
	for _, m := range g.bracket.Matches {
		if _, ok := g.touched[m.UID]; ok {
			changed = append(changed, m)
		}
	}
	return changed, nil
}

func (g *Graph) touch(m *models.Match) {
	if g.touched != nil {
		g.touched[m.UID] = struct{}{}
	}
}

func (g *Graph) settle(m *models.Match) error {
	if m.Status != models.StatusPending || !m.SlotA.IsResolved() || !m.SlotB.IsResolved() {
		return nil
	}
	g.touch(m)

	switch {
	case m.SlotA.HasEntrant() && m.SlotB.HasEntrant():
		m.Status = models.StatusScheduled
		return nil
	case m.SlotA.IsBye() && m.SlotB.IsBye():
		m.Status = models.StatusCancelled
		if err := g.forward(m.WinnerNext, models.ByeSlot()); err != nil {
			return err
		}
		return g.forward(m.LoserNext, models.ByeSlot())
	default:
		winner := m.SlotA.EntrantID
		if !m.SlotA.HasEntrant() {
			winner = m.SlotB.EntrantID
		}
		id := *winner
		m.Status = models.StatusCompleted
		m.WinnerID = &id
		m.Method = models.MethodBye
		return g.advance(m)
	}
}

func (g *Graph) advance(m *models.Match) error {
	if err := g.forward(m.WinnerNext, models.EntrantSlot(*m.WinnerID)); err != nil {
		return err
	}
	loser := models.ByeSlot()
	if id := m.LoserID(); id != nil {
		loser = models.EntrantSlot(*id)
	}
	if err := g.forward(m.LoserNext, loser); err != nil {
		return err
	}
	return g.openReset(m)
}

func (g *Graph) forward(ref *models.SlotRef, slot models.Slot) error {
	if ref == nil {
		return nil
	}
	target, ok := g.byUID[ref.MatchUID]
	if !ok {
		return fmt.Errorf("%w: unknown match %s", ErrInvalidGraph, ref.MatchUID)
	}
	s := target.Slot(ref.Slot)
	if s.IsResolved() {
		return fmt.Errorf("%w: slot %d of %s", ErrSlotConflict, ref.Slot, target.UID)
	}
	*s = slot
	g.touch(target)
	return g.settle(target)
}

func (g *Graph) resetFor(m *models.Match) *models.Match {
	if m.Side != models.SideGrandFinal || m.Round != 1 {
		return nil
	}
	return g.byUID[grandFinalUID(2)]
}

// openReset fills GF2 when the losers bracket winner takes GF1,
// otherwise GF2 is not needed and gets cancelled.
func (g *Graph) openReset(m *models.Match) error {
	reset := g.resetFor(m)
	if reset == nil {
		return nil
	}
	g.touch(reset)
	if m.SlotA.Holds(*m.WinnerID) {
		reset.Status = models.StatusCancelled
		return nil
	}
	reset.SlotA = m.SlotA
	reset.SlotB = m.SlotB
	reset.Status = models.StatusPending
	return g.settle(reset)
}

func (g *Graph) downstream(m *models.Match) []*models.SlotRef {
	refs := make([]*models.SlotRef, 0, 2)
	if m.WinnerNext != nil {
		refs = append(refs, m.WinnerNext)
	}
	if m.LoserNext != nil {
		refs = append(refs, m.LoserNext)
	}
	return refs
}

// autoResolved reports whether the match was settled by byes, not played.
func autoResolved(m *models.Match) bool {
	switch m.Status {
	case models.StatusCompleted:
		return m.IsBye()
	case models.StatusCancelled:
		return m.SlotA.IsBye() && m.SlotB.IsBye()
	}
	return false
}

// decided reports whether the match, or a match reached from it only through
// bye resolutions, has been started or finished.
func (g *Graph) decided(m *models.Match) bool {
	if autoResolved(m) {
		for _, ref := range g.downstream(m) {
			if g.decided(g.byUID[ref.MatchUID]) {
				return true
			}
		}
		return false
	}
	return m.Status == models.StatusInProgress || m.Status.IsTerminal()
}

func (g *Graph) retract(m *models.Match) error {
	for _, ref := range g.downstream(m) {
		if target := g.byUID[ref.MatchUID]; g.decided(target) {
			return fmt.Errorf("%w: %s", ErrDownstreamAlreadyDecided, target.UID)
		}
	}
	if reset := g.resetFor(m); reset != nil {
		if reset.Status == models.StatusInProgress || reset.Status == models.StatusCompleted {
			return fmt.Errorf("%w: %s", ErrDownstreamAlreadyDecided, reset.UID)
		}
	}
	g.clearDownstream(m)
	return nil
}

func (g *Graph) clearDownstream(m *models.Match) {
	for _, ref := range g.downstream(m) {
		g.clearSlot(ref)
	}
	if reset := g.resetFor(m); reset != nil {
		reset.SlotA = models.TBDSlot()
		reset.SlotB = models.TBDSlot()
		reset.Status = models.StatusPending
		reset.WinnerID = nil
		reset.Method = ""
		g.touch(reset)
	}
}

func (g *Graph) clearSlot(ref *models.SlotRef) {
	target := g.byUID[ref.MatchUID]
	if autoResolved(target) {
		g.clearDownstream(target)
		target.WinnerID = nil
		target.Method = ""
	}
	*target.Slot(ref.Slot) = models.TBDSlot()
	target.Status = models.StatusPending
	g.touch(target)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
