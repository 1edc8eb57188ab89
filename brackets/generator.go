package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/competition-brackets/models"
)

type GenerateBracketParams struct {
	CompetitionID    int
	WeightCategoryID *int
	// Entrants в порядке посева: первый - сильнейший.
	Entrants []models.Entrant
	Settings models.BracketSettings
}

// BracketGenerator builds a bracket and its full match set for one entrant group.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error)

	GetName() string
}

func NewGenerator(bracketType models.BracketType) (BracketGenerator, error) {
	switch bracketType {
	case models.BracketSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.BracketDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.BracketRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBracketType, bracketType)
	}
}

// Build is a shortcut for NewGenerator + GenerateBracket.
func Build(ctx context.Context, bracketType models.BracketType, params GenerateBracketParams) (*models.Bracket, error) {
	generator, err := NewGenerator(bracketType)
	if err != nil {
		return nil, err
	}
	b, err := generator.GenerateBracket(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", generator.GetName(), err)
	}
	return b, nil
}

func newBracket(params GenerateBracketParams, bracketType models.BracketType) (*models.Bracket, error) {
	if len(params.Entrants) == 0 {
		return nil, ErrInsufficientEntrants
	}

	kind := params.Entrants[0].Kind
	seen := make(map[int]struct{}, len(params.Entrants))
	for _, e := range params.Entrants {
		if e.Kind != kind {
			return nil, ErrMixedEntrants
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s %d", ErrDuplicateEntrant, e.Kind, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	return &models.Bracket{
		CompetitionID:    params.CompetitionID,
		Type:             bracketType,
		WeightCategoryID: params.WeightCategoryID,
		EntrantKind:      kind,
		EntrantIDs:       models.EntrantIDs(params.Entrants),
		Settings:         params.Settings.Normalized(),
		Matches:          []*models.Match{},
	}, nil
}

func newMatch(side models.BracketSide, round, position int, uid string) *models.Match {
	return &models.Match{
		UID:      uid,
		Side:     side,
		Round:    round,
		Position: position,
		SlotA:    models.TBDSlot(),
		SlotB:    models.TBDSlot(),
		Status:   models.StatusPending,
	}
}

func winnersUID(round, position int) string { return fmt.Sprintf("W%dM%d", round, position+1) }

func losersUID(round, position int) string { return fmt.Sprintf("L%dM%d", round, position+1) }

func grandFinalUID(round int) string { return fmt.Sprintf("GF%d", round) }

func roundRobinUID(round, position int) string { return fmt.Sprintf("RR%dM%d", round, position+1) }

const thirdPlaceUID = "TP1"

func slotRef(m *models.Match, slot int) *models.SlotRef {
	return &models.SlotRef{MatchUID: m.UID, Slot: slot}
}

// finish validates the graph and resolves byes so a freshly built bracket
// is in the same state as if every bye had been played out.
func finish(b *models.Bracket) (*models.Bracket, error) {
	if err := ValidateGraph(b); err != nil {
		return nil, err
	}
	if _, err := NewGraph(b, Options{}).Settle(); err != nil {
		return nil, fmt.Errorf("failed to settle %s bracket: %w", b.Type, err)
	}
	return b, nil
}
