package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-brackets/models"
)

// seedIndividual registers competition 1 with categories 10 and 20 and
// confirms the given athletes into category 10.
func seedIndividual(e *env, bracketType models.BracketType, athletes ...int) {
	e.db.addCompetition(&models.Competition{
		ID:          1,
		Kind:        models.CompetitionIndividual,
		BracketType: bracketType,
	}, 10, 20)
	for _, id := range athletes {
		e.db.confirm(1, models.Athlete(id, ptr(10), nil))
	}
}

func createBrackets(t *testing.T, e *env) *models.Bracket {
	t.Helper()
	res, err := e.brackets.CreateBracketsForCompetition(context.Background(), 1, organizer)
	require.NoError(t, err)
	require.NotEmpty(t, res.Brackets)
	return res.Brackets[0]
}

func TestCreateBracketsForCompetition(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3, 4, 5)

	res, err := e.brackets.CreateBracketsForCompetition(context.Background(), 1, organizer)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Brackets, 1)
	b := res.Brackets[0]
	assert.Equal(t, 10, *b.WeightCategoryID)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, b.EntrantIDs)
	assert.Len(t, b.Matches, 7)
	assert.Equal(t, []SkippedGroup{{WeightCategoryID: ptr(20), Reason: SkipEmptyGroup}}, res.Skipped)

	assert.Equal(t, []models.EventType{models.EventBracketCreated, models.EventResultUpdate}, e.publisher.types())

	standings, err := e.brackets.GetStandings(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, standings, 5)
}

func TestCreateBracketsSkipsExistingGroups(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketDoubleElimination, 1, 2, 3, 4)
	first := createBrackets(t, e)

	res, err := e.brackets.CreateBracketsForCompetition(context.Background(), 1, organizer)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Contains(t, res.Skipped, SkippedGroup{WeightCategoryID: ptr(10), Reason: SkipBracketExists})
	assert.Equal(t, 1, e.db.bracketCount())

	list, err := e.brackets.GetBracketsForCompetition(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Len(t, list[0].Matches, len(first.Matches))
}

func TestCreateBracketsForTeamCompetition(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	e.db.addCompetition(&models.Competition{ID: 1, Kind: models.CompetitionTeam, BracketType: models.BracketRoundRobin})
	for _, id := range []int{11, 12, 13} {
		e.db.confirm(1, models.Team(id))
	}

	b := createBrackets(t, e)
	assert.Nil(t, b.WeightCategoryID)
	assert.Equal(t, models.EntrantTeam, b.EntrantKind)
	require.Len(t, b.Matches, 3)

	appearances := make(map[int]int)
	for _, m := range b.Matches {
		assert.Equal(t, models.StatusScheduled, m.Status)
		appearances[*m.SlotA.EntrantID]++
		appearances[*m.SlotB.EntrantID]++
	}
	assert.Equal(t, map[int]int{11: 2, 12: 2, 13: 2}, appearances)
}

func TestCreateBracketsErrors(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2)

	_, err := e.brackets.CreateBracketsForCompetition(context.Background(), 1, models.Actor{UserID: 3, Role: models.RolePlayer})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = e.brackets.CreateBracketsForCompetition(context.Background(), 99, organizer)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)

	_, err = e.brackets.GetBracketsForCompetition(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)

	_, err = e.brackets.GetStandings(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrBracketNotFound)
}

func TestCreateBracketsHonoursGroupLock(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3)
	e.db.busyGroups[models.GroupKey{CompetitionID: 1, WeightCategoryID: ptr(10)}.String()] = true

	_, err := e.brackets.CreateBracketsForCompetition(context.Background(), 1, organizer)
	assert.ErrorIs(t, err, ErrRegenerationConflict)
	assert.Zero(t, e.db.bracketCount())
}

func TestCreateBracketsSurvivesBroadcastFailure(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	e.publisher.err = errBroker
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3)

	res, err := e.brackets.CreateBracketsForCompetition(context.Background(), 1, organizer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, e.db.bracketCount())
}
