package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-brackets/models"
)

func regenerate(t *testing.T, e *env) RegenerationResult {
	t.Helper()
	results, err := e.regeneration.OnRosterChanged(context.Background(), 1, ptr(10), organizer)
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func storedMatches(t *testing.T, e *env, bracketID int) []*models.Match {
	t.Helper()
	matches, err := memMatchRepo{db: e.db}.ListByBracket(context.Background(), nil, bracketID)
	require.NoError(t, err)
	return matches
}

func TestRegenerationIsIdempotent(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3, 4, 5)
	b := createBrackets(t, e)
	before := storedMatches(t, e, b.ID)
	e.publisher.events = nil

	for i := 0; i < 2; i++ {
		res := regenerate(t, e)
		assert.Equal(t, OutcomeUnchanged, res.Outcome)
		assert.Equal(t, b.ID, *res.BracketID)
	}
	assert.Equal(t, before, storedMatches(t, e, b.ID))
	assert.Empty(t, e.publisher.events)
	assert.Empty(t, e.uploader.objects)
}

func TestRegenerationDiscardsOnRosterChange(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3, 4, 5)
	b := createBrackets(t, e)
	played := stored(t, e, b.ID, "W1M2")
	_, err := e.matches.RecordResult(context.Background(), b.ID, played.ID, knockout(4), organizer)
	require.NoError(t, err)
	e.publisher.events = nil

	e.db.confirm(1, models.Athlete(6, ptr(10), nil))
	res := regenerate(t, e)
	assert.Equal(t, OutcomeRegenerated, res.Outcome)
	assert.Zero(t, res.Preserved)
	require.NotNil(t, res.BracketID)
	assert.NotEqual(t, b.ID, *res.BracketID)
	assert.Equal(t, 1, e.db.bracketCount())

	assert.Equal(t, models.StatusScheduled, stored(t, e, *res.BracketID, "W1M2").Status)
	assert.Equal(t, []models.EventType{models.EventBracketUpdate, models.EventResultUpdate}, e.publisher.types())

	require.Len(t, e.uploader.objects, 1)
	for key := range e.uploader.objects {
		assert.True(t, strings.HasPrefix(key, "brackets/1/10/"), key)
	}

	// повторный вызов без изменений ничего не трогает
	again := regenerate(t, e)
	assert.Equal(t, OutcomeUnchanged, again.Outcome)
	assert.Equal(t, *res.BracketID, *again.BracketID)
}

func TestRegenerationPreservesUnchangedResults(t *testing.T) {
	e := newEnv(RegeneratePreserveCompleted)
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3, 4, 5)
	b := createBrackets(t, e)
	played := stored(t, e, b.ID, "W1M2")
	_, err := e.matches.RecordResult(context.Background(), b.ID, played.ID, knockout(5), organizer)
	require.NoError(t, err)

	e.db.confirm(1, models.Athlete(6, ptr(10), nil))
	res := regenerate(t, e)
	assert.Equal(t, OutcomeRegenerated, res.Outcome)
	assert.Equal(t, 1, res.Preserved)

	m := stored(t, e, *res.BracketID, "W1M2")
	assert.Equal(t, models.StatusCompleted, m.Status)
	assert.Equal(t, 5, *m.WinnerID)
	assert.True(t, stored(t, e, *res.BracketID, "W2M1").SlotB.Holds(5))

	standings, err := e.brackets.GetStandings(context.Background(), *res.BracketID)
	require.NoError(t, err)
	for _, st := range standings {
		if st.EntrantID == 4 {
			assert.Equal(t, 1, st.Losses)
		}
	}
}

func TestRegenerationCreatesAndDeletes(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketRoundRobin, 1, 2, 3)

	res := regenerate(t, e)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, 1, e.db.bracketCount())

	for _, id := range []int{1, 2, 3} {
		e.db.withdraw(id)
	}
	res = regenerate(t, e)
	assert.Equal(t, OutcomeDeleted, res.Outcome)
	assert.Zero(t, e.db.bracketCount())

	res = regenerate(t, e)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
}

func TestRegenerationAllCategories(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2)
	e.db.confirm(1, models.Athlete(7, ptr(20), nil))

	results, err := e.regeneration.OnRosterChanged(context.Background(), 1, nil, models.SystemActor())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, OutcomeCreated, results[0].Outcome)
	assert.Equal(t, OutcomeCreated, results[1].Outcome)
	assert.Equal(t, 20, *results[1].WeightCategoryID)
}

func TestRegenerationConflict(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3)
	b := createBrackets(t, e)
	e.db.confirm(1, models.Athlete(4, ptr(10), nil))
	e.db.busyGroups[b.GroupKey().String()] = true

	_, err := e.regeneration.OnRosterChanged(context.Background(), 1, ptr(10), organizer)
	assert.ErrorIs(t, err, ErrRegenerationConflict)

	kept, err := memBracketRepo{db: e.db}.GetByID(context.Background(), nil, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, kept.EntrantIDs)
}

func TestRegenerationSurvivesArchiveAndBroadcastFailure(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2, 3)
	createBrackets(t, e)
	e.uploader.err = errBroker
	e.publisher.err = errBroker

	e.db.confirm(1, models.Athlete(4, ptr(10), nil))
	res := regenerate(t, e)
	assert.Equal(t, OutcomeRegenerated, res.Outcome)
	assert.Equal(t, 1, e.db.bracketCount())
}

func TestConcurrentRegenerationBuildsOneBracket(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketDoubleElimination, 1, 2, 3, 4)
	createBrackets(t, e)
	e.db.confirm(1, models.Athlete(5, ptr(10), nil))

	const callers = 6
	outcomes := make([]RegenerationOutcome, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results, err := e.regeneration.OnRosterChanged(context.Background(), 1, ptr(10), organizer)
			errs[i] = err
			if err == nil {
				outcomes[i] = results[0].Outcome
			}
		}(i)
	}
	wg.Wait()

	regenerated := 0
	for i := range outcomes {
		require.NoError(t, errs[i])
		if outcomes[i] == OutcomeRegenerated {
			regenerated++
		} else {
			assert.Equal(t, OutcomeUnchanged, outcomes[i])
		}
	}
	assert.Equal(t, 1, regenerated)
	assert.Equal(t, 1, e.db.bracketCount())
}

func TestRegenerationForbidden(t *testing.T) {
	e := newEnv(RegenerateDiscard)
	seedIndividual(e, models.BracketSingleElimination, 1, 2)
	_, err := e.regeneration.OnRosterChanged(context.Background(), 1, nil, models.Actor{UserID: 1, Role: models.RolePlayer})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}
