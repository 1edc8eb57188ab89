package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/competition-brackets/brackets"
	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/repositories"
)

// bracketStore bundles the repositories that together persist one bracket
// subtree: the bracket row, its matches and its derived results.
type bracketStore struct {
	brackets repositories.BracketRepository
	matches  repositories.MatchRepository
	results  repositories.ResultRepository
}

// save inserts a freshly built bracket with all its matches and initial results.
func (s bracketStore) save(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) ([]*models.ResultRecord, error) {
	if err := s.brackets.Create(ctx, exec, b); err != nil {
		return nil, fmt.Errorf("failed to save bracket for %s: %w", b.GroupKey(), err)
	}
	if err := s.matches.CreateBatch(ctx, exec, b.ID, b.Matches); err != nil {
		return nil, fmt.Errorf("failed to save matches of bracket %d: %w", b.ID, err)
	}
	return s.refreshResults(ctx, exec, b)
}

// load reads a bracket with its matches. With forUpdate the bracket row stays
// locked until the transaction ends.
func (s bracketStore) load(ctx context.Context, exec repositories.SQLExecutor, id int, forUpdate bool) (*models.Bracket, error) {
	var (
		b   *models.Bracket
		err error
	)
	if forUpdate {
		b, err = s.brackets.GetByIDForUpdate(ctx, exec, id)
	} else {
		b, err = s.brackets.GetByID(ctx, exec, id)
	}
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	b.Matches, err = s.matches.ListByBracket(ctx, exec, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s bracketStore) updateMatches(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		if err := s.matches.Update(ctx, exec, m); err != nil {
			return handleRepositoryError(err)
		}
	}
	return nil
}

// refreshResults recomputes standings of the bracket and replaces its result rows.
func (s bracketStore) refreshResults(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) ([]*models.ResultRecord, error) {
	records := standingsToRecords(b, brackets.ComputeStandings(b))
	if err := s.results.ReplaceForBracket(ctx, exec, b.ID, records); err != nil {
		return nil, fmt.Errorf("failed to store results of bracket %d: %w", b.ID, err)
	}
	return records, nil
}

func standingsToRecords(b *models.Bracket, standings []brackets.Standing) []*models.ResultRecord {
	records := make([]*models.ResultRecord, 0, len(standings))
	for _, st := range standings {
		rec := &models.ResultRecord{
			CompetitionID: b.CompetitionID,
			BracketID:     b.ID,
			EntrantKind:   b.EntrantKind,
			EntrantID:     st.EntrantID,
			Position:      st.Position,
			GamesPlayed:   st.GamesPlayed,
			Wins:          st.Wins,
			Losses:        st.Losses,
			ScoreFor:      st.ScoreFor,
			ScoreAgainst:  st.ScoreAgainst,
		}
		if b.Type == models.BracketRoundRobin && st.Points != nil {
			points := *st.Points
			rec.Points = &points
		}
		records = append(records, rec)
	}
	return records
}

// handleRepositoryError переводит "не найдено" репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCompetitionNotFound):
		return ErrCompetitionNotFound
	case errors.Is(err, repositories.ErrBracketNotFound):
		return ErrBracketNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	}
	return err
}

func groupLockKey(key models.GroupKey) string {
	return "group:" + key.String()
}

func bracketLockKey(bracketID int) string {
	return fmt.Sprintf("bracket:%d", bracketID)
}
