package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/competition-brackets/brackets"
	"github.com/Dosada05/competition-brackets/broadcast"
	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/repositories"
)

// RecordResultInput is a reported match outcome. Exactly one of WinnerID and
// WinnerTeamID is set; WinnerTeamID is accepted for team brackets only.
type RecordResultInput struct {
	WinnerID     *int                `json:"winner_id"`
	WinnerTeamID *int                `json:"winner_team_id"`
	ScoreA       *int                `json:"score_a"`
	ScoreB       *int                `json:"score_b"`
	Method       models.ResultMethod `json:"method"`
	Correction   bool                `json:"correction"`
}

func (in RecordResultInput) winner(kind models.EntrantKind) (int, error) {
	switch {
	case in.WinnerID != nil && in.WinnerTeamID != nil:
		return 0, fmt.Errorf("%w: winner_id and winner_team_id are mutually exclusive", ErrValidationFailed)
	case in.WinnerTeamID != nil:
		if kind != models.EntrantTeam {
			return 0, fmt.Errorf("%w: winner_team_id given for a %s bracket", ErrValidationFailed, kind)
		}
		return *in.WinnerTeamID, nil
	case in.WinnerID != nil:
		return *in.WinnerID, nil
	}
	return 0, fmt.Errorf("%w: winner is required", ErrValidationFailed)
}

type MatchService interface {
	StartMatch(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error)
	RecordResult(ctx context.Context, bracketID, matchID int, input RecordResultInput, actor models.Actor) (*models.Match, error)
	CancelMatch(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error)
}

type matchService struct {
	tx       repositories.Transactor
	store    bracketStore
	options  brackets.Options
	locks    *keyedMutex
	notifier notifier
	logger   *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.ResultRepository,
	cancelPolicy brackets.CancelPolicy,
	publisher broadcast.Publisher,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:       tx,
		store:    bracketStore{brackets: bracketRepo, matches: matchRepo, results: resultRepo},
		options:  brackets.Options{CancelPolicy: cancelPolicy},
		locks:    newKeyedMutex(),
		notifier: notifier{publisher: publisher, logger: logger},
		logger:   logger,
	}
}

// transition is one state machine step applied to a loaded bracket.
type transition func(g *brackets.Graph, m *models.Match) ([]*models.Match, error)

func (s *matchService) StartMatch(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error) {
	return s.apply(ctx, "start", bracketID, matchID, actor, false, func(g *brackets.Graph, m *models.Match) ([]*models.Match, error) {
		return g.Start(m.UID)
	})
}

func (s *matchService) RecordResult(ctx context.Context, bracketID, matchID int, input RecordResultInput, actor models.Actor) (*models.Match, error) {
	if input.Method == "" {
		return nil, fmt.Errorf("%w: method is required", ErrValidationFailed)
	}
	return s.apply(ctx, "result", bracketID, matchID, actor, true, func(g *brackets.Graph, m *models.Match) ([]*models.Match, error) {
		winnerID, err := input.winner(g.Bracket().EntrantKind)
		if err != nil {
			return nil, err
		}
		return g.RecordResult(m.UID, brackets.Result{
			WinnerID:   winnerID,
			ScoreA:     input.ScoreA,
			ScoreB:     input.ScoreB,
			Method:     input.Method,
			Correction: input.Correction,
		})
	})
}

func (s *matchService) CancelMatch(ctx context.Context, bracketID, matchID int, actor models.Actor) (*models.Match, error) {
	return s.apply(ctx, "cancel", bracketID, matchID, actor, true, func(g *brackets.Graph, m *models.Match) ([]*models.Match, error) {
		return g.Cancel(m.UID)
	})
}

// apply runs one transition under the bracket lock and inside one transaction,
// so a concurrent call on the same bracket sees the committed result.
// Events are published only after commit.
func (s *matchService) apply(ctx context.Context, op string, bracketID, matchID int, actor models.Actor, recompute bool, fn transition) (*models.Match, error) {
	if !actor.CanManageBrackets() {
		return nil, ErrForbiddenOperation
	}

	unlock := s.locks.Lock(bracketLockKey(bracketID))
	defer unlock()

	var (
		b       *models.Bracket
		match   *models.Match
		changed []*models.Match
		records []*models.ResultRecord
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repositories.SQLExecutor) error {
		var err error
		b, err = s.store.load(ctx, tx, bracketID, true)
		if err != nil {
			return err
		}

		g := brackets.NewGraph(b, s.options)
		match, err = g.MatchByID(matchID)
		if err != nil {
			return fmt.Errorf("%w: %d in bracket %d", ErrMatchNotFound, matchID, bracketID)
		}

		changed, err = fn(g, match)
		if err != nil {
			return err
		}
		if err := s.store.updateMatches(ctx, tx, changed); err != nil {
			return err
		}
		if recompute {
			records, err = s.store.refreshResults(ctx, tx, b)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrValidationFailed) {
			s.logger.Info("match transition rejected",
				slog.String("op", op),
				slog.Int("bracket_id", bracketID),
				slog.Int("match_id", matchID),
				slog.Any("error", err))
		}
		return nil, err
	}

	s.logger.Info("match transition applied",
		slog.String("op", op),
		slog.Int("competition_id", b.CompetitionID),
		slog.Int("bracket_id", bracketID),
		slog.Int("match_id", matchID),
		slog.String("status", string(match.Status)),
		slog.Int("changed", len(changed)),
		slog.Int("actor_id", actor.UserID))

	events := make([]models.Event, 0, len(changed)+2)
	for _, m := range changed {
		events = append(events, matchEvent(b, m, actor))
	}
	if len(changed) > 1 {
		events = append(events, bracketEvent(models.EventBracketUpdate, b, "progressed", actor))
	}
	if records != nil {
		events = append(events, resultEvent(b, records, actor))
	}
	s.notifier.publish(ctx, events...)

	return match, nil
}
