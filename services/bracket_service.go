package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/competition-brackets/brackets"
	"github.com/Dosada05/competition-brackets/broadcast"
	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/repositories"
)

const loadConcurrency = 4

type SkipReason string

const (
	SkipEmptyGroup    SkipReason = "empty_group"
	SkipBracketExists SkipReason = "bracket_exists"
)

type SkippedGroup struct {
	WeightCategoryID *int       `json:"weight_category_id,omitempty"`
	Reason           SkipReason `json:"reason"`
}

type CreateBracketsResult struct {
	Created  int               `json:"created"`
	Brackets []*models.Bracket `json:"brackets"`
	Skipped  []SkippedGroup    `json:"skipped"`
}

type BracketService interface {
	// CreateBracketsForCompetition builds one bracket per entrant group that
	// has none yet. Groups that already have a bracket are left to regeneration.
	CreateBracketsForCompetition(ctx context.Context, competitionID int, actor models.Actor) (*CreateBracketsResult, error)
	GetBracketsForCompetition(ctx context.Context, competitionID int) ([]*models.Bracket, error)
	GetStandings(ctx context.Context, bracketID int) ([]*models.ResultRecord, error)
}

type bracketService struct {
	tx              repositories.Transactor
	competitionRepo repositories.CompetitionRepository
	store           bracketStore
	resolver        ParticipantResolver
	locks           *keyedMutex
	notifier        notifier
	logger          *slog.Logger
}

func NewBracketService(
	tx repositories.Transactor,
	competitionRepo repositories.CompetitionRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.ResultRepository,
	resolver ParticipantResolver,
	publisher broadcast.Publisher,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:              tx,
		competitionRepo: competitionRepo,
		store:           bracketStore{brackets: bracketRepo, matches: matchRepo, results: resultRepo},
		resolver:        resolver,
		locks:           newKeyedMutex(),
		notifier:        notifier{publisher: publisher, logger: logger},
		logger:          logger,
	}
}

func (s *bracketService) CreateBracketsForCompetition(ctx context.Context, competitionID int, actor models.Actor) (*CreateBracketsResult, error) {
	if !actor.CanManageBrackets() {
		return nil, ErrForbiddenOperation
	}

	competition, err := s.competitionRepo.GetByID(ctx, nil, competitionID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	roster, err := s.resolver.Resolve(ctx, nil, competition)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entrants of competition %d: %w", competitionID, err)
	}

	result := &CreateBracketsResult{Brackets: []*models.Bracket{}, Skipped: []SkippedGroup{}}
	for _, key := range roster.Empty {
		result.Skipped = append(result.Skipped, SkippedGroup{WeightCategoryID: key.WeightCategoryID, Reason: SkipEmptyGroup})
	}

	for _, group := range roster.Groups {
		b, err := s.createGroup(ctx, competition, group, actor)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketExists) {
				result.Skipped = append(result.Skipped, SkippedGroup{WeightCategoryID: group.Key.WeightCategoryID, Reason: SkipBracketExists})
				continue
			}
			return result, err
		}
		result.Brackets = append(result.Brackets, b)
		result.Created++
	}

	s.logger.Info("brackets created",
		slog.Int("competition_id", competitionID),
		slog.Int("created", result.Created),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("actor_id", actor.UserID))
	return result, nil
}

// createGroup builds and stores the bracket of one group in its own transaction.
func (s *bracketService) createGroup(ctx context.Context, competition *models.Competition, group EntrantGroup, actor models.Actor) (*models.Bracket, error) {
	unlock := s.locks.Lock(groupLockKey(group.Key))
	defer unlock()

	var (
		b       *models.Bracket
		records []*models.ResultRecord
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repositories.SQLExecutor) error {
		locked, err := s.store.brackets.TryLockGroup(ctx, tx, group.Key)
		if err != nil {
			return err
		}
		if !locked {
			return fmt.Errorf("%w: %s", ErrRegenerationConflict, group.Key)
		}

		if _, err := s.store.brackets.GetByGroup(ctx, tx, group.Key); err == nil {
			return repositories.ErrBracketExists
		} else if !errors.Is(err, repositories.ErrBracketNotFound) {
			return err
		}

		b, err = brackets.Build(ctx, competition.BracketType, brackets.GenerateBracketParams{
			CompetitionID:    competition.ID,
			WeightCategoryID: group.Key.WeightCategoryID,
			Entrants:         group.Entrants,
			Settings:         competition.BracketSettings,
		})
		if err != nil {
			return fmt.Errorf("failed to build bracket for %s: %w", group.Key, err)
		}

		records, err = s.store.save(ctx, tx, b)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.publish(ctx,
		bracketEvent(models.EventBracketCreated, b, "created", actor),
		resultEvent(b, records, actor))
	return b, nil
}

func (s *bracketService) GetBracketsForCompetition(ctx context.Context, competitionID int) ([]*models.Bracket, error) {
	if _, err := s.competitionRepo.GetByID(ctx, nil, competitionID); err != nil {
		return nil, handleRepositoryError(err)
	}

	list, err := s.store.brackets.ListByCompetition(ctx, nil, competitionID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, b := range list {
		b := b
		g.Go(func() error {
			matches, err := s.store.matches.ListByBracket(gctx, nil, b.ID)
			if err != nil {
				return err
			}
			b.Matches = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load matches of competition %d: %w", competitionID, err)
	}
	return list, nil
}

func (s *bracketService) GetStandings(ctx context.Context, bracketID int) ([]*models.ResultRecord, error) {
	if _, err := s.store.brackets.GetByID(ctx, nil, bracketID); err != nil {
		return nil, handleRepositoryError(err)
	}
	return s.store.results.ListByBracket(ctx, nil, bracketID)
}
