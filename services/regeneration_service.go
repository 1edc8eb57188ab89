package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/competition-brackets/brackets"
	"github.com/Dosada05/competition-brackets/broadcast"
	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/repositories"
)

const archiveTimeout = 10 * time.Second

type RegenerationPolicy string

const (
	// RegenerateDiscard заменяет сетку целиком, все результаты теряются.
	RegenerateDiscard RegenerationPolicy = "discard"
	// RegeneratePreserveCompleted переносит сыгранные матчи, пара участников которых не изменилась.
	RegeneratePreserveCompleted RegenerationPolicy = "preserve_completed"
)

func (p RegenerationPolicy) IsValid() bool {
	return p == RegenerateDiscard || p == RegeneratePreserveCompleted
}

type RegenerationOutcome string

const (
	OutcomeUnchanged   RegenerationOutcome = "unchanged"
	OutcomeCreated     RegenerationOutcome = "created"
	OutcomeRegenerated RegenerationOutcome = "regenerated"
	OutcomeDeleted     RegenerationOutcome = "deleted"
	OutcomeSkipped     RegenerationOutcome = "skipped"
)

type RegenerationResult struct {
	WeightCategoryID *int                `json:"weight_category_id,omitempty"`
	Outcome          RegenerationOutcome `json:"outcome"`
	BracketID        *int                `json:"bracket_id,omitempty"`
	Preserved        int                 `json:"preserved_results"`
}

type RegenerationService interface {
	// OnRosterChanged rebuilds the brackets of the competition whose entrant set
	// changed. A nil weightCategoryID means every group of the competition.
	// Calling it again without a roster change leaves the brackets untouched.
	OnRosterChanged(ctx context.Context, competitionID int, weightCategoryID *int, actor models.Actor) ([]RegenerationResult, error)
}

type regenerationService struct {
	tx              repositories.Transactor
	competitionRepo repositories.CompetitionRepository
	store           bracketStore
	resolver        ParticipantResolver
	archiver        BracketArchiver
	policy          RegenerationPolicy
	options         brackets.Options
	locks           *keyedMutex
	notifier        notifier
	logger          *slog.Logger
}

func NewRegenerationService(
	tx repositories.Transactor,
	competitionRepo repositories.CompetitionRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.ResultRepository,
	resolver ParticipantResolver,
	archiver BracketArchiver,
	policy RegenerationPolicy,
	cancelPolicy brackets.CancelPolicy,
	publisher broadcast.Publisher,
	logger *slog.Logger,
) RegenerationService {
	if !policy.IsValid() {
		policy = RegenerateDiscard
	}
	return &regenerationService{
		tx:              tx,
		competitionRepo: competitionRepo,
		store:           bracketStore{brackets: bracketRepo, matches: matchRepo, results: resultRepo},
		resolver:        resolver,
		archiver:        archiver,
		policy:          policy,
		options:         brackets.Options{CancelPolicy: cancelPolicy},
		locks:           newKeyedMutex(),
		notifier:        notifier{publisher: publisher, logger: logger},
		logger:          logger,
	}
}

func (s *regenerationService) OnRosterChanged(ctx context.Context, competitionID int, weightCategoryID *int, actor models.Actor) ([]RegenerationResult, error) {
	if !actor.CanManageBrackets() {
		return nil, ErrForbiddenOperation
	}

	competition, err := s.competitionRepo.GetByID(ctx, nil, competitionID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	keys, err := s.groupKeys(ctx, competition, weightCategoryID)
	if err != nil {
		return nil, err
	}

	results := make([]RegenerationResult, 0, len(keys))
	for _, key := range keys {
		res, err := s.regenerateGroup(ctx, competition, key, actor)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *regenerationService) groupKeys(ctx context.Context, competition *models.Competition, weightCategoryID *int) ([]models.GroupKey, error) {
	if competition.Kind == models.CompetitionTeam {
		return []models.GroupKey{{CompetitionID: competition.ID}}, nil
	}
	if weightCategoryID != nil {
		return []models.GroupKey{{CompetitionID: competition.ID, WeightCategoryID: weightCategoryID}}, nil
	}

	categories, err := s.competitionRepo.ListWeightCategories(ctx, nil, competition.ID)
	if err != nil {
		return nil, err
	}
	keys := make([]models.GroupKey, 0, len(categories))
	for _, category := range categories {
		id := category.ID
		keys = append(keys, models.GroupKey{CompetitionID: competition.ID, WeightCategoryID: &id})
	}
	return keys, nil
}

// regenerateGroup runs build-diff-replace for one group in one transaction
// while holding the group lock. Another regeneration of the same group in a
// different process makes it fail with ErrRegenerationConflict.
func (s *regenerationService) regenerateGroup(ctx context.Context, competition *models.Competition, key models.GroupKey, actor models.Actor) (RegenerationResult, error) {
	unlock := s.locks.Lock(groupLockKey(key))
	defer unlock()

	res := RegenerationResult{WeightCategoryID: key.WeightCategoryID, Outcome: OutcomeUnchanged}
	var (
		old       *models.Bracket
		candidate *models.Bracket
		records   []*models.ResultRecord
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repositories.SQLExecutor) error {
		locked, err := s.store.brackets.TryLockGroup(ctx, tx, key)
		if err != nil {
			return err
		}
		if !locked {
			return fmt.Errorf("%w: %s", ErrRegenerationConflict, key)
		}

		existing, err := s.store.brackets.GetByGroup(ctx, tx, key)
		if err != nil && !errors.Is(err, repositories.ErrBracketNotFound) {
			return err
		}

		entrants, err := s.resolver.ResolveGroup(ctx, tx, competition, key.WeightCategoryID)
		if err != nil && !errors.Is(err, ErrEmptyGroup) {
			return err
		}

		if len(entrants) == 0 {
			if existing == nil {
				res.Outcome = OutcomeSkipped
				return nil
			}
			if old, err = s.store.load(ctx, tx, existing.ID, true); err != nil {
				return err
			}
			res.Outcome = OutcomeDeleted
			return s.store.brackets.Delete(ctx, tx, existing.ID)
		}

		candidate, err = brackets.Build(ctx, competition.BracketType, brackets.GenerateBracketParams{
			CompetitionID:    competition.ID,
			WeightCategoryID: key.WeightCategoryID,
			Entrants:         entrants,
			Settings:         competition.BracketSettings,
		})
		if err != nil {
			return fmt.Errorf("failed to build bracket for %s: %w", key, err)
		}

		if existing != nil {
			if existing.SameShape(candidate) {
				id := existing.ID
				res.BracketID = &id
				candidate = nil
				return nil
			}
			if old, err = s.store.load(ctx, tx, existing.ID, true); err != nil {
				return err
			}
			if s.policy == RegeneratePreserveCompleted {
				if res.Preserved, err = brackets.ReplayResults(old, candidate, s.options); err != nil {
					return err
				}
			}
			if err := s.store.brackets.Delete(ctx, tx, existing.ID); err != nil {
				return err
			}
			res.Outcome = OutcomeRegenerated
		} else {
			res.Outcome = OutcomeCreated
		}

		if records, err = s.store.save(ctx, tx, candidate); err != nil {
			return err
		}
		id := candidate.ID
		res.BracketID = &id
		return nil
	})
	if err != nil {
		s.logger.Warn("bracket regeneration failed",
			slog.String("group", key.String()),
			slog.Any("error", err))
		return res, err
	}

	s.logger.Info("bracket regeneration finished",
		slog.String("group", key.String()),
		slog.String("outcome", string(res.Outcome)),
		slog.Int("preserved_results", res.Preserved),
		slog.Int("actor_id", actor.UserID))

	if old != nil {
		s.archive(ctx, old)
	}
	s.announce(ctx, res, old, candidate, records, actor)
	return res, nil
}

func (s *regenerationService) archive(ctx context.Context, old *models.Bracket) {
	if s.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if _, err := s.archiver.Archive(ctx, old); err != nil {
		s.logger.Warn("failed to archive discarded bracket",
			slog.Int("bracket_id", old.ID),
			slog.Any("error", err))
	}
}

func (s *regenerationService) announce(ctx context.Context, res RegenerationResult, old, candidate *models.Bracket, records []*models.ResultRecord, actor models.Actor) {
	switch res.Outcome {
	case OutcomeCreated:
		s.notifier.publish(ctx,
			bracketEvent(models.EventBracketCreated, candidate, "created", actor),
			resultEvent(candidate, records, actor))
	case OutcomeRegenerated:
		s.notifier.publish(ctx,
			bracketEvent(models.EventBracketUpdate, candidate, "regenerated", actor),
			resultEvent(candidate, records, actor))
	case OutcomeDeleted:
		s.notifier.publish(ctx, bracketEvent(models.EventBracketUpdate, old, "deleted", actor))
	}
}
