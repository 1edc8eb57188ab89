package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/repositories"
)

// EntrantGroup is one set of entrants that gets its own bracket.
type EntrantGroup struct {
	Key      models.GroupKey
	Entrants []models.Entrant
}

// Roster is the resolved entrant groups of a competition. Empty lists the
// weight categories that have no confirmed entrants.
type Roster struct {
	Groups []EntrantGroup
	Empty  []models.GroupKey
}

type ParticipantResolver interface {
	Resolve(ctx context.Context, exec repositories.SQLExecutor, competition *models.Competition) (*Roster, error)
	// ResolveGroup returns ErrEmptyGroup when the group has no confirmed entrants.
	ResolveGroup(ctx context.Context, exec repositories.SQLExecutor, competition *models.Competition, weightCategoryID *int) ([]models.Entrant, error)
}

type participantResolver struct {
	competitionRepo repositories.CompetitionRepository
	applicationRepo repositories.ApplicationRepository
	logger          *slog.Logger
}

func NewParticipantResolver(
	competitionRepo repositories.CompetitionRepository,
	applicationRepo repositories.ApplicationRepository,
	logger *slog.Logger,
) ParticipantResolver {
	return &participantResolver{
		competitionRepo: competitionRepo,
		applicationRepo: applicationRepo,
		logger:          logger,
	}
}

func (r *participantResolver) Resolve(ctx context.Context, exec repositories.SQLExecutor, competition *models.Competition) (*Roster, error) {
	applications, err := r.applicationRepo.ListConfirmed(ctx, exec, competition.ID)
	if err != nil {
		return nil, err
	}

	roster := &Roster{}
	if competition.Kind == models.CompetitionTeam {
		key := models.GroupKey{CompetitionID: competition.ID}
		entrants := r.entrants(competition, applications, nil)
		if len(entrants) == 0 {
			roster.Empty = append(roster.Empty, key)
		} else {
			roster.Groups = append(roster.Groups, EntrantGroup{Key: key, Entrants: entrants})
		}
		return roster, nil
	}

	categories, err := r.competitionRepo.ListWeightCategories(ctx, exec, competition.ID)
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		categoryID := category.ID
		key := models.GroupKey{CompetitionID: competition.ID, WeightCategoryID: &categoryID}
		entrants := r.entrants(competition, applications, &categoryID)
		if len(entrants) == 0 {
			roster.Empty = append(roster.Empty, key)
			continue
		}
		roster.Groups = append(roster.Groups, EntrantGroup{Key: key, Entrants: entrants})
	}
	return roster, nil
}

func (r *participantResolver) ResolveGroup(ctx context.Context, exec repositories.SQLExecutor, competition *models.Competition, weightCategoryID *int) ([]models.Entrant, error) {
	applications, err := r.applicationRepo.ListConfirmed(ctx, exec, competition.ID)
	if err != nil {
		return nil, err
	}
	if competition.Kind == models.CompetitionTeam {
		weightCategoryID = nil
	}
	entrants := r.entrants(competition, applications, weightCategoryID)
	if len(entrants) == 0 {
		key := models.GroupKey{CompetitionID: competition.ID, WeightCategoryID: weightCategoryID}
		return nil, fmt.Errorf("%w: %s", ErrEmptyGroup, key)
	}
	return entrants, nil
}

// entrants keeps the repository order (confirmation time, then id) and drops
// applications that do not belong to the group or repeat an entrant.
func (r *participantResolver) entrants(competition *models.Competition, applications []*models.Application, weightCategoryID *int) []models.Entrant {
	entrants := make([]models.Entrant, 0)
	seen := make(map[int]struct{})

	for _, app := range applications {
		if competition.Kind == models.CompetitionTeam {
			if app.TeamID == nil || app.AthleteID != nil {
				continue
			}
		} else {
			if app.AthleteID == nil || app.WeightCategoryID == nil {
				if app.AthleteID != nil {
					r.logger.Warn("confirmed athlete has no weight category",
						slog.Int("application_id", app.ID), slog.Int("competition_id", competition.ID))
				}
				continue
			}
			if weightCategoryID == nil || *app.WeightCategoryID != *weightCategoryID {
				continue
			}
		}

		entrant, ok := app.Entrant()
		if !ok {
			continue
		}
		if _, dup := seen[entrant.ID]; dup {
			continue
		}
		seen[entrant.ID] = struct{}{}
		entrants = append(entrants, entrant)
	}
	return entrants
}
