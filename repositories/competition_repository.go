package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/competition-brackets/models"
)

var ErrCompetitionNotFound = errors.New("competition not found")

type CompetitionRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competition, error)
	ListWeightCategories(ctx context.Context, exec SQLExecutor, competitionID int) ([]models.WeightCategory, error)
}

type postgresCompetitionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompetitionRepository(db *sqlx.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competition, error) {
	query := `
		SELECT id, name, kind, bracket_type, third_place_mode, bracket_reset, round_robin_passes, created_at
		FROM competitions
		WHERE id = $1`

	var c models.Competition
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", id, err)
	}
	return &c, nil
}

func (r *postgresCompetitionRepository) ListWeightCategories(ctx context.Context, exec SQLExecutor, competitionID int) ([]models.WeightCategory, error) {
	query := `
		SELECT id, competition_id, name
		FROM weight_categories
		WHERE competition_id = $1
		ORDER BY id ASC`

	categories := make([]models.WeightCategory, 0)
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &categories, query, competitionID); err != nil {
		return nil, fmt.Errorf("failed to list weight categories for competition %d: %w", competitionID, err)
	}
	return categories, nil
}
