package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/competition-brackets/models"
)

type ApplicationRepository interface {
	// ListConfirmed returns confirmed applications ordered by confirmation time, then id.
	ListConfirmed(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Application, error)
}

type postgresApplicationRepository struct {
	db *sqlx.DB
}

func NewPostgresApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &postgresApplicationRepository{db: db}
}

func (r *postgresApplicationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresApplicationRepository) ListConfirmed(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Application, error) {
	query := `
		SELECT id, competition_id, athlete_id, team_id, weight_category_id, status, confirmed_at, created_at
		FROM applications
		WHERE competition_id = $1 AND status = $2
		ORDER BY confirmed_at ASC NULLS LAST, id ASC`

	applications := make([]*models.Application, 0)
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &applications, query, competitionID, models.ApplicationConfirmed); err != nil {
		return nil, fmt.Errorf("failed to list confirmed applications for competition %d: %w", competitionID, err)
	}
	return applications, nil
}
