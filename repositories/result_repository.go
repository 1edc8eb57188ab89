package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/competition-brackets/models"
)

type ResultRepository interface {
	// ReplaceForBracket overwrites all result records of the bracket.
	ReplaceForBracket(ctx context.Context, exec SQLExecutor, bracketID int, records []*models.ResultRecord) error
	ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.ResultRecord, error)
}

type postgresResultRepository struct {
	db *sqlx.DB
}

func NewPostgresResultRepository(db *sqlx.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) ReplaceForBracket(ctx context.Context, exec SQLExecutor, bracketID int, records []*models.ResultRecord) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM results WHERE bracket_id = $1`, bracketID); err != nil {
		return fmt.Errorf("failed to clear results of bracket %d: %w", bracketID, err)
	}

	query := `
		INSERT INTO results
			(competition_id, bracket_id, entrant_kind, entrant_id, position, points,
			 games_played, wins, losses, score_for, score_against, updated_at)
		VALUES (:competition_id, :bracket_id, :entrant_kind, :entrant_id, :position, :points,
			 :games_played, :wins, :losses, :score_for, :score_against, now())`

	for _, rec := range records {
		rec.BracketID = bracketID
		if _, err := sqlx.NamedExecContext(ctx, executor, query, rec); err != nil {
			return fmt.Errorf("failed to insert result for entrant %d: %w", rec.EntrantID, err)
		}
	}
	return nil
}

func (r *postgresResultRepository) ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.ResultRecord, error) {
	query := `
		SELECT id, competition_id, bracket_id, entrant_kind, entrant_id, position, points,
		       games_played, wins, losses, score_for, score_against, updated_at
		FROM results
		WHERE bracket_id = $1
		ORDER BY position ASC, entrant_id ASC`

	records := make([]*models.ResultRecord, 0)
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &records, query, bracketID); err != nil {
		return nil, fmt.Errorf("failed to list results for bracket %d: %w", bracketID, err)
	}
	return records, nil
}
