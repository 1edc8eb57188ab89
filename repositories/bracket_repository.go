package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Dosada05/competition-brackets/models"
)

var (
	ErrBracketNotFound           = errors.New("bracket not found")
	ErrBracketExists             = errors.New("bracket already exists for this competition group")
	ErrBracketCompetitionInvalid = errors.New("bracket competition or weight category conflict or invalid")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error)
	// GetByIDForUpdate locks the bracket row until the end of the transaction.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error)
	GetByGroup(ctx context.Context, exec SQLExecutor, key models.GroupKey) (*models.Bracket, error)
	ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Bracket, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// TryLockGroup takes a transaction scoped advisory lock on the group and
	// reports false when another transaction holds it.
	TryLockGroup(ctx context.Context, exec SQLExecutor, key models.GroupKey) (bool, error)
}

type bracketRow struct {
	ID               int                `db:"id"`
	CompetitionID    int                `db:"competition_id"`
	Type             models.BracketType `db:"type"`
	WeightCategoryID *int               `db:"weight_category_id"`
	EntrantKind      models.EntrantKind `db:"entrant_kind"`
	EntrantIDs       pq.Int64Array      `db:"entrant_ids"`
	models.BracketSettings
	CreatedAt time.Time `db:"created_at"`
}

func (row bracketRow) toModel() *models.Bracket {
	return &models.Bracket{
		ID:               row.ID,
		CompetitionID:    row.CompetitionID,
		Type:             row.Type,
		WeightCategoryID: row.WeightCategoryID,
		EntrantKind:      row.EntrantKind,
		EntrantIDs:       toInts(row.EntrantIDs),
		Settings:         row.BracketSettings,
		CreatedAt:        row.CreatedAt,
	}
}

const bracketColumns = `id, competition_id, type, weight_category_id, entrant_kind, entrant_ids,
		third_place_mode, bracket_reset, round_robin_passes, created_at`

type postgresBracketRepository struct {
	db *sqlx.DB
}

func NewPostgresBracketRepository(db *sqlx.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, b *models.Bracket) error {
	query := `
		INSERT INTO brackets
			(competition_id, type, weight_category_id, entrant_kind, entrant_ids,
			 third_place_mode, bracket_reset, round_robin_passes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowxContext(ctx, query,
		b.CompetitionID,
		b.Type,
		b.WeightCategoryID,
		b.EntrantKind,
		toInt64s(b.EntrantIDs),
		b.Settings.ThirdPlace,
		b.Settings.BracketReset,
		b.Settings.RoundRobinPasses,
	).Scan(&b.ID, &b.CreatedAt)

	if err != nil {
		if code, constraint, ok := pqCode(err); ok {
			switch {
			case code == "23505" && constraint == "brackets_group_key":
				return ErrBracketExists
			case code == "23503":
				return ErrBracketCompetitionInvalid
			}
		}
		return fmt.Errorf("failed to create bracket: %w", err)
	}
	return nil
}

func (r *postgresBracketRepository) get(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Bracket, error) {
	var row bracketRow
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to get bracket: %w", err)
	}
	return row.toModel(), nil
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error) {
	return r.get(ctx, exec, `SELECT `+bracketColumns+` FROM brackets WHERE id = $1`, id)
}

func (r *postgresBracketRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error) {
	return r.get(ctx, exec, `SELECT `+bracketColumns+` FROM brackets WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresBracketRepository) GetByGroup(ctx context.Context, exec SQLExecutor, key models.GroupKey) (*models.Bracket, error) {
	return r.get(ctx, exec,
		`SELECT `+bracketColumns+` FROM brackets WHERE competition_id = $1 AND COALESCE(weight_category_id, 0) = $2`,
		key.CompetitionID, key.CategoryOrZero())
}

func (r *postgresBracketRepository) ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE competition_id = $1 ORDER BY weight_category_id ASC NULLS FIRST, id ASC`

	var rows []bracketRow
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &rows, query, competitionID); err != nil {
		return nil, fmt.Errorf("failed to list brackets for competition %d: %w", competitionID, err)
	}

	brackets := make([]*models.Bracket, 0, len(rows))
	for _, row := range rows {
		brackets = append(brackets, row.toModel())
	}
	return brackets, nil
}

func (r *postgresBracketRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM brackets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bracket %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) TryLockGroup(ctx context.Context, exec SQLExecutor, key models.GroupKey) (bool, error) {
	var locked bool
	err := sqlx.GetContext(ctx, r.getExecutor(exec), &locked,
		`SELECT pg_try_advisory_xact_lock($1, $2)`, key.CompetitionID, key.CategoryOrZero())
	if err != nil {
		return false, fmt.Errorf("failed to lock group %s: %w", key, err)
	}
	return locked, nil
}
