package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/competition-brackets/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, bracketID int, matches []*models.Match) error
	ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.Match, error)
	// Update persists the mutable part of a match: slots, status and result.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type matchRow struct {
	ID             int                  `db:"id"`
	BracketID      int                  `db:"bracket_id"`
	UID            string               `db:"uid"`
	Side           models.BracketSide   `db:"side"`
	Round          int                  `db:"round"`
	Position       int                  `db:"position"`
	SlotAKind      models.SlotKind      `db:"slot_a_kind"`
	SlotAEntrant   *int                 `db:"slot_a_entrant"`
	SlotBKind      models.SlotKind      `db:"slot_b_kind"`
	SlotBEntrant   *int                 `db:"slot_b_entrant"`
	Status         models.MatchStatus   `db:"status"`
	WinnerID       *int                 `db:"winner_id"`
	Method         *models.ResultMethod `db:"method"`
	ScoreA         *int                 `db:"score_a"`
	ScoreB         *int                 `db:"score_b"`
	ScheduledTime  *time.Time           `db:"scheduled_time"`
	WinnerNextUID  *string              `db:"winner_next_uid"`
	WinnerNextSlot *int                 `db:"winner_next_slot"`
	LoserNextUID   *string              `db:"loser_next_uid"`
	LoserNextSlot  *int                 `db:"loser_next_slot"`
	UpdatedAt      time.Time            `db:"updated_at"`
}

func (row matchRow) toModel() *models.Match {
	m := &models.Match{
		ID:            row.ID,
		BracketID:     row.BracketID,
		UID:           row.UID,
		Side:          row.Side,
		Round:         row.Round,
		Position:      row.Position,
		SlotA:         models.Slot{Kind: row.SlotAKind, EntrantID: row.SlotAEntrant},
		SlotB:         models.Slot{Kind: row.SlotBKind, EntrantID: row.SlotBEntrant},
		Status:        row.Status,
		WinnerID:      row.WinnerID,
		ScoreA:        row.ScoreA,
		ScoreB:        row.ScoreB,
		ScheduledTime: row.ScheduledTime,
		WinnerNext:    slotRefFromColumns(row.WinnerNextUID, row.WinnerNextSlot),
		LoserNext:     slotRefFromColumns(row.LoserNextUID, row.LoserNextSlot),
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Method != nil {
		m.Method = *row.Method
	}
	return m
}

func slotRefFromColumns(uid *string, slot *int) *models.SlotRef {
	if uid == nil || slot == nil {
		return nil
	}
	return &models.SlotRef{MatchUID: *uid, Slot: *slot}
}

func slotRefColumns(ref *models.SlotRef) (*string, *int) {
	if ref == nil {
		return nil, nil
	}
	uid, slot := ref.MatchUID, ref.Slot
	return &uid, &slot
}

func nullableMethod(method models.ResultMethod) *models.ResultMethod {
	if method == "" {
		return nil
	}
	return &method
}

type postgresMatchRepository struct {
	db *sqlx.DB
}

func NewPostgresMatchRepository(db *sqlx.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, bracketID int, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bracket_matches
			(bracket_id, uid, side, round, position,
			 slot_a_kind, slot_a_entrant, slot_b_kind, slot_b_entrant,
			 status, winner_id, method, score_a, score_b, scheduled_time,
			 winner_next_uid, winner_next_slot, loser_next_uid, loser_next_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, updated_at`

	for _, m := range matches {
		winnerUID, winnerSlot := slotRefColumns(m.WinnerNext)
		loserUID, loserSlot := slotRefColumns(m.LoserNext)

		err := executor.QueryRowxContext(ctx, query,
			bracketID, m.UID, m.Side, m.Round, m.Position,
			m.SlotA.Kind, m.SlotA.EntrantID, m.SlotB.Kind, m.SlotB.EntrantID,
			m.Status, m.WinnerID, nullableMethod(m.Method), m.ScoreA, m.ScoreB, m.ScheduledTime,
			winnerUID, winnerSlot, loserUID, loserSlot,
		).Scan(&m.ID, &m.UpdatedAt)
		if err != nil {
			if code, _, ok := pqCode(err); ok && code == "23503" {
				return ErrBracketNotFound
			}
			return fmt.Errorf("failed to create match %s for bracket %d: %w", m.UID, bracketID, err)
		}
		m.BracketID = bracketID
	}
	return nil
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, exec SQLExecutor, bracketID int) ([]*models.Match, error) {
	query := `
		SELECT id, bracket_id, uid, side, round, position,
		       slot_a_kind, slot_a_entrant, slot_b_kind, slot_b_entrant,
		       status, winner_id, method, score_a, score_b, scheduled_time,
		       winner_next_uid, winner_next_slot, loser_next_uid, loser_next_slot, updated_at
		FROM bracket_matches
		WHERE bracket_id = $1
		ORDER BY id ASC`

	var rows []matchRow
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &rows, query, bracketID); err != nil {
		return nil, fmt.Errorf("failed to list matches for bracket %d: %w", bracketID, err)
	}

	matches := make([]*models.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, row.toModel())
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE bracket_matches
		SET slot_a_kind = $1, slot_a_entrant = $2, slot_b_kind = $3, slot_b_entrant = $4,
		    status = $5, winner_id = $6, method = $7, score_a = $8, score_b = $9, updated_at = now()
		WHERE id = $10
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowxContext(ctx, query,
		m.SlotA.Kind, m.SlotA.EntrantID, m.SlotB.Kind, m.SlotB.EntrantID,
		m.Status, m.WinnerID, nullableMethod(m.Method), m.ScoreA, m.ScoreB,
		m.ID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to update match %d: %w", m.ID, err)
	}
	return nil
}
