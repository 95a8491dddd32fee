package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

var _ domain.TrackerRepository = (*PostgresTrackerRepository)(nil)

type PostgresTrackerRepository struct {
	db *sqlx.DB
}

func NewPostgresTrackerRepository(db *sqlx.DB) *PostgresTrackerRepository {
	return &PostgresTrackerRepository{db: db}
}

const trackerColumns = `
    id, habit_id, user_id, to_char(dated, 'YYYY-MM-DD') AS dated,
    completed, skipped, note, created_at, updated_at`

// Upsert keeps the original id and created_at of an existing row for the
// same (habit_id, dated).
func (r *PostgresTrackerRepository) Upsert(ctx context.Context, t *domain.Tracker) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	query := `
		INSERT INTO trackers (
			id, habit_id, user_id, dated,
			completed, skipped, note,
			created_at, updated_at
		) VALUES (
			:id, :habit_id, :user_id, CAST(:dated AS date),
			:completed, :skipped, :note,
			:created_at, :updated_at
		)
		ON CONFLICT (habit_id, dated) DO UPDATE SET
			completed = EXCLUDED.completed,
			skipped = EXCLUDED.skipped,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, t)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%w: referenced habit or user does not exist", domain.ErrInvalidTracker)
		}
		return fmt.Errorf("upsert tracker failed: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&t.ID, &t.CreatedAt); err != nil {
			return fmt.Errorf("upsert tracker scan failed: %w", err)
		}
	}
	return rows.Err()
}

func (r *PostgresTrackerRepository) GetByDate(ctx context.Context, habitID, dated string) (*domain.Tracker, error) {
	var t domain.Tracker
	query := `SELECT` + trackerColumns + ` FROM trackers WHERE habit_id = $1 AND dated = $2::date`

	if err := r.db.GetContext(ctx, &t, query, habitID, dated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrackerNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTrackerRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Tracker, error) {
	trackers := []*domain.Tracker{}

	query := `SELECT` + trackerColumns + `
		FROM trackers
		WHERE habit_id = $1
		ORDER BY dated ASC`

	if err := r.db.SelectContext(ctx, &trackers, query, habitID); err != nil {
		return nil, fmt.Errorf("list trackers failed: %w", err)
	}
	return trackers, nil
}

func (r *PostgresTrackerRepository) ListByHabitIDWithRange(ctx context.Context, habitID, from, to string) ([]*domain.Tracker, error) {
	trackers := []*domain.Tracker{}

	query := `SELECT` + trackerColumns + `
		FROM trackers
		WHERE habit_id = $1
		  AND dated >= $2::date
		  AND dated <= $3::date
		ORDER BY dated ASC`

	if err := r.db.SelectContext(ctx, &trackers, query, habitID, from, to); err != nil {
		return nil, fmt.Errorf("list trackers in range failed: %w", err)
	}
	return trackers, nil
}

func (r *PostgresTrackerRepository) DeleteByDate(ctx context.Context, habitID, dated string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trackers WHERE habit_id = $1 AND dated = $2::date`, habitID, dated)
	if err != nil {
		return fmt.Errorf("delete tracker failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTrackerNotFound
	}
	return nil
}
