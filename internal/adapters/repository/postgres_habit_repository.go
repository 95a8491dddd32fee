package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

const habitColumns = `
    id, user_id, title, description, color, icon, sort_order,
    frequency, range_days, to_char(created_date, 'YYYY-MM-DD'),
    current_streak, longest_streak,
    version, created_at, updated_at, archived_at, deleted_at`

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.Color, &h.Icon, &h.SortOrder,
		&h.Frequency, &h.Range, &h.CreatedDate,
		&h.CurrentStreak, &h.LongestStreak,
		&h.Version, &h.CreatedAt, &h.UpdatedAt, &h.ArchivedAt, &h.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &h, nil
}

func (r *PostgresHabitRepository) scanRows(rows *sql.Rows) ([]*domain.Habit, error) {
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, user_id, title, description, color, icon, sort_order,
            frequency, range_days, created_date,
            current_streak, longest_streak,
            version, created_at, updated_at, archived_at, deleted_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9, $10::date,
            $11, $12,
            1, $13, $14, $15, NULL
        )`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Title, h.Description, h.Color, h.Icon, h.SortOrder,
		h.Frequency, h.Range, h.CreatedDate,
		h.CurrentStreak, h.LongestStreak,
		h.CreatedAt, h.UpdatedAt, h.ArchivedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return domain.ErrHabitConflict
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: owner does not exist", domain.ErrHabitInvalidUserID)
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return r.scanRows(rows)
}

// Update leaves the streak counters alone; they belong to UpdateStreaks.
func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            title=$1, description=$2, color=$3, icon=$4, sort_order=$5,
            frequency=$6, range_days=$7, archived_at=$8,
            updated_at=NOW(), version = version + 1
        WHERE id=$9 AND version=$10 AND deleted_at IS NULL
        RETURNING version, updated_at, current_streak, longest_streak`

	row := r.db.QueryRowContext(ctx, query,
		h.Title, h.Description, h.Color, h.Icon, h.SortOrder,
		h.Frequency, h.Range, h.ArchivedAt,
		h.ID, h.Version,
	)

	var newVersion, current, longest int
	var newUpdatedAt time.Time

	err := row.Scan(&newVersion, &newUpdatedAt, &current, &longest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			existsQuery := `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`
			var count int
			if checkErr := r.db.QueryRowContext(ctx, existsQuery, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}

			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt
	h.CurrentStreak = current
	h.LongestStreak = longest

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}

	return r.scanRows(rows)
}

// UpdateStreaks touches updated_at so the new counters reach sync clients,
// but keeps the version so it never conflicts with a client edit.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, longest_streak = $2, updated_at = NOW()
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("update streaks failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
