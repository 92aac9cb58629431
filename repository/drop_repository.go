package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plushiebot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// DropRepository implements drop record data access
type DropRepository struct {
	q Queryable
}

// NewDropRepository creates a new drop repository
func NewDropRepository(q Queryable) *DropRepository {
	return &DropRepository{q: q}
}

// Record inserts a drop tagged with the current day number. The day row is
// share-locked so a concurrent day advance either finishes first or waits.
func (r *DropRepository) Record(ctx context.Context, userID int64, method entities.DropMethod, at time.Time) (*entities.DropRecord, error) {
	query := `
		WITH day AS (
			SELECT day_number FROM current_day WHERE id = 1 FOR SHARE
		)
		INSERT INTO drop_records (user_id, method, drop_time, day_number)
		SELECT $1, $2, $3, day.day_number FROM day
		RETURNING id, user_id, method, drop_time, day_number
	`

	record, err := scanDropRecord(r.q.QueryRow(ctx, query, userID, method, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("day counter is not initialized")
		}
		return nil, fmt.Errorf("failed to record drop for user %d: %w", userID, err)
	}
	return record, nil
}

// RecordForDay inserts a drop for an explicit day number
func (r *DropRepository) RecordForDay(ctx context.Context, userID int64, method entities.DropMethod, at time.Time, dayNumber int) (*entities.DropRecord, error) {
	query := `
		INSERT INTO drop_records (user_id, method, drop_time, day_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, method, drop_time, day_number
	`

	record, err := scanDropRecord(r.q.QueryRow(ctx, query, userID, method, at, dayNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to record drop for user %d on day %d: %w", userID, dayNumber, err)
	}
	return record, nil
}

// CountByUser returns the all-time drop count of a user
func (r *DropRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM drop_records WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count drops for user %d: %w", userID, err)
	}
	return count, nil
}

// CountByUserForCurrentDay returns the user's drop count for the current day number
func (r *DropRepository) CountByUserForCurrentDay(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM drop_records d
		JOIN current_day c ON c.id = 1 AND d.day_number = c.day_number
		WHERE d.user_id = $1
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count today's drops for user %d: %w", userID, err)
	}
	return count, nil
}

// TopForCurrentDay returns per-user counts for the current day number.
// A limit of zero returns every row.
func (r *DropRepository) TopForCurrentDay(ctx context.Context, limit int) ([]entities.DropCount, error) {
	query := `
		SELECT d.user_id, COUNT(*) AS drops
		FROM drop_records d
		JOIN current_day c ON c.id = 1 AND d.day_number = c.day_number
		GROUP BY d.user_id
		ORDER BY drops DESC, d.user_id ASC
		LIMIT NULLIF($1::int, 0)
	`
	return r.queryCounts(ctx, query, limit)
}

// TopSince returns per-user counts for drops at or after since
func (r *DropRepository) TopSince(ctx context.Context, since time.Time, limit int) ([]entities.DropCount, error) {
	query := `
		SELECT user_id, COUNT(*) AS drops
		FROM drop_records
		WHERE drop_time >= $1
		GROUP BY user_id
		ORDER BY drops DESC, user_id ASC
		LIMIT NULLIF($2::int, 0)
	`
	return r.queryCounts(ctx, query, since, limit)
}

// DeleteAll removes every drop record
func (r *DropRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM drop_records`); err != nil {
		return fmt.Errorf("failed to delete drop records: %w", err)
	}
	return nil
}

func (r *DropRepository) queryCounts(ctx context.Context, query string, args ...any) ([]entities.DropCount, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drop counts: %w", err)
	}
	defer rows.Close()

	var counts []entities.DropCount
	for rows.Next() {
		var c entities.DropCount
		if err := rows.Scan(&c.UserID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan drop count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drop counts: %w", err)
	}

	return counts, nil
}

func scanDropRecord(row pgx.Row) (*entities.DropRecord, error) {
	var record entities.DropRecord
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Method,
		&record.DropTime,
		&record.DayNumber,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
