package repository

import (
	"context"
	"errors"
	"fmt"

	"plushiebot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// DayCycleRepository implements access to the single-row day counter
type DayCycleRepository struct {
	q Queryable
}

// NewDayCycleRepository creates a new day cycle repository
func NewDayCycleRepository(q Queryable) *DayCycleRepository {
	return &DayCycleRepository{q: q}
}

// Get returns the day counter without locking it
func (r *DayCycleRepository) Get(ctx context.Context) (*entities.DayCycle, error) {
	return r.get(ctx, `SELECT day_number, finalized_at, last_updated FROM current_day WHERE id = 1`)
}

// GetForUpdate returns the day counter and holds its row lock until the
// transaction ends
func (r *DayCycleRepository) GetForUpdate(ctx context.Context) (*entities.DayCycle, error) {
	return r.get(ctx, `SELECT day_number, finalized_at, last_updated FROM current_day WHERE id = 1 FOR UPDATE`)
}

// Advance moves the day from expected to expected+1
func (r *DayCycleRepository) Advance(ctx context.Context, expected int) (*entities.DayCycle, error) {
	query := `
		UPDATE current_day
		SET day_number = day_number + 1, last_updated = NOW()
		WHERE id = 1 AND day_number = $1
		RETURNING day_number, finalized_at, last_updated
	`

	day, err := r.get(ctx, query, expected)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, fmt.Errorf("%w: expected day %d", entities.ErrDayAdvanceConflict, expected)
	}
	return day, nil
}

// MarkFinalized records that the final standings were announced
func (r *DayCycleRepository) MarkFinalized(ctx context.Context) error {
	tag, err := r.q.Exec(ctx, `UPDATE current_day SET finalized_at = NOW(), last_updated = NOW() WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to finalize day counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("day counter is not initialized")
	}
	return nil
}

// Reset sets the counter back to day 1
func (r *DayCycleRepository) Reset(ctx context.Context) error {
	query := `
		INSERT INTO current_day (id, day_number, finalized_at, last_updated)
		VALUES (1, 1, NULL, NOW())
		ON CONFLICT (id) DO UPDATE SET
			day_number = 1,
			finalized_at = NULL,
			last_updated = NOW()
	`
	if _, err := r.q.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to reset day counter: %w", err)
	}
	return nil
}

func (r *DayCycleRepository) get(ctx context.Context, query string, args ...any) (*entities.DayCycle, error) {
	var day entities.DayCycle
	err := r.q.QueryRow(ctx, query, args...).Scan(&day.DayNumber, &day.FinalizedAt, &day.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read day counter: %w", err)
	}
	return &day, nil
}
