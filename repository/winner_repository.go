package repository

import (
	"context"
	"fmt"

	"plushiebot/domain/entities"
)

// WinnerRepository implements daily winner data access
type WinnerRepository struct {
	q Queryable
}

// NewWinnerRepository creates a new winner repository
func NewWinnerRepository(q Queryable) *WinnerRepository {
	return &WinnerRepository{q: q}
}

// ExistsForDay returns true if any winner is recorded for the day
func (r *WinnerRepository) ExistsForDay(ctx context.Context, dayNumber int) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM winner_records WHERE day_number = $1)`, dayNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check winners for day %d: %w", dayNumber, err)
	}
	return exists, nil
}

// Upsert stores a winner keyed on (day, user)
func (r *WinnerRepository) Upsert(ctx context.Context, winner *entities.WinnerRecord) error {
	query := `
		INSERT INTO winner_records (day_number, user_id, total_drops)
		VALUES ($1, $2, $3)
		ON CONFLICT (day_number, user_id) DO UPDATE SET
			total_drops = EXCLUDED.total_drops,
			recorded_at = NOW()
		RETURNING recorded_at
	`

	err := r.q.QueryRow(ctx, query, winner.DayNumber, winner.UserID, winner.TotalDrops).Scan(&winner.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to record winner %d for day %d: %w", winner.UserID, winner.DayNumber, err)
	}
	return nil
}

// CountWins returns the lifetime win count of each requested user. Users
// without wins are absent from the map.
func (r *WinnerRepository) CountWins(ctx context.Context, userIDs []int64) (map[int64]int, error) {
	wins := make(map[int64]int, len(userIDs))
	if len(userIDs) == 0 {
		return wins, nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT user_id, COUNT(*)
		FROM winner_records
		WHERE user_id = ANY($1)
		GROUP BY user_id
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count wins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan win count: %w", err)
		}
		wins[userID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate win counts: %w", err)
	}

	return wins, nil
}

// GetAll returns every winner ordered by day then user
func (r *WinnerRepository) GetAll(ctx context.Context) ([]*entities.WinnerRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT day_number, user_id, total_drops, recorded_at
		FROM winner_records
		ORDER BY day_number ASC, user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners: %w", err)
	}
	defer rows.Close()

	var winners []*entities.WinnerRecord
	for rows.Next() {
		var w entities.WinnerRecord
		if err := rows.Scan(&w.DayNumber, &w.UserID, &w.TotalDrops, &w.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}

	return winners, nil
}

// DeleteAll removes every winner record
func (r *WinnerRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM winner_records`); err != nil {
		return fmt.Errorf("failed to delete winners: %w", err)
	}
	return nil
}
