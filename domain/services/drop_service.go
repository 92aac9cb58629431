package services

import (
	"context"
	"fmt"
	"time"

	"plushiebot/domain/entities"
	"plushiebot/domain/interfaces"
	"plushiebot/events"

	log "github.com/sirupsen/logrus"
)

// windowTopLimit is the size of the trailing-window standings
const windowTopLimit = 3

// DropService records drops and answers the aggregate drop queries
type DropService struct {
	dropRepo       interfaces.DropRepository
	eventPublisher interfaces.EventPublisher
}

// NewDropService creates a drop service over repositories bound to one unit of work
func NewDropService(dropRepo interfaces.DropRepository, eventPublisher interfaces.EventPublisher) *DropService {
	return &DropService{
		dropRepo:       dropRepo,
		eventPublisher: eventPublisher,
	}
}

// Record writes one drop tagged with the day number current at write time
func (s *DropService) Record(ctx context.Context, userID int64, method entities.DropMethod, at time.Time) (*entities.DropRecord, error) {
	if at.IsZero() {
		at = time.Now()
	}

	record, err := s.dropRepo.Record(ctx, userID, method, at.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to record drop: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"method":    method,
		"dayNumber": record.DayNumber,
	}).Info("Recorded drop")

	s.publish(record, false)
	return record, nil
}

// RecordManual grants a drop by hand. A nil day uses the current day.
func (s *DropService) RecordManual(ctx context.Context, userID int64, method entities.DropMethod, day *int) (*entities.DropRecord, error) {
	if day == nil {
		return s.Record(ctx, userID, method, time.Now())
	}
	if *day < 1 {
		return nil, fmt.Errorf("day must be at least 1, got %d", *day)
	}

	record, err := s.dropRepo.RecordForDay(ctx, userID, method, time.Now().UTC(), *day)
	if err != nil {
		return nil, fmt.Errorf("failed to record manual drop: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"method":    method,
		"dayNumber": record.DayNumber,
	}).Info("Recorded manual drop")

	s.publish(record, true)
	return record, nil
}

// TotalDrops returns the user's all-time drop count
func (s *DropService) TotalDrops(ctx context.Context, userID int64) (int64, error) {
	count, err := s.dropRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count total drops: %w", err)
	}
	return count, nil
}

// TodaysDrops returns the user's drop count for the current day number
func (s *DropService) TodaysDrops(ctx context.Context, userID int64) (int64, error) {
	count, err := s.dropRepo.CountByUserForCurrentDay(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count today's drops: %w", err)
	}
	return count, nil
}

// TopDropsToday returns every user's count for the current day, highest first
func (s *DropService) TopDropsToday(ctx context.Context) ([]entities.DropCount, error) {
	return s.DailyLeaderboard(ctx, 0)
}

// DailyLeaderboard is TopDropsToday cut to limit rows; limit <= 0 means all
func (s *DropService) DailyLeaderboard(ctx context.Context, limit int) ([]entities.DropCount, error) {
	rows, err := s.dropRepo.TopForCurrentDay(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's top drops: %w", err)
	}
	return rows, nil
}

// TopDropsInWindow returns the top 3 over the trailing wall-clock window
func (s *DropService) TopDropsInWindow(ctx context.Context, days int, now time.Time) ([]entities.DropCount, error) {
	return s.WindowLeaderboard(ctx, days, now, windowTopLimit)
}

// WindowLeaderboard counts drops within the last days days of wall-clock time
func (s *DropService) WindowLeaderboard(ctx context.Context, days int, now time.Time, limit int) ([]entities.DropCount, error) {
	if days < 1 {
		return nil, fmt.Errorf("window must be at least 1 day, got %d", days)
	}
	since := now.UTC().AddDate(0, 0, -days)
	rows, err := s.dropRepo.TopSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top drops since %s: %w", since.Format(time.RFC3339), err)
	}
	return rows, nil
}

// AllTimeLeaderboard counts every drop ever recorded; limit <= 0 means all
func (s *DropService) AllTimeLeaderboard(ctx context.Context, limit int) ([]entities.DropCount, error) {
	rows, err := s.dropRepo.TopSince(ctx, time.Time{}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get all-time top drops: %w", err)
	}
	return rows, nil
}

func (s *DropService) publish(record *entities.DropRecord, manual bool) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(events.DropRecordedEvent{
		UserID:    record.UserID,
		Method:    string(record.Method),
		DayNumber: record.DayNumber,
		DropTime:  record.DropTime,
		Manual:    manual,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to queue drop recorded event")
	}
}
