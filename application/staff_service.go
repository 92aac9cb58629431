package application

import (
	"context"
	"fmt"
	"sort"

	"plushiebot/domain/entities"
	"plushiebot/domain/services"

	log "github.com/sirupsen/logrus"
)

// LeaderboardView selects the leaderboard scope
type LeaderboardView string

const (
	LeaderboardToday   LeaderboardView = "today"
	LeaderboardAllTime LeaderboardView = "all_time"
)

// DayWinners groups the winners of one day
type DayWinners struct {
	DayNumber int
	Winners   []*entities.WinnerRecord
}

// StaffService backs the staff slash commands
type StaffService struct {
	uowFactory UnitOfWorkFactory
	refresher  *PromoRefresher
	cycle      CycleRunner
}

// NewStaffService creates a staff service
func NewStaffService(uowFactory UnitOfWorkFactory, refresher *PromoRefresher, cycle CycleRunner) *StaffService {
	return &StaffService{
		uowFactory: uowFactory,
		refresher:  refresher,
		cycle:      cycle,
	}
}

// SetPromo stores a promo and reloads the cache
func (s *StaffService) SetPromo(ctx context.Context, promo *entities.Promo) error {
	err := s.withPromoService(ctx, func(ps *services.PromoService) error {
		return ps.Set(ctx, promo)
	})
	if err != nil {
		return err
	}
	s.refreshCache(ctx)
	return nil
}

// UpdatePromo applies a partial change to the active promo and reloads the cache
func (s *StaffService) UpdatePromo(ctx context.Context, update entities.PromoUpdate) (*entities.Promo, error) {
	var updated *entities.Promo
	err := s.withPromoService(ctx, func(ps *services.PromoService) error {
		var err error
		updated, err = ps.Update(ctx, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.refreshCache(ctx)
	return updated, nil
}

// ResetEvent wipes the event in one transaction and clears the cache
func (s *StaffService) ResetEvent(ctx context.Context) error {
	err := s.withPromoService(ctx, func(ps *services.PromoService) error {
		return ps.ResetEvent(ctx)
	})
	if err != nil {
		return err
	}
	s.refreshCache(ctx)
	return nil
}

// GivePlushie records a manual drop; a nil day uses the current day
func (s *StaffService) GivePlushie(ctx context.Context, userID int64, method entities.DropMethod, day *int) (*entities.DropRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	record, err := services.NewDropService(uow.DropRepository(), uow.EventBus()).RecordManual(ctx, userID, method, day)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit manual drop: %w", err)
	}
	return record, nil
}

// Leaderboard returns drop counts for the view, highest first
func (s *StaffService) Leaderboard(ctx context.Context, view LeaderboardView, limit int) ([]entities.DropCount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dropService := services.NewDropService(uow.DropRepository(), nil)
	switch view {
	case LeaderboardToday:
		return dropService.DailyLeaderboard(ctx, limit)
	case LeaderboardAllTime:
		return dropService.AllTimeLeaderboard(ctx, limit)
	default:
		return nil, fmt.Errorf("unknown leaderboard view %q", view)
	}
}

// CurrentDay returns the event day counter
func (s *StaffService) CurrentDay(ctx context.Context) (*entities.DayCycle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	day, err := uow.DayCycleRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get day cycle: %w", err)
	}
	return day, nil
}

// DailyWinners returns every recorded winner grouped by day, oldest first
func (s *StaffService) DailyWinners(ctx context.Context) ([]DayWinners, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	all, err := uow.WinnerRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners: %w", err)
	}

	byDay := make(map[int][]*entities.WinnerRecord)
	for _, w := range all {
		byDay[w.DayNumber] = append(byDay[w.DayNumber], w)
	}

	grouped := make([]DayWinners, 0, len(byDay))
	for day, winners := range byDay {
		grouped = append(grouped, DayWinners{DayNumber: day, Winners: winners})
	}
	sort.Slice(grouped, func(i, j int) bool { return grouped[i].DayNumber < grouped[j].DayNumber })
	return grouped, nil
}

// AnnounceNow runs the announcement cycle outside the schedule
func (s *StaffService) AnnounceNow(ctx context.Context) (CycleResult, error) {
	return s.cycle.Run(ctx)
}

func (s *StaffService) withPromoService(ctx context.Context, fn func(ps *services.PromoService) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	promoService := services.NewPromoService(
		uow.PromoRepository(),
		uow.DropRepository(),
		uow.WinnerRepository(),
		uow.DayCycleRepository(),
		uow.EventBus(),
	)
	if err := fn(promoService); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *StaffService) refreshCache(ctx context.Context) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.RefreshNow(ctx); err != nil {
		log.WithError(err).Warn("Promo cache refresh after staff change failed")
	}
}
