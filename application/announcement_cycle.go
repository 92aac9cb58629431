package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"plushiebot/application/dto"
	"plushiebot/domain/entities"
	"plushiebot/domain/services"
	"plushiebot/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CycleStatus is the outcome of one announcement cycle run
type CycleStatus string

const (
	CycleWinnersRecorded  CycleStatus = "winners_recorded"
	CycleNoneEligible     CycleStatus = "none_eligible"
	CycleAlreadyRecorded  CycleStatus = "already_recorded"
	CycleFinalized        CycleStatus = "finalized"
	CycleAlreadyFinalized CycleStatus = "already_finalized"
)

// CycleResult describes what a cycle run did
type CycleResult struct {
	CycleID   uuid.UUID
	Status    CycleStatus
	DayNumber int
	// NextDay is the day number after the run; equal to DayNumber when nothing advanced
	NextDay int
	Winners []dto.WinnerDTO
	Skipped []int64
}

// announceTimeout bounds each Discord post made while the day row is locked
const announceTimeout = 15 * time.Second

// CycleSettings configures the announcement cycle
type CycleSettings struct {
	EventLengthDays      int
	Rules                services.WinnerRules
	BonusRewardThreshold int64 // 0 disables the bonus track
}

// AnnouncementCycle selects, records and announces a day's winners, then
// advances the day counter, all inside one transaction. Winner roles are
// granted after commit.
type AnnouncementCycle struct {
	uowFactory UnitOfWorkFactory
	announcer  WinnerAnnouncer
	settings   CycleSettings
	metrics    MetricsRecorder
	now        func() time.Time
	mu         sync.Mutex

	// announceTimeout caps announcer calls made inside the transaction
	announceTimeout time.Duration
}

// NewAnnouncementCycle creates an announcement cycle
func NewAnnouncementCycle(uowFactory UnitOfWorkFactory, announcer WinnerAnnouncer, settings CycleSettings) *AnnouncementCycle {
	return &AnnouncementCycle{
		uowFactory: uowFactory,
		announcer:  announcer,
		settings:   settings,
		metrics:    noopMetrics{},
		now:        time.Now,

		announceTimeout: announceTimeout,
	}
}

// SetMetrics attaches a metrics recorder
func (c *AnnouncementCycle) SetMetrics(m MetricsRecorder) {
	if m != nil {
		c.metrics = m
	}
}

// Run executes one cycle. The day row stays locked until commit, so drops
// written meanwhile wait and land on the next day.
func (c *AnnouncementCycle) Run(ctx context.Context) (CycleResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.run(ctx)
	if err != nil {
		c.metrics.RecordCycle(ctx, "failed")
		log.WithFields(log.Fields{
			"cycleID": result.CycleID,
			"day":     result.DayNumber,
			"error":   err,
		}).Error("Announcement cycle failed")
		return result, err
	}

	c.metrics.RecordCycle(ctx, string(result.Status))
	log.WithFields(log.Fields{
		"cycleID": result.CycleID,
		"status":  result.Status,
		"day":     result.DayNumber,
		"nextDay": result.NextDay,
		"winners": len(result.Winners),
		"skipped": len(result.Skipped),
	}).Info("Announcement cycle completed")
	return result, nil
}

func (c *AnnouncementCycle) run(ctx context.Context) (CycleResult, error) {
	result := CycleResult{CycleID: uuid.New()}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	day, err := uow.DayCycleRepository().GetForUpdate(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to lock day cycle: %w", err)
	}
	if day == nil {
		return result, errors.New("day cycle row is missing")
	}
	result.DayNumber = day.DayNumber
	result.NextDay = day.DayNumber

	if day.IsFinalized() {
		result.Status = CycleAlreadyFinalized
		return result, nil
	}

	promo, err := uow.PromoRepository().GetActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get active promo: %w", err)
	}

	if day.IsPastEvent(c.settings.EventLengthDays) {
		return c.finalize(ctx, uow, promo, result)
	}

	recorded, err := uow.WinnerRepository().ExistsForDay(ctx, day.DayNumber)
	if err != nil {
		return result, fmt.Errorf("failed to check existing winners: %w", err)
	}
	if recorded {
		result.Status = CycleAlreadyRecorded
		return result, nil
	}

	dropService := services.NewDropService(uow.DropRepository(), uow.EventBus())
	rows, err := dropService.TopDropsToday(ctx)
	if err != nil {
		return result, err
	}

	selector := services.NewWinnerSelector(uow.WinnerRepository(), c.settings.Rules)
	selection, err := selector.Select(ctx, rows)
	if err != nil {
		return result, err
	}
	result.Skipped = selection.Skipped

	for _, w := range selection.Winners {
		record := &entities.WinnerRecord{
			DayNumber:  day.DayNumber,
			UserID:     w.UserID,
			TotalDrops: w.Count,
		}
		if err := uow.WinnerRepository().Upsert(ctx, record); err != nil {
			return result, fmt.Errorf("failed to record winner %d: %w", w.UserID, err)
		}
	}
	result.Winners = c.toWinnerDTOs(selection.Winners)

	if selection.HasWinners() {
		result.Status = CycleWinnersRecorded
	} else {
		result.Status = CycleNoneEligible
	}

	announceCtx, cancel := context.WithTimeout(ctx, c.announceTimeout)
	err = c.announcer.AnnounceWinners(announceCtx, dto.WinnerAnnouncementDTO{
		CycleID:   result.CycleID.String(),
		DayNumber: day.DayNumber,
		Winners:   result.Winners,
		Promo:     promoToDTO(promo),
	})
	cancel()
	if err != nil {
		return result, fmt.Errorf("failed to announce winners: %w", err)
	}

	next, err := uow.DayCycleRepository().Advance(ctx, day.DayNumber)
	if err != nil {
		return result, fmt.Errorf("failed to advance day: %w", err)
	}
	result.NextDay = next.DayNumber

	if err := uow.EventBus().Publish(events.WinnersRecordedEvent{
		CycleID:   result.CycleID.String(),
		DayNumber: day.DayNumber,
		Winners:   toSummaries(result.Winners),
	}); err != nil {
		log.WithError(err).Warn("Failed to queue winners recorded event")
	}

	if err := uow.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit cycle: %w", err)
	}

	// Role grants are slow member edits; the day row is released by now
	if len(result.Winners) > 0 {
		c.announcer.GrantWinnerRoles(ctx, result.Winners)
	}
	return result, nil
}

// finalize posts the standings over the whole event window and closes the event
func (c *AnnouncementCycle) finalize(ctx context.Context, uow UnitOfWork, promo *entities.Promo, result CycleResult) (CycleResult, error) {
	dropService := services.NewDropService(uow.DropRepository(), uow.EventBus())
	top, err := dropService.TopDropsInWindow(ctx, c.settings.EventLengthDays, c.now())
	if err != nil {
		return result, err
	}
	result.Winners = c.toWinnerDTOs(top)

	announceCtx, cancel := context.WithTimeout(ctx, c.announceTimeout)
	err = c.announcer.AnnounceFinal(announceCtx, dto.FinalStandingsDTO{
		CycleID:         result.CycleID.String(),
		DayNumber:       result.DayNumber,
		EventLengthDays: c.settings.EventLengthDays,
		Standings:       result.Winners,
		Promo:           promoToDTO(promo),
	})
	cancel()
	if err != nil {
		return result, fmt.Errorf("failed to announce final standings: %w", err)
	}

	if err := uow.DayCycleRepository().MarkFinalized(ctx); err != nil {
		return result, fmt.Errorf("failed to mark event finalized: %w", err)
	}

	if err := uow.EventBus().Publish(events.EventFinalizedEvent{
		CycleID:   result.CycleID.String(),
		DayNumber: result.DayNumber,
		Standings: toSummaries(result.Winners),
	}); err != nil {
		log.WithError(err).Warn("Failed to queue event finalized event")
	}

	if err := uow.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit finalization: %w", err)
	}
	result.Status = CycleFinalized
	return result, nil
}

func (c *AnnouncementCycle) toWinnerDTOs(rows []entities.DropCount) []dto.WinnerDTO {
	out := make([]dto.WinnerDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.WinnerDTO{
			UserID:        r.UserID,
			Drops:         r.Count,
			BonusEligible: c.settings.BonusRewardThreshold > 0 && r.Count >= c.settings.BonusRewardThreshold,
		})
	}
	return out
}

func toSummaries(winners []dto.WinnerDTO) []events.WinnerSummary {
	out := make([]events.WinnerSummary, 0, len(winners))
	for _, w := range winners {
		out = append(out, events.WinnerSummary{UserID: w.UserID, Drops: w.Drops})
	}
	return out
}
