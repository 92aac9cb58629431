package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"plushiebot/application/dto"
	"plushiebot/domain/entities"
	"plushiebot/domain/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCycle(uow *mockUnitOfWork, announcer *mockWinnerAnnouncer, settings CycleSettings) *AnnouncementCycle {
	cycle := NewAnnouncementCycle(&singleUoWFactory{uow: uow}, announcer, settings)
	cycle.now = func() time.Time { return time.Date(2026, 6, 13, 4, 0, 0, 0, time.UTC) }
	return cycle
}

var defaultCycleSettings = CycleSettings{
	EventLengthDays: 12,
	Rules:           services.WinnerRules{WinCap: 2, MaxTiers: 5},
}

func TestAnnouncementCycle_Run(t *testing.T) {
	t.Parallel()

	promo := testPromo(10, 10, 10)

	tests := []struct {
		name        string
		settings    CycleSettings
		setupMocks  func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer)
		wantStatus  CycleStatus
		wantErr     string
		wantWinners []dto.WinnerDTO
		wantNextDay int
		wantCommit  bool
	}{
		{
			name:     "tied leaders both win and the day advances",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 3}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)
				uow.winnerRepo.On("ExistsForDay", mock.Anything, 3).Return(false, nil)
				uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{
					{UserID: 1, Count: 5}, {UserID: 2, Count: 5}, {UserID: 3, Count: 3},
				}, nil)
				uow.winnerRepo.On("CountWins", mock.Anything, []int64{1, 2, 3}).Return(map[int64]int{}, nil)
				uow.winnerRepo.On("Upsert", mock.Anything, &entities.WinnerRecord{DayNumber: 3, UserID: 1, TotalDrops: 5}).Return(nil).Once()
				uow.winnerRepo.On("Upsert", mock.Anything, &entities.WinnerRecord{DayNumber: 3, UserID: 2, TotalDrops: 5}).Return(nil).Once()
				ann.On("AnnounceWinners", mock.Anything, mock.MatchedBy(func(a dto.WinnerAnnouncementDTO) bool {
					return a.DayNumber == 3 && len(a.Winners) == 2 && a.Promo != nil && a.Promo.Prize == "Nitro"
				})).Return(nil)
				uow.dayRepo.On("Advance", mock.Anything, 3).Return(&entities.DayCycle{DayNumber: 4}, nil)
			},
			wantStatus:  CycleWinnersRecorded,
			wantWinners: []dto.WinnerDTO{{UserID: 1, Drops: 5}, {UserID: 2, Drops: 5}},
			wantNextDay: 4,
			wantCommit:  true,
		},
		{
			name:     "capped leader is skipped for the next eligible tied user",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 5}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)
				uow.winnerRepo.On("ExistsForDay", mock.Anything, 5).Return(false, nil)
				uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{
					{UserID: 1, Count: 5}, {UserID: 2, Count: 5}, {UserID: 3, Count: 2},
				}, nil)
				uow.winnerRepo.On("CountWins", mock.Anything, mock.Anything).Return(map[int64]int{1: 2}, nil)
				uow.winnerRepo.On("Upsert", mock.Anything, &entities.WinnerRecord{DayNumber: 5, UserID: 2, TotalDrops: 5}).Return(nil).Once()
				ann.On("AnnounceWinners", mock.Anything, mock.Anything).Return(nil)
				uow.dayRepo.On("Advance", mock.Anything, 5).Return(&entities.DayCycle{DayNumber: 6}, nil)
			},
			wantStatus:  CycleWinnersRecorded,
			wantWinners: []dto.WinnerDTO{{UserID: 2, Drops: 5}},
			wantNextDay: 6,
			wantCommit:  true,
		},
		{
			name:     "empty day still advances",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 2}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)
				uow.winnerRepo.On("ExistsForDay", mock.Anything, 2).Return(false, nil)
				uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{}, nil)
				ann.On("AnnounceWinners", mock.Anything, mock.MatchedBy(func(a dto.WinnerAnnouncementDTO) bool {
					return len(a.Winners) == 0
				})).Return(nil)
				uow.dayRepo.On("Advance", mock.Anything, 2).Return(&entities.DayCycle{DayNumber: 3}, nil)
			},
			wantStatus:  CycleNoneEligible,
			wantWinners: []dto.WinnerDTO{},
			wantNextDay: 3,
			wantCommit:  true,
		},
		{
			name:     "winners already recorded is a no-op",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 7}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)
				uow.winnerRepo.On("ExistsForDay", mock.Anything, 7).Return(true, nil)
			},
			wantStatus:  CycleAlreadyRecorded,
			wantNextDay: 7,
		},
		{
			name:     "finalized event is a no-op",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				finalizedAt := time.Now()
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 13, FinalizedAt: &finalizedAt}, nil)
			},
			wantStatus:  CycleAlreadyFinalized,
			wantNextDay: 13,
		},
		{
			name:     "day past the event length posts final standings",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 13}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)
				since := time.Date(2026, 6, 1, 4, 0, 0, 0, time.UTC)
				uow.dropRepo.On("TopSince", mock.Anything, since, 3).Return([]entities.DropCount{
					{UserID: 9, Count: 40}, {UserID: 8, Count: 31}, {UserID: 7, Count: 30},
				}, nil)
				ann.On("AnnounceFinal", mock.Anything, mock.MatchedBy(func(s dto.FinalStandingsDTO) bool {
					return s.EventLengthDays == 12 && len(s.Standings) == 3 && s.Standings[0].UserID == 9
				})).Return(nil)
				uow.dayRepo.On("MarkFinalized", mock.Anything).Return(nil)
			},
			wantStatus:  CycleFinalized,
			wantWinners: []dto.WinnerDTO{{UserID: 9, Drops: 40}, {UserID: 8, Drops: 31}, {UserID: 7, Drops: 30}},
			wantNextDay: 13,
			wantCommit:  true,
		},
		{
			name: "bonus threshold flags qualifying winners",
			settings: CycleSettings{
				EventLengthDays:      12,
				Rules:                services.WinnerRules{WinCap: 2, MaxTiers: 5},
				BonusRewardThreshold: 5,
			},
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 1}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)
				uow.winnerRepo.On("ExistsForDay", mock.Anything, 1).Return(false, nil)
				uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{{UserID: 1, Count: 6}}, nil)
				uow.winnerRepo.On("CountWins", mock.Anything, mock.Anything).Return(map[int64]int{}, nil)
				uow.winnerRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
				ann.On("AnnounceWinners", mock.Anything, mock.Anything).Return(nil)
				uow.dayRepo.On("Advance", mock.Anything, 1).Return(&entities.DayCycle{DayNumber: 2}, nil)
			},
			wantStatus:  CycleWinnersRecorded,
			wantWinners: []dto.WinnerDTO{{UserID: 1, Drops: 6, BonusEligible: true}},
			wantNextDay: 2,
			wantCommit:  true,
		},
		{
			name:     "announce failure rolls back without advancing",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 3}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)
				uow.winnerRepo.On("ExistsForDay", mock.Anything, 3).Return(false, nil)
				uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{{UserID: 1, Count: 2}}, nil)
				uow.winnerRepo.On("CountWins", mock.Anything, mock.Anything).Return(map[int64]int{}, nil)
				uow.winnerRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
				ann.On("AnnounceWinners", mock.Anything, mock.Anything).Return(errors.New("unknown channel"))
			},
			wantErr:     "failed to announce winners",
			wantNextDay: 3,
		},
		{
			name:     "advance conflict rolls back",
			settings: defaultCycleSettings,
			setupMocks: func(uow *mockUnitOfWork, ann *mockWinnerAnnouncer) {
				uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 3}, nil)
				uow.promoRepo.On("GetActive", mock.Anything).Return(nil, nil)
				uow.winnerRepo.On("ExistsForDay", mock.Anything, 3).Return(false, nil)
				uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{}, nil)
				ann.On("AnnounceWinners", mock.Anything, mock.Anything).Return(nil)
				uow.dayRepo.On("Advance", mock.Anything, 3).Return(nil, entities.ErrDayAdvanceConflict)
			},
			wantErr:     "failed to advance day",
			wantNextDay: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uow := newMockUnitOfWork()
			announcer := new(mockWinnerAnnouncer)
			tt.setupMocks(uow, announcer)

			result, err := newTestCycle(uow, announcer, tt.settings).Run(context.Background())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, result.Status)
				if tt.wantWinners != nil {
					assert.Equal(t, tt.wantWinners, result.Winners)
				}
			}
			assert.Equal(t, tt.wantNextDay, result.NextDay)
			assert.NotEqual(t, uuid.Nil, result.CycleID)

			if tt.wantCommit {
				assert.Equal(t, 1, uow.commitCount())
			} else {
				assert.Zero(t, uow.commitCount())
				assert.Empty(t, announcer.grants(), "no roles without a committed day")
			}
			if tt.wantStatus == CycleAlreadyRecorded {
				uow.winnerRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
				uow.dayRepo.AssertNotCalled(t, "Advance", mock.Anything, mock.Anything)
			}
			uow.dayRepo.AssertExpectations(t)
			announcer.AssertExpectations(t)
		})
	}
}

func TestAnnouncementCycle_GrantsRolesAfterCommit(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	announcer := new(mockWinnerAnnouncer)

	uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 4}, nil)
	uow.promoRepo.On("GetActive", mock.Anything).Return(testPromo(10, 10, 10), nil)
	uow.winnerRepo.On("ExistsForDay", mock.Anything, 4).Return(false, nil)
	uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{{UserID: 1, Count: 3}}, nil)
	uow.winnerRepo.On("CountWins", mock.Anything, mock.Anything).Return(map[int64]int{}, nil)
	uow.winnerRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	announcer.On("AnnounceWinners", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(nil)
	uow.dayRepo.On("Advance", mock.Anything, 4).Return(&entities.DayCycle{DayNumber: 5}, nil)

	var commitsAtGrant int
	announcer.onGrant = func() { commitsAtGrant = uow.commitCount() }

	_, err := newTestCycle(uow, announcer, defaultCycleSettings).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, commitsAtGrant, "roles are granted once the day row is released")
	assert.Equal(t, [][]dto.WinnerDTO{{{UserID: 1, Drops: 3}}}, announcer.grants())
	announcer.AssertExpectations(t)
}

func TestAnnouncementCycle_AnnounceIsBounded(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	announcer := new(mockWinnerAnnouncer)

	uow.dayRepo.On("GetForUpdate", mock.Anything).Return(&entities.DayCycle{DayNumber: 2}, nil)
	uow.promoRepo.On("GetActive", mock.Anything).Return(nil, nil)
	uow.winnerRepo.On("ExistsForDay", mock.Anything, 2).Return(false, nil)
	uow.dropRepo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{}, nil)
	announcer.On("AnnounceWinners", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)

	cycle := newTestCycle(uow, announcer, defaultCycleSettings)
	cycle.announceTimeout = 20 * time.Millisecond

	_, err := cycle.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, uow.commitCount())
	assert.Equal(t, 1, uow.rollbackCount())
	uow.dayRepo.AssertNotCalled(t, "Advance", mock.Anything, mock.Anything)
}
