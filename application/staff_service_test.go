package application

import (
	"context"
	"errors"
	"testing"

	"plushiebot/domain/entities"
	"plushiebot/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStaffService_SetPromoRefreshesCache(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	promo := testPromo(50, 40, 60)
	uow.promoRepo.On("Upsert", mock.Anything, promo).Return(nil)
	uow.promoRepo.On("GetActive", mock.Anything).Return(promo, nil)

	factory := &singleUoWFactory{uow: uow}
	cache := services.NewPromoCache()
	svc := NewStaffService(factory, NewPromoRefresher(factory, cache, 0), nil)

	require.NoError(t, svc.SetPromo(context.Background(), promo))
	assert.True(t, cache.IsActive())
	assert.Equal(t, 1, uow.commitCount())
}

func TestStaffService_SetPromoRejectsInvalidRate(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	svc := NewStaffService(&singleUoWFactory{uow: uow}, nil, nil)

	err := svc.SetPromo(context.Background(), testPromo(0, 40, 60))
	require.ErrorIs(t, err, entities.ErrInvalidRate)
	uow.promoRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	assert.Zero(t, uow.commitCount())
}

func TestStaffService_ResetEventFailureCommitsNothing(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	uow.promoRepo.On("GetActive", mock.Anything).Return(testPromo(1, 1, 1), nil)
	uow.promoRepo.On("Delete", mock.Anything).Return(nil)
	uow.dropRepo.On("DeleteAll", mock.Anything).Return(errors.New("deadlock detected"))

	svc := NewStaffService(&singleUoWFactory{uow: uow}, nil, nil)
	require.Error(t, svc.ResetEvent(context.Background()))
	assert.Zero(t, uow.commitCount())
}

func TestStaffService_GivePlushieForDay(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	day := 2
	uow.dropRepo.On("RecordForDay", mock.Anything, aliceID, entities.DropMethodCatch, mock.AnythingOfType("time.Time"), 2).
		Return(&entities.DropRecord{ID: 7, UserID: aliceID, Method: entities.DropMethodCatch, DayNumber: 2}, nil)

	svc := NewStaffService(&singleUoWFactory{uow: uow}, nil, nil)
	record, err := svc.GivePlushie(context.Background(), aliceID, entities.DropMethodCatch, &day)
	require.NoError(t, err)
	assert.Equal(t, 2, record.DayNumber)
	assert.Equal(t, 1, uow.commitCount())
}

func TestStaffService_Leaderboard(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	rows := []entities.DropCount{{UserID: 1, Count: 9}}
	uow.dropRepo.On("TopForCurrentDay", mock.Anything, 10).Return(rows, nil)
	uow.dropRepo.On("TopSince", mock.Anything, mock.AnythingOfType("time.Time"), 10).Return(rows, nil)

	svc := NewStaffService(&singleUoWFactory{uow: uow}, nil, nil)

	got, err := svc.Leaderboard(context.Background(), LeaderboardToday, 10)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	got, err = svc.Leaderboard(context.Background(), LeaderboardAllTime, 10)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = svc.Leaderboard(context.Background(), "weekly", 10)
	assert.Error(t, err)
}

func TestStaffService_DailyWinnersGroupsByDay(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	uow.winnerRepo.On("GetAll", mock.Anything).Return([]*entities.WinnerRecord{
		{DayNumber: 1, UserID: 10, TotalDrops: 4},
		{DayNumber: 1, UserID: 11, TotalDrops: 4},
		{DayNumber: 3, UserID: 12, TotalDrops: 2},
	}, nil)

	svc := NewStaffService(&singleUoWFactory{uow: uow}, nil, nil)
	grouped, err := svc.DailyWinners(context.Background())
	require.NoError(t, err)

	require.Len(t, grouped, 2)
	assert.Equal(t, 1, grouped[0].DayNumber)
	assert.Len(t, grouped[0].Winners, 2)
	assert.Equal(t, 3, grouped[1].DayNumber)
}
