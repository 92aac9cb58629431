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

func loadedCache(t *testing.T, promo *entities.Promo) *services.PromoCache {
	t.Helper()
	cache := services.NewPromoCache()
	if promo != nil {
		require.NoError(t, cache.Refresh(context.Background(), func(context.Context) (*entities.Promo, error) {
			return promo, nil
		}))
	}
	return cache
}

func TestPromoViewer_View(t *testing.T) {
	t.Parallel()

	promo := testPromo(50, 40, 60)
	role := int64(77)
	promo.EligibilityRoleID = &role

	filter := services.NewEligibilityFilter(services.EligibilityRoles{DonorRoleIDs: []int64{1}, HuntRoleID: 2})
	filter.RebuildAll([]entities.Member{{ID: 42, Username: "ash", RoleIDs: []int64{1, 2, 77}}})

	uow := newMockUnitOfWork()
	uow.dropRepo.On("CountByUser", mock.Anything, int64(42)).Return(int64(12), nil)
	uow.dropRepo.On("CountByUserForCurrentDay", mock.Anything, int64(42)).Return(int64(3), nil)

	viewer := NewPromoViewer(&singleUoWFactory{uow: uow}, loadedCache(t, promo), filter)
	status, err := viewer.View(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "Summer Plushies", status.Promo.Name)
	assert.Equal(t, "Nitro", status.Promo.Prize)
	assert.Equal(t, 50, status.CatchRate)
	assert.Equal(t, 40, status.BattleRate)
	assert.Equal(t, 60, status.FishRate)
	assert.Equal(t, &role, status.EligibilityRoleID)
	assert.True(t, status.Eligible)
	assert.Equal(t, int64(12), status.TotalDrops)
	assert.Equal(t, int64(3), status.TodayDrops)
	assert.Zero(t, uow.commitCount(), "view is read-only")
}

func TestPromoViewer_ViewIneligibleMember(t *testing.T) {
	t.Parallel()

	filter := services.NewEligibilityFilter(services.EligibilityRoles{DonorRoleIDs: []int64{1}, HuntRoleID: 2})

	uow := newMockUnitOfWork()
	uow.dropRepo.On("CountByUser", mock.Anything, int64(9)).Return(int64(0), nil)
	uow.dropRepo.On("CountByUserForCurrentDay", mock.Anything, int64(9)).Return(int64(0), nil)

	status, err := NewPromoViewer(&singleUoWFactory{uow: uow}, loadedCache(t, testPromo(10, 10, 10)), filter).
		View(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, status.Eligible)
	assert.Zero(t, status.TotalDrops)
}

func TestPromoViewer_NoActivePromo(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	viewer := NewPromoViewer(&singleUoWFactory{uow: uow}, loadedCache(t, nil), nil)

	_, err := viewer.View(context.Background(), 42)
	assert.ErrorIs(t, err, entities.ErrNoActivePromo)
	uow.dropRepo.AssertNotCalled(t, "CountByUser", mock.Anything, mock.Anything)
}

func TestPromoViewer_CountError(t *testing.T) {
	t.Parallel()

	uow := newMockUnitOfWork()
	uow.dropRepo.On("CountByUser", mock.Anything, int64(42)).Return(int64(0), errors.New("connection reset"))

	_, err := NewPromoViewer(&singleUoWFactory{uow: uow}, loadedCache(t, testPromo(10, 10, 10)), nil).
		View(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count total drops")
	assert.Equal(t, 1, uow.rollbackCount())
}
