package testhelpers

import (
	"context"
	"time"

	"plushiebot/domain/entities"
	"plushiebot/events"

	"github.com/stretchr/testify/mock"
)

// MockPromoRepository is a mock implementation of PromoRepository
type MockPromoRepository struct {
	mock.Mock
}

func (m *MockPromoRepository) GetActive(ctx context.Context) (*entities.Promo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Promo), args.Error(1)
}

func (m *MockPromoRepository) Upsert(ctx context.Context, promo *entities.Promo) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}

func (m *MockPromoRepository) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDropRepository is a mock implementation of DropRepository
type MockDropRepository struct {
	mock.Mock
}

func (m *MockDropRepository) Record(ctx context.Context, userID int64, method entities.DropMethod, at time.Time) (*entities.DropRecord, error) {
	args := m.Called(ctx, userID, method, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DropRecord), args.Error(1)
}

func (m *MockDropRepository) RecordForDay(ctx context.Context, userID int64, method entities.DropMethod, at time.Time, dayNumber int) (*entities.DropRecord, error) {
	args := m.Called(ctx, userID, method, at, dayNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DropRecord), args.Error(1)
}

func (m *MockDropRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDropRepository) CountByUserForCurrentDay(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDropRepository) TopForCurrentDay(ctx context.Context, limit int) ([]entities.DropCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DropCount), args.Error(1)
}

func (m *MockDropRepository) TopSince(ctx context.Context, since time.Time, limit int) ([]entities.DropCount, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.DropCount), args.Error(1)
}

func (m *MockDropRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDayCycleRepository is a mock implementation of DayCycleRepository
type MockDayCycleRepository struct {
	mock.Mock
}

func (m *MockDayCycleRepository) Get(ctx context.Context) (*entities.DayCycle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DayCycle), args.Error(1)
}

func (m *MockDayCycleRepository) GetForUpdate(ctx context.Context) (*entities.DayCycle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DayCycle), args.Error(1)
}

func (m *MockDayCycleRepository) Advance(ctx context.Context, expected int) (*entities.DayCycle, error) {
	args := m.Called(ctx, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DayCycle), args.Error(1)
}

func (m *MockDayCycleRepository) MarkFinalized(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDayCycleRepository) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockWinnerRepository is a mock implementation of WinnerRepository
type MockWinnerRepository struct {
	mock.Mock
}

func (m *MockWinnerRepository) ExistsForDay(ctx context.Context, dayNumber int) (bool, error) {
	args := m.Called(ctx, dayNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockWinnerRepository) Upsert(ctx context.Context, winner *entities.WinnerRecord) error {
	args := m.Called(ctx, winner)
	return args.Error(0)
}

func (m *MockWinnerRepository) CountWins(ctx context.Context, userIDs []int64) (map[int64]int, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockWinnerRepository) GetAll(ctx context.Context) ([]*entities.WinnerRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinnerRecord), args.Error(1)
}

func (m *MockWinnerRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
