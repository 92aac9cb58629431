package application

import (
	"context"
	"sync"

	"plushiebot/application/dto"
	"plushiebot/domain/entities"
	"plushiebot/domain/interfaces"
	"plushiebot/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// mockUnitOfWork hands out testify repository mocks and tracks the transaction
type mockUnitOfWork struct {
	promoRepo  *testhelpers.MockPromoRepository
	dropRepo   *testhelpers.MockDropRepository
	dayRepo    *testhelpers.MockDayCycleRepository
	winnerRepo *testhelpers.MockWinnerRepository
	publisher  *testhelpers.MockEventPublisher

	mu         sync.Mutex
	begun      int
	commits    int
	rollbacks  int
	beginError error
}

func newMockUnitOfWork() *mockUnitOfWork {
	pub := new(testhelpers.MockEventPublisher)
	pub.On("Publish", mock.Anything).Return(nil).Maybe()
	return &mockUnitOfWork{
		promoRepo:  new(testhelpers.MockPromoRepository),
		dropRepo:   new(testhelpers.MockDropRepository),
		dayRepo:    new(testhelpers.MockDayCycleRepository),
		winnerRepo: new(testhelpers.MockWinnerRepository),
		publisher:  pub,
	}
}

func (u *mockUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.begun++
	return u.beginError
}

func (u *mockUnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commits++
	return nil
}

func (u *mockUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rollbacks++
	return nil
}

func (u *mockUnitOfWork) PromoRepository() interfaces.PromoRepository       { return u.promoRepo }
func (u *mockUnitOfWork) DropRepository() interfaces.DropRepository         { return u.dropRepo }
func (u *mockUnitOfWork) DayCycleRepository() interfaces.DayCycleRepository { return u.dayRepo }
func (u *mockUnitOfWork) WinnerRepository() interfaces.WinnerRepository     { return u.winnerRepo }
func (u *mockUnitOfWork) EventBus() interfaces.EventPublisher               { return u.publisher }

func (u *mockUnitOfWork) commitCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.commits
}

func (u *mockUnitOfWork) rollbackCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rollbacks
}

// singleUoWFactory returns the same mock unit of work on every call
type singleUoWFactory struct {
	uow *mockUnitOfWork
}

func (f *singleUoWFactory) Create() UnitOfWork {
	return f.uow
}

type mockPlatform struct {
	mock.Mock
}

func (m *mockPlatform) FetchMessage(ctx context.Context, channelID, messageID int64) (*dto.FetchedMessage, error) {
	args := m.Called(ctx, channelID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FetchedMessage), args.Error(1)
}

func (m *mockPlatform) GrantRole(ctx context.Context, userID, roleID int64) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *mockPlatform) ListGuildMembers(ctx context.Context) ([]entities.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Member), args.Error(1)
}

type mockDropAnnouncer struct {
	mock.Mock
}

func (m *mockDropAnnouncer) AnnounceDrop(ctx context.Context, drop dto.DropAnnouncementDTO) error {
	args := m.Called(ctx, drop)
	return args.Error(0)
}

type mockWinnerAnnouncer struct {
	mock.Mock

	grantMu sync.Mutex
	granted [][]dto.WinnerDTO
	onGrant func()
}

func (m *mockWinnerAnnouncer) AnnounceWinners(ctx context.Context, announcement dto.WinnerAnnouncementDTO) error {
	args := m.Called(ctx, announcement)
	return args.Error(0)
}

func (m *mockWinnerAnnouncer) AnnounceFinal(ctx context.Context, standings dto.FinalStandingsDTO) error {
	args := m.Called(ctx, standings)
	return args.Error(0)
}

func (m *mockWinnerAnnouncer) GrantWinnerRoles(ctx context.Context, winners []dto.WinnerDTO) {
	m.grantMu.Lock()
	defer m.grantMu.Unlock()
	if m.onGrant != nil {
		m.onGrant()
	}
	m.granted = append(m.granted, winners)
}

func (m *mockWinnerAnnouncer) grants() [][]dto.WinnerDTO {
	m.grantMu.Lock()
	defer m.grantMu.Unlock()
	return m.granted
}

// countingSource always draws the same value and counts the draws
type countingSource struct {
	mu    sync.Mutex
	value int
	draws int
}

func (s *countingSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	if s.value >= n {
		return n - 1
	}
	return s.value
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}
