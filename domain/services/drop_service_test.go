package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"plushiebot/domain/entities"
	"plushiebot/domain/testhelpers"
	"plushiebot/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDropService_Record(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(*testhelpers.MockDropRepository, *testhelpers.MockEventPublisher)
		wantErr    bool
		wantDay    int
	}{
		{
			name: "records and queues event",
			setupMocks: func(repo *testhelpers.MockDropRepository, pub *testhelpers.MockEventPublisher) {
				repo.On("Record", mock.Anything, int64(42), entities.DropMethodBattle, at).
					Return(&entities.DropRecord{ID: 1, UserID: 42, Method: entities.DropMethodBattle, DropTime: at, DayNumber: 3}, nil)
				pub.On("Publish", events.DropRecordedEvent{UserID: 42, Method: "battle", DayNumber: 3, DropTime: at}).Return(nil)
			},
			wantDay: 3,
		},
		{
			name: "store failure is surfaced and nothing is published",
			setupMocks: func(repo *testhelpers.MockDropRepository, pub *testhelpers.MockEventPublisher) {
				repo.On("Record", mock.Anything, int64(42), entities.DropMethodBattle, at).
					Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(testhelpers.MockDropRepository)
			pub := new(testhelpers.MockEventPublisher)
			tt.setupMocks(repo, pub)

			svc := NewDropService(repo, pub)
			got, err := svc.Record(context.Background(), 42, entities.DropMethodBattle, at)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				pub.AssertNotCalled(t, "Publish", mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantDay, got.DayNumber)
			}
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestDropService_RecordManual(t *testing.T) {
	t.Parallel()

	repo := new(testhelpers.MockDropRepository)
	pub := new(testhelpers.MockEventPublisher)
	repo.On("RecordForDay", mock.Anything, int64(5), entities.DropMethodFish, mock.AnythingOfType("time.Time"), 4).
		Return(&entities.DropRecord{UserID: 5, Method: entities.DropMethodFish, DayNumber: 4}, nil)
	pub.On("Publish", mock.MatchedBy(func(e events.DropRecordedEvent) bool {
		return e.Manual && e.DayNumber == 4
	})).Return(nil)

	svc := NewDropService(repo, pub)
	day := 4
	got, err := svc.RecordManual(context.Background(), 5, entities.DropMethodFish, &day)
	require.NoError(t, err)
	assert.Equal(t, 4, got.DayNumber)

	zero := 0
	_, err = svc.RecordManual(context.Background(), 5, entities.DropMethodFish, &zero)
	assert.Error(t, err)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestDropService_TopDropsInWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	rows := []entities.DropCount{{UserID: 1, Count: 9}, {UserID: 2, Count: 4}, {UserID: 3, Count: 4}}

	repo := new(testhelpers.MockDropRepository)
	repo.On("TopSince", mock.Anything, now.AddDate(0, 0, -12), 3).Return(rows, nil)

	svc := NewDropService(repo, nil)
	got, err := svc.TopDropsInWindow(context.Background(), 12, now)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = svc.TopDropsInWindow(context.Background(), 0, now)
	assert.Error(t, err)

	repo.AssertExpectations(t)
}

func TestDropService_Counts(t *testing.T) {
	t.Parallel()

	repo := new(testhelpers.MockDropRepository)
	repo.On("CountByUser", mock.Anything, int64(9)).Return(int64(14), nil)
	repo.On("CountByUserForCurrentDay", mock.Anything, int64(9)).Return(int64(2), nil)
	repo.On("TopForCurrentDay", mock.Anything, 0).Return([]entities.DropCount{{UserID: 9, Count: 2}}, nil)

	svc := NewDropService(repo, nil)
	ctx := context.Background()

	total, err := svc.TotalDrops(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(14), total)

	today, err := svc.TodaysDrops(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(2), today)

	top, err := svc.TopDropsToday(ctx)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
