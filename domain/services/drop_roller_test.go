package services

import (
	"math/rand/v2"
	"testing"

	"plushiebot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource always returns the same value
type fixedSource int

func (f fixedSource) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func testPromo(catchRate, battleRate, fishRate entities.Rate) *entities.Promo {
	return &entities.Promo{
		Name:       "spring-plush",
		CatchRate:  catchRate,
		BattleRate: battleRate,
		FishRate:   fishRate,
	}
}

func TestDropRoller_RateSelection(t *testing.T) {
	t.Parallel()

	promo := testPromo(10, 20, 30)
	roller := NewDropRoller(fixedSource(0))

	tests := []struct {
		method   entities.DropMethod
		wantRate entities.Rate
	}{
		{entities.DropMethodCatch, 10},
		{entities.DropMethodBattle, 20},
		{entities.DropMethodFish, 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got, err := roller.Roll(tt.method, promo)
			require.NoError(t, err)
			assert.True(t, got.Dropped)
			assert.False(t, got.Forced)
			assert.Equal(t, tt.wantRate, got.Rate)
			assert.Equal(t, 1, got.Draw)
		})
	}
}

func TestDropRoller_MissedDraw(t *testing.T) {
	t.Parallel()

	roller := NewDropRoller(fixedSource(3))
	got, err := roller.Roll(entities.DropMethodCatch, testPromo(10, 10, 10))
	require.NoError(t, err)
	assert.False(t, got.Dropped)
	assert.Equal(t, 4, got.Draw)
}

func TestDropRoller_EmpiricalFrequency(t *testing.T) {
	t.Parallel()

	const trials = 200000
	roller := NewDropRoller(rand.New(rand.NewPCG(7, 11)))

	for _, rate := range []entities.Rate{2, 5, 25} {
		promo := testPromo(rate, rate, rate)
		hits := 0
		for i := 0; i < trials; i++ {
			got, err := roller.Roll(entities.DropMethodCatch, promo)
			require.NoError(t, err)
			if got.Dropped {
				hits++
			}
		}
		want := 1.0 / float64(rate)
		assert.InDelta(t, want, float64(hits)/trials, 0.01, "rate %d", rate)
	}
}

func TestDropRoller_RateOneAlwaysDrops(t *testing.T) {
	t.Parallel()

	roller := NewDropRoller(rand.New(rand.NewPCG(1, 2)))
	promo := testPromo(1, 1, 1)
	for i := 0; i < 1000; i++ {
		got, err := roller.Roll(entities.DropMethodBattle, promo)
		require.NoError(t, err)
		require.True(t, got.Dropped)
	}
}

func TestDropRoller_RejectsInvalidRate(t *testing.T) {
	t.Parallel()

	roller := NewDropRoller(nil)
	for _, rate := range []entities.Rate{0, -3} {
		_, err := roller.Roll(entities.DropMethodFish, testPromo(5, 5, rate))
		assert.ErrorIs(t, err, entities.ErrInvalidRate)
	}
}

func TestDropRoller_ForcedRareBypassesRoll(t *testing.T) {
	t.Parallel()

	// A source that would always miss, and rates that would fail validation
	roller := NewDropRoller(fixedSource(1 << 20))
	got, err := roller.Roll(entities.DropMethodForcedRare, testPromo(0, 0, 0))
	require.NoError(t, err)
	assert.True(t, got.Dropped)
	assert.True(t, got.Forced)
	assert.Zero(t, got.Draw)
}

func TestDropRoller_NoPromo(t *testing.T) {
	t.Parallel()

	_, err := NewDropRoller(nil).Roll(entities.DropMethodCatch, nil)
	assert.ErrorIs(t, err, entities.ErrNoActivePromo)
}
