package testutil

import (
	"context"
	"testing"
	"time"

	"plushiebot/database"
	"plushiebot/domain/entities"

	"github.com/stretchr/testify/require"
)

// CreateTestPromo returns a promo with valid default rates
func CreateTestPromo(name string) *entities.Promo {
	return &entities.Promo{
		Name:              name,
		Emoji:             "<:plush:123>",
		EmojiName:         "plush",
		Prize:             "Plushie",
		ImageURL:          "https://example.com/plush.png",
		CatchRate:         100,
		BattleRate:        50,
		FishRate:          80,
		NumberBeforeClaim: 5,
	}
}

// SeedDrops inserts count drops for a user on a day at the given time
func SeedDrops(t *testing.T, db *database.DB, userID int64, dayNumber, count int, at time.Time) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := db.Exec(context.Background(),
			`INSERT INTO drop_records (user_id, method, drop_time, day_number) VALUES ($1, 'catch', $2, $3)`,
			userID, at, dayNumber)
		require.NoError(t, err)
	}
}

// SeedWins inserts winner rows for a user on the given days
func SeedWins(t *testing.T, db *database.DB, userID int64, days ...int) {
	t.Helper()
	for _, day := range days {
		_, err := db.Exec(context.Background(),
			`INSERT INTO winner_records (day_number, user_id, total_drops) VALUES ($1, $2, 1)`,
			day, userID)
		require.NoError(t, err)
	}
}

// SetDay forces the day counter to a value
func SetDay(t *testing.T, db *database.DB, dayNumber int) {
	t.Helper()
	_, err := db.Exec(context.Background(), `UPDATE current_day SET day_number = $1 WHERE id = 1`, dayNumber)
	require.NoError(t, err)
}
