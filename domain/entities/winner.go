package entities

import "time"

// WinnerRecord is a daily winner, unique per (day, user)
type WinnerRecord struct {
	DayNumber  int       `db:"day_number"`
	UserID     int64     `db:"user_id"`
	TotalDrops int64     `db:"total_drops"`
	RecordedAt time.Time `db:"recorded_at"`
}

// SelectionState is the state reached by the winner selector
type SelectionState string

const (
	SelectionIdle             SelectionState = "idle"
	SelectionAggregating      SelectionState = "aggregating"
	SelectionSelectingWinners SelectionState = "selecting_winners"
	SelectionNoneEligible     SelectionState = "none_eligible"
	SelectionWinnersChosen    SelectionState = "winners_chosen"
	SelectionRecorded         SelectionState = "recorded"
)

// Selection is the output of the winner selector
type Selection struct {
	State   SelectionState
	Winners []DropCount
	// Tier is the zero-based count tier the winners came from
	Tier int
	// Skipped lists users filtered out by the block list or win cap
	Skipped []int64
}

// HasWinners returns true if at least one winner was chosen
func (s Selection) HasWinners() bool {
	return s.State == SelectionWinnersChosen && len(s.Winners) > 0
}
