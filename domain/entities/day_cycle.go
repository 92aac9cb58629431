package entities

import (
	"errors"
	"time"
)

// ErrDayAdvanceConflict is returned when the day counter moved under the cycle
var ErrDayAdvanceConflict = errors.New("day number changed during advance")

// DayCycle is the persisted event-day counter
type DayCycle struct {
	DayNumber   int        `db:"day_number"`
	FinalizedAt *time.Time `db:"finalized_at"`
	LastUpdated time.Time  `db:"last_updated"`
}

// IsFinalized returns true once the final standings have been announced
func (d *DayCycle) IsFinalized() bool {
	return d.FinalizedAt != nil
}

// IsPastEvent returns true when the event length has been used up
func (d *DayCycle) IsPastEvent(eventLengthDays int) bool {
	return d.DayNumber > eventLengthDays
}
