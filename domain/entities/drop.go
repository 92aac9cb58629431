package entities

import (
	"fmt"
	"time"
)

// DropMethod is how a drop was earned
type DropMethod string

const (
	DropMethodBattle     DropMethod = "battle"
	DropMethodCatch      DropMethod = "catch"
	DropMethodFish       DropMethod = "fish"
	DropMethodForcedRare DropMethod = "forced-rare"
)

// ParseDropMethod validates a method name
func ParseDropMethod(s string) (DropMethod, error) {
	switch m := DropMethod(s); m {
	case DropMethodBattle, DropMethodCatch, DropMethodFish, DropMethodForcedRare:
		return m, nil
	default:
		return "", fmt.Errorf("unknown drop method %q", s)
	}
}

// DropRecord is an append-only record of a single drop
type DropRecord struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	Method    DropMethod `db:"method"`
	DropTime  time.Time  `db:"drop_time"`
	DayNumber int        `db:"day_number"`
}

// DropCount is one leaderboard row
type DropCount struct {
	UserID int64 `db:"user_id"`
	Count  int64 `db:"count"`
}

// RollOutcome is the result of a drop roll
type RollOutcome struct {
	Method  DropMethod
	Dropped bool
	// Forced is set when the roll was bypassed for the rare species
	Forced bool
	Rate   Rate
	Draw   int
}
