package services

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"plushiebot/domain/entities"
)

// RandomSource draws integers in [0, n)
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// DropRoller decides whether a classified event yields a drop
type DropRoller struct {
	mu  sync.Mutex
	rng RandomSource
}

// NewDropRoller creates a roller. A nil source uses the runtime's global generator.
func NewDropRoller(rng RandomSource) *DropRoller {
	if rng == nil {
		rng = globalRandom{}
	}
	return &DropRoller{rng: rng}
}

// Roll draws uniformly over [1, rate] for the method and succeeds on 1.
// Forced-rare skips the draw and always succeeds.
func (r *DropRoller) Roll(method entities.DropMethod, promo *entities.Promo) (entities.RollOutcome, error) {
	if method == entities.DropMethodForcedRare {
		return entities.RollOutcome{Method: method, Dropped: true, Forced: true}, nil
	}
	if promo == nil {
		return entities.RollOutcome{}, entities.ErrNoActivePromo
	}

	rate, err := promo.RateFor(method)
	if err != nil {
		return entities.RollOutcome{}, err
	}
	if err := rate.Validate(); err != nil {
		return entities.RollOutcome{}, fmt.Errorf("invalid %s rate in promo %q: %w", method, promo.Name, err)
	}

	r.mu.Lock()
	draw := r.rng.IntN(int(rate)) + 1
	r.mu.Unlock()

	return entities.RollOutcome{
		Method:  method,
		Dropped: draw == 1,
		Rate:    rate,
		Draw:    draw,
	}, nil
}
