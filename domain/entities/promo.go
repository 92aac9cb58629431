package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoActivePromo is returned when no promo snapshot is cached
	ErrNoActivePromo = errors.New("no active promo")

	// ErrInvalidRate is returned for drop rates below 1
	ErrInvalidRate = errors.New("drop rate must be at least 1")
)

// Rate is the denominator N of a 1-in-N drop chance
type Rate int

// Validate reports whether the rate can be rolled against
func (r Rate) Validate() error {
	if r < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidRate, r)
	}
	return nil
}

// Promo is an immutable snapshot of the active promotional event
type Promo struct {
	Name              string    `db:"name"`
	Emoji             string    `db:"emoji"`
	EmojiName         string    `db:"emoji_name"`
	Prize             string    `db:"prize"`
	ImageURL          string    `db:"image_url"`
	CatchRate         Rate      `db:"catch_rate"`
	BattleRate        Rate      `db:"battle_rate"`
	FishRate          Rate      `db:"fish_rate"`
	EligibilityRoleID *int64    `db:"whitelist_role_id"` // NULL means no extra role is required
	NumberBeforeClaim int       `db:"number_before_claim"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// RateFor returns the configured rate for a rollable drop method
func (p *Promo) RateFor(method DropMethod) (Rate, error) {
	switch method {
	case DropMethodBattle:
		return p.BattleRate, nil
	case DropMethodCatch:
		return p.CatchRate, nil
	case DropMethodFish:
		return p.FishRate, nil
	default:
		return 0, fmt.Errorf("no rate for drop method %q", method)
	}
}

// Validate checks all rates of the promo
func (p *Promo) Validate() error {
	if p.Name == "" {
		return errors.New("promo name is required")
	}
	for _, r := range []Rate{p.CatchRate, p.BattleRate, p.FishRate} {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if p.NumberBeforeClaim < 0 {
		return errors.New("number before claim cannot be negative")
	}
	return nil
}

// PromoUpdate carries a partial promo change; nil fields are left as they are
type PromoUpdate struct {
	Emoji             *string
	EmojiName         *string
	Prize             *string
	ImageURL          *string
	CatchRate         *Rate
	BattleRate        *Rate
	FishRate          *Rate
	EligibilityRoleID *int64
	NumberBeforeClaim *int
}

// Apply returns a copy of the promo with the update applied
func (u PromoUpdate) Apply(p Promo) Promo {
	if u.Emoji != nil {
		p.Emoji = *u.Emoji
	}
	if u.EmojiName != nil {
		p.EmojiName = *u.EmojiName
	}
	if u.Prize != nil {
		p.Prize = *u.Prize
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.CatchRate != nil {
		p.CatchRate = *u.CatchRate
	}
	if u.BattleRate != nil {
		p.BattleRate = *u.BattleRate
	}
	if u.FishRate != nil {
		p.FishRate = *u.FishRate
	}
	if u.EligibilityRoleID != nil {
		p.EligibilityRoleID = u.EligibilityRoleID
	}
	if u.NumberBeforeClaim != nil {
		p.NumberBeforeClaim = *u.NumberBeforeClaim
	}
	return p
}
