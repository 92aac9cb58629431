package repository

import (
	"context"
	"errors"
	"fmt"

	"plushiebot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PromoRepository implements promo configuration data access
type PromoRepository struct {
	q Queryable
}

// NewPromoRepository creates a new promo repository
func NewPromoRepository(q Queryable) *PromoRepository {
	return &PromoRepository{q: q}
}

// GetActive returns the single promo row, or nil if none is set
func (r *PromoRepository) GetActive(ctx context.Context) (*entities.Promo, error) {
	query := `
		SELECT name, emoji, emoji_name, prize, image_url,
		       catch_rate, battle_rate, fish_rate, whitelist_role_id,
		       number_before_claim, created_at, updated_at
		FROM promo_config
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var promo entities.Promo
	err := r.q.QueryRow(ctx, query).Scan(
		&promo.Name,
		&promo.Emoji,
		&promo.EmojiName,
		&promo.Prize,
		&promo.ImageURL,
		&promo.CatchRate,
		&promo.BattleRate,
		&promo.FishRate,
		&promo.EligibilityRoleID,
		&promo.NumberBeforeClaim,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active promo: %w", err)
	}

	return &promo, nil
}

// Upsert stores the promo by name and removes any other promo row
func (r *PromoRepository) Upsert(ctx context.Context, promo *entities.Promo) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM promo_config WHERE name <> $1`, promo.Name); err != nil {
		return fmt.Errorf("failed to clear previous promo: %w", err)
	}

	query := `
		INSERT INTO promo_config (
			name, emoji, emoji_name, prize, image_url,
			catch_rate, battle_rate, fish_rate, whitelist_role_id, number_before_claim
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name) DO UPDATE SET
			emoji = EXCLUDED.emoji,
			emoji_name = EXCLUDED.emoji_name,
			prize = EXCLUDED.prize,
			image_url = EXCLUDED.image_url,
			catch_rate = EXCLUDED.catch_rate,
			battle_rate = EXCLUDED.battle_rate,
			fish_rate = EXCLUDED.fish_rate,
			whitelist_role_id = EXCLUDED.whitelist_role_id,
			number_before_claim = EXCLUDED.number_before_claim,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		promo.Name,
		promo.Emoji,
		promo.EmojiName,
		promo.Prize,
		promo.ImageURL,
		promo.CatchRate,
		promo.BattleRate,
		promo.FishRate,
		promo.EligibilityRoleID,
		promo.NumberBeforeClaim,
	).Scan(&promo.CreatedAt, &promo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert promo %q: %w", promo.Name, err)
	}

	return nil
}

// Delete removes the promo
func (r *PromoRepository) Delete(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM promo_config`); err != nil {
		return fmt.Errorf("failed to delete promo: %w", err)
	}
	return nil
}
