package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"plushiebot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// PromoFetcher loads the active promo; nil means no promo is running
type PromoFetcher func(ctx context.Context) (*entities.Promo, error)

// PromoCache holds the active promo snapshot for concurrent readers
type PromoCache struct {
	current atomic.Pointer[entities.Promo]
}

// NewPromoCache creates an empty cache
func NewPromoCache() *PromoCache {
	return &PromoCache{}
}

// Refresh replaces the snapshot with a fresh one. A failed fetch keeps the
// previous snapshot in place.
func (c *PromoCache) Refresh(ctx context.Context, fetch PromoFetcher) error {
	promo, err := fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Promo refresh failed, keeping cached promo")
		return fmt.Errorf("failed to fetch active promo: %w", err)
	}

	if promo == nil {
		if old := c.current.Swap(nil); old != nil {
			log.WithField("promo", old.Name).Info("Promo ended, cache cleared")
		}
		return nil
	}

	// Copy so the caller cannot mutate the cached value
	snapshot := *promo
	if promo.EligibilityRoleID != nil {
		roleID := *promo.EligibilityRoleID
		snapshot.EligibilityRoleID = &roleID
	}

	old := c.current.Swap(&snapshot)
	if old == nil || old.Name != snapshot.Name || !old.UpdatedAt.Equal(snapshot.UpdatedAt) {
		log.WithFields(log.Fields{
			"promo":      snapshot.Name,
			"catchRate":  snapshot.CatchRate,
			"battleRate": snapshot.BattleRate,
			"fishRate":   snapshot.FishRate,
		}).Info("Promo cache updated")
	}
	return nil
}

// IsActive returns true if a promo snapshot is cached
func (c *PromoCache) IsActive() bool {
	return c.current.Load() != nil
}

// Current returns the cached snapshot or ErrNoActivePromo
func (c *PromoCache) Current() (*entities.Promo, error) {
	p := c.current.Load()
	if p == nil {
		return nil, entities.ErrNoActivePromo
	}
	return p, nil
}
