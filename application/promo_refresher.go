package application

import (
	"context"
	"fmt"
	"time"

	"plushiebot/domain/entities"
	"plushiebot/domain/services"

	log "github.com/sirupsen/logrus"
)

// PromoRefresher keeps the promo cache in step with the database
type PromoRefresher struct {
	uowFactory UnitOfWorkFactory
	cache      *services.PromoCache
	interval   time.Duration
}

// NewPromoRefresher creates a refresher
func NewPromoRefresher(uowFactory UnitOfWorkFactory, cache *services.PromoCache, interval time.Duration) *PromoRefresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &PromoRefresher{
		uowFactory: uowFactory,
		cache:      cache,
		interval:   interval,
	}
}

// RefreshNow reloads the cache immediately
func (r *PromoRefresher) RefreshNow(ctx context.Context) error {
	return r.cache.Refresh(ctx, r.fetch)
}

func (r *PromoRefresher) fetch(ctx context.Context) (*entities.Promo, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.PromoRepository().GetActive(ctx)
}

// Start loads the cache once and then refreshes it every interval
func (r *PromoRefresher) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	if err := r.RefreshNow(ctx); err != nil {
		log.WithError(err).Warn("Initial promo load failed")
	}

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Promo refresher shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Promo refresher shutting down (stop requested)...")
				return
			case <-ticker.C:
				_ = r.RefreshNow(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
