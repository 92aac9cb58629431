package application

import (
	"context"
	"fmt"

	"plushiebot/application/dto"
	"plushiebot/domain/services"
)

// PromoViewer answers a member's "what is running and how am I doing" query
type PromoViewer struct {
	uowFactory UnitOfWorkFactory
	cache      *services.PromoCache
	filter     *services.EligibilityFilter
}

// NewPromoViewer creates a promo viewer
func NewPromoViewer(uowFactory UnitOfWorkFactory, cache *services.PromoCache, filter *services.EligibilityFilter) *PromoViewer {
	return &PromoViewer{
		uowFactory: uowFactory,
		cache:      cache,
		filter:     filter,
	}
}

// View returns the active promo with the member's drop counts. It returns
// entities.ErrNoActivePromo when nothing is running.
func (v *PromoViewer) View(ctx context.Context, userID int64) (*dto.PromoStatusDTO, error) {
	promo, err := v.cache.Current()
	if err != nil {
		return nil, err
	}

	uow := v.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dropService := services.NewDropService(uow.DropRepository(), nil)
	total, err := dropService.TotalDrops(ctx, userID)
	if err != nil {
		return nil, err
	}
	today, err := dropService.TodaysDrops(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &dto.PromoStatusDTO{
		Promo:             *promoToDTO(promo),
		CatchRate:         int(promo.CatchRate),
		FishRate:          int(promo.FishRate),
		BattleRate:        int(promo.BattleRate),
		EligibilityRoleID: promo.EligibilityRoleID,
		TotalDrops:        total,
		TodayDrops:        today,
	}
	if v.filter != nil {
		status.Eligible = v.filter.IsEligibleFor(userID, promo.EligibilityRoleID)
	}
	return status, nil
}
