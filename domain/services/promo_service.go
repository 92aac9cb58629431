package services

import (
	"context"
	"fmt"

	"plushiebot/domain/entities"
	"plushiebot/domain/interfaces"
	"plushiebot/events"

	log "github.com/sirupsen/logrus"
)

// PromoService handles staff changes to the promo and event state
type PromoService struct {
	promoRepo      interfaces.PromoRepository
	dropRepo       interfaces.DropRepository
	winnerRepo     interfaces.WinnerRepository
	dayRepo        interfaces.DayCycleRepository
	eventPublisher interfaces.EventPublisher
}

// NewPromoService creates a promo service
func NewPromoService(
	promoRepo interfaces.PromoRepository,
	dropRepo interfaces.DropRepository,
	winnerRepo interfaces.WinnerRepository,
	dayRepo interfaces.DayCycleRepository,
	eventPublisher interfaces.EventPublisher,
) *PromoService {
	return &PromoService{
		promoRepo:      promoRepo,
		dropRepo:       dropRepo,
		winnerRepo:     winnerRepo,
		dayRepo:        dayRepo,
		eventPublisher: eventPublisher,
	}
}

// Active returns the stored promo, or nil if none is set
func (s *PromoService) Active(ctx context.Context) (*entities.Promo, error) {
	promo, err := s.promoRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active promo: %w", err)
	}
	return promo, nil
}

// Set validates and stores a promo, replacing the active one
func (s *PromoService) Set(ctx context.Context, promo *entities.Promo) error {
	if err := promo.Validate(); err != nil {
		return err
	}
	if err := s.promoRepo.Upsert(ctx, promo); err != nil {
		return fmt.Errorf("failed to save promo: %w", err)
	}

	log.WithFields(log.Fields{
		"promo":      promo.Name,
		"catchRate":  promo.CatchRate,
		"battleRate": promo.BattleRate,
		"fishRate":   promo.FishRate,
	}).Info("Promo set")

	s.publish(promo.Name, "set")
	return nil
}

// Update applies a partial change to the active promo
func (s *PromoService) Update(ctx context.Context, update entities.PromoUpdate) (*entities.Promo, error) {
	current, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, entities.ErrNoActivePromo
	}

	next := update.Apply(*current)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.promoRepo.Upsert(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update promo: %w", err)
	}

	s.publish(next.Name, "updated")
	return &next, nil
}

// ResetEvent wipes the promo, all drops and winners and restarts at day 1
func (s *PromoService) ResetEvent(ctx context.Context) error {
	current, err := s.Active(ctx)
	if err != nil {
		return err
	}

	if err := s.promoRepo.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete promo: %w", err)
	}
	if err := s.dropRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete drops: %w", err)
	}
	if err := s.winnerRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete winners: %w", err)
	}
	if err := s.dayRepo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset day counter: %w", err)
	}

	name := ""
	if current != nil {
		name = current.Name
	}
	log.WithField("promo", name).Warn("Event reset")

	s.publish(name, "reset")
	return nil
}

func (s *PromoService) publish(name, action string) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(events.PromoChangedEvent{Name: name, Action: action}); err != nil {
		log.WithError(err).Warn("Failed to queue promo changed event")
	}
}
