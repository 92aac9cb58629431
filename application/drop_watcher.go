package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plushiebot/application/dto"
	"plushiebot/domain/entities"
	"plushiebot/domain/services"

	log "github.com/sirupsen/logrus"
)

// WatcherSettings selects which messages the watcher looks at
type WatcherSettings struct {
	GuildID           int64
	GameBotID         int64
	WatchedChannelIDs []int64 // Empty watches every channel
}

// DropWatcher turns game bot messages into recorded and announced drops
type DropWatcher struct {
	uowFactory UnitOfWorkFactory
	platform   ChatPlatform
	announcer  DropAnnouncer
	promoCache *services.PromoCache
	filter     *services.EligibilityFilter
	classifier *services.MessageClassifier
	roller     *services.DropRoller
	cooldown   *Cooldown
	metrics    MetricsRecorder
	settings   WatcherSettings
	channels   map[int64]struct{}
}

// NewDropWatcher creates a drop watcher
func NewDropWatcher(
	uowFactory UnitOfWorkFactory,
	platform ChatPlatform,
	announcer DropAnnouncer,
	promoCache *services.PromoCache,
	filter *services.EligibilityFilter,
	classifier *services.MessageClassifier,
	roller *services.DropRoller,
	cooldown *Cooldown,
	settings WatcherSettings,
) *DropWatcher {
	channels := make(map[int64]struct{}, len(settings.WatchedChannelIDs))
	for _, id := range settings.WatchedChannelIDs {
		channels[id] = struct{}{}
	}
	if cooldown == nil {
		cooldown = NewCooldown(0)
	}
	return &DropWatcher{
		uowFactory: uowFactory,
		platform:   platform,
		announcer:  announcer,
		promoCache: promoCache,
		filter:     filter,
		classifier: classifier,
		roller:     roller,
		cooldown:   cooldown,
		metrics:    noopMetrics{},
		settings:   settings,
		channels:   channels,
	}
}

// SetMetrics attaches a metrics recorder
func (w *DropWatcher) SetMetrics(m MetricsRecorder) {
	if m != nil {
		w.metrics = m
	}
}

// HandleMessageCreate checks a new game bot message for a battle win
func (w *DropWatcher) HandleMessageCreate(ctx context.Context, msg dto.InboundMessage) error {
	promo, ok := w.gate(msg)
	if !ok {
		return nil
	}

	classification := w.classifier.ClassifyBattle(msg.Content)
	w.metrics.RecordClassification(ctx, string(classification.Kind))
	if !classification.Relevant() {
		return nil
	}

	userID, found := w.filter.ResolveByUsername(classification.Username)
	if !found {
		log.WithFields(log.Fields{
			"username":  classification.Username,
			"messageID": msg.ID,
		}).Debug("Battle winner is not an eligible member")
		return nil
	}

	return w.rollAndRecord(ctx, msg, userID, classification, promo)
}

// HandleMessageEdit checks an edited game bot reply for a catch or fish
func (w *DropWatcher) HandleMessageEdit(ctx context.Context, msg dto.InboundMessage) error {
	promo, ok := w.gate(msg)
	if !ok {
		return nil
	}

	embed := msg.FirstEmbed()
	classification := w.classifier.ClassifyReply(services.ReplyMessage{
		IsEdit:      msg.IsEdit,
		IsReply:     msg.Reference != nil,
		Description: embed.Description,
		Color:       embed.Color,
	})
	w.metrics.RecordClassification(ctx, string(classification.Kind))
	if !classification.Relevant() {
		return nil
	}

	userID, err := w.resolveReplyAuthor(ctx, msg)
	if err != nil {
		log.WithFields(log.Fields{
			"messageID": msg.ID,
			"error":     err,
		}).Debug("Could not resolve replied-to author")
		return nil
	}

	if classification.Kind != services.KindForcedRare && !w.cooldown.Allow(userID) {
		log.WithField("userID", userID).Debug("Skipping drop, user on cooldown")
		return nil
	}

	return w.rollAndRecord(ctx, msg, userID, classification, promo)
}

// gate applies the guild, author, channel and promo checks shared by both handlers
func (w *DropWatcher) gate(msg dto.InboundMessage) (*entities.Promo, bool) {
	if w.settings.GuildID != 0 && msg.GuildID != w.settings.GuildID {
		return nil, false
	}
	if msg.AuthorID != w.settings.GameBotID {
		return nil, false
	}
	if len(w.channels) > 0 {
		if _, watched := w.channels[msg.ChannelID]; !watched {
			return nil, false
		}
	}

	promo, err := w.promoCache.Current()
	if err != nil {
		return nil, false
	}
	return promo, true
}

func (w *DropWatcher) resolveReplyAuthor(ctx context.Context, msg dto.InboundMessage) (int64, error) {
	ref := msg.Reference
	if ref == nil {
		return 0, errors.New("message is not a reply")
	}
	if ref.ResolvedAuthorID != nil {
		return *ref.ResolvedAuthorID, nil
	}

	channelID := ref.ChannelID
	if channelID == 0 {
		channelID = msg.ChannelID
	}
	fetched, err := w.platform.FetchMessage(ctx, channelID, ref.MessageID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch referenced message: %w", err)
	}
	if fetched == nil {
		return 0, errors.New("referenced message not found")
	}
	return fetched.AuthorID, nil
}

func (w *DropWatcher) rollAndRecord(
	ctx context.Context,
	msg dto.InboundMessage,
	userID int64,
	classification services.Classification,
	promo *entities.Promo,
) error {
	if !w.filter.IsEligibleFor(userID, promo.EligibilityRoleID) {
		log.WithField("userID", userID).Debug("Member not eligible for drops")
		return nil
	}

	outcome, err := w.roller.Roll(classification.Method(), promo)
	if err != nil {
		return fmt.Errorf("failed to roll drop: %w", err)
	}
	w.metrics.RecordRoll(ctx, string(outcome.Method), outcome.Dropped)

	log.WithFields(log.Fields{
		"userID":  userID,
		"method":  outcome.Method,
		"draw":    outcome.Draw,
		"rate":    outcome.Rate,
		"dropped": outcome.Dropped,
		"forced":  outcome.Forced,
	}).Debug("Rolled for drop")

	if !outcome.Dropped {
		return nil
	}

	announcement, err := w.record(ctx, userID, outcome.Method)
	if err != nil {
		return err
	}

	announcement.GuildID = msg.GuildID
	announcement.ChannelID = msg.ChannelID
	announcement.MessageID = msg.ID
	announcement.Forced = outcome.Forced
	announcement.Promo = *promoToDTO(promo)

	if err := w.announcer.AnnounceDrop(ctx, announcement); err != nil {
		return fmt.Errorf("failed to announce drop: %w", err)
	}
	return nil
}

// record writes the drop and reads back the counts in one transaction
func (w *DropWatcher) record(ctx context.Context, userID int64, method entities.DropMethod) (dto.DropAnnouncementDTO, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return dto.DropAnnouncementDTO{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dropService := services.NewDropService(uow.DropRepository(), uow.EventBus())

	record, err := dropService.Record(ctx, userID, method, time.Now())
	if err != nil {
		return dto.DropAnnouncementDTO{}, err
	}
	today, err := dropService.TodaysDrops(ctx, userID)
	if err != nil {
		return dto.DropAnnouncementDTO{}, err
	}
	total, err := dropService.TotalDrops(ctx, userID)
	if err != nil {
		return dto.DropAnnouncementDTO{}, err
	}

	if err := uow.Commit(); err != nil {
		return dto.DropAnnouncementDTO{}, fmt.Errorf("failed to commit drop: %w", err)
	}

	return dto.DropAnnouncementDTO{
		UserID:     userID,
		Method:     string(record.Method),
		DayNumber:  record.DayNumber,
		DropTime:   record.DropTime,
		TodayCount: today,
		TotalCount: total,
	}, nil
}
