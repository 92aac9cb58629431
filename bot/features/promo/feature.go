package promo

import (
	"context"
	"errors"
	"time"

	"plushiebot/application/dto"
	"plushiebot/bot/common"
	"plushiebot/bot/features/announcements"
	"plushiebot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 15 * time.Second

// Viewer loads the promo status for one member
type Viewer interface {
	View(ctx context.Context, userID int64) (*dto.PromoStatusDTO, error)
}

// Feature handles the member promo commands
type Feature struct {
	viewer Viewer
	footer string
}

// NewFeature creates the promo feature. resetHour and timezone describe when
// daily counts roll over.
func NewFeature(viewer Viewer, resetHour int, timezone string) *Feature {
	return &Feature{
		viewer: viewer,
		footer: announcements.ResetFooter(resetHour, timezone),
	}
}

// Handles reports whether the command belongs to this feature
func (f *Feature) Handles(name string) bool {
	return name == CommandPromoView
}

// HandleCommand answers /clan-promo-view with a public embed
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil {
		common.RespondWithError(s, i, "This command only works in the event server")
		return
	}
	userID := common.ParseID(i.Member.User.ID)
	if userID == 0 {
		common.RespondWithError(s, i, "Could not read your member id")
		return
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Failed to defer promo view")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	embed, err := f.render(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err,
		}).Error("Failed to load promo view")
		common.FollowUpWithError(s, i, "Failed to load the promo")
		return
	}
	embed.Author = author(i.Member)

	common.FollowUpPublic(s, i, &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}})
}

// render builds the embed for a member; no running promo is not an error
func (f *Feature) render(ctx context.Context, userID int64) (*discordgo.MessageEmbed, error) {
	status, err := f.viewer.View(ctx, userID)
	if errors.Is(err, entities.ErrNoActivePromo) {
		return announcements.BuildNoPromoEmbed(), nil
	}
	if err != nil {
		return nil, err
	}
	return announcements.BuildPromoStatusEmbed(*status, f.footer), nil
}

func author(m *discordgo.Member) *discordgo.MessageEmbedAuthor {
	if m == nil || m.User == nil {
		return nil
	}
	return &discordgo.MessageEmbedAuthor{
		Name:    m.DisplayName(),
		IconURL: m.AvatarURL("128"),
	}
}
