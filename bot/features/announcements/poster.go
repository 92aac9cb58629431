package announcements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"plushiebot/application/dto"
	"plushiebot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	colorDrop   = 0xFFB6C1
	colorRare   = 0xFF69B4
	colorWinner = 0xFFD700
	colorEmpty  = 0x808080
	colorFinal  = 0x9B59B6
)

// Sender is the part of the platform the poster writes through
type Sender interface {
	SendMessage(ctx context.Context, channelID int64, msg *discordgo.MessageSend) (*discordgo.Message, error)
	SendEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	GrantRole(ctx context.Context, userID, roleID int64) error
}

// Config holds the channels and roles announcements go to
type Config struct {
	AnnounceChannelID int64
	// ReportChannelID receives drop tracking and winner mirrors; zero disables it
	ReportChannelID int64
	// WinnerRoleID is granted to daily winners; zero disables it
	WinnerRoleID int64
}

// Poster renders drop and winner announcements as Discord messages
type Poster struct {
	sender Sender
	config Config
}

// NewPoster creates a poster
func NewPoster(sender Sender, config Config) *Poster {
	return &Poster{sender: sender, config: config}
}

// AnnounceDrop replies to the game bot message and posts a tracking embed
func (p *Poster) AnnounceDrop(ctx context.Context, drop dto.DropAnnouncementDTO) error {
	reply := &discordgo.MessageSend{
		Content: dropReplyText(drop),
		Reference: &discordgo.MessageReference{
			MessageID: common.FormatID(drop.MessageID),
			ChannelID: common.FormatID(drop.ChannelID),
			GuildID:   common.FormatID(drop.GuildID),
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{common.FormatID(drop.UserID)},
		},
	}
	if _, err := p.sender.SendMessage(ctx, drop.ChannelID, reply); err != nil {
		return fmt.Errorf("failed to send drop reply: %w", err)
	}

	if p.config.ReportChannelID == 0 {
		return nil
	}
	embed := BuildDropEmbed(drop)
	if _, err := p.sender.SendEmbed(ctx, p.config.ReportChannelID, embed); err != nil {
		log.WithFields(log.Fields{
			"user_id":    drop.UserID,
			"message_id": drop.MessageID,
			"error":      err,
		}).Warn("Failed to post drop tracking embed")
	}
	return nil
}

// AnnounceWinners posts the daily winners
func (p *Poster) AnnounceWinners(ctx context.Context, announcement dto.WinnerAnnouncementDTO) error {
	embed := BuildWinnersEmbed(announcement)
	msg := &discordgo.MessageSend{
		Content: winnerMentions(announcement.Winners),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}
	if _, err := p.sender.SendMessage(ctx, p.config.AnnounceChannelID, msg); err != nil {
		return fmt.Errorf("failed to post winners for day %d: %w", announcement.DayNumber, err)
	}

	p.mirror(ctx, embed)
	return nil
}

// GrantWinnerRoles gives each winner the configured winner role
func (p *Poster) GrantWinnerRoles(ctx context.Context, winners []dto.WinnerDTO) {
	if p.config.WinnerRoleID == 0 {
		return
	}
	for _, w := range winners {
		if err := p.sender.GrantRole(ctx, w.UserID, p.config.WinnerRoleID); err != nil {
			log.WithFields(log.Fields{
				"user_id": w.UserID,
				"role_id": p.config.WinnerRoleID,
				"error":   err,
			}).Warn("Failed to grant winner role")
		}
	}
}

// AnnounceFinal posts the end-of-event standings
func (p *Poster) AnnounceFinal(ctx context.Context, standings dto.FinalStandingsDTO) error {
	embed := BuildFinalEmbed(standings)
	msg := &discordgo.MessageSend{
		Content: winnerMentions(standings.Standings),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}
	if _, err := p.sender.SendMessage(ctx, p.config.AnnounceChannelID, msg); err != nil {
		return fmt.Errorf("failed to post final standings: %w", err)
	}
	p.mirror(ctx, embed)
	return nil
}

func (p *Poster) mirror(ctx context.Context, embed *discordgo.MessageEmbed) {
	if p.config.ReportChannelID == 0 || p.config.ReportChannelID == p.config.AnnounceChannelID {
		return
	}
	if _, err := p.sender.SendEmbed(ctx, p.config.ReportChannelID, embed); err != nil {
		log.WithError(err).Warn("Failed to mirror announcement to report channel")
	}
}

func dropReplyText(drop dto.DropAnnouncementDTO) string {
	emoji := promoEmoji(drop.Promo)
	if drop.Forced {
		return fmt.Sprintf("%s has caught a rare and dropped a %s **%s**!",
			common.Mention(drop.UserID), emoji, drop.Promo.EmojiName)
	}
	return fmt.Sprintf("%s has discovered a %s **%s** while %s!",
		common.Mention(drop.UserID), emoji, drop.Promo.EmojiName, common.MethodActivity(drop.Method))
}

// BuildDropEmbed builds the tracking embed for a single drop
func BuildDropEmbed(drop dto.DropAnnouncementDTO) *discordgo.MessageEmbed {
	color := colorDrop
	title := fmt.Sprintf("%s %s drop", promoEmoji(drop.Promo), drop.Promo.Name)
	if drop.Forced {
		color = colorRare
		title += " (rare)"
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: dropReplyText(drop),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Method", Value: drop.Method, Inline: true},
			{Name: "Day", Value: fmt.Sprintf("%d", drop.DayNumber), Inline: true},
			{Name: "Today", Value: common.FormatCount(drop.TodayCount), Inline: true},
			{Name: "Total", Value: common.FormatCount(drop.TotalCount), Inline: true},
			{Name: "Message", Value: fmt.Sprintf("[Jump](%s)", common.MessageLink(drop.GuildID, drop.ChannelID, drop.MessageID)), Inline: true},
		},
		Timestamp: drop.DropTime.UTC().Format(time.RFC3339),
	}
}

// BuildWinnersEmbed builds the daily winners embed
func BuildWinnersEmbed(a dto.WinnerAnnouncementDTO) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 Day %d Winners", a.DayNumber),
		Color: colorWinner,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Cycle %s", a.CycleID),
		},
	}

	if a.Promo != nil {
		embed.Title = fmt.Sprintf("🏆 %s - Day %d Winners", a.Promo.Name, a.DayNumber)
		if a.Promo.ImageURL != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: a.Promo.ImageURL}
		}
	}

	if len(a.Winners) == 0 {
		embed.Color = colorEmpty
		embed.Description = "No eligible winners today. Keep hunting!"
		return embed
	}

	var sb strings.Builder
	for i, w := range a.Winners {
		fmt.Fprintf(&sb, "**%d.** %s with **%s** drops", i+1, common.Mention(w.UserID), common.FormatCount(w.Drops))
		if w.BonusEligible {
			sb.WriteString(" ⭐")
		}
		sb.WriteString("\n")
	}
	if a.Promo != nil && a.Promo.Prize != "" {
		fmt.Fprintf(&sb, "\nPrize: **%s**", a.Promo.Prize)
	}
	embed.Description = sb.String()
	return embed
}

// BuildFinalEmbed builds the end-of-event standings embed
func BuildFinalEmbed(f dto.FinalStandingsDTO) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎉 Event Complete - Final Standings",
		Color: colorFinal,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d day event", f.EventLengthDays),
		},
	}
	if f.Promo != nil {
		embed.Title = fmt.Sprintf("🎉 %s Complete - Final Standings", f.Promo.Name)
	}

	if len(f.Standings) == 0 {
		embed.Description = "No drops were recorded during the event."
		return embed
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	for i, s := range f.Standings {
		prefix := common.Ordinal(i + 1)
		if i < len(medals) {
			prefix = medals[i]
		}
		fmt.Fprintf(&sb, "%s %s with **%s** drops\n", prefix, common.Mention(s.UserID), common.FormatCount(s.Drops))
	}
	embed.Description = sb.String()
	return embed
}

func winnerMentions(winners []dto.WinnerDTO) string {
	mentions := make([]string, 0, len(winners))
	for _, w := range winners {
		mentions = append(mentions, common.Mention(w.UserID))
	}
	return strings.Join(mentions, " ")
}

func promoEmoji(p dto.PromoDTO) string {
	if p.Emoji != "" {
		return p.Emoji
	}
	return "🧸"
}
