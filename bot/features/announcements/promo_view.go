package announcements

import (
	"fmt"
	"strings"
	"time"

	"plushiebot/application/dto"
	"plushiebot/bot/common"

	"github.com/bwmarrin/discordgo"
)

// ResetFooter describes when the daily counts roll over
func ResetFooter(hour int, timezone string) string {
	at := time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3:04 PM")
	return fmt.Sprintf("Promo stats reset daily at %s (%s)", at, timezone)
}

// BuildPromoStatusEmbed builds a member's view of the running promo
func BuildPromoStatusEmbed(status dto.PromoStatusDTO, footer string) *discordgo.MessageEmbed {
	emoji := promoEmoji(status.Promo)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", status.Promo.Name)
	if status.Promo.Prize != "" {
		fmt.Fprintf(&sb, "Daily Prize: **%s**\n", status.Promo.Prize)
	}
	fmt.Fprintf(&sb, "\n%s **%s** Drop Rates\n", emoji, status.Promo.EmojiName)
	fmt.Fprintf(&sb, "- Catching `/pokemon`: 1/%d per catch\n", status.CatchRate)
	fmt.Fprintf(&sb, "- Fishing `/fish`: 1/%d per fish\n", status.FishRate)
	fmt.Fprintf(&sb, "- Battling `/battle`: 1/%d per battle win\n", status.BattleRate)
	if status.EligibilityRoleID != nil {
		fmt.Fprintf(&sb, "\nOnly members with %s can earn drops.", common.RoleMention(*status.EligibilityRoleID))
	}

	standing := "⛔ Not eligible"
	if status.Eligible {
		standing = "✅ Eligible"
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Ongoing Promo", emoji),
		Description: sb.String(),
		Color:       colorDrop,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total Plushie Drops", Value: common.FormatCount(status.TotalDrops), Inline: true},
			{Name: "Today's Drops", Value: common.FormatCount(status.TodayDrops), Inline: true},
			{Name: "Status", Value: standing, Inline: true},
		},
	}
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	if status.Promo.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: status.Promo.ImageURL}
	}
	return embed
}

// BuildNoPromoEmbed is shown when nothing is running
func BuildNoPromoEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🌸 No Ongoing Promo",
		Description: "There's currently no active clan promo!",
		Color:       colorDrop,
	}
}
