package staff

import "github.com/bwmarrin/discordgo"

const (
	CommandSetPromo     = "set-promo"
	CommandUpdatePromo  = "update-promo"
	CommandResetEvent   = "reset-event"
	CommandGivePlushie  = "give-plushie"
	CommandLeaderboard  = "plushie-leaderboard"
	CommandDailyWinners = "list-daily-winners"
	CommandAnnounce     = "announce-winners"
)

var manageGuild int64 = discordgo.PermissionManageGuild

func floatPtr(v float64) *float64 { return &v }

func promoOptions(required bool) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "Emoji shown in drop messages", Required: required},
		{Type: discordgo.ApplicationCommandOptionString, Name: "emoji_name", Description: "Name of the plushie emoji", Required: required},
		{Type: discordgo.ApplicationCommandOptionInteger, Name: "catch_rate", Description: "1 in N chance per catch", Required: required, MinValue: floatPtr(1)},
		{Type: discordgo.ApplicationCommandOptionInteger, Name: "battle_rate", Description: "1 in N chance per battle", Required: required, MinValue: floatPtr(1)},
		{Type: discordgo.ApplicationCommandOptionInteger, Name: "fish_rate", Description: "1 in N chance per fish", Required: required, MinValue: floatPtr(1)},
		{Type: discordgo.ApplicationCommandOptionString, Name: "prize", Description: "Prize text for winners"},
		{Type: discordgo.ApplicationCommandOptionString, Name: "image_url", Description: "Image shown in announcements"},
		{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Extra role required to be eligible"},
		{Type: discordgo.ApplicationCommandOptionInteger, Name: "number_before_claim", Description: "Drops needed before a prize can be claimed", MinValue: floatPtr(0)},
	}
}

// Commands returns the staff slash command definitions
func Commands() []*discordgo.ApplicationCommand {
	setPromo := append([]*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Promo name", Required: true},
	}, promoOptions(true)...)

	return []*discordgo.ApplicationCommand{
		{
			Name:                     CommandSetPromo,
			Description:              "Start a new plushie promo, replacing the current one",
			DefaultMemberPermissions: &manageGuild,
			Options:                  setPromo,
		},
		{
			Name:                     CommandUpdatePromo,
			Description:              "Change settings of the running promo",
			DefaultMemberPermissions: &manageGuild,
			Options:                  promoOptions(false),
		},
		{
			Name:                     CommandResetEvent,
			Description:              "Delete all drops and winners and restart at day 1",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "confirm", Description: "Confirm the reset", Required: true},
			},
		},
		{
			Name:                     CommandGivePlushie,
			Description:              "Record a drop for a user manually",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to credit", Required: true},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "method",
					Description: "How the drop happened",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Battle", Value: "battle"},
						{Name: "Catch", Value: "catch"},
						{Name: "Fish", Value: "fish"},
						{Name: "Rare", Value: "forced-rare"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "day", Description: "Event day to credit (defaults to today)", MinValue: floatPtr(1)},
			},
		},
		{
			Name:                     CommandLeaderboard,
			Description:              "Show the plushie drop leaderboard",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "view",
					Description: "Leaderboard scope",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Today", Value: "today"},
						{Name: "All time", Value: "all_time"},
					},
				},
			},
		},
		{
			Name:                     CommandDailyWinners,
			Description:              "List recorded winners for every day",
			DefaultMemberPermissions: &manageGuild,
		},
		{
			Name:                     CommandAnnounce,
			Description:              "Run today's winner announcement now",
			DefaultMemberPermissions: &manageGuild,
		},
	}
}
