package promo

import "github.com/bwmarrin/discordgo"

const CommandPromoView = "clan-promo-view"

// Commands returns the member-facing slash command definitions
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandPromoView,
			Description: "Show the ongoing clan promo and your plushie drops",
		},
	}
}
