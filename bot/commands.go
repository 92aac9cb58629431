package bot

import (
	"fmt"

	"plushiebot/bot/common"
	"plushiebot/bot/features/promo"
	"plushiebot/bot/features/staff"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// registerCommands registers all slash commands with the configured guild
func (b *Bot) registerCommands() error {
	if b.session.State == nil || b.session.State.User == nil {
		return fmt.Errorf("session has no application user")
	}

	guildID := common.FormatID(b.config.GuildID)
	commands := append(staff.Commands(), promo.Commands()...)
	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, guildID, cmd); err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	log.WithField("guild_id", b.config.GuildID).Info("Slash commands registered")
	return nil
}

// handleCommands routes slash commands to their feature
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if !b.inGuild(i.GuildID) {
		common.RespondWithError(s, i, "This command only works in the event server")
		return
	}

	name := i.ApplicationCommandData().Name
	if b.handlers.Staff != nil && b.handlers.Staff.Handles(name) {
		b.handlers.Staff.HandleCommand(s, i)
		return
	}
	if b.handlers.Promo != nil && b.handlers.Promo.Handles(name) {
		b.handlers.Promo.HandleCommand(s, i)
		return
	}
	log.WithField("command", name).Warn("Unhandled slash command")
}
