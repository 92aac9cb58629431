package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// DeferResponse sends a deferred response to give more time for processing
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags,
		},
	})
}

// RespondEphemeral acknowledges a command with a message only the caller sees
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to interaction")
	}
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	RespondEphemeral(s, i, fmt.Sprintf("❌ %s", message))
}

// FollowUp sends an ephemeral follow-up to a deferred interaction
func FollowUp(s *discordgo.Session, i *discordgo.InteractionCreate, params *discordgo.WebhookParams) {
	params.Flags |= discordgo.MessageFlagsEphemeral
	if _, err := s.FollowupMessageCreate(i.Interaction, false, params); err != nil {
		log.WithError(err).Error("Failed to send follow-up message")
	}
}

// FollowUpPublic sends a follow-up everyone in the channel can see
func FollowUpPublic(s *discordgo.Session, i *discordgo.InteractionCreate, params *discordgo.WebhookParams) {
	if _, err := s.FollowupMessageCreate(i.Interaction, false, params); err != nil {
		log.WithError(err).Error("Failed to send follow-up message")
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	FollowUp(s, i, &discordgo.WebhookParams{Content: fmt.Sprintf("❌ %s", message)})
}
