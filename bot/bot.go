package bot

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"plushiebot/application/dto"
	"plushiebot/bot/common"
	"plushiebot/bot/features/promo"
	"plushiebot/bot/features/staff"
	"plushiebot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const handlerTimeout = 30 * time.Second

// Config holds bot configuration
type Config struct {
	Token            string
	GuildID          int64
	RateLimitBackoff time.Duration
}

// MessageHandler consumes game bot messages
type MessageHandler interface {
	HandleMessageCreate(ctx context.Context, msg dto.InboundMessage) error
	HandleMessageEdit(ctx context.Context, msg dto.InboundMessage) error
}

// MemberTracker follows the guild roster
type MemberTracker interface {
	Rebuild(ctx context.Context) error
	OnMemberChange(member entities.Member)
}

// Handlers are the application components the gateway events feed
type Handlers struct {
	Messages MessageHandler
	Members  MemberTracker
	Staff    *staff.Feature
	Promo    *promo.Feature
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	platform *Platform
	handlers Handlers

	rebuilding atomic.Bool
}

// New creates the session and platform adapter without connecting
func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Bot{
		config:   config,
		session:  dg,
		platform: NewPlatform(dg, config.GuildID, config.RateLimitBackoff),
	}, nil
}

// Platform returns the chat platform adapter backed by this session
func (b *Bot) Platform() *Platform {
	return b.platform
}

// Start registers the gateway handlers, connects and registers slash commands
func (b *Bot) Start(handlers Handlers) error {
	b.handlers = handlers

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleGuildCreate)
	b.session.AddHandler(b.handleMemberAdd)
	b.session.AddHandler(b.handleMemberUpdate)
	b.session.AddHandler(b.handleMemberRemove)
	b.session.AddHandler(b.handleMessageCreate)
	b.session.AddHandler(b.handleMessageUpdate)
	b.session.AddHandler(b.handleCommands)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) inGuild(guildID string) bool {
	return common.ParseID(guildID) == b.config.GuildID
}

// handleReady rebuilds the eligible set on every fresh session
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithField("user", r.User.Username).Info("Discord session ready")
	b.rebuildMembers()
}

// handleGuildCreate rebuilds when the guild becomes available again
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || !b.inGuild(g.ID) {
		return
	}
	b.rebuildMembers()
}

// rebuildMembers reloads the roster in the background; overlapping requests collapse into one
func (b *Bot) rebuildMembers() {
	if b.handlers.Members == nil || !b.rebuilding.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer b.rebuilding.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := b.handlers.Members.Rebuild(ctx); err != nil {
			log.WithError(err).Error("Failed to rebuild eligible members")
		}
	}()
}

func (b *Bot) handleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if b.handlers.Members == nil || !b.inGuild(m.GuildID) {
		return
	}
	b.handlers.Members.OnMemberChange(memberFromDiscord(m.Member, false))
}

func (b *Bot) handleMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if b.handlers.Members == nil || !b.inGuild(m.GuildID) {
		return
	}
	b.handlers.Members.OnMemberChange(memberFromDiscord(m.Member, false))
}

func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if b.handlers.Members == nil || !b.inGuild(m.GuildID) {
		return
	}
	b.handlers.Members.OnMemberChange(memberFromDiscord(m.Member, true))
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.handlers.Messages == nil || m.Message == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	msg := toInboundMessage(m.Message, nil, false)
	if err := b.handlers.Messages.HandleMessageCreate(ctx, msg); err != nil {
		log.WithFields(log.Fields{
			"message_id": m.ID,
			"channel_id": m.ChannelID,
			"error":      err,
		}).Error("Failed to handle message")
	}
}

func (b *Bot) handleMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if b.handlers.Messages == nil || m.Message == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	msg := toInboundMessage(m.Message, m.BeforeUpdate, true)
	if err := b.handlers.Messages.HandleMessageEdit(ctx, msg); err != nil {
		log.WithFields(log.Fields{
			"message_id": m.ID,
			"channel_id": m.ChannelID,
			"error":      err,
		}).Error("Failed to handle message edit")
	}
}

// toInboundMessage strips a gateway message down to what the drop watcher reads.
// Partial edits may omit the author, in which case the cached copy is used.
func toInboundMessage(m *discordgo.Message, before *discordgo.Message, isEdit bool) dto.InboundMessage {
	msg := dto.InboundMessage{
		ID:        common.ParseID(m.ID),
		GuildID:   common.ParseID(m.GuildID),
		ChannelID: common.ParseID(m.ChannelID),
		Content:   m.Content,
		IsEdit:    isEdit,
	}

	author := m.Author
	if author == nil && before != nil {
		author = before.Author
	}
	if author != nil {
		msg.AuthorID = common.ParseID(author.ID)
	}

	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		msg.Embeds = append(msg.Embeds, dto.InboundEmbed{Description: e.Description, Color: e.Color})
	}

	if ref := m.MessageReference; ref != nil && ref.MessageID != "" {
		msg.Reference = &dto.MessageReference{
			ChannelID: common.ParseID(ref.ChannelID),
			MessageID: common.ParseID(ref.MessageID),
		}
		if msg.Reference.ChannelID == 0 {
			msg.Reference.ChannelID = msg.ChannelID
		}
		if m.ReferencedMessage != nil && m.ReferencedMessage.Author != nil {
			id := common.ParseID(m.ReferencedMessage.Author.ID)
			msg.Reference.ResolvedAuthorID = &id
		}
	}

	return msg
}
