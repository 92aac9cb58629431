package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"plushiebot/application/dto"
	"plushiebot/bot/common"
	"plushiebot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// guildMembersPageSize is the maximum page size of the member list endpoint
const guildMembersPageSize = 1000

// Platform implements application.ChatPlatform on a discordgo session
type Platform struct {
	session *discordgo.Session
	guildID string
	backoff time.Duration
}

// NewPlatform creates the platform adapter for one guild
func NewPlatform(session *discordgo.Session, guildID int64, rateLimitBackoff time.Duration) *Platform {
	return &Platform{
		session: session,
		guildID: common.FormatID(guildID),
		backoff: rateLimitBackoff,
	}
}

// FetchMessage loads a message by id
func (p *Platform) FetchMessage(ctx context.Context, channelID, messageID int64) (*dto.FetchedMessage, error) {
	var msg *discordgo.Message
	err := withRateLimitRetry(ctx, p.backoff, func() error {
		var err error
		msg, err = p.session.ChannelMessage(common.FormatID(channelID), common.FormatID(messageID), discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %d: %w", messageID, err)
	}
	if msg.Author == nil {
		return nil, fmt.Errorf("message %d has no author", messageID)
	}

	return &dto.FetchedMessage{
		ID:        messageID,
		ChannelID: channelID,
		AuthorID:  common.ParseID(msg.Author.ID),
	}, nil
}

// GrantRole adds a role to a guild member
func (p *Platform) GrantRole(ctx context.Context, userID, roleID int64) error {
	err := withRateLimitRetry(ctx, p.backoff, func() error {
		return p.session.GuildMemberRoleAdd(p.guildID, common.FormatID(userID), common.FormatID(roleID), discordgo.WithContext(ctx))
	})
	if err != nil {
		return fmt.Errorf("failed to grant role %d to %d: %w", roleID, userID, err)
	}
	return nil
}

// ListGuildMembers pages through every member of the guild
func (p *Platform) ListGuildMembers(ctx context.Context) ([]entities.Member, error) {
	var members []entities.Member
	after := ""

	for {
		var page []*discordgo.Member
		err := withRateLimitRetry(ctx, p.backoff, func() error {
			var err error
			page, err = p.session.GuildMembers(p.guildID, after, guildMembersPageSize, discordgo.WithContext(ctx))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list guild members after %q: %w", after, err)
		}

		for _, m := range page {
			if m.User == nil {
				continue
			}
			members = append(members, memberFromDiscord(m, false))
			after = m.User.ID
		}

		if len(page) < guildMembersPageSize {
			break
		}
	}

	log.WithField("members", len(members)).Debug("Listed guild members")
	return members, nil
}

// SendMessage posts a message to a channel
func (p *Platform) SendMessage(ctx context.Context, channelID int64, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	var sent *discordgo.Message
	err := withRateLimitRetry(ctx, p.backoff, func() error {
		var err error
		sent, err = p.session.ChannelMessageSendComplex(common.FormatID(channelID), msg, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message to channel %d: %w", channelID, err)
	}
	return sent, nil
}

// SendEmbed posts a single embed to a channel
func (p *Platform) SendEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return p.SendMessage(ctx, channelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}})
}

// DisplayNames resolves user ids to display names, preferring the state cache
func (p *Platform) DisplayNames(ctx context.Context, userIDs []int64) map[int64]string {
	names := make(map[int64]string, len(userIDs))
	for _, id := range userIDs {
		uid := common.FormatID(id)

		member, err := p.session.State.Member(p.guildID, uid)
		if err != nil {
			member, err = p.session.GuildMember(p.guildID, uid, discordgo.WithContext(ctx))
		}
		if err != nil || member == nil || member.User == nil {
			names[id] = fmt.Sprintf("User%d", id)
			continue
		}
		names[id] = displayName(member)
	}
	return names
}

// withRateLimitRetry runs fn and retries it once after a 429, waiting backoff
func withRateLimitRetry(ctx context.Context, backoff time.Duration, fn func() error) error {
	err := fn()
	if !isRateLimited(err) {
		return err
	}

	log.WithField("backoff", backoff).Warn("Rate limited by Discord, backing off")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
	}
	return fn()
}

func isRateLimited(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusTooManyRequests
}

func memberFromDiscord(m *discordgo.Member, removed bool) entities.Member {
	member := entities.Member{
		RoleIDs: common.ParseIDs(m.Roles),
		Removed: removed,
	}
	if m.User != nil {
		member.ID = common.ParseID(m.User.ID)
		member.Username = m.User.Username
	}
	return member
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
