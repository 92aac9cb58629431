package announcements

import (
	"context"
	"errors"
	"testing"
	"time"

	"plushiebot/application/dto"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	channelID int64
	msg       *discordgo.MessageSend
}

type fakeSender struct {
	sent      []sentMessage
	granted   map[int64]int64
	failOn    int64
	grantFail error
}

func (f *fakeSender) SendMessage(_ context.Context, channelID int64, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	if f.failOn != 0 && channelID == f.failOn {
		return nil, errors.New("missing access")
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, msg: msg})
	return &discordgo.Message{}, nil
}

func (f *fakeSender) SendEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return f.SendMessage(ctx, channelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}})
}

func (f *fakeSender) GrantRole(_ context.Context, userID, roleID int64) error {
	if f.granted == nil {
		f.granted = map[int64]int64{}
	}
	f.granted[userID] = roleID
	return f.grantFail
}

var testPromo = dto.PromoDTO{Name: "Summer Plush", Emoji: "🐻", EmojiName: "Bear", Prize: "Plushie", ImageURL: "https://example.com/p.png"}

func TestPoster_AnnounceDrop(t *testing.T) {
	sender := &fakeSender{}
	poster := NewPoster(sender, Config{AnnounceChannelID: 10, ReportChannelID: 20})

	err := poster.AnnounceDrop(context.Background(), dto.DropAnnouncementDTO{
		GuildID: 1, ChannelID: 2, MessageID: 3, UserID: 42,
		Method: "fish", DayNumber: 4, DropTime: time.Date(2026, 6, 3, 1, 0, 0, 0, time.UTC),
		TodayCount: 2, TotalCount: 1500, Promo: testPromo,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	reply := sender.sent[0]
	assert.Equal(t, int64(2), reply.channelID)
	assert.Equal(t, "<@42> has discovered a 🐻 **Bear** while fishing!", reply.msg.Content)
	assert.Equal(t, "3", reply.msg.Reference.MessageID)

	tracking := sender.sent[1]
	assert.Equal(t, int64(20), tracking.channelID)
	embed := tracking.msg.Embeds[0]
	assert.Equal(t, "1,500", embed.Fields[3].Value)
	assert.Contains(t, embed.Fields[4].Value, "https://discord.com/channels/1/2/3")
}

func TestPoster_AnnounceDrop_ForcedRare(t *testing.T) {
	sender := &fakeSender{}
	poster := NewPoster(sender, Config{AnnounceChannelID: 10})

	err := poster.AnnounceDrop(context.Background(), dto.DropAnnouncementDTO{
		ChannelID: 2, MessageID: 3, UserID: 7, Method: "forced-rare", Forced: true, Promo: testPromo,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1, "no report channel configured")
	assert.Equal(t, int64(2), sender.sent[0].channelID)
	assert.Contains(t, sender.sent[0].msg.Content, "caught a rare")
}

func TestPoster_AnnounceDrop_ReplyFailure(t *testing.T) {
	sender := &fakeSender{failOn: 2}
	poster := NewPoster(sender, Config{ReportChannelID: 20})

	err := poster.AnnounceDrop(context.Background(), dto.DropAnnouncementDTO{ChannelID: 2, UserID: 1, Promo: testPromo})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestPoster_AnnounceWinners(t *testing.T) {
	sender := &fakeSender{}
	poster := NewPoster(sender, Config{AnnounceChannelID: 10, ReportChannelID: 20, WinnerRoleID: 99})

	err := poster.AnnounceWinners(context.Background(), dto.WinnerAnnouncementDTO{
		CycleID:   "abc",
		DayNumber: 3,
		Winners: []dto.WinnerDTO{
			{UserID: 1, Drops: 5, BonusEligible: true},
			{UserID: 2, Drops: 5},
		},
		Promo: &testPromo,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 2, "announce plus mirror")
	assert.Equal(t, "<@1> <@2>", sender.sent[0].msg.Content)
	assert.Empty(t, sender.granted, "roles are granted separately")

	embed := sender.sent[0].msg.Embeds[0]
	assert.Contains(t, embed.Title, "Day 3")
	assert.Contains(t, embed.Description, "⭐")
	assert.Contains(t, embed.Description, "Prize: **Plushie**")
}

func TestPoster_GrantWinnerRoles(t *testing.T) {
	sender := &fakeSender{}
	poster := NewPoster(sender, Config{AnnounceChannelID: 10, WinnerRoleID: 99})

	poster.GrantWinnerRoles(context.Background(), []dto.WinnerDTO{{UserID: 1}, {UserID: 2}})
	assert.Equal(t, map[int64]int64{1: 99, 2: 99}, sender.granted)
	assert.Empty(t, sender.sent)
}

func TestPoster_GrantWinnerRoles_FailureIsNotFatal(t *testing.T) {
	sender := &fakeSender{grantFail: errors.New("missing permissions")}
	poster := NewPoster(sender, Config{AnnounceChannelID: 10, WinnerRoleID: 99})

	poster.GrantWinnerRoles(context.Background(), []dto.WinnerDTO{{UserID: 1}, {UserID: 2}})
	assert.Len(t, sender.granted, 2, "a failed grant does not stop the rest")
}

func TestPoster_GrantWinnerRoles_Disabled(t *testing.T) {
	sender := &fakeSender{}
	poster := NewPoster(sender, Config{AnnounceChannelID: 10})

	poster.GrantWinnerRoles(context.Background(), []dto.WinnerDTO{{UserID: 1}})
	assert.Empty(t, sender.granted)
}

func TestPoster_AnnounceWinners_PostFailure(t *testing.T) {
	sender := &fakeSender{failOn: 10}
	poster := NewPoster(sender, Config{AnnounceChannelID: 10, WinnerRoleID: 99})

	err := poster.AnnounceWinners(context.Background(), dto.WinnerAnnouncementDTO{
		DayNumber: 1,
		Winners:   []dto.WinnerDTO{{UserID: 1, Drops: 1}},
	})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestBuildWinnersEmbed_NoWinners(t *testing.T) {
	embed := BuildWinnersEmbed(dto.WinnerAnnouncementDTO{DayNumber: 2})
	assert.Equal(t, colorEmpty, embed.Color)
	assert.Contains(t, embed.Description, "No eligible winners")
}

func TestBuildFinalEmbed(t *testing.T) {
	embed := BuildFinalEmbed(dto.FinalStandingsDTO{
		EventLengthDays: 12,
		Standings: []dto.WinnerDTO{
			{UserID: 1, Drops: 30},
			{UserID: 2, Drops: 20},
			{UserID: 3, Drops: 10},
		},
	})
	assert.Contains(t, embed.Description, "🥇 <@1> with **30** drops")
	assert.Contains(t, embed.Description, "🥉 <@3>")
	assert.Equal(t, "12 day event", embed.Footer.Text)
}
