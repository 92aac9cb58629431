package staff

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"plushiebot/application"
	"plushiebot/bot/common"
	"plushiebot/bot/features/leaderboard"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	commandTimeout   = 30 * time.Second
	leaderboardLimit = 10
)

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	common.RespondWithError(s, i, message)
}

func callerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	return ""
}

// handleSetPromo handles /set-promo
func (f *Feature) handleSetPromo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	promo, err := parsePromo(i.ApplicationCommandData().Options)
	if err != nil {
		respondError(s, i, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := f.service.SetPromo(ctx, promo); err != nil {
		log.WithFields(log.Fields{
			"staff_id": callerID(i),
			"promo":    promo.Name,
			"error":    err,
		}).Error("Failed to set promo")
		respondError(s, i, "Failed to set promo")
		return
	}

	common.RespondEphemeral(s, i, fmt.Sprintf("✅ Promo **%s** is live. Rates: catch 1/%d, battle 1/%d, fish 1/%d",
		promo.Name, promo.CatchRate, promo.BattleRate, promo.FishRate))
}

// handleUpdatePromo handles /update-promo
func (f *Feature) handleUpdatePromo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	update := parsePromoUpdate(i.ApplicationCommandData().Options)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	promo, err := f.service.UpdatePromo(ctx, update)
	if err != nil {
		log.WithFields(log.Fields{
			"staff_id": callerID(i),
			"error":    err,
		}).Error("Failed to update promo")
		respondError(s, i, fmt.Sprintf("Failed to update promo: %v", err))
		return
	}

	common.RespondEphemeral(s, i, fmt.Sprintf("✅ Promo **%s** updated. Rates: catch 1/%d, battle 1/%d, fish 1/%d",
		promo.Name, promo.CatchRate, promo.BattleRate, promo.FishRate))
}

// handleResetEvent handles /reset-event
func (f *Feature) handleResetEvent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := newOptionMap(i.ApplicationCommandData().Options)
	confirm, ok := opts["confirm"]
	if !ok || !confirm.BoolValue() {
		respondError(s, i, "Reset cancelled. Pass confirm:True to wipe all drops and winners")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := f.service.ResetEvent(ctx); err != nil {
		log.WithFields(log.Fields{
			"staff_id": callerID(i),
			"error":    err,
		}).Error("Failed to reset event")
		respondError(s, i, "Failed to reset event")
		return
	}

	log.WithField("staff_id", callerID(i)).Warn("Event reset by staff")
	common.RespondEphemeral(s, i, "✅ Event reset. Drops and winners cleared, day counter back to 1")
}

// handleGivePlushie handles /give-plushie
func (f *Feature) handleGivePlushie(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, method, day, err := parseGivePlushie(i.ApplicationCommandData().Options)
	if err != nil {
		respondError(s, i, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	record, err := f.service.GivePlushie(ctx, userID, method, day)
	if err != nil {
		log.WithFields(log.Fields{
			"staff_id": callerID(i),
			"user_id":  userID,
			"method":   method,
			"error":    err,
		}).Error("Failed to give plushie")
		respondError(s, i, "Failed to record drop")
		return
	}

	common.RespondEphemeral(s, i, fmt.Sprintf("✅ Recorded a %s drop for %s on day %d",
		record.Method, common.Mention(userID), record.DayNumber))
}

// handleLeaderboard handles /plushie-leaderboard
func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	view := application.LeaderboardToday
	if v := newOptionMap(i.ApplicationCommandData().Options).stringPtr("view"); v != nil {
		view = application.LeaderboardView(*v)
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Failed to defer leaderboard response")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rows, err := f.service.Leaderboard(ctx, view, leaderboardLimit)
	if err != nil {
		log.WithError(err).Error("Failed to load leaderboard")
		common.FollowUpWithError(s, i, "Failed to load leaderboard")
		return
	}

	ids := make([]int64, len(rows))
	for idx, r := range rows {
		ids[idx] = r.UserID
	}
	names := f.names.DisplayNames(ctx, ids)

	entries := make([]leaderboard.Entry, len(rows))
	for idx, r := range rows {
		entries[idx] = leaderboard.Entry{Rank: idx + 1, Username: names[r.UserID], Drops: r.Count}
	}

	title := "Today's Plushie Hunters"
	if view == application.LeaderboardAllTime {
		title = "All-Time Plushie Hunters"
	}

	png, err := f.images.Generate(title, entries)
	if err != nil {
		log.WithError(err).Error("Failed to render leaderboard")
		common.FollowUpWithError(s, i, "Failed to render leaderboard")
		return
	}

	common.FollowUp(s, i, &discordgo.WebhookParams{
		Files: []*discordgo.File{{
			Name:        "leaderboard.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}},
	})
}

// handleDailyWinners handles /list-daily-winners
func (f *Feature) handleDailyWinners(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	days, err := f.service.DailyWinners(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list daily winners")
		respondError(s, i, "Failed to list daily winners")
		return
	}
	current, err := f.service.CurrentDay(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to get current day")
		respondError(s, i, "Failed to list daily winners")
		return
	}

	common.RespondEphemeral(s, i, formatDailyWinners(days, current.DayNumber, current.IsFinalized()))
}

func formatDailyWinners(days []application.DayWinners, currentDay int, finalized bool) string {
	var sb strings.Builder
	status := fmt.Sprintf("Current day: **%d**", currentDay)
	if finalized {
		status += " (event finalized)"
	}
	sb.WriteString(status + "\n\n")

	if len(days) == 0 {
		sb.WriteString("No winners recorded yet.")
		return sb.String()
	}

	for _, d := range days {
		mentions := make([]string, len(d.Winners))
		for idx, w := range d.Winners {
			mentions[idx] = fmt.Sprintf("%s (%s)", common.Mention(w.UserID), common.FormatCount(w.TotalDrops))
		}
		fmt.Fprintf(&sb, "**Day %d:** %s\n", d.DayNumber, strings.Join(mentions, ", "))
	}
	return sb.String()
}

// handleAnnounce handles /announce-winners
func (f *Feature) handleAnnounce(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Failed to defer announce response")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := f.service.AnnounceNow(ctx)
	if err != nil {
		log.WithFields(log.Fields{
			"staff_id": callerID(i),
			"error":    err,
		}).Error("Manual announcement failed")
		common.FollowUpWithError(s, i, "Announcement failed, the day was not advanced")
		return
	}

	common.FollowUp(s, i, &discordgo.WebhookParams{Content: describeCycle(result)})
}

func describeCycle(r application.CycleResult) string {
	switch r.Status {
	case application.CycleWinnersRecorded:
		return fmt.Sprintf("✅ Announced %d winner(s) for day %d. Now on day %d", len(r.Winners), r.DayNumber, r.NextDay)
	case application.CycleNoneEligible:
		return fmt.Sprintf("✅ No eligible winners for day %d. Now on day %d", r.DayNumber, r.NextDay)
	case application.CycleAlreadyRecorded:
		return fmt.Sprintf("ℹ️ Winners for day %d were already recorded", r.DayNumber)
	case application.CycleFinalized:
		return "✅ Final standings announced. The event is over"
	case application.CycleAlreadyFinalized:
		return "ℹ️ The event has already been finalized"
	default:
		return fmt.Sprintf("Cycle finished with status %s", r.Status)
	}
}
