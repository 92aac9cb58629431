package staff

import (
	"context"

	"plushiebot/application"
	"plushiebot/bot/features/leaderboard"
	"plushiebot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// Service is the staff application service the commands drive
type Service interface {
	SetPromo(ctx context.Context, promo *entities.Promo) error
	UpdatePromo(ctx context.Context, update entities.PromoUpdate) (*entities.Promo, error)
	ResetEvent(ctx context.Context) error
	GivePlushie(ctx context.Context, userID int64, method entities.DropMethod, day *int) (*entities.DropRecord, error)
	Leaderboard(ctx context.Context, view application.LeaderboardView, limit int) ([]entities.DropCount, error)
	CurrentDay(ctx context.Context) (*entities.DayCycle, error)
	DailyWinners(ctx context.Context) ([]application.DayWinners, error)
	AnnounceNow(ctx context.Context) (application.CycleResult, error)
}

// NameResolver turns user ids into display names
type NameResolver interface {
	DisplayNames(ctx context.Context, userIDs []int64) map[int64]string
}

// Feature handles the staff slash commands
type Feature struct {
	service      Service
	names        NameResolver
	images       *leaderboard.ImageGenerator
	staffRoleIDs []int64
}

// NewFeature creates the staff feature
func NewFeature(service Service, names NameResolver, staffRoleIDs []int64) *Feature {
	return &Feature{
		service:      service,
		names:        names,
		images:       leaderboard.NewImageGenerator(),
		staffRoleIDs: staffRoleIDs,
	}
}

// HandleCommand routes a staff command to its handler
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !IsStaff(i.Member, f.staffRoleIDs) {
		respondError(s, i, "You need a staff role to use this command")
		return
	}

	switch i.ApplicationCommandData().Name {
	case CommandSetPromo:
		f.handleSetPromo(s, i)
	case CommandUpdatePromo:
		f.handleUpdatePromo(s, i)
	case CommandResetEvent:
		f.handleResetEvent(s, i)
	case CommandGivePlushie:
		f.handleGivePlushie(s, i)
	case CommandLeaderboard:
		f.handleLeaderboard(s, i)
	case CommandDailyWinners:
		f.handleDailyWinners(s, i)
	case CommandAnnounce:
		f.handleAnnounce(s, i)
	}
}

// Handles reports whether the command belongs to this feature
func (f *Feature) Handles(name string) bool {
	switch name {
	case CommandSetPromo, CommandUpdatePromo, CommandResetEvent, CommandGivePlushie,
		CommandLeaderboard, CommandDailyWinners, CommandAnnounce:
		return true
	}
	return false
}
