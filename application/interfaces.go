package application

import (
	"context"

	"plushiebot/application/dto"
	"plushiebot/domain/entities"
)

// ChatPlatform is the subset of the chat platform the application layer calls.
// The bot package implements it on top of the gateway session.
type ChatPlatform interface {
	// FetchMessage loads a message by id
	FetchMessage(ctx context.Context, channelID, messageID int64) (*dto.FetchedMessage, error)

	// GrantRole adds a role to a guild member
	GrantRole(ctx context.Context, userID, roleID int64) error

	// ListGuildMembers returns every member of the configured guild with their roles
	ListGuildMembers(ctx context.Context) ([]entities.Member, error)
}

// DropAnnouncer posts drop notifications
type DropAnnouncer interface {
	AnnounceDrop(ctx context.Context, drop dto.DropAnnouncementDTO) error
}

// WinnerAnnouncer posts the daily winners and the final standings
type WinnerAnnouncer interface {
	// AnnounceWinners posts the day's winners
	AnnounceWinners(ctx context.Context, announcement dto.WinnerAnnouncementDTO) error

	// GrantWinnerRoles hands the winner role to each winner. It runs after the
	// day is committed; failures are logged, not returned.
	GrantWinnerRoles(ctx context.Context, winners []dto.WinnerDTO)

	// AnnounceFinal posts the end-of-event standings
	AnnounceFinal(ctx context.Context, standings dto.FinalStandingsDTO) error
}

// MetricsRecorder receives counters from the watcher and the cycle
type MetricsRecorder interface {
	RecordClassification(ctx context.Context, kind string)
	RecordRoll(ctx context.Context, method string, dropped bool)
	RecordCycle(ctx context.Context, status string)
}

type noopMetrics struct{}

func (noopMetrics) RecordClassification(context.Context, string) {}
func (noopMetrics) RecordRoll(context.Context, string, bool)     {}
func (noopMetrics) RecordCycle(context.Context, string)          {}

func promoToDTO(p *entities.Promo) *dto.PromoDTO {
	if p == nil {
		return nil
	}
	return &dto.PromoDTO{
		Name:      p.Name,
		Emoji:     p.Emoji,
		EmojiName: p.EmojiName,
		Prize:     p.Prize,
		ImageURL:  p.ImageURL,
	}
}
