package dto

import "time"

// PromoDTO is the part of the promo shown in announcements
type PromoDTO struct {
	Name      string
	Emoji     string
	EmojiName string
	Prize     string
	ImageURL  string
}

// DropAnnouncementDTO contains everything needed to announce one drop
type DropAnnouncementDTO struct {
	GuildID   int64
	ChannelID int64 // Channel the game bot message was in
	MessageID int64
	UserID    int64
	Method    string
	Forced    bool
	DayNumber int
	DropTime  time.Time
	// Counts include the drop being announced
	TodayCount int64
	TotalCount int64
	Promo      PromoDTO
}

// WinnerDTO is one winner or final standings row
type WinnerDTO struct {
	UserID        int64
	Drops         int64
	BonusEligible bool
}

// WinnerAnnouncementDTO is the result of a daily cycle handed to the announcer
type WinnerAnnouncementDTO struct {
	CycleID   string
	DayNumber int
	// Winners is empty when nobody was eligible
	Winners []WinnerDTO
	Promo   *PromoDTO
}

// FinalStandingsDTO is the end-of-event summary
type FinalStandingsDTO struct {
	CycleID         string
	DayNumber       int
	EventLengthDays int
	Standings       []WinnerDTO
	Promo           *PromoDTO
}

// PromoStatusDTO is a member's view of the running promo
type PromoStatusDTO struct {
	Promo      PromoDTO
	CatchRate  int
	FishRate   int
	BattleRate int
	// EligibilityRoleID is the extra role the promo requires, if any
	EligibilityRoleID *int64
	// Eligible reports whether the member can currently earn drops
	Eligible   bool
	TotalDrops int64
	TodayDrops int64
}
