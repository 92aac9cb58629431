package cmd

import (
	"context"
	"fmt"
	"time"

	"plushiebot/application"
	"plushiebot/bot"
	"plushiebot/bot/features/announcements"
	"plushiebot/bot/features/promo"
	"plushiebot/bot/features/staff"
	"plushiebot/config"
	"plushiebot/database"
	"plushiebot/domain/interfaces"
	"plushiebot/domain/services"
	"plushiebot/events"
	"plushiebot/infrastructure"
	"plushiebot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg.LogLevel, cfg.LogFormat)
	log.WithField("environment", cfg.Environment).Info("Starting plushie bot...")

	// Database
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database ready")

	// Metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	metrics := observability.GetMetrics()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics")
		}
	}()

	// Events: local bus always, NATS when configured
	eventBus := events.NewBus()
	metrics.SubscribeToBus(eventBus)

	var publisher interfaces.EventPublisher = eventBus
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper(), eventBus)
		if err := natsPublisher.EnsureStream(natsClient); err != nil {
			log.WithError(err).Warn("Failed to ensure NATS stream, events may not be persisted")
		}
		natsPublisher.OnPublished(metrics.RecordNATSMessagePublished)
		publisher = natsPublisher
		log.WithField("servers", cfg.NATSServers).Info("Publishing events to NATS")
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)

	// Discord session
	discordBot, err := bot.New(bot.Config{
		Token:            cfg.DiscordToken,
		GuildID:          cfg.GuildID,
		RateLimitBackoff: cfg.RateLimitBackoff,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	platform := discordBot.Platform()
	poster := announcements.NewPoster(platform, announcements.Config{
		AnnounceChannelID: cfg.AnnounceChannelID,
		ReportChannelID:   cfg.ReportChannelID,
		WinnerRoleID:      cfg.WinnerRoleID,
	})

	// Domain services
	promoCache := services.NewPromoCache()
	filter := services.NewEligibilityFilter(services.EligibilityRoles{
		DonorRoleIDs:    cfg.DonorRoleIDs,
		HuntRoleID:      cfg.HuntRoleID,
		AbsentRoleID:    cfg.AbsentRoleID,
		NonWeeklyRoleID: cfg.NonWeeklyRoleID,
	})
	classifier := services.NewMessageClassifier(cfg.FishEmbedColor, cfg.RareSpecies)
	roller := services.NewDropRoller(nil)

	// Application
	refresher := application.NewPromoRefresher(uowFactory, promoCache, cfg.PromoRefreshInterval)
	stopRefresher := refresher.Start(ctx)
	defer stopRefresher()

	watcher := application.NewDropWatcher(
		uowFactory,
		platform,
		poster,
		promoCache,
		filter,
		classifier,
		roller,
		application.NewCooldown(cfg.DropCooldown),
		application.WatcherSettings{
			GuildID:           cfg.GuildID,
			GameBotID:         cfg.GameBotID,
			WatchedChannelIDs: cfg.WatchedChannelIDs,
		},
	)
	watcher.SetMetrics(metrics)

	cycle := application.NewAnnouncementCycle(uowFactory, poster, application.CycleSettings{
		EventLengthDays: cfg.EventLengthDays,
		Rules: services.WinnerRules{
			BlockedUserIDs: cfg.BlockedUserIDs,
			WinCap:         cfg.WinCap,
			MaxTiers:       cfg.MaxFallbackTiers,
		},
		BonusRewardThreshold: cfg.BonusRewardThreshold,
	})
	cycle.SetMetrics(metrics)

	worker := application.NewAnnouncementWorker(cycle, cfg.AnnounceHour, cfg.Location())
	stopWorker := worker.Start(ctx)
	defer stopWorker()

	staffService := application.NewStaffService(uowFactory, refresher, cycle)
	promoViewer := application.NewPromoViewer(uowFactory, promoCache, filter)

	if err := discordBot.Start(bot.Handlers{
		Messages: watcher,
		Members:  application.NewMemberSync(platform, filter),
		Staff:    staff.NewFeature(staffService, platform, cfg.StaffRoleIDs),
		Promo:    promo.NewFeature(promoViewer, cfg.AnnounceHour, cfg.AnnounceTimezone),
	}); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}
	log.Info("Plushie bot is running")

	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	return nil
}
