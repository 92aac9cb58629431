package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"plushiebot/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken      string
	GuildID           int64
	GameBotID         int64   // Author ID of the game bot whose messages are watched
	WatchedChannelIDs []int64 // Empty means every channel in the guild

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration; empty disables publishing outside the process
	NATSServers string

	// Eligibility roles
	DonorRoleIDs    []int64
	HuntRoleID      int64
	AbsentRoleID    int64
	NonWeeklyRoleID int64
	WinnerRoleID    int64
	StaffRoleIDs    []int64

	// Announcement channels
	AnnounceChannelID int64
	ReportChannelID   int64

	// Classification
	FishEmbedColor int
	RareSpecies    string

	// Drop handling
	DropCooldown     time.Duration
	RateLimitBackoff time.Duration

	// Promo cache
	PromoRefreshInterval time.Duration

	// Announcement cycle
	AnnounceHour         int
	AnnounceTimezone     string
	EventLengthDays      int
	WinCap               int
	MaxFallbackTiers     int
	BlockedUserIDs       []int64
	BonusRewardThreshold int64 // 0 disables the bonus reward track

	// Metrics
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Location returns the announcement time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AnnounceTimezone)
	if err != nil {
		log.WithFields(log.Fields{
			"timezone": c.AnnounceTimezone,
			"error":    err,
		}).Warn("Unknown announcement time zone, using UTC")
		return time.UTC
	}
	return loc
}

// load reads configuration from the environment, after merging any .env file
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	config := &Config{
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		GuildID:           getEnvInt64("GUILD_ID", 0),
		GameBotID:         getEnvInt64("GAME_BOT_ID", 664508672713424926),
		WatchedChannelIDs: getEnvIDList("WATCHED_CHANNEL_IDS"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		DonorRoleIDs:    getEnvIDList("DONOR_ROLE_IDS"),
		HuntRoleID:      getEnvInt64("HUNT_ROLE_ID", 0),
		AbsentRoleID:    getEnvInt64("ABSENT_ROLE_ID", 0),
		NonWeeklyRoleID: getEnvInt64("NON_WEEKLY_ROLE_ID", 0),
		WinnerRoleID:    getEnvInt64("WINNER_ROLE_ID", 0),
		StaffRoleIDs:    getEnvIDList("STAFF_ROLE_IDS"),

		AnnounceChannelID: getEnvInt64("ANNOUNCE_CHANNEL_ID", 0),
		ReportChannelID:   getEnvInt64("REPORT_CHANNEL_ID", 0),

		FishEmbedColor: int(getEnvInt64("FISH_EMBED_COLOR", 0x87CEEB)),
		RareSpecies:    getEnvWithDefault("RARE_SPECIES", "mew"),

		DropCooldown:     getEnvDuration("DROP_COOLDOWN", time.Second),
		RateLimitBackoff: getEnvDuration("RATE_LIMIT_BACKOFF", 2500*time.Millisecond),

		PromoRefreshInterval: getEnvDuration("PROMO_REFRESH_INTERVAL", 10*time.Minute),

		AnnounceHour:         int(getEnvInt64("ANNOUNCE_HOUR", 12)),
		AnnounceTimezone:     getEnvWithDefault("ANNOUNCE_TIMEZONE", "Asia/Manila"),
		EventLengthDays:      int(getEnvInt64("EVENT_LENGTH_DAYS", 12)),
		WinCap:               int(getEnvInt64("WIN_CAP", 2)),
		MaxFallbackTiers:     int(getEnvInt64("MAX_FALLBACK_TIERS", 5)),
		BlockedUserIDs:       getEnvIDList("BLOCKED_USER_IDS"),
		BonusRewardThreshold: getEnvInt64("BONUS_REWARD_THRESHOLD", 0),

		OTelEnabled:              getEnvWithDefault("OTEL_ENABLED", "false") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "plushiebot"),
		OTelExportIntervalMillis: int(getEnvInt64("OTEL_EXPORT_INTERVAL_MS", 30000)),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if _, set := os.LookupEnv("BLOCKED_USER_IDS"); !set {
		config.BlockedUserIDs = []int64{1093841434525827142}
	}

	if config.Environment != "test" {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// Validate checks the settings the bot cannot run without
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.GuildID == 0 {
		return fmt.Errorf("GUILD_ID is required")
	}
	if c.HuntRoleID == 0 || len(c.DonorRoleIDs) == 0 {
		return fmt.Errorf("HUNT_ROLE_ID and DONOR_ROLE_IDS are required")
	}
	if c.AnnounceHour < 0 || c.AnnounceHour > 23 {
		return fmt.Errorf("ANNOUNCE_HOUR must be between 0 and 23, got %d", c.AnnounceHour)
	}
	if c.EventLengthDays < 1 {
		return fmt.Errorf("EVENT_LENGTH_DAYS must be at least 1, got %d", c.EventLengthDays)
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 parses an integer variable; hex values need a 0x prefix
func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		log.WithFields(log.Fields{
			"key":   key,
			"value": value,
		}).Warn("Ignoring invalid integer setting")
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.WithFields(log.Fields{
			"key":   key,
			"value": value,
		}).Warn("Ignoring invalid duration setting")
		return defaultValue
	}
	return parsed
}

// getEnvIDList parses a comma-separated list of Discord IDs
func getEnvIDList(key string) []int64 {
	var ids []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:         "test-token",
		GuildID:              1,
		GameBotID:            2,
		DonorRoleIDs:         []int64{10},
		HuntRoleID:           11,
		AbsentRoleID:         12,
		NonWeeklyRoleID:      13,
		FishEmbedColor:       0x87CEEB,
		RareSpecies:          "mew",
		DropCooldown:         time.Second,
		RateLimitBackoff:     10 * time.Millisecond,
		PromoRefreshInterval: 10 * time.Minute,
		AnnounceHour:         12,
		AnnounceTimezone:     "UTC",
		EventLengthDays:      12,
		WinCap:               2,
		MaxFallbackTiers:     5,
		OTelExporterType:     "none",
		OTelServiceName:      "plushiebot-test",
		LogLevel:             "debug",
		LogFormat:            "text",
		Environment:          "test",
	}
}
