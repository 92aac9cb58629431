package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DONOR_ROLE_IDS", "1, 2,x,3")
	t.Setenv("FISH_EMBED_COLOR", "0x00B4D8")
	t.Setenv("DROP_COOLDOWN", "1500ms")
	t.Setenv("ANNOUNCE_HOUR", "not-a-number")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, cfg.DonorRoleIDs)
	assert.Equal(t, 0x00B4D8, cfg.FishEmbedColor)
	assert.Equal(t, 1500*time.Millisecond, cfg.DropCooldown)
	assert.Equal(t, 12, cfg.AnnounceHour)
	assert.Equal(t, "Asia/Manila", cfg.AnnounceTimezone)
	assert.Equal(t, 12, cfg.EventLengthDays)
	assert.Equal(t, 2, cfg.WinCap)
	assert.Equal(t, 10*time.Minute, cfg.PromoRefreshInterval)
	assert.Equal(t, []int64{1093841434525827142}, cfg.BlockedUserIDs)
	assert.Equal(t, "mew", cfg.RareSpecies)
}

func TestLoad_EmptyBlockListOverridesDefault(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("BLOCKED_USER_IDS", "")

	cfg, err := load()
	require.NoError(t, err)
	assert.Empty(t, cfg.BlockedUserIDs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "test config is valid", mutate: func(c *Config) { c.DatabaseURL = "postgres://x" }},
		{name: "missing token", mutate: func(c *Config) { c.DatabaseURL = "postgres://x"; c.DiscordToken = "" }, wantErr: "DISCORD_TOKEN"},
		{name: "missing database", mutate: func(c *Config) {}, wantErr: "DATABASE_URL"},
		{name: "missing roles", mutate: func(c *Config) { c.DatabaseURL = "postgres://x"; c.DonorRoleIDs = nil }, wantErr: "HUNT_ROLE_ID"},
		{name: "bad hour", mutate: func(c *Config) { c.DatabaseURL = "postgres://x"; c.AnnounceHour = 24 }, wantErr: "ANNOUNCE_HOUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := NewTestConfig()
	cfg.AnnounceTimezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGet_ReturnsTestOverride(t *testing.T) {
	defer ResetConfig()

	cfg := NewTestConfig()
	cfg.WinCap = 7
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
	assert.Equal(t, 7, Get().WinCap)
}
