package config

import (
	"fmt"
	"log"
	"strings"

	"guild-metrics/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBatchSize bounds the number of member rows upserted per statement
// during bulk reconciliation.
const DefaultBatchSize = 500

// Config carries the reconciliation settings for the single mirrored guild.
// All identifier sets hold canonical string ids.
type Config struct {
	GuildID     string
	StaffRoleID string

	StaffCategories  map[string]bool
	StaffChannels    map[string]bool
	IgnoreCategories map[string]bool

	BatchSize      int
	DBPath         string
	ResyncSchedule string
	SyncAtStartup  bool
}

// Load reads configuration from a .env file, config.yaml and the
// environment. Environment variables override file settings.
func Load() (*Config, error) {
	// Load environment variables from .env if present; missing is fine.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, skipping.")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("No config.yaml found, using environment variables and defaults.")
		} else {
			return nil, fmt.Errorf("fatal error reading config file: %w", err)
		}
	}

	viper.SetDefault("bot.batchSize", DefaultBatchSize)
	viper.SetDefault("bot.resyncSchedule", "@hourly")
	viper.SetDefault("bot.syncAtStartup", true)
	viper.SetDefault("database.path", "data/guild_metrics.db")

	cfg := &Config{
		GuildID:          utils.CanonicalID(viper.Get("bot.guildId")),
		StaffRoleID:      utils.CanonicalID(viper.Get("bot.staffRoleId")),
		StaffCategories:  idSet(viper.Get("bot.staffCategories")),
		StaffChannels:    idSet(viper.Get("bot.staffChannels")),
		IgnoreCategories: idSet(viper.Get("bot.ignoreCategories")),
		BatchSize:        viper.GetInt("bot.batchSize"),
		DBPath:           viper.GetString("database.path"),
		ResyncSchedule:   viper.GetString("bot.resyncSchedule"),
		SyncAtStartup:    viper.GetBool("bot.syncAtStartup"),
	}

	if viper.Get("bot.guildId") == nil || cfg.GuildID == "" {
		return nil, fmt.Errorf("bot.guildId must be configured")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return cfg, nil
}

// IsStaffChannel reports whether a channel counts as staff, either directly
// or through its category.
func (c *Config) IsStaffChannel(channelID string, categoryID *string) bool {
	if c.StaffChannels[channelID] {
		return true
	}
	return categoryID != nil && c.StaffCategories[*categoryID]
}

// IsIgnoredCategory reports whether a category id is on the ignore list. A
// nil category (channel outside any category) is never ignored.
func (c *Config) IsIgnoredCategory(categoryID *string) bool {
	return categoryID != nil && c.IgnoreCategories[*categoryID]
}

// idSet converts a configured id list into a canonical-string lookup set.
// YAML hands numeric snowflakes over as ints or floats, so every element
// goes through CanonicalID.
func idSet(v any) map[string]bool {
	set := make(map[string]bool)
	items, ok := v.([]any)
	if !ok {
		return set
	}
	for _, item := range items {
		set[utils.CanonicalID(item)] = true
	}
	return set
}
