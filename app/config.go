package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the application configuration, read from the environment. A .env
// file in the working directory is loaded first when present; real
// environment variables win over file values.
type Config struct {
	// Token is the bot token, without the "Bot " prefix.
	Token string `env:"DISCORD_TOKEN,required"`

	// GuildID scopes command registration to one guild, which Discord applies
	// instantly. Empty means global registration, which can take up to an
	// hour to propagate.
	GuildID string `env:"DISCORD_GUILD_ID"`

	// SyncCommands controls whether the declared application commands are
	// pushed to Discord on startup.
	SyncCommands bool `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	// Activities are presence texts rotated at PresenceInterval. Empty
	// disables presence rotation.
	Activities []string `env:"DISCORD_ACTIVITIES" envSeparator:","`

	PresenceInterval time.Duration `env:"DISCORD_PRESENCE_INTERVAL" envDefault:"10m"`

	// ShutdownGrace is how long in-flight handlers get to finish after the
	// gateway connection is closed.
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"2s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// LoadConfig reads configuration from .env (when present) and the process
// environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
