// Package config provides configuration loading and validation for the
// friendbook API service and Telegram bot. Values come from defaults,
// an optional config.yaml, and FRIENDBOOK_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration for both binaries. The API
// service reads Log, Server, Database, and AI; the bot reads Log and Bot.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	AI       AIConfig       `mapstructure:"ai"`
	Bot      BotConfig      `mapstructure:"bot"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ServerConfig holds HTTP server settings for the API service.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	MediaDir        string        `mapstructure:"media_dir"        validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=1m"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AIConfig selects and configures the answer provider. Provider "mock" needs
// no credentials; "gemini" requires an API key.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"    validate:"required,oneof=mock gemini"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxTokens   int32         `mapstructure:"max_tokens"  validate:"min=1,max=8192"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
}

// BotConfig holds Telegram bot settings. APIBaseURL points at the friendbook
// API service the bot talks to.
type BotConfig struct {
	Token         string        `mapstructure:"token"          validate:"required"`
	APIBaseURL    string        `mapstructure:"api_base_url"   validate:"required,url"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"    validate:"min=1m,max=24h"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"min=1m,max=1h"`
}

// Load reads configuration from config.yaml (optional) and environment
// variables, applies defaults, and validates the result. requireBot controls
// whether the Telegram settings must be present; the API service does not
// need a bot token and vice versa.
func Load(requireBot bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FRIENDBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, defaults plus env vars apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(requireBot); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate(requireBot bool) error {
	validate := validator.New()

	if err := validate.Struct(c.Log); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if requireBot {
		if err := validate.Struct(c.Bot); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		return nil
	}

	if err := validate.Struct(c.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validate.Struct(c.Database); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := validate.Struct(c.AI); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if c.AI.Provider == "gemini" && c.AI.APIKey == "" {
		return fmt.Errorf("ai: provider %q requires an api_key", c.AI.Provider)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.media_dir", "media")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "friends.db")

	v.SetDefault("ai.provider", "mock")
	// Registering the key lets AutomaticEnv surface it during Unmarshal.
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 200)
	v.SetDefault("ai.timeout", 30*time.Second)

	v.SetDefault("bot.token", "")
	v.SetDefault("bot.api_base_url", "http://localhost:8000")
	v.SetDefault("bot.session_ttl", 30*time.Minute)
	v.SetDefault("bot.sweep_interval", 5*time.Minute)
}
