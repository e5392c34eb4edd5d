package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ChimeConfig struct {
	Mode       string `mapstructure:"mode"` // "system" or "silent"
	File       string `mapstructure:"file"`
	DurationMS int    `mapstructure:"duration_ms"`
}

// Duration is how long a cue lasts when no audio device plays it.
func (c ChimeConfig) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

type CompanionConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Width   int  `mapstructure:"width"`
	Height  int  `mapstructure:"height"`
}

type VideoConfig struct {
	// ContentSeconds is the simulated length of every video, 0 for endless.
	ContentSeconds float64 `mapstructure:"content_seconds"`
}

type Config struct {
	Port          string          `mapstructure:"port"`
	DBPath        string          `mapstructure:"db_path"`
	JWTSecret     string          `mapstructure:"jwt_secret"`
	TokenTTLHours int             `mapstructure:"token_ttl_hours"`
	CORSOrigins   string          `mapstructure:"cors_origins"`
	MigrationsDir string          `mapstructure:"migrations_dir"`
	Debug         bool            `mapstructure:"debug"`
	LogFile       string          `mapstructure:"log_file"`
	Timezone      string          `mapstructure:"timezone"`
	Chime         ChimeConfig     `mapstructure:"chime"`
	Companion     CompanionConfig `mapstructure:"companion"`
	Video         VideoConfig     `mapstructure:"video"`
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c Config) Origins() []string {
	return splitList(c.CORSOrigins)
}

// Location resolves the zone used for exported timestamps.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configFile when given, otherwise config.yaml from the working
// directory or $HOME/.config/focustimer. FOCUS_* environment variables override
// both, with dots in keys replaced by underscores.
func Load(configFile string) (Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/focustimer")
	}

	v.SetEnvPrefix("FOCUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "./data/focustimer.db")
	v.SetDefault("jwt_secret", "change-this-secret")
	v.SetDefault("token_ttl_hours", 72)
	v.SetDefault("cors_origins", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("migrations_dir", "./migrations")
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("chime.mode", "system")
	v.SetDefault("chime.file", "")
	v.SetDefault("chime.duration_ms", 2000)
	v.SetDefault("companion.enabled", true)
	v.SetDefault("companion.width", 280)
	v.SetDefault("companion.height", 200)
	v.SetDefault("video.content_seconds", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.TokenTTLHours <= 0 {
		cfg.TokenTTLHours = 72
	}
	if cfg.Chime.Mode != "system" && cfg.Chime.Mode != "silent" {
		return Config{}, fmt.Errorf("invalid chime.mode %q: want system or silent", cfg.Chime.Mode)
	}
	if cfg.Chime.DurationMS < 0 {
		cfg.Chime.DurationMS = 0
	}
	return cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
