package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Source types for the calendar backend
const (
	SourceFixture = "fixture"
	SourceGoogle  = "google"
	SourceICS     = "ics"
)

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig represents HTTP dashboard configuration
type ServerConfig struct {
	ListenAddr     string   `mapstructure:"listen_addr"`
	AllowedUsers   []string `mapstructure:"allowed_users"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CalendarConfig represents the event source configuration
type CalendarConfig struct {
	Source          string `mapstructure:"source"` // "fixture", "google" or "ics"
	CalendarID      string `mapstructure:"calendar_id"`
	CredentialsFile string `mapstructure:"credentials_file"` // For google source
	ICSFile         string `mapstructure:"ics_file"`         // For ics source
	PageSize        int    `mapstructure:"page_size"`
}

// ReportConfig represents CLI report defaults
type ReportConfig struct {
	DefaultUser string `mapstructure:"default_user"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from the given file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("calendar.source", SourceFixture)
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("report.default_user", "test")
	v.SetDefault("log.level", "info")

	// Read environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Calendar.Source {
	case SourceFixture:
		// Nothing to configure; the built-in fixture is self-contained.
	case SourceGoogle:
		if c.Calendar.CalendarID == "" {
			return fmt.Errorf("calendar.calendar_id is required for google source")
		}
		if c.Calendar.CredentialsFile == "" {
			return fmt.Errorf("calendar.credentials_file is required for google source")
		}
	case SourceICS:
		if c.Calendar.ICSFile == "" {
			return fmt.Errorf("calendar.ics_file is required for ics source")
		}
	default:
		return fmt.Errorf("calendar.source must be 'fixture', 'google' or 'ics', got '%s'", c.Calendar.Source)
	}

	if c.Calendar.PageSize < 0 {
		return fmt.Errorf("calendar.page_size must not be negative")
	}

	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}

	return nil
}
