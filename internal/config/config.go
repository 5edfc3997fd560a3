package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "APPROOM"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultDatabasePath    = "approom.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultReminderEnabled = true
	defaultReminderTitle   = "New purchase"
	defaultReminderBody    = "You have a new order"
	defaultFeedBufferSize  = 16

	// MinReminderInterval is the shortest period a periodic reminder may use.
	MinReminderInterval = 15 * time.Minute
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress      string
	DatabasePath     string
	LogLevel         string
	LogFormat        string
	ReminderEnabled  bool
	ReminderInterval time.Duration
	ReminderTitle    string
	ReminderBody     string
	FeedBufferSize   int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("reminder.enabled", defaultReminderEnabled)
	configViper.SetDefault("reminder.interval", MinReminderInterval)
	configViper.SetDefault("reminder.title", defaultReminderTitle)
	configViper.SetDefault("reminder.body", defaultReminderBody)
	configViper.SetDefault("feed.buffer_size", defaultFeedBufferSize)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:      configViper.GetString("http.address"),
		DatabasePath:     configViper.GetString("database.path"),
		LogLevel:         configViper.GetString("log.level"),
		LogFormat:        configViper.GetString("log.format"),
		ReminderEnabled:  configViper.GetBool("reminder.enabled"),
		ReminderInterval: configViper.GetDuration("reminder.interval"),
		ReminderTitle:    configViper.GetString("reminder.title"),
		ReminderBody:     configViper.GetString("reminder.body"),
		FeedBufferSize:   configViper.GetInt("feed.buffer_size"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.FeedBufferSize <= 0 {
		return fmt.Errorf("feed.buffer_size must be positive, got %d", c.FeedBufferSize)
	}
	if !c.ReminderEnabled {
		return nil
	}
	if c.ReminderInterval < MinReminderInterval {
		return fmt.Errorf("reminder.interval must be at least %s, got %s", MinReminderInterval, c.ReminderInterval)
	}
	if strings.TrimSpace(c.ReminderTitle) == "" {
		return fmt.Errorf("reminder.title is required")
	}
	return nil
}
