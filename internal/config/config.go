package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	LogLevel string `mapstructure:"log_level"`

	User     string `mapstructure:"littlesms_user"`
	Key      string `mapstructure:"littlesms_key"`
	Host     string `mapstructure:"littlesms_host"`
	Insecure bool   `mapstructure:"littlesms_insecure"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	ProxyURL           string        `mapstructure:"proxy_url"`
	ProxyUser          string        `mapstructure:"proxy_user"`
	ProxyPassword      string        `mapstructure:"proxy_password"`
	ProxySkipVerify    bool          `mapstructure:"proxy_skip_verify"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "littlesms")
	v.SetDefault("log_level", "warn")
	v.SetDefault("littlesms_user", "")
	v.SetDefault("littlesms_key", "")
	v.SetDefault("littlesms_host", "littlesms.ru")
	v.SetDefault("littlesms_insecure", false)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("proxy_url", "")
	v.SetDefault("proxy_user", "")
	v.SetDefault("proxy_password", "")
	v.SetDefault("proxy_skip_verify", false)
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) finalize() error {
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)

	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return nil
}

// Redacted returns a copy safe for logging.
func (cfg Config) Redacted() Config {
	if cfg.Key != "" {
		cfg.Key = "***"
	}
	if cfg.ProxyPassword != "" {
		cfg.ProxyPassword = "***"
	}
	return cfg
}
