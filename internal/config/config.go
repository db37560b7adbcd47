package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	ServerPort      int    `mapstructure:"SERVER_PORT"`
	FeedURL         string `mapstructure:"FEED_URL"`
	AuthToken       string `mapstructure:"AUTH_TOKEN"`
	CreatorID       string `mapstructure:"CREATOR_ID"`
	CreatorName     string `mapstructure:"CREATOR_NAME"`
	ItemsPerPage    int    `mapstructure:"ITEMS_PER_PAGE"`
	RefreshSeconds  int    `mapstructure:"REFRESH_SECONDS"`
	NoticeDismissMS int    `mapstructure:"NOTICE_DISMISS_MS"`
	SnapshotPath    string `mapstructure:"SNAPSHOT_PATH"`

	MediaEndpoint       string `mapstructure:"MEDIA_ENDPOINT"`
	MediaPublicEndpoint string `mapstructure:"MEDIA_PUBLIC_ENDPOINT"`
	MediaAccessKey      string `mapstructure:"MEDIA_ACCESS_KEY"`
	MediaSecretKey      string `mapstructure:"MEDIA_SECRET_KEY"`
	MediaBucket         string `mapstructure:"MEDIA_BUCKET"`
	MediaUseSSL         bool   `mapstructure:"MEDIA_USE_SSL"`
}

// RefreshInterval returns the cadence of the periodic active-set
// re-evaluation.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSeconds) * time.Second
}

// NoticeDismiss returns how long a transient notice stays visible.
func (c Config) NoticeDismiss() time.Duration {
	return time.Duration(c.NoticeDismissMS) * time.Millisecond
}

// Load reads configuration from an optional app.env file in path and
// from the environment. Environment variables win over file values.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("FEED_URL", "ws://localhost:4000/socket")
	viper.SetDefault("AUTH_TOKEN", "")
	viper.SetDefault("CREATOR_ID", "")
	viper.SetDefault("CREATOR_NAME", "")
	viper.SetDefault("ITEMS_PER_PAGE", 5)
	viper.SetDefault("REFRESH_SECONDS", 1)
	viper.SetDefault("NOTICE_DISMISS_MS", 2000)
	viper.SetDefault("SNAPSHOT_PATH", "bidfeed.db")
	viper.SetDefault("MEDIA_ENDPOINT", "")
	viper.SetDefault("MEDIA_PUBLIC_ENDPOINT", "")
	viper.SetDefault("MEDIA_ACCESS_KEY", "")
	viper.SetDefault("MEDIA_SECRET_KEY", "")
	viper.SetDefault("MEDIA_BUCKET", "auction-images")
	viper.SetDefault("MEDIA_USE_SSL", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ItemsPerPage <= 0 {
		return Config{}, fmt.Errorf("ITEMS_PER_PAGE must be positive, got %d", cfg.ItemsPerPage)
	}
	if cfg.FeedURL == "" {
		return Config{}, fmt.Errorf("FEED_URL is required")
	}
	return cfg, nil
}
