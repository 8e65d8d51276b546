package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type InventoryConfig struct {
	// Source selects the device feed: "api" for the inventory HTTP API,
	// "file" for a local JSON dump (development).
	Source       string        `mapstructure:"source"`
	BaseURL      string        `mapstructure:"base_url"`
	DevicesPath  string        `mapstructure:"devices_path"`
	TokenURL     string        `mapstructure:"token_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	File         string        `mapstructure:"file"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	RootDir      string `mapstructure:"root_dir"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type SnapshotConfig struct {
	// Backend selects the snapshot store: "redis" or "memory".
	Backend  string `mapstructure:"backend"`
	RedisURL string `mapstructure:"redis_url"`
}

type SyncConfig struct {
	InventoryInterval time.Duration `mapstructure:"inventory_interval"`
	BackupInterval    time.Duration `mapstructure:"backup_interval"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "fleetwatch")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("inventory.source", "api")
	v.SetDefault("inventory.devices_path", "/devices")
	v.SetDefault("inventory.timeout", "30s")
	v.SetDefault("storage.root_dir", "backups")
	v.SetDefault("storage.use_path_style", true)
	v.SetDefault("snapshot.backend", "redis")
	v.SetDefault("snapshot.redis_url", "redis://localhost:6379")
	v.SetDefault("sync.inventory_interval", "30s")
	v.SetDefault("sync.backup_interval", "10m")
	v.SetDefault("sync.fetch_timeout", "60s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Inventory.Source {
	case "api":
		if c.Inventory.BaseURL == "" {
			return fmt.Errorf("inventory.base_url is required when source is api")
		}
	case "file":
		if c.Inventory.File == "" {
			return fmt.Errorf("inventory.file is required when source is file")
		}
	default:
		return fmt.Errorf("inventory.source must be api or file, got %q", c.Inventory.Source)
	}

	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.RootDir == "" {
		return fmt.Errorf("storage.root_dir is required")
	}

	switch c.Snapshot.Backend {
	case "redis":
		if c.Snapshot.RedisURL == "" {
			return fmt.Errorf("snapshot.redis_url is required when backend is redis")
		}
	case "memory":
	default:
		return fmt.Errorf("snapshot.backend must be redis or memory, got %q", c.Snapshot.Backend)
	}

	if c.Sync.InventoryInterval <= 0 {
		return fmt.Errorf("sync.inventory_interval must be positive")
	}
	if c.Sync.BackupInterval <= 0 {
		return fmt.Errorf("sync.backup_interval must be positive")
	}
	if c.Sync.FetchTimeout <= 0 {
		return fmt.Errorf("sync.fetch_timeout must be positive")
	}

	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required when enabled")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required when enabled")
		}
	}

	return nil
}
