package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// ProviderTVDB is the name of the built-in TheTVDB provider, as it appears
// in the sync.providers enable list.
const ProviderTVDB = "tvdb"

// Config holds all application configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sync    SyncConfig    `mapstructure:"sync"`
	TVDB    TVDBConfig    `mapstructure:"tvdb"`
	Images  ImagesConfig  `mapstructure:"images"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig holds the catalogue database settings
type LibraryConfig struct {
	Path            string `mapstructure:"path"`             // bbolt database file
	DefaultLanguage string `mapstructure:"default_language"` // language used when a series has none
}

// CacheConfig holds the metadata cache settings
type CacheConfig struct {
	Root string `mapstructure:"root"` // holds the watermark file and one directory per series
}

// SyncConfig gates the synchronization task
type SyncConfig struct {
	Enabled       bool          `mapstructure:"enabled"`        // master switch for all network work
	Providers     []string      `mapstructure:"providers"`      // enabled provider names
	CheckInterval time.Duration `mapstructure:"check_interval"` // watch mode tick
}

// TVDBConfig holds the provider endpoints and credentials
type TVDBConfig struct {
	URL               string        `mapstructure:"url"`                 // mirror base URL
	APIKey            string        `mapstructure:"api_key"`             // key for the series zip endpoint
	Timeout           time.Duration `mapstructure:"timeout"`             // per-request deadline
	MaxConnections    int           `mapstructure:"max_connections"`     // outbound request bound
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables rate limiting
}

// ImagesConfig holds the thumbnail download settings
type ImagesConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URLTemplate string `mapstructure:"url_template"` // %s is replaced with the series id
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dataDir := defaultDataPath()
	return &Config{
		Library: LibraryConfig{
			Path:            filepath.Join(dataDir, "library.db"),
			DefaultLanguage: "en",
		},
		Cache: CacheConfig{
			Root: filepath.Join(dataDir, "cache"),
		},
		Sync: SyncConfig{
			Enabled:       true,
			Providers:     []string{ProviderTVDB},
			CheckInterval: time.Hour,
		},
		TVDB: TVDBConfig{
			URL:            "https://thetvdb.com",
			Timeout:        30 * time.Second,
			MaxConnections: 4,
		},
		Images: ImagesConfig{
			Enabled:     true,
			URLTemplate: "https://thetvdb.com/banners/posters/%s-1.jpg",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(dataDir, "showsync.log"),
			Level: "INFO",
		},
	}
}

// ProviderEnabled reports whether both the sync feature and the named
// provider are switched on.
func (c *Config) ProviderEnabled(name string) bool {
	if !c.Sync.Enabled {
		return false
	}
	for _, p := range c.Sync.Providers {
		if p == name {
			return true
		}
	}
	return false
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "showsync")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "showsync")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "showsync")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "showsync")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("SHOWSYNC")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("library.path", cfg.Library.Path)
	viper.Set("library.default_language", cfg.Library.DefaultLanguage)

	viper.Set("cache.root", cfg.Cache.Root)

	viper.Set("sync.enabled", cfg.Sync.Enabled)
	viper.Set("sync.providers", cfg.Sync.Providers)
	viper.Set("sync.check_interval", cfg.Sync.CheckInterval.String())

	viper.Set("tvdb.url", cfg.TVDB.URL)
	viper.Set("tvdb.api_key", cfg.TVDB.APIKey)
	viper.Set("tvdb.timeout", cfg.TVDB.Timeout.String())
	viper.Set("tvdb.max_connections", cfg.TVDB.MaxConnections)
	viper.Set("tvdb.requests_per_second", cfg.TVDB.RequestsPerSecond)

	viper.Set("images.enabled", cfg.Images.Enabled)
	viper.Set("images.url_template", cfg.Images.URLTemplate)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveAPIKey updates just the provider api key in the configuration
func SaveAPIKey(cfg *Config, key string) error {
	cfg.TVDB.APIKey = key
	return SaveConfig(cfg)
}
