package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
)

// DirName is the per-user configuration directory under the home directory.
const DirName = ".mtga-deck-builder"

// Config represents the application configuration.
type Config struct {
	// Player.log location and watch settings
	Log LogConfig `toml:"log"`

	// Card catalog location and generation
	Catalog CatalogConfig `toml:"catalog"`

	// Deck sizing
	Build BuildConfig `toml:"build"`

	// Meta advisory
	Meta MetaConfig `toml:"meta"`

	// Collection snapshot database
	Storage StorageConfig `toml:"storage"`

	// HTTP API
	Server ServerConfig `toml:"server"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// LogConfig contains Player.log settings.
type LogConfig struct {
	FilePath string `toml:"file_path"` // Path to MTGA Player.log (auto-detect if empty)
	Debounce string `toml:"debounce"`  // Watch mode debounce (e.g., "500ms")
}

// CatalogConfig contains card catalog settings.
type CatalogConfig struct {
	Path     string `toml:"path"`      // Slim catalog JSON
	BulkType string `toml:"bulk_type"` // Scryfall bulk data type
	MaxAge   string `toml:"max_age"`   // Regenerate when older than this (e.g., "168h")
}

// BuildConfig contains deck sizing settings.
type BuildConfig struct {
	DeckSize      int    `toml:"deck_size"`
	SpellTarget   int    `toml:"spell_target"`
	CopyLimit     int    `toml:"copy_limit"`
	DefaultFormat string `toml:"default_format"`
}

// MetaConfig contains meta advisory settings.
type MetaConfig struct {
	Enabled   bool   `toml:"enabled"`
	CacheTTL  string `toml:"cache_ttl"`  // e.g., "24h"
	Timeout   string `toml:"timeout"`    // Overall fetch timeout
	Limit     int    `toml:"limit"`      // Decks shown
	RedisAddr string `toml:"redis_addr"` // Empty uses the in-memory cache
}

// StorageConfig contains snapshot database settings.
type StorageConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
	Keep    int    `toml:"keep"` // Snapshots retained after a save (0 = all)
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	AllowAllOrigins bool     `toml:"allow_all_origins"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode"` // Enable debug logging
	LogLevel  string `toml:"log_level"`  // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	opts := deckbuilder.DefaultOptions()
	return &Config{
		Log: LogConfig{
			FilePath: "",
			Debounce: "500ms",
		},
		Catalog: CatalogConfig{
			Path:     "cards.json",
			BulkType: "default_cards",
			MaxAge:   "168h",
		},
		Build: BuildConfig{
			DeckSize:      opts.DeckSize,
			SpellTarget:   opts.SpellTarget,
			CopyLimit:     opts.CopyLimit,
			DefaultFormat: deckbuilder.AnyFormat,
		},
		Meta: MetaConfig{
			Enabled:  true,
			CacheTTL: "24h",
			Timeout:  "15s",
			Limit:    5,
		},
		Storage: StorageConfig{
			Enabled: false,
			DBPath:  "",
			Keep:    20,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			AllowAllOrigins: true,
		},
		App: AppConfig{
			DebugMode: false,
			LogLevel:  "info",
		},
	}
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DirName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return configDir, nil
}

// DefaultPath returns the path to the configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration from path, or from DefaultPath when path is
// empty. A missing file yields the defaults. A .env file in the working
// directory is loaded first and environment overrides are applied last.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	config.applyEnv()
	return config, nil
}

// applyEnv overrides file values with MTGA_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("MTGA_LOG_PATH"); v != "" {
		c.Log.FilePath = v
	}
	if v := os.Getenv("MTGA_CATALOG_PATH"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("MTGA_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("MTGA_DB_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Storage.Enabled = enabled
		}
	}
	if v := os.Getenv("MTGA_REDIS_ADDR"); v != "" {
		c.Meta.RedisAddr = v
	}
	if v := os.Getenv("MTGA_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}

	// Specific origins turn allow-all off unless it is set explicitly.
	if origins := os.Getenv("MTGA_CORS_ORIGINS"); origins != "" {
		originList := strings.Split(origins, ",")
		for i, origin := range originList {
			originList[i] = strings.TrimSpace(origin)
		}
		c.Server.AllowedOrigins = originList
		c.Server.AllowAllOrigins = false
	}
	if allowAll := os.Getenv("MTGA_CORS_ALLOW_ALL"); allowAll != "" {
		c.Server.AllowAllOrigins = strings.ToLower(allowAll) == "true"
	}

	if v := os.Getenv("MTGA_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
}

// Save writes the configuration to path, or to DefaultPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	durations := []struct {
		name  string
		value string
	}{
		{"log debounce", c.Log.Debounce},
		{"catalog max age", c.Catalog.MaxAge},
		{"meta cache TTL", c.Meta.CacheTTL},
		{"meta timeout", c.Meta.Timeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		if v < 0 {
			return fmt.Errorf("%s cannot be negative: %s", d.name, d.value)
		}
	}

	if err := c.BuildOptions().Validate(); err != nil {
		return fmt.Errorf("invalid build settings: %w", err)
	}

	if c.Meta.Limit < 0 {
		return fmt.Errorf("meta limit cannot be negative: %d", c.Meta.Limit)
	}

	if c.Storage.Keep < 0 {
		return fmt.Errorf("snapshot keep cannot be negative: %d", c.Storage.Keep)
	}

	switch strings.ToLower(c.App.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.App.LogLevel)
	}

	return nil
}

// BuildOptions returns the deck sizing as builder options.
func (c *Config) BuildOptions() deckbuilder.Options {
	return deckbuilder.Options{
		DeckSize:    c.Build.DeckSize,
		SpellTarget: c.Build.SpellTarget,
		CopyLimit:   c.Build.CopyLimit,
	}
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Log.Debounce)
}

// GetCatalogMaxAge returns the catalog max age as a duration.
func (c *Config) GetCatalogMaxAge() (time.Duration, error) {
	return time.ParseDuration(c.Catalog.MaxAge)
}

// GetMetaCacheTTL returns the meta cache TTL as a duration.
func (c *Config) GetMetaCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Meta.CacheTTL)
}

// GetMetaTimeout returns the meta fetch timeout as a duration.
func (c *Config) GetMetaTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Meta.Timeout)
}

// DBPath returns the snapshot database path, defaulting to the config directory.
func (c *Config) DBPath() (string, error) {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "collection.db"), nil
}
