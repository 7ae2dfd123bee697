package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/vwd/quote"
	"github.com/rustyeddy/vwd/volume"
)

// Config is the complete detector configuration
type Config struct {
	API      APIConfig     `json:"api" yaml:"api"`
	Store    StoreConfig   `json:"store" yaml:"store"`
	Analysis volume.Config `json:"analysis" yaml:"analysis"`
	LogLevel string        `json:"log_level" yaml:"log_level"`
}

// APIConfig describes the quote source
type APIConfig struct {
	BaseURL  string `json:"base_url" yaml:"base_url"`
	PageSize int    `json:"page_size" yaml:"page_size"`
	Timezone string `json:"timezone" yaml:"timezone"` // GMT+n / GMT-n
}

type StoreConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		API: APIConfig{
			PageSize: quote.DefaultPageSize,
			Timezone: "GMT+7",
		},
		Store: StoreConfig{
			DBPath: "./vwd.sqlite",
		},
		Analysis: volume.DefaultConfig(),
		LogLevel: "info",
	}
}

// Load builds the effective configuration: defaults, then the file at path
// (if any), then .env and VWD_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file on top of the defaults,
// trying YAML first and falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overwrites fields whose VWD_* variable is set.
func (c *Config) ApplyEnv() error {
	setStr(&c.API.BaseURL, "VWD_API_BASE_URL")
	setStr(&c.API.Timezone, "VWD_TIMEZONE")
	setStr(&c.Store.DBPath, "VWD_DB_PATH")
	setStr(&c.LogLevel, "VWD_LOG_LEVEL")

	for _, iv := range []struct {
		dst *int
		env string
	}{
		{&c.API.PageSize, "VWD_PAGE_SIZE"},
		{&c.Analysis.TradesToFetch, "VWD_TRADES_TO_FETCH"},
		{&c.Analysis.DaysToFetch, "VWD_DAYS_TO_FETCH"},
		{&c.Analysis.TopLevels, "VWD_TOP_LEVELS"},
	} {
		if err := setInt(iv.dst, iv.env); err != nil {
			return err
		}
	}
	return nil
}

func setStr(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", env, err)
	}
	*dst = n
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be positive")
	}
	if _, err := quote.ParseTimezone(c.API.Timezone); err != nil {
		return fmt.Errorf("api.timezone: %w", err)
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required")
	}
	if c.Analysis.TradesToFetch <= 0 {
		return fmt.Errorf("analysis.trades_to_fetch must be positive")
	}
	if c.Analysis.DaysToFetch <= 0 {
		return fmt.Errorf("analysis.days_to_fetch must be positive")
	}
	if c.Analysis.TopLevels <= 0 {
		return fmt.Errorf("analysis.top_levels must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error")
	}
	return nil
}

// RequireAPI is checked only by commands that talk to the quote source.
func (c *Config) RequireAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (or set VWD_API_BASE_URL)")
	}
	return nil
}

// Location returns the exchange time zone. Validate guarantees it parses.
func (c *Config) Location() *time.Location {
	loc, err := quote.ParseTimezone(c.API.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
