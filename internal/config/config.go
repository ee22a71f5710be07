// Package config provides configuration management for the tracker.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"crypto-tracker/internal/analysis/scoring"
	"crypto-tracker/internal/errors"
	"crypto-tracker/internal/logging"
	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
	"crypto-tracker/internal/simulator"
	"crypto-tracker/internal/stream"
)

// Config holds all application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Server     ServerConfig     `mapstructure:"server"`
	UI         UIConfig         `mapstructure:"ui"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Market     MarketConfig     `mapstructure:"market"`
}

// SimulationConfig holds price simulation settings.
type SimulationConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	ChangeMode    string        `mapstructure:"change_mode"` // drift, tracked
	HistorySize   int           `mapstructure:"history_size"`
	DefaultSymbol string        `mapstructure:"default_symbol"`
}

// ScoringConfig holds recommendation settings.
type ScoringConfig struct {
	NormalizeUnits bool          `mapstructure:"normalize_units"`
	TopN           int           `mapstructure:"top_n"`
	Weights        WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig holds the composite score weights.
type WeightsConfig struct {
	Volume    float64 `mapstructure:"volume"`
	MarketCap float64 `mapstructure:"market_cap"`
	Change    float64 `mapstructure:"change"`
}

// AlertsConfig holds alert policy settings.
type AlertsConfig struct {
	AutoDismissOnTrigger bool `mapstructure:"auto_dismiss_on_trigger"`
	TerminalBell         bool `mapstructure:"terminal_bell"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	RateLimit float64 `mapstructure:"rate_limit"` // commands per second per client
	RateBurst int     `mapstructure:"rate_burst"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	Theme        string `mapstructure:"theme"` // light, dark
	TimeFormat   string `mapstructure:"time_format"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// MarketConfig overrides the built-in seed table.
type MarketConfig struct {
	Seed []SeedEntry `mapstructure:"seed"`
}

// SeedEntry is one row of the seed table as written in config.toml.
type SeedEntry struct {
	Symbol    string  `mapstructure:"symbol"`
	Price     float64 `mapstructure:"price"`
	Change    float64 `mapstructure:"change"`
	Volume    string  `mapstructure:"volume"`
	MarketCap string  `mapstructure:"market_cap"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/crypto-tracker"
	}
	return filepath.Join(home, ".config", "crypto-tracker")
}

// ConfigPath returns the path of config.toml inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// Default returns the configuration used when no file overrides a key.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults are plain values; decoding them cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	logDefaults := logging.DefaultLogConfig()
	scoreDefaults := scoring.DefaultWeights()

	v.SetDefault("simulation.interval", simulator.DefaultConfig().Interval)
	v.SetDefault("simulation.change_mode", string(simulator.ChangeDrift))
	v.SetDefault("simulation.history_size", simulator.DefaultHistorySize)
	v.SetDefault("simulation.default_symbol", "BTC")

	v.SetDefault("scoring.normalize_units", false)
	v.SetDefault("scoring.top_n", scoring.DefaultTopN)
	v.SetDefault("scoring.weights.volume", scoreDefaults.Volume)
	v.SetDefault("scoring.weights.market_cap", scoreDefaults.MarketCap)
	v.SetDefault("scoring.weights.change", scoreDefaults.Change)

	v.SetDefault("alerts.auto_dismiss_on_trigger", false)
	v.SetDefault("alerts.terminal_bell", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_burst", 10)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.theme", string(models.ThemeLight))
	v.SetDefault("ui.time_format", "15:04:05")

	v.SetDefault("logging.level", logDefaults.Level)
	v.SetDefault("logging.console", logDefaults.Console)
	v.SetDefault("logging.file", logDefaults.File)
	v.SetDefault("logging.file_path", logDefaults.FilePath)
	v.SetDefault("logging.max_size", logDefaults.MaxSize)
	v.SetDefault("logging.max_backups", logDefaults.MaxBackups)
	v.SetDefault("logging.max_age", logDefaults.MaxAge)
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is created from the template. A .env file in the working
// directory or in configDir is loaded into the environment before
// overrides are applied.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	loadDotEnv(".env", filepath.Join(configDir, ".env"))

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads each existing file. Variables already set in the
// environment win.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TRACKER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRACKER_INTERVAL: %w", err)
		}
		cfg.Simulation.Interval = d
	}
	if v := os.Getenv("TRACKER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TRACKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRACKER_AUTO_DISMISS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRACKER_AUTO_DISMISS: %w", err)
		}
		cfg.Alerts.AutoDismissOnTrigger = b
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errors.ErrConfigInvalid, fmt.Sprintf(format, args...))
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Simulation.Interval <= 0 {
		return invalid("simulation.interval must be positive")
	}
	switch simulator.ChangeMode(c.Simulation.ChangeMode) {
	case simulator.ChangeDrift, simulator.ChangeTracked:
	default:
		return invalid("invalid change_mode: %s (must be 'drift' or 'tracked')", c.Simulation.ChangeMode)
	}
	if c.Simulation.HistorySize <= 0 {
		return invalid("simulation.history_size must be positive")
	}

	w := c.Scoring.Weights
	if w.Volume < 0 || w.MarketCap < 0 || w.Change < 0 {
		return invalid("scoring weights must be non-negative")
	}
	if c.Scoring.TopN <= 0 {
		return invalid("scoring.top_n must be positive")
	}

	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return invalid("server.rate_limit and server.rate_burst must be positive")
	}

	switch models.Theme(c.UI.Theme) {
	case models.ThemeLight, models.ThemeDark:
	default:
		return invalid("invalid theme: %s (must be 'light' or 'dark')", c.UI.Theme)
	}

	seed, err := c.Seed()
	if err != nil {
		return invalid("%v", err)
	}
	found := false
	for _, e := range seed {
		if e.Symbol == c.Simulation.DefaultSymbol {
			found = true
			break
		}
	}
	if !found {
		return invalid("default_symbol %q is not in the market seed", c.Simulation.DefaultSymbol)
	}

	return nil
}

// Seed returns the configured seed table, or the built-in one when none is
// configured.
func (c *Config) Seed() ([]market.Entry, error) {
	if len(c.Market.Seed) == 0 {
		return market.DefaultSeed(), nil
	}

	entries := make([]market.Entry, 0, len(c.Market.Seed))
	for i, s := range c.Market.Seed {
		if s.Symbol == "" {
			return nil, fmt.Errorf("market.seed[%d]: symbol is required", i)
		}
		if s.Price <= 0 {
			return nil, fmt.Errorf("market.seed[%d] %s: price must be positive", i, s.Symbol)
		}
		volume, err := models.ParseMagnitude(s.Volume)
		if err != nil {
			return nil, fmt.Errorf("market.seed[%d] %s: volume: %w", i, s.Symbol, err)
		}
		marketCap, err := models.ParseMagnitude(s.MarketCap)
		if err != nil {
			return nil, fmt.Errorf("market.seed[%d] %s: market_cap: %w", i, s.Symbol, err)
		}
		entries = append(entries, market.Entry{
			Symbol: s.Symbol,
			Record: models.MarketRecord{
				Price:     s.Price,
				Change:    s.Change,
				Volume:    volume,
				MarketCap: marketCap,
			},
		})
	}
	return entries, nil
}

// SimulatorConfig returns the simulator settings.
func (c *Config) SimulatorConfig() simulator.Config {
	return simulator.Config{
		Interval:   c.Simulation.Interval,
		ChangeMode: simulator.ChangeMode(c.Simulation.ChangeMode),
	}
}

// ScoringConfig returns the recommendation engine settings.
func (c *Config) ScoringConfig() scoring.Config {
	units := scoring.UnitsLiteral
	if c.Scoring.NormalizeUnits {
		units = scoring.UnitsNormalized
	}
	return scoring.Config{
		Weights: scoring.Weights{
			Volume:    c.Scoring.Weights.Volume,
			MarketCap: c.Scoring.Weights.MarketCap,
			Change:    c.Scoring.Weights.Change,
		},
		Units: units,
		TopN:  c.Scoring.TopN,
	}
}

// AlertPolicy returns the alert trigger policy.
func (c *Config) AlertPolicy() stream.AlertPolicy {
	return stream.AlertPolicy{AutoDismissOnTrigger: c.Alerts.AutoDismissOnTrigger}
}

// LogConfig returns the logger settings.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
