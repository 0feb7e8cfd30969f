// Package config loads firetrack's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all firetrack configuration.
type Config struct {
	General     GeneralConfig     `toml:"general"`
	Marketstack MarketstackConfig `toml:"marketstack"`
	Server      ServerConfig      `toml:"server"`
	Portfolio   PortfolioConfig   `toml:"portfolio"`
	Appearance  AppearanceConfig  `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	LogLevel string `toml:"log_level"`
	DBPath   string `toml:"db_path,omitempty"`
}

// MarketstackConfig holds price API settings.
type MarketstackConfig struct {
	APIKey            string  `toml:"api_key,omitempty"`
	BaseURL           string  `toml:"base_url,omitempty"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ServerConfig holds `firetrack serve` settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds dashboard theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// PortfolioConfig holds the target allocation, in display order.
type PortfolioConfig struct {
	Targets []TargetConfig `toml:"targets"`
}

// TargetConfig is one [[portfolio.targets]] entry.
type TargetConfig struct {
	Symbol  string  `toml:"symbol"`
	Percent float64 `toml:"percent"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "warn",
		},
		Marketstack: MarketstackConfig{
			RequestsPerSecond: 1,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8788",
		},
		Portfolio: PortfolioConfig{
			Targets: DefaultTargets(),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "firetrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "firetrack")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the platform-appropriate directory for the store.
func DataDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "firetrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "firetrack")
}

// DBPath returns the store path, honoring [general] db_path.
func DBPath(cfg Config) string {
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "firetrack.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// A file that declares targets replaces the default table entirely.
	cfg.Portfolio.Targets = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Portfolio.Targets) == 0 {
		cfg.Portfolio.Targets = DefaultTargets()
	}
	if _, err := cfg.Targets(); err != nil {
		return DefaultConfig(), err
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetMarketstackKey returns the API key from env var or config, in that order.
func GetMarketstackKey(cfg Config) string {
	if key := os.Getenv("MARKETSTACK_API_KEY"); key != "" {
		return key
	}
	return cfg.Marketstack.APIKey
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
