// Package config loads vulkyn's TOML configuration file: execution
// limits and CLI display defaults, layered over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds vulkyn's tunable settings.
type Config struct {
	Execution struct {
		MaxCycles         uint64 `toml:"max_cycles"`
		StackCap          int    `toml:"stack_cap"`           // 0 = unbounded
		HeapBlockWordsMax int    `toml:"heap_block_words_max"` // guards against a pathological alloc size; 0 = unbounded
	} `toml:"execution"`

	CLI struct {
		Debug        bool   `toml:"debug"`
		ColorOutput  bool   `toml:"color_output"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"cli"`
}

// DefaultConfig returns vulkyn's built-in defaults: unbounded stack,
// a cap of one million cycles, plain non-debug execution.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.MaxCycles = 1000000
	cfg.Execution.StackCap = 0
	cfg.Execution.HeapBlockWordsMax = 1 << 20
	cfg.CLI.Debug = false
	cfg.CLI.ColorOutput = true
	cfg.CLI.NumberFormat = "dec"
	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "vulkyn")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "vulkyn")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling
// back to DefaultConfig if it doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, layering it over
// DefaultConfig so an incomplete file still yields sane values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes the configuration to path as TOML.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
