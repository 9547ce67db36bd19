// Package config loads the editor configuration from a TOML file.
//
// A missing file is not an error: defaults apply. An unreadable or invalid
// file is an error, so a typo never silently reverts the user to defaults.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigPath overrides the configuration file path when set.
const EnvConfigPath = "HUGEFILE_CONFIG"

// DefaultChunkSize is the buffer chunk size when the config does not set one.
const DefaultChunkSize = 64 * 1024

// Config is the editor configuration.
type Config struct {
	// ChunkSize is the buffer chunk size in bytes. Must be positive.
	ChunkSize uint64 `toml:"chunk_size"`
	// MaxResidentChunks bounds the chunk cache; zero means unbounded.
	MaxResidentChunks int `toml:"max_resident_chunks"`
	// Theme names the color theme.
	Theme string `toml:"theme"`
	// PluginDir is the directory Lua command plugins are loaded from.
	// Empty disables plugin loading.
	PluginDir string `toml:"plugin_dir"`

	Log LogConfig `toml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warning, error.
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		Theme:     "default",
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path. When path is empty the EnvConfigPath
// variable is consulted; when that is also empty, or the file does not
// exist, defaults are returned.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates TOML configuration bytes. Fields absent from
// the input keep their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if c.ChunkSize == 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.MaxResidentChunks < 0 {
		return fmt.Errorf("max_resident_chunks must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
