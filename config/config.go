// ABOUTME: Configuration management for the search engine
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

// Package config loads and saves the engine configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the tunable engine parameters.
type Config struct {
	// CorpusDir is the directory of .msong files to load.
	CorpusDir string `toml:"corpus_dir"`
	// ListenAddr is the HTTP listen address for serve mode.
	ListenAddr string `toml:"listen_addr"`
	// Algorithm is the default matching kernel by wire name.
	Algorithm string `toml:"algorithm"`
	// Errors is the default error budget for approximate kernels.
	Errors int `toml:"errors"`
	// Gap is the default alpha-gap for the splitting kernel.
	Gap int `toml:"gap"`
	// ResultLimit caps the matches returned per query, 0 for no cap.
	ResultLimit int `toml:"result_limit"`
}

// GetConfigPath returns the default config file path.
// First tries the current directory, then ~/.config/melodysearch/config.toml.
func GetConfigPath() string {
	if _, err := os.Stat("./melodysearch.toml"); err == nil {
		return "./melodysearch.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./melodysearch.toml"
	}
	return filepath.Join(home, ".config", "melodysearch", "config.toml")
}

// LoadConfig loads configuration from a TOML file.
// If the file doesn't exist or fails to load, returns the default config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to a TOML file.
func SaveConfig(path string, config Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		CorpusDir:   "./corpus",
		ListenAddr:  ":8080",
		Algorithm:   "monopoly",
		Errors:      0,
		Gap:         1,
		ResultLimit: 100,
	}
}
