package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/color-finder/pkg/walker"
)

// Environment variables overriding batch directories and log level.
// The batch command's base and destination directories used to be
// compiled-in constants; they are configuration inputs now.
const (
	EnvBaseDir  = "COLORFINDER_BASE_DIR"
	EnvDestDir  = "COLORFINDER_DEST_DIR"
	EnvLogLevel = "COLORFINDER_LOG_LEVEL"
)

// Config holds the application configuration
type Config struct {
	Scan  ScanConfig  `json:"scan"`
	Batch BatchConfig `json:"batch"`
	Log   LogConfig   `json:"log"`
}

// ScanConfig holds settings shared by both scan policies
type ScanConfig struct {
	// Collision decides what to do when a matched file's base name
	// already exists in the destination: rename, overwrite, or skip.
	Collision string `json:"collision"`
}

// BatchConfig holds defaults for the dated-folder policy
type BatchConfig struct {
	BaseDir string `json:"base_dir"`
	DestDir string `json:"dest_dir"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Collision: "rename",
		},
		Batch: BatchConfig{},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseDir); v != "" {
		c.Batch.BaseDir = v
	}
	if v := os.Getenv(EnvDestDir); v != "" {
		c.Batch.DestDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := walker.ParseCollisionPolicy(c.Scan.Collision); err != nil {
		return fmt.Errorf("scan.collision: %w", err)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "color-finder", "config.json")
}
