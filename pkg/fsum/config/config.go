package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Components   map[string]string `mapstructure:"components"`
}

// VerifyConfig configures verification runs.
type VerifyConfig struct {
	CheckpointSeconds int `mapstructure:"checkpoint_seconds"`
}

// Config represents the application configuration.
type Config struct {
	ChecksumFile   string        `mapstructure:"checksum_file"`
	ChecksumType   string        `mapstructure:"checksum_type"`
	AlwaysChecksum bool          `mapstructure:"always_checksum"`
	BlockSize      int           `mapstructure:"block_size"`
	Exclude        []string      `mapstructure:"exclude"`
	Verify         VerifyConfig  `mapstructure:"verify"`
	Logging        LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/fsum/config.yaml
//   - $HOME/.config/fsum/config.yaml
//
// Environment variables are prefixed with FSUM_ (e.g., FSUM_CHECKSUM_TYPE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "fsum"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "fsum"))

	v.SetEnvPrefix("FSUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("checksum_file", DefaultChecksumFile)
	v.SetDefault("checksum_type", DefaultChecksumType)
	v.SetDefault("always_checksum", false)
	v.SetDefault("block_size", DefaultBlockSize)
	v.SetDefault("exclude", []string{})
	v.SetDefault("verify.checkpoint_seconds", DefaultCheckpointSeconds)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.console_level", "warn")
	v.SetDefault("logging.components", map[string]string{
		"scanner": "info",
		"diff":    "info",
		"verify":  "info",
	})

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "fsum"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "fsum"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# fsum Configuration

# Manifest file name used when --checksum-file is not given
checksum_file: %s

# Checksum algorithm: crc32, adler32, or none
checksum_type: %s

# Recompute checksums even when size and timestamp match the manifest
always_checksum: false

# Read block size in bytes for checksum computation
block_size: %d

# Regular expressions excluded from every scan
exclude: []

verify:
  # How often a verification run rewrites its resume checkpoint
  checkpoint_seconds: %d

logging:
  # Log level: debug, info, warn, error
  level: info

  # Log file path (empty uses the XDG state directory, "-" disables)
  path: ""

  # Console log level
  console_level: warn

  # Per-component log level overrides
  components:
    scanner: info
    diff: info
    verify: info
`, DefaultChecksumFile, DefaultChecksumType, DefaultBlockSize, DefaultCheckpointSeconds)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
