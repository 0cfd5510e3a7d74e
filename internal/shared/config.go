package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Host     HostConfig     `toml:"host"`
	Database DatabaseConfig `toml:"database"`
}

// EditorConfig contains scheduler and clipboard settings.
type EditorConfig struct {
	MaxOpsPerIteration        int    `toml:"max-ops-per-iteration"`
	BufferClipboardOperations bool   `toml:"buffer-clipboard-operations"`
	GenerateNewChunks         bool   `toml:"generate-new-chunks"`
	DisplayProgressBar        bool   `toml:"display-progress-bar"`
	ClipboardDir              string `toml:"clipboard-dir"`
}

// HostConfig contains settings for the fixed-rate host loop.
type HostConfig struct {
	IterationsPerSecond float64 `toml:"iterations-per-second"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks settings that cannot be defaulted at runtime.
//
// A non-positive max-ops-per-iteration is accepted: the scheduler floors its budget.
func (c *Config) Validate() error {
	if c.Host.IterationsPerSecond <= 0 {
		return fmt.Errorf("%w: iterations-per-second must be positive, got %v", ErrInvalidConfig, c.Host.IterationsPerSecond)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
