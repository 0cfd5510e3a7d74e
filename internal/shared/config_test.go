package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./world.db" {
			t.Errorf("expected database path ./world.db, got %s", config.Database.Path)
		}

		if config.Editor.MaxOpsPerIteration != 10000 {
			t.Errorf("expected max-ops-per-iteration 10000, got %d", config.Editor.MaxOpsPerIteration)
		}

		if !config.Editor.BufferClipboardOperations {
			t.Error("expected buffered clipboards by default")
		}

		if !config.Editor.GenerateNewChunks {
			t.Error("expected generate-new-chunks by default")
		}

		if config.Host.IterationsPerSecond != 20 {
			t.Errorf("expected 20 iterations per second, got %v", config.Host.IterationsPerSecond)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if *config != *defaultConfig {
			t.Errorf("created config doesn't match default: %+v vs %+v", config, defaultConfig)
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[editor]
max-ops-per-iteration = 0
buffer-clipboard-operations = false
generate-new-chunks = false

[database]
path = "/custom/world.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Editor.MaxOpsPerIteration != 0 {
			t.Errorf("expected max-ops-per-iteration 0 to be accepted, got %d", config.Editor.MaxOpsPerIteration)
		}

		if config.Editor.BufferClipboardOperations {
			t.Error("expected in-memory clipboards")
		}

		if !config.Editor.DisplayProgressBar {
			t.Error("expected display-progress-bar to keep its default")
		}

		if config.Database.Path != "/custom/world.db" {
			t.Errorf("expected database path /custom/world.db, got %s", config.Database.Path)
		}

		if config.Host.IterationsPerSecond != 20 {
			t.Errorf("expected default iteration rate, got %v", config.Host.IterationsPerSecond)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("[host]\niterations-per-second = 0\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
