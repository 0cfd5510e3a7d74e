package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/worldbuilder/internal/editor"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
	tu "github.com/desertthunder/worldbuilder/internal/testing"
	"github.com/urfave/cli/v3"
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Host.IterationsPerSecond = 10000
	config.Database.Path = filepath.Join(t.TempDir(), "world.db")
	config.Editor.ClipboardDir = t.TempDir()
	return config
}

func testRunner(t *testing.T, config *shared.Config) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		Config:  config,
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
		Metrics: editor.NoopMetrics(),
	}), output
}

func runCmd(t *testing.T, build func(*Runner) *cli.Command, r *Runner, args ...string) error {
	t.Helper()
	cmd := build(r)
	return cmd.Run(context.Background(), append([]string{cmd.Name}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			metrics := editor.NoopMetrics()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				Metrics:    metrics,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.metrics != metrics {
				t.Error("expected metrics to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.metrics == nil {
				t.Error("expected default metrics to be set")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			r, output := testRunner(t, nil)
			if err := r.writeJSON(map[string]int{"records": 2}, true); err != nil {
				t.Fatalf("writeJSON() error = %v", err)
			}
			if !strings.Contains(output.String(), "  \"records\": 2") {
				t.Errorf("expected indented JSON, got %q", output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			r, _ := testRunner(t, nil)
			if err := r.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			r := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})
			if err := r.writeJSON(map[string]int{}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			lw := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			r := NewRunner(RunnerOpts{Output: &lw, Logger: shared.NewLogger(io.Discard)})
			if err := r.writeJSON(map[string]int{}, false); err == nil {
				t.Error("expected newline write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			r, output := testRunner(t, nil)
			if err := r.writePlain("%d records\n", 3); err != nil {
				t.Fatalf("writePlain() error = %v", err)
			}
			if output.String() != "3 records\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			r := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})
			if err := r.writePlain("x"); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		r, _ := testRunner(t, nil)
		commands := r.register()
		expected := []string{"setup", "run", "records"}
		if len(commands) != len(expected) {
			t.Fatalf("expected %d commands, got %d", len(expected), len(commands))
		}
		for i, cmd := range commands {
			if cmd.Name != expected[i] {
				t.Errorf("expected command %d to be %s, got %s", i, expected[i], cmd.Name)
			}
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("parseBlockPos", func(t *testing.T) {
		tests := []struct {
			in      string
			want    models.BlockPos
			wantErr bool
		}{
			{"1,2,3", models.BlockPos{X: 1, Y: 2, Z: 3}, false},
			{" -4, 64 ,-20 ", models.BlockPos{X: -4, Y: 64, Z: -20}, false},
			{"1,2", models.BlockPos{}, true},
			{"a,b,c", models.BlockPos{}, true},
		}
		for _, tt := range tests {
			t.Run(tt.in, func(t *testing.T) {
				got, err := parseBlockPos(tt.in)
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidArgument) {
						t.Errorf("expected ErrInvalidArgument, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("parseBlockState", func(t *testing.T) {
		got, err := parseBlockState("35:14")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != (models.BlockState{ID: 35, Meta: 14}) {
			t.Errorf("unexpected state %v", got)
		}
		if _, err := parseBlockState("1:300"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected meta overflow to fail, got %v", err)
		}
	})

	t.Run("parseReplace", func(t *testing.T) {
		sel, match, block, err := parseReplace("0,0,0:2,2,2=1>3:1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.Volume() != 27 || match.ID != 1 || block != (models.BlockState{ID: 3, Meta: 1}) {
			t.Errorf("unexpected parse result: %v %v %v", sel.Volume(), match, block)
		}
		if _, _, _, err := parseReplace("0,0,0:2,2,2=1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected missing > to fail, got %v", err)
		}
	})

	t.Run("parseCopyPaste", func(t *testing.T) {
		sel, origin, err := parseCopyPaste("0,0,0:1,1,1@10,0,10")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.Volume() != 8 || origin != (models.BlockPos{X: 10, Z: 10}) {
			t.Errorf("unexpected parse result: %v %v", sel.Volume(), origin)
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("requires an edit", func(t *testing.T) {
		r, _ := testRunner(t, testConfig(t))
		err := runCmd(t, runCommand, r, "--memory")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("set on an in-memory world", func(t *testing.T) {
		r, output := testRunner(t, testConfig(t))
		if err := runCmd(t, runCommand, r, "--memory", "--set", "0,0,0:3,3,3=1", "--set", "10,0,10:12,0,12=2"); err != nil {
			t.Fatalf("run error = %v", err)
		}
		if got := strings.Count(output.String(), "✓ set"); got != 2 {
			t.Errorf("expected 2 completed set tasks, got %d in %q", got, output.String())
		}
	})

	t.Run("regenerate fails on an in-memory world", func(t *testing.T) {
		r, output := testRunner(t, testConfig(t))
		err := runCmd(t, runCommand, r, "--memory", "--regen", "0,0,0:31,0,15")
		if !errors.Is(err, shared.ErrUnsupportedBackend) {
			t.Errorf("expected ErrUnsupportedBackend, got %v", err)
		}
		if !strings.Contains(output.String(), "✗ regenerate_chunks") {
			t.Errorf("expected failure line, got %q", output.String())
		}
	})

	t.Run("copy-paste releases the clipboard file", func(t *testing.T) {
		config := testConfig(t)
		config.Editor.BufferClipboardOperations = true
		r, output := testRunner(t, config)

		if err := runCmd(t, runCommand, r, "--memory", "--set", "0,0,0:3,3,3=1", "--copy-paste", "0,0,0:3,3,3@40,0,40"); err != nil {
			t.Fatalf("run error = %v", err)
		}
		if !strings.Contains(output.String(), "✓ paste") {
			t.Errorf("expected paste to complete, got %q", output.String())
		}
		entries, err := os.ReadDir(config.Editor.ClipboardDir)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected clipboard dir to be empty, found %d entries", len(entries))
		}
	})

	t.Run("copy-paste exports the clipboard", func(t *testing.T) {
		r, _ := testRunner(t, testConfig(t))
		path := filepath.Join(t.TempDir(), "copy.csv")

		if err := runCmd(t, runCommand, r, "--memory", "--copy-paste", "0,0,0:3,3,3@40,0,40", "--export", path); err != nil {
			t.Fatalf("run error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(tu.MustReadFile(t, path)), "\n")
		if len(lines) != 65 {
			t.Errorf("expected header and 64 blocks, got %d lines", len(lines))
		}
	})

	t.Run("metrics reports scheduler totals", func(t *testing.T) {
		r, output := testRunner(t, testConfig(t))
		if err := runCmd(t, runCommand, r, "--memory", "--metrics", "--set", "0,0,0:1,1,1=1", "--set", "4,0,4:4,0,5=2"); err != nil {
			t.Fatalf("run error = %v", err)
		}
		out := output.String()
		for _, want := range []string{"Scheduler metrics", "tasks_completed_total", "operations_total"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
		if !metricLine(out, "tasks_completed_total", 2) {
			t.Errorf("expected 2 completed tasks in %q", out)
		}
		if !metricLine(out, "operations_total", 10) {
			t.Errorf("expected 10 operations in %q", out)
		}
	})

	t.Run("export requires copy-paste", func(t *testing.T) {
		r, _ := testRunner(t, testConfig(t))
		err := runCmd(t, runCommand, r, "--memory", "--set", "0,0,0:1,1,1=1", "--export", "out.csv")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("set then regenerate on the record store", func(t *testing.T) {
		config := testConfig(t)
		r, output := testRunner(t, config)

		if err := runCmd(t, runCommand, r, "--set", "0,0,0:17,0,0=1"); err != nil {
			t.Fatalf("set error = %v", err)
		}

		output.Reset()
		if err := runCmd(t, recordsCommand, r, "count", "--json"); err != nil {
			t.Fatalf("records count error = %v", err)
		}
		var got struct {
			Records int `json:"records"`
		}
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode %q: %v", output.String(), err)
		}
		if got.Records != 2 {
			t.Errorf("expected 2 records after set, got %d", got.Records)
		}

		output.Reset()
		if err := runCmd(t, recordsCommand, r, "keys", "--json"); err != nil {
			t.Fatalf("records keys error = %v", err)
		}
		var keys []string
		if err := json.Unmarshal(output.Bytes(), &keys); err != nil {
			t.Fatalf("failed to decode %q: %v", output.String(), err)
		}
		if len(keys) != 2 {
			t.Errorf("expected 2 keys, got %v", keys)
		}

		if err := runCmd(t, runCommand, r, "--regen", "0,0,0:31,0,15"); err != nil {
			t.Fatalf("regen error = %v", err)
		}
		output.Reset()
		if err := runCmd(t, recordsCommand, r, "count"); err != nil {
			t.Fatalf("records count error = %v", err)
		}
		if strings.TrimSpace(output.String()) != "0" {
			t.Errorf("expected 0 records after regen, got %q", output.String())
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		r, _ := testRunner(t, nil)

		if err := runCmd(t, setupCommand, r, "config", "--config", path); err != nil {
			t.Fatalf("setup config error = %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "max-ops-per-iteration") {
			t.Error("expected editor settings in config")
		}

		if err := runCmd(t, setupCommand, r, "config", "--config", path); err == nil {
			t.Error("expected error when config exists")
		}
		if err := runCmd(t, setupCommand, r, "config", "--config", path, "--force"); err != nil {
			t.Errorf("expected --force to overwrite, got %v", err)
		}
	})

	t.Run("database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "world.db")
		content := strings.Replace(string(mustDefaultConfig(t)), `path = "./world.db"`, `path = "`+dbPath+`"`, 1)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		r, _ := testRunner(t, nil)
		if err := runCmd(t, setupCommand, r, "database", "--config", configPath); err != nil {
			t.Fatalf("setup database error = %v", err)
		}
		tu.AssertFileExists(t, dbPath)

		if err := runCmd(t, setupCommand, r, "rollback", "--config", configPath); err != nil {
			t.Fatalf("setup rollback error = %v", err)
		}
		db, err := shared.NewDatabase(dbPath)
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		defer db.Close()
		var tables int
		if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'worlds'`).Scan(&tables); err != nil {
			t.Fatalf("query error = %v", err)
		}
		if tables != 0 {
			t.Error("expected worlds table to be dropped by rollback")
		}
	})
}

func metricLine(out, name string, value int) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == name {
			return fields[1] == strconv.Itoa(value)
		}
	}
	return false
}

func mustDefaultConfig(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := shared.CreateConfigFile(path); err != nil {
		t.Fatal(err)
	}
	return []byte(tu.MustReadFile(t, path))
}
