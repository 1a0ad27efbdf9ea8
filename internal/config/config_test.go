package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingDefaultUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, loaded, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if loaded {
		t.Fatal("expected no config file to be read")
	}
	if cfg.Queue.Workers != defaultWorkers {
		t.Fatalf("workers = %d, want %d", cfg.Queue.Workers, defaultWorkers)
	}
	if cfg.FFmpeg.Binary != "ffmpeg" {
		t.Fatalf("binary = %q", cfg.FFmpeg.Binary)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for explicit missing config")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "~/renders"

[queue]
workers = 4

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded {
		t.Fatal("expected config file to be read")
	}
	if cfg.Queue.Workers != 4 {
		t.Fatalf("workers = %d, want 4", cfg.Queue.Workers)
	}
	if cfg.Paths.OutputDir != filepath.Join(dir, "renders") {
		t.Fatalf("output_dir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadRejectsInvalidWorkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[queue]\nworkers = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "queue.workers") {
		t.Fatalf("expected workers validation error, got %v", err)
	}
}

func TestValidateLoggingFormat(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected logging.format validation error")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatal(err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[queue]") {
		t.Fatal("sample config missing [queue] section")
	}
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/sub/dir")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "sub", "dir") {
		t.Fatalf("got %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.History.Path = filepath.Join(dir, "state", "history.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, filepath.Join(dir, "state")} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("directory %s not created: %v", p, err)
		}
	}
}
