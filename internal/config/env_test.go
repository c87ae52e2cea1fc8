package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"GUILDSIM_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("GUILDSIM_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "./data" || cfg.GuildID != "guild_1" {
		t.Fatalf("expected ./data and guild_1, got %q and %q", cfg.DataDir, cfg.GuildID)
	}
	if cfg.Seed != 1337 || cfg.Weeks != 48 {
		t.Fatalf("expected seed 1337 and 48 weeks, got %d and %d", cfg.Seed, cfg.Weeks)
	}
	if !cfg.Autopilot {
		t.Fatalf("expected autopilot on by default")
	}
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("GUILDSIM_SEED", "42")
	t.Setenv("GUILDSIM_WEEK_INTERVAL", "250ms")
	t.Setenv("GUILDSIM_DIFFICULTY", "hard")
	t.Setenv("GUILDSIM_AUTOPILOT", "false")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", cfg.Seed)
	}
	if cfg.Interval != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.Interval)
	}
	if cfg.Difficulty != "hard" || cfg.Autopilot {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadWatchOverride(t *testing.T) {
	t.Setenv("GUILDSIM_WATCH_URL", "ws://127.0.0.1:9999/v1/observer/ws")
	cfg, err := LoadWatch()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.HasSuffix(cfg.URL, ":9999/v1/observer/ws") {
		t.Fatalf("unexpected url %q", cfg.URL)
	}
}
