// Package config reads binary settings from the environment. Flags parsed
// afterwards take precedence over anything set here.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Server holds the environment defaults for cmd/server.
type Server struct {
	DataDir      string        `env:"GUILDSIM_DATA_DIR" envDefault:"./data"`
	ConfigDir    string        `env:"GUILDSIM_CONFIG_DIR" envDefault:"./configs"`
	TuningPath   string        `env:"GUILDSIM_TUNING"`
	GuildID      string        `env:"GUILDSIM_GUILD" envDefault:"guild_1"`
	GuildName    string        `env:"GUILDSIM_GUILD_NAME"`
	Seed         int64         `env:"GUILDSIM_SEED" envDefault:"1337"`
	Difficulty   string        `env:"GUILDSIM_DIFFICULTY"`
	Weeks        int           `env:"GUILDSIM_WEEKS" envDefault:"48"`
	Interval     time.Duration `env:"GUILDSIM_WEEK_INTERVAL" envDefault:"0s"`
	ObserverAddr string        `env:"GUILDSIM_OBSERVER_ADDR"`
	DisableDB    bool          `env:"GUILDSIM_DISABLE_DB" envDefault:"false"`
	Autopilot    bool          `env:"GUILDSIM_AUTOPILOT" envDefault:"true"`
}

// Admin holds the environment defaults shared by cmd/admin and cmd/replay.
type Admin struct {
	DataDir string `env:"GUILDSIM_DATA_DIR" envDefault:"./data"`
	GuildID string `env:"GUILDSIM_GUILD" envDefault:"guild_1"`
}

// Watch holds the environment defaults for cmd/watch.
type Watch struct {
	URL string `env:"GUILDSIM_WATCH_URL" envDefault:"ws://127.0.0.1:8081/v1/observer/ws"`
}

// LoadServer parses Server from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	err := ParseEnv(&cfg)
	return cfg, err
}

// LoadAdmin parses Admin from the environment.
func LoadAdmin() (Admin, error) {
	var cfg Admin
	err := ParseEnv(&cfg)
	return cfg, err
}

// LoadWatch parses Watch from the environment.
func LoadWatch() (Watch, error) {
	var cfg Watch
	err := ParseEnv(&cfg)
	return cfg, err
}
