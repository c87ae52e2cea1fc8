package world

import "guildsim.dev/internal/sim/tuning"

type WorldConfig struct {
	ID   string
	Seed int64

	// GuildName overrides the generated guild name.
	GuildName string

	// Starting roster: this many apprentices and journeymen.
	StartingApprentices int
	StartingJourneymen  int

	Tuning tuning.Tuning
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "default"
	}
	if c.StartingApprentices <= 0 && c.StartingJourneymen <= 0 {
		c.StartingApprentices = 2
		c.StartingJourneymen = 2
	}
	if c.Tuning.Difficulties == nil {
		c.Tuning = tuning.Defaults()
	}
}
