// Package world is the weekly time and economy controller. It owns the
// guild state and advances it one week per StepWeek call.
//
// A World is not safe for concurrent use. Drive it from one goroutine.
package world

import (
	"fmt"
	"math/rand"
	"sort"

	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/dice"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/generator"
	"guildsim.dev/internal/sim/ids"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
)

// Stream salts. Each consumer of randomness in a week draws from its own
// stream so adding draws in one place never shifts another.
const (
	saltSetup = iota + 1
	saltResolve
	saltBoard
	saltRecruits
	saltOps
)

type World struct {
	cfg  WorldConfig
	cats *catalogs.Catalogs
	tun  tuning.Tuning

	ids *ids.Allocator
	gen *generator.Generator

	cal      model.Calendar
	guild    *economy.Guild
	agents   map[string]*model.Agent
	missions map[string]*model.Mission
	recruits []model.Agent

	lastRefreshWeek uint64

	// Per-week scratch, reset at the start of every StepWeek.
	events   []model.Event
	resolved []ResolvedMission
	tally    economy.WeekTally
	released map[string]bool

	lastReport WeekReport

	weekLogger   WeekLogger
	snapshotSink chan<- snapshot.SnapshotV1
}

// New creates a fresh guild: starting roster, staffless, seven rating-1
// facilities, a posted board and a recruit pool.
func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	cfg.applyDefaults()
	if cats == nil {
		return nil, fmt.Errorf("world %s: nil catalogs", cfg.ID)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("world %s: %w", cfg.ID, err)
	}
	w := newEmpty(cfg, cats)
	w.ids = ids.NewAllocator(cfg.Seed)
	w.gen = generator.New(cats, w.ids)
	w.cal = model.NewCalendar()

	src := w.stream(saltSetup)
	name := cfg.GuildName
	if name == "" {
		name = w.gen.GuildName(src)
	}
	econ := w.tun.Economy
	w.guild = economy.NewGuild(w.ids.New(ids.PrefixGuild), name, econ.StartingTreasury, econ.SeasonBudget, w.tun.Council.StartingConfidence, w.gen.Patrons(src))

	for i := 0; i < cfg.StartingApprentices; i++ {
		w.enlist(w.gen.Agent(model.LevelApprentice, w.cal.Week, src))
	}
	for i := 0; i < cfg.StartingJourneymen; i++ {
		w.enlist(w.gen.Agent(model.LevelJourneyman, w.cal.Week, src))
	}

	w.refreshBoard(w.cal.Week)
	w.events = nil
	return w, nil
}

func newEmpty(cfg WorldConfig, cats *catalogs.Catalogs) *World {
	return &World{
		cfg:      cfg,
		cats:     cats,
		tun:      cfg.Tuning,
		agents:   map[string]*model.Agent{},
		missions: map[string]*model.Mission{},
		released: map[string]bool{},
	}
}

func (w *World) SetWeekLogger(l WeekLogger)                    { w.weekLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) ID() string                   { return w.cfg.ID }
func (w *World) Seed() int64                  { return w.cfg.Seed }
func (w *World) Calendar() model.Calendar     { return w.cal }
func (w *World) CurrentWeek() uint64          { return w.cal.Week }
func (w *World) Tuning() tuning.Tuning        { return w.tun }
func (w *World) Catalogs() *catalogs.Catalogs { return w.cats }
func (w *World) Dismissed() bool              { return w.guild.Council.Dismissed }

// Guild returns the live guild record. Callers must treat it as
// read-only.
func (w *World) Guild() *economy.Guild { return w.guild }

// Agent returns a copy of any agent the guild has ever employed.
func (w *World) Agent(id string) (model.Agent, bool) {
	a := w.agents[id]
	if a == nil {
		return model.Agent{}, false
	}
	return a.Clone(), true
}

// Roster returns copies of the current roster in roster order.
func (w *World) Roster() []model.Agent {
	out := make([]model.Agent, 0, len(w.guild.Roster))
	for _, id := range w.guild.Roster {
		if a := w.agents[id]; a != nil {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (w *World) Recruits() []model.Agent {
	out := make([]model.Agent, 0, len(w.recruits))
	for i := range w.recruits {
		out = append(out, w.recruits[i].Clone())
	}
	return out
}

func (w *World) Mission(id string) (model.Mission, bool) {
	m := w.missions[id]
	if m == nil {
		return model.Mission{}, false
	}
	return m.Clone(), true
}

// Missions returns copies of every mission with one of the given
// statuses (all missions when none are given), sorted by posted week then
// ID.
func (w *World) Missions(statuses ...model.MissionStatus) []model.Mission {
	out := []model.Mission{}
	for _, m := range w.sortedMissions() {
		if len(statuses) > 0 && !hasStatus(statuses, m.Status) {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}

func hasStatus(xs []model.MissionStatus, s model.MissionStatus) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func (w *World) sortedMissions() []*model.Mission {
	out := make([]*model.Mission, 0, len(w.missions))
	for _, m := range w.missions {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostedWeek != out[j].PostedWeek {
			return out[i].PostedWeek < out[j].PostedWeek
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (w *World) sortedAgentIDs() []string {
	out := make([]string, 0, len(w.agents))
	for id := range w.agents {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Report returns the report of the most recent StepWeek.
func (w *World) Report() WeekReport { return w.lastReport }

func (w *World) stream(salt int) *rand.Rand {
	return dice.ForWeek(w.cfg.Seed, w.cal.Week, salt)
}

// opStream keys on the ID counter so two operations in the same week
// never share draws, while a replay reproduces them.
func (w *World) opStream() *rand.Rand {
	return dice.ForWeek(w.cfg.Seed, w.cal.Week, saltOps+int(w.ids.Next<<3))
}

func (w *World) enlist(a model.Agent) {
	cp := a
	w.agents[cp.ID] = &cp
	w.guild.AddToRoster(cp.ID)
}

func (w *World) emit(e model.Event) {
	e.Week = w.cal.Week
	w.events = append(w.events, e)
}

// maxRosterLevel is the highest level among living roster members, and
// false for an empty roster.
func (w *World) maxRosterLevel() (model.Level, bool) {
	best, ok := model.LevelApprentice, false
	for _, id := range w.guild.Roster {
		a := w.agents[id]
		if a == nil || a.Deceased() {
			continue
		}
		if !ok || a.Level > best {
			best, ok = a.Level, true
		}
	}
	return best, ok
}

func (w *World) wageBill() int {
	sum := 0
	for _, id := range w.guild.Roster {
		if a := w.agents[id]; a != nil && !a.Deceased() {
			sum += a.Wage
		}
	}
	return sum
}

func (w *World) hasStaff(role string) bool {
	for _, s := range w.guild.Staff {
		if s.Role == role {
			return true
		}
	}
	return false
}
