package world

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/generator"
	"guildsim.dev/internal/sim/ids"
	"guildsim.dev/internal/sim/model"
)

// ExportSnapshot captures the full state. The header week is the last
// completed week; the calendar inside points at the next one.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	agents := make([]model.Agent, 0, len(w.agents))
	for _, id := range w.sortedAgentIDs() {
		agents = append(agents, w.agents[id].Clone())
	}
	missions := make([]model.Mission, 0, len(w.missions))
	for _, m := range w.missions {
		missions = append(missions, m.Clone())
	}
	sort.Slice(missions, func(i, j int) bool { return missions[i].ID < missions[j].ID })

	g := *w.guild
	g.Roster = append([]string{}, w.guild.Roster...)
	g.Staff = append([]economy.Staff{}, w.guild.Staff...)
	g.Facilities = append([]economy.Facility{}, w.guild.Facilities...)
	g.Loans = append([]economy.Loan{}, w.guild.Loans...)
	g.Vault = append([]model.Item{}, w.guild.Vault...)
	g.Council.Patrons = append([]economy.Patron{}, w.guild.Council.Patrons...)
	if w.guild.Council.Ultimatum != nil {
		u := *w.guild.Council.Ultimatum
		g.Council.Ultimatum = &u
	}
	ledger := economy.NewLedger()
	for _, tx := range w.guild.Ledger.Transactions() {
		ledger.Record(tx.Week, tx.Amount, tx.Category, tx.Memo, tx.Link)
	}
	g.Ledger = ledger

	completed := w.cal.Week - 1
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			GuildID: w.guild.ID,
			Week:    completed,
			Season:  w.cal.Season,
		},
		Seed:            w.cfg.Seed,
		Tuning:          w.tun,
		CatalogDigest:   w.cats.Digest(),
		Calendar:        w.cal,
		Guild:           g,
		Agents:          agents,
		Missions:        missions,
		Recruits:        w.Recruits(),
		LastRefreshWeek: w.lastRefreshWeek,
		Counters:        snapshot.CountersV1{NextID: w.ids.Next},
	}
}

// StateDigest is the sha256 of the snapshot's canonical JSON. Two worlds
// with equal digests are in equal states.
func (w *World) StateDigest() string {
	snap := w.ExportSnapshot()
	b, err := json.Marshal(snap)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ImportSnapshot replaces the current state with the snapshot. The
// catalogs must be the ones the snapshot was taken with.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version %d", s.Header.Version)
	}
	if d := w.cats.Digest(); s.CatalogDigest != "" && s.CatalogDigest != d {
		return fmt.Errorf("catalog digest mismatch: snapshot %s, loaded %s", s.CatalogDigest, d)
	}
	if !s.Calendar.Valid() {
		return fmt.Errorf("invalid calendar %+v", s.Calendar)
	}
	if err := s.Tuning.Validate(); err != nil {
		return fmt.Errorf("snapshot tuning: %w", err)
	}

	agents := make(map[string]*model.Agent, len(s.Agents))
	for i := range s.Agents {
		a := s.Agents[i].Clone()
		if a.ID == "" {
			return fmt.Errorf("agent %d has no id", i)
		}
		agents[a.ID] = &a
	}
	missions := make(map[string]*model.Mission, len(s.Missions))
	for i := range s.Missions {
		m := s.Missions[i].Clone()
		if !m.Consistent() {
			return fmt.Errorf("mission %s: result does not match status %s", m.ID, m.Status)
		}
		missions[m.ID] = &m
	}
	g := s.Guild
	if g.Ledger == nil {
		g.Ledger = economy.NewLedger()
	}
	for _, id := range g.Roster {
		if agents[id] == nil {
			return fmt.Errorf("roster references unknown agent %s", id)
		}
	}

	w.cfg.Seed = s.Seed
	w.cfg.Tuning = s.Tuning
	w.tun = s.Tuning
	w.cal = s.Calendar
	w.guild = &g
	w.agents = agents
	w.missions = missions
	w.recruits = append([]model.Agent{}, s.Recruits...)
	w.lastRefreshWeek = s.LastRefreshWeek
	w.ids = &ids.Allocator{Seed: s.Seed, Next: s.Counters.NextID}
	w.gen = generator.New(w.cats, w.ids)
	w.events = nil
	w.resolved = nil
	w.released = map[string]bool{}
	w.lastReport = WeekReport{}
	return nil
}

// FromSnapshot builds a world directly from a snapshot.
func FromSnapshot(cfg WorldConfig, cats *catalogs.Catalogs, s snapshot.SnapshotV1) (*World, error) {
	cfg.applyDefaults()
	if cats == nil {
		return nil, fmt.Errorf("world %s: nil catalogs", cfg.ID)
	}
	w := newEmpty(cfg, cats)
	if err := w.ImportSnapshot(s); err != nil {
		return nil, err
	}
	return w, nil
}
