package main

import (
	"log"
	"path/filepath"
	"sync"

	"guildsim.dev/internal/persistence/archive"
	"guildsim.dev/internal/persistence/indexdb"
	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/autopilot"
	"guildsim.dev/internal/sim/world"
	"guildsim.dev/internal/transport/observer"
)

// runner drives one guild week by week and fans each report out to the
// index and the observer feed. idx and obs may be nil.
type runner struct {
	w      *world.World
	policy *autopilot.Policy
	idx    *indexdb.SQLiteIndex
	obs    *observer.Server
	logger *log.Logger

	mu      sync.Mutex
	lastRep world.WeekReport
}

// last is the most recent report; safe to call from http handlers.
func (r *runner) last() world.WeekReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRep
}

func (r *runner) week() world.WeekReport {
	var cmds []world.Command
	if r.policy != nil {
		cmds = r.policy.Plan(r.w)
	}
	seq := uint64(r.w.Guild().Ledger.Len())
	rep := r.w.StepWeek(cmds)
	r.mu.Lock()
	r.lastRep = rep
	r.mu.Unlock()

	if r.idx != nil {
		r.idx.RecordWeek(rep, r.w.Guild().Ledger.Since(seq))
	}
	if r.obs != nil {
		r.obs.Publish(r.w, rep)
	}
	if r.logger != nil {
		r.logger.Printf("week=%d treasury=%d net=%+d confidence=%d (%s) resolved=%d events=%d",
			rep.Week, rep.Treasury, rep.Income-rep.Expenses, rep.Confidence, rep.Band, len(rep.Resolved), len(rep.Events))
		if rep.SeasonEnded {
			r.logger.Printf("season %d ended", rep.EndedSeason)
		}
		if rep.Dismissed {
			r.logger.Printf("leadership dismissed at week %d", rep.Week)
		}
	}
	return rep
}

// snapshotWriter persists snapshots handed over by the world and archives
// the ones that close a season.
type snapshotWriter struct {
	guildDir string
	idx      *indexdb.SQLiteIndex
	logger   *log.Logger
}

func (s snapshotWriter) dir() string { return filepath.Join(s.guildDir, "snapshots") }

func (s snapshotWriter) write(snap snapshot.SnapshotV1) (string, error) {
	path := filepath.Join(s.dir(), snapshot.FileName(snap.Header.Week))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	if s.idx != nil {
		s.idx.RecordSnapshot(path, snap)
	}
	season, archivedPath, ok, err := archive.ArchiveSeasonSnapshot(s.guildDir, path, snap)
	if err != nil {
		s.logf("archive season snapshot: %v", err)
	} else if ok {
		s.logf("archived season %d to %s", season, archivedPath)
		if s.idx != nil {
			s.idx.RecordSeason(season, snap.Header.Week, archivedPath, snap)
		}
	}
	return path, nil
}

// drain writes every snapshot from ch until it is closed.
func (s snapshotWriter) drain(ch <-chan snapshot.SnapshotV1) {
	for snap := range ch {
		if _, err := s.write(snap); err != nil {
			s.logf("snapshot write: %v", err)
		}
	}
}

func (s snapshotWriter) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
