package world

import (
	"sort"

	"guildsim.dev/internal/sim/model"
)

// boardMissions returns the open postings (available and locked), newest
// first.
func (w *World) boardMissions() (available, locked []*model.Mission) {
	for _, m := range w.sortedMissions() {
		switch m.Status {
		case model.StatusAvailable:
			available = append(available, m)
		case model.StatusLocked:
			locked = append(locked, m)
		}
	}
	newestFirst := func(xs []*model.Mission) {
		sort.SliceStable(xs, func(i, j int) bool { return xs[i].PostedWeek > xs[j].PostedWeek })
	}
	newestFirst(available)
	newestFirst(locked)
	return available, locked
}

// refreshBoard keeps the newest RetainAvailable available and
// RetainLocked locked missions, expires the rest, tops the board up to
// TargetSize and regenerates the recruit pool. It runs at most once per
// week.
func (w *World) refreshBoard(week uint64) bool {
	if w.lastRefreshWeek == week {
		return false
	}
	w.lastRefreshWeek = week
	cfg := w.tun.Board

	available, locked := w.boardMissions()
	open := w.expireBeyond(available, cfg.RetainAvailable) + w.expireBeyond(locked, cfg.RetainLocked)

	src := w.stream(saltBoard)
	for ; open < cfg.TargetSize; open++ {
		m := w.gen.Mission(week, src)
		if !w.reachable(m.RecommendedLevel) {
			m.Status = model.StatusLocked
		}
		w.missions[m.ID] = &m
	}

	w.recruits = w.gen.RecruitPool(cfg.RecruitPool, week, w.stream(saltRecruits))
	w.emit(model.Event{Type: model.EventBoardRefreshed, Amount: open})
	return true
}

// expireBeyond deletes every posting after the first keep and returns how
// many remain.
func (w *World) expireBeyond(newestFirst []*model.Mission, keep int) int {
	for i, m := range newestFirst {
		if i < keep {
			continue
		}
		delete(w.missions, m.ID)
		w.emit(model.Event{Type: model.EventMissionExpired, Ref: m.ID, Message: m.Name})
	}
	if len(newestFirst) < keep {
		return len(newestFirst)
	}
	return keep
}

// reachable reports whether some roster member is within two ranks of
// the recommended level.
func (w *World) reachable(rec model.Level) bool {
	best, ok := w.maxRosterLevel()
	return ok && int(best)+2 >= int(rec)
}

// unlockMissions opens locked postings the roster can now reach.
func (w *World) unlockMissions() {
	_, locked := w.boardMissions()
	for _, m := range locked {
		if !w.reachable(m.RecommendedLevel) {
			continue
		}
		if err := m.Transition(model.StatusAvailable); err == nil {
			w.emit(model.Event{Type: model.EventMissionUnlocked, Ref: m.ID, Message: m.Name})
		}
	}
}
