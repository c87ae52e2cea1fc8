package main

import (
	"errors"
	"fmt"
	"path/filepath"

	persistlog "guildsim.dev/internal/persistence/log"
	"guildsim.dev/internal/sim/world"
)

var errDone = errors.New("done")

// replay re-runs every logged week after the world's current one and
// checks each digest. Entries for weeks the world has already passed are
// skipped, which covers both the snapshot's own history and weeks logged
// twice by a run that was resumed from an older snapshot.
func replay(w *world.World, files []string, toWeek uint64) (uint64, error) {
	var checked uint64
	for _, path := range files {
		err := persistlog.ReadWeekFile(path, func(e world.WeekLogEntry) error {
			if toWeek != 0 && e.Week > toWeek {
				return errDone
			}
			if e.Week < w.CurrentWeek() {
				return nil
			}
			if e.Week != w.CurrentWeek() {
				return fmt.Errorf("week gap: want=%d got=%d (file=%s)", w.CurrentWeek(), e.Week, filepath.Base(path))
			}
			rep := w.StepWeek(e.Commands)
			if rep.Week != e.Week {
				return fmt.Errorf("internal week mismatch: stepped=%d entry=%d (file=%s)", rep.Week, e.Week, filepath.Base(path))
			}
			checked++
			if rep.Digest != e.Digest {
				return fmt.Errorf("digest mismatch at week %d: got=%s want=%s", rep.Week, rep.Digest, e.Digest)
			}
			return nil
		})
		if errors.Is(err, errDone) {
			break
		}
		if err != nil {
			return checked, err
		}
	}
	return checked, nil
}
