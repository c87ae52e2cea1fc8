package log

import (
	"path/filepath"
	"testing"

	"guildsim.dev/internal/sim/world"
)

func TestSeasonKey(t *testing.T) {
	cases := map[uint64]string{0: "s0001", 1: "s0001", 48: "s0001", 49: "s0002", 480: "s0010"}
	for week, want := range cases {
		if got := SeasonKey(week); got != want {
			t.Fatalf("week %d: expected %s, got %s", week, want, got)
		}
	}
}

func TestWeekLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewWeekLogger(dir)
	for week := uint64(46); week <= 51; week++ {
		e := world.WeekLogEntry{Week: week, Digest: "d"}
		if week == 47 {
			e.Commands = []world.Command{{Type: world.CmdTakeLoan, Principal: 300, Weeks: 3}}
		}
		if err := l.WriteWeek(e); err != nil {
			t.Fatalf("write week %d: %v", week, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListWeekFiles(filepath.Join(dir, "weeks"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 season files, got %d", len(files))
	}

	var weeks []uint64
	var loan *world.Command
	for _, f := range files {
		err := ReadWeekFile(f, func(e world.WeekLogEntry) error {
			weeks = append(weeks, e.Week)
			if len(e.Commands) > 0 {
				c := e.Commands[0]
				loan = &c
			}
			return nil
		})
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
	}
	if len(weeks) != 6 || weeks[0] != 46 || weeks[5] != 51 {
		t.Fatalf("expected weeks 46..51 in order, got %v", weeks)
	}
	if loan == nil || loan.Principal != 300 || loan.Type != world.CmdTakeLoan {
		t.Fatalf("expected the loan command to survive, got %+v", loan)
	}
}

func TestWeekLogger_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	for _, week := range []uint64{1, 2} {
		l := NewWeekLogger(dir)
		if err := l.WriteWeek(world.WeekLogEntry{Week: week}); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = l.Close()
	}
	files, _ := ListWeekFiles(filepath.Join(dir, "weeks"))
	n := 0
	for _, f := range files {
		_ = ReadWeekFile(f, func(world.WeekLogEntry) error { n++; return nil })
	}
	if n != 2 {
		t.Fatalf("expected 2 entries after reopen, got %d", n)
	}
}
