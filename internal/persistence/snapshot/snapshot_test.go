package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
)

func sampleSnapshot(week uint64) SnapshotV1 {
	g := economy.NewGuild("gld_1", "The Company", 2000, 5000, 65, []economy.Patron{{Name: "Lady Amsel", Influence: 3}})
	g.Post(1, -40, model.TxWages, "wages", nil)
	g.Roster = append(g.Roster, "agt_1")

	a := model.Agent{ID: "agt_1", Name: "Kael Ironside", Race: model.RaceDwarf, Class: model.ClassCleric, Level: model.LevelAdept, Wage: 31, Attributes: model.NewAttributes(8)}
	a.Attributes.Set(model.AttrWisdom, 14)
	a.Wound(model.Injury{Type: model.InjuryBurn, Severity: model.SeverityModerate})

	m := model.Mission{ID: "msn_1", Name: "Hold the Bridge", Type: model.MissionDefense, Stakes: model.StakesHigh, Status: model.StatusAvailable, MinParty: 3, MaxParty: 5}

	cal := model.NewCalendar()
	cal.Week = week
	return SnapshotV1{
		Header:          Header{Version: Version, GuildID: g.ID, Week: week, Season: 1},
		Seed:            42,
		Tuning:          tuning.Defaults(),
		CatalogDigest:   "abc",
		Calendar:        cal,
		Guild:           *g,
		Agents:          []model.Agent{a},
		Missions:        []model.Mission{m},
		Recruits:        []model.Agent{},
		LastRefreshWeek: 1,
		Counters:        CountersV1{NextID: 17},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshots", FileName(3))
	want := sampleSnapshot(3)
	if err := WriteSnapshot(path, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header != want.Header {
		t.Fatalf("expected header %+v, got %+v", want.Header, got.Header)
	}
	if got.Counters.NextID != 17 || got.Seed != 42 {
		t.Fatalf("expected counters/seed to survive, got %+v seed=%d", got.Counters, got.Seed)
	}
	if !reflect.DeepEqual(got.Agents, want.Agents) {
		t.Fatalf("agents differ:\nwant %+v\ngot  %+v", want.Agents, got.Agents)
	}
	if got.Guild.Finances.Treasury != 1960 || got.Guild.Ledger.Len() != 1 {
		t.Fatalf("expected ledger and treasury to survive, got treasury=%d txs=%d", got.Guild.Finances.Treasury, got.Guild.Ledger.Len())
	}
	if got.Tuning.Settings() != want.Tuning.Settings() {
		t.Fatalf("expected tuning to survive, got %+v", got.Tuning.Settings())
	}
	if got.Missions[0].Status != model.StatusAvailable || got.Missions[0].Type != model.MissionDefense {
		t.Fatalf("expected mission tags to survive, got %+v", got.Missions[0])
	}
}

func TestReadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(9))
	if err := WriteSnapshot(path, sampleSnapshot(9)); err != nil {
		t.Fatalf("write: %v", err)
	}
	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if h.Week != 9 || h.GuildID != "gld_1" {
		t.Fatalf("expected week 9 of gld_1, got %+v", h)
	}
}

func TestReadSnapshot_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(1))
	snap := sampleSnapshot(1)
	snap.Header.Version = 99
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestLatest_PicksHighestWeek(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2.snap.zst", "10.snap.zst", "9.snap.zst", "notes.txt", "x.snap.zst"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if got := Latest(dir); filepath.Base(got) != "10.snap.zst" {
		t.Fatalf("expected 10.snap.zst, got %q", got)
	}
	all, err := List(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || filepath.Base(all[0]) != "2.snap.zst" {
		t.Fatalf("expected 3 ordered snapshots, got %v", all)
	}
	if Latest(filepath.Join(dir, "missing")) != "" {
		t.Fatalf("expected empty result for missing dir")
	}
}

func TestWriteSnapshot_ReportsFailedWrite(t *testing.T) {
	// Every write to /dev/full fails with ENOSPC; the payload only reaches
	// it when the buffered streams are flushed and closed.
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this platform")
	}
	if err := WriteSnapshot("/dev/full", sampleSnapshot(1)); err == nil {
		t.Fatalf("expected an error writing to a full device")
	}
}
