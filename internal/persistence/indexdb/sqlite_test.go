package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
	"guildsim.dev/internal/sim/world"
)

func openTest(t *testing.T) (*SQLiteIndex, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index", "guild.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	return idx, path
}

func reopen(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqWeek}

	s.RecordWeek(world.WeekReport{Week: 2}, nil)
	s.RecordSnapshot("/tmp/2.snap.zst", snapshot.SnapshotV1{})
	s.RecordSeason(1, 48, "/tmp/48.snap.zst", snapshot.SnapshotV1{})

	st := s.Stats()
	if st.DropWeekTotal != 1 {
		t.Fatalf("DropWeekTotal=%d want=1", st.DropWeekTotal)
	}
	if st.DropSnapshotTotal != 1 {
		t.Fatalf("DropSnapshotTotal=%d want=1", st.DropSnapshotTotal)
	}
	if st.DropSeasonTotal != 1 {
		t.Fatalf("DropSeasonTotal=%d want=1", st.DropSeasonTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_RecordWeek(t *testing.T) {
	idx, path := openTest(t)

	rep := world.WeekReport{
		Week:       6,
		Digest:     "abc",
		Income:     340,
		Expenses:   120,
		Treasury:   2220,
		Confidence: 66,
		Band:       model.BandStable,
		Commands: []world.CommandResult{
			{Command: world.Command{Type: world.CmdHireStaff, Role: "cook"}, Result: model.Ok("stf_1")},
			{Command: world.Command{Type: world.CmdDismiss, ID: "agt_x"}, Result: model.Reject(model.ErrNotOnRoster, "no")},
		},
		Resolved: []world.ResolvedMission{
			{MissionID: "msn_1", Name: "Clear the Cellar", Outcome: model.OutcomeSuccess, Gold: 300, Experience: 80, Party: []string{"a", "b"}, LootCount: 2, LootValue: 95},
		},
	}
	txs := []economy.Transaction{
		{Seq: 10, Week: 6, Amount: 300, Category: model.TxMissionReward, Memo: "Clear the Cellar", Link: &economy.Link{Kind: "mission", ID: "msn_1"}},
		{Seq: 11, Week: 6, Amount: -120, Category: model.TxWages},
	}
	idx.RecordWeek(rep, txs)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := reopen(t, path)
	var (
		season, month int
		digest, band  string
		treasury      int
	)
	if err := db.QueryRow(`SELECT season,month,digest,band,treasury FROM weeks WHERE week=6`).Scan(&season, &month, &digest, &band, &treasury); err != nil {
		t.Fatalf("weeks scan: %v", err)
	}
	if season != 1 || month != 2 || digest != "abc" || band != "stable" || treasury != 2220 {
		t.Fatalf("weeks row mismatch: season=%d month=%d digest=%s band=%s treasury=%d", season, month, digest, band, treasury)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM commands WHERE week=6`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("expected 2 command rows, got %d (%v)", n, err)
	}
	var code string
	if err := db.QueryRow(`SELECT code FROM commands WHERE week=6 AND seq=1`).Scan(&code); err != nil || code != model.ErrNotOnRoster {
		t.Fatalf("expected code %s, got %q (%v)", model.ErrNotOnRoster, code, err)
	}

	var cat, linkID string
	if err := db.QueryRow(`SELECT category,link_id FROM transactions WHERE seq=10`).Scan(&cat, &linkID); err != nil {
		t.Fatalf("transactions scan: %v", err)
	}
	if cat != "mission_reward" || linkID != "msn_1" {
		t.Fatalf("transaction row mismatch: category=%s link=%s", cat, linkID)
	}

	var outcome, party string
	if err := db.QueryRow(`SELECT outcome,party FROM missions WHERE mission_id='msn_1'`).Scan(&outcome, &party); err != nil {
		t.Fatalf("missions scan: %v", err)
	}
	if outcome != model.OutcomeSuccess.String() || party != "a,b" {
		t.Fatalf("mission row mismatch: outcome=%s party=%s", outcome, party)
	}
}

func TestSQLiteIndex_RecordSnapshotAndSeason(t *testing.T) {
	idx, path := openTest(t)

	g := economy.NewGuild("g1", "The Company of Ash", 900, 5000, 71, nil)
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{Version: 1, GuildID: "g1", Week: 48, Season: 2},
		Seed:   42,
		Guild:  *g,
	}
	idx.RecordSnapshot("/abs/path/48.snap.zst", snap)
	idx.RecordSeason(1, 48, "/abs/archives/season_001/48.snap.zst", snap)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := reopen(t, path)
	var (
		season, confidence int
		end, seed          int64
		snapPath           string
	)
	row := db.QueryRow(`SELECT season,end_week,seed,snapshot_path,confidence FROM seasons WHERE season=1`)
	if err := row.Scan(&season, &end, &seed, &snapPath, &confidence); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if season != 1 || end != 48 || seed != 42 || snapPath != "/abs/archives/season_001/48.snap.zst" || confidence != 71 {
		t.Fatalf("row mismatch: season=%d end=%d seed=%d snap=%q confidence=%d", season, end, seed, snapPath, confidence)
	}

	var treasury int
	if err := db.QueryRow(`SELECT treasury FROM snapshots WHERE week=48`).Scan(&treasury); err != nil || treasury != 900 {
		t.Fatalf("expected snapshot treasury 900, got %d (%v)", treasury, err)
	}
}

func TestSQLiteIndex_UpsertCatalogs(t *testing.T) {
	idx, path := openTest(t)
	cats := catalogs.MustDefault()
	if err := idx.UpsertCatalogs(cats, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db := reopen(t, path)
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 6 catalogs plus tuning, got %d", n)
	}
	var digest string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key='catalog_digest'`).Scan(&digest); err != nil || digest != cats.Digest() {
		t.Fatalf("expected catalog digest %s, got %s (%v)", cats.Digest(), digest, err)
	}
}

func TestWeekPosition(t *testing.T) {
	cases := []struct {
		week          uint64
		season, month int
	}{{1, 1, 1}, {4, 1, 1}, {5, 1, 2}, {48, 1, 12}, {49, 2, 1}}
	for _, c := range cases {
		s, m := weekPosition(c.week)
		if s != c.season || m != c.month {
			t.Fatalf("week %d: expected season %d month %d, got %d %d", c.week, c.season, c.month, s, m)
		}
	}
}
