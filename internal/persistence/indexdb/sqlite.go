package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
	"guildsim.dev/internal/sim/world"
)

// SQLiteIndex is a queryable secondary copy of the week logs, ledger and
// snapshots. Writes are queued and applied by one goroutine; the JSONL week
// logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropWeek     atomic.Uint64
	dropSnapshot atomic.Uint64
	dropSeason   atomic.Uint64
}

type reqKind int

const (
	reqWeek reqKind = iota + 1
	reqSnapshot
	reqSeason
)

type req struct {
	kind reqKind

	week     weekReq
	snapshot snapshotRow
	season   seasonRow
}

type weekReq struct {
	Report world.WeekReport
	Txs    []economy.Transaction
}

type snapshotRow struct {
	Week     uint64
	Season   int
	Path     string
	Seed     int64
	Treasury int
	Roster   int
	Agents   int
	Missions int
	Loans    int
}

type seasonRow struct {
	Season     int
	EndWeek    uint64
	Path       string
	Seed       int64
	Treasury   int
	Confidence int
	RecordedAt string
}

// Stats reports queue pressure. Drops happen only when the writer falls
// behind.
type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	DropWeekTotal     uint64
	DropSnapshotTotal uint64
	DropSeasonTotal   uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			source TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS weeks (
			week INTEGER PRIMARY KEY,
			season INTEGER NOT NULL,
			month INTEGER NOT NULL,
			digest TEXT NOT NULL,
			commands INTEGER NOT NULL,
			resolved INTEGER NOT NULL,
			income INTEGER NOT NULL,
			expenses INTEGER NOT NULL,
			treasury INTEGER NOT NULL,
			confidence INTEGER NOT NULL,
			band TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_weeks_season ON weeks(season, week);`,
		`CREATE TABLE IF NOT EXISTS commands (
			week INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			target TEXT NOT NULL,
			ok INTEGER NOT NULL,
			code TEXT NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (week, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			seq INTEGER PRIMARY KEY,
			week INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			category TEXT NOT NULL,
			memo TEXT NOT NULL,
			link_kind TEXT NOT NULL,
			link_id TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_category_week ON transactions(category, week);`,
		`CREATE TABLE IF NOT EXISTS missions (
			mission_id TEXT PRIMARY KEY,
			week INTEGER NOT NULL,
			name TEXT NOT NULL,
			outcome TEXT NOT NULL,
			gold INTEGER NOT NULL,
			experience INTEGER NOT NULL,
			party TEXT NOT NULL,
			deaths INTEGER NOT NULL,
			loot_count INTEGER NOT NULL,
			loot_value INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_missions_week ON missions(week);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			week INTEGER PRIMARY KEY,
			season INTEGER NOT NULL,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			treasury INTEGER NOT NULL,
			roster INTEGER NOT NULL,
			agents INTEGER NOT NULL,
			missions INTEGER NOT NULL,
			loans INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS seasons (
			season INTEGER PRIMARY KEY,
			end_week INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			snapshot_path TEXT NOT NULL,
			treasury INTEGER NOT NULL,
			confidence INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_seasons_end_week ON seasons(end_week);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropWeekTotal:     s.dropWeek.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
		DropSeasonTotal:   s.dropSeason.Load(),
	}
}

// RecordWeek queues a week report with the ledger entries posted during it.
func (s *SQLiteIndex) RecordWeek(rep world.WeekReport, txs []economy.Transaction) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqWeek, week: weekReq{Report: rep, Txs: txs}}:
	default:
		s.dropWeek.Add(1)
	}
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Week:     snap.Header.Week,
		Season:   snap.Header.Season,
		Path:     path,
		Seed:     snap.Seed,
		Treasury: snap.Guild.Finances.Treasury,
		Roster:   len(snap.Guild.Roster),
		Agents:   len(snap.Agents),
		Missions: len(snap.Missions),
		Loans:    len(snap.Guild.Loans),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

func (s *SQLiteIndex) RecordSeason(season int, endWeek uint64, archivedSnapshotPath string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	if season <= 0 || archivedSnapshotPath == "" {
		return
	}
	r := seasonRow{
		Season:     season,
		EndWeek:    endWeek,
		Path:       archivedSnapshotPath,
		Seed:       snap.Seed,
		Treasury:   snap.Guild.Finances.Treasury,
		Confidence: snap.Guild.Council.Confidence,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqSeason, season: r}:
	default:
		s.dropSeason.Add(1)
	}
}

// UpsertCatalogs stores the decoded catalogs and the tuning in effect, so a
// history can be read without the files it was produced with.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		source string
		json   []byte
	}
	var rows []kv
	add := func(file string, v any) {
		b, err := json.Marshal(v)
		if err != nil || len(b) == 0 {
			return
		}
		rows = append(rows, kv{name: strings.TrimSuffix(file, ".json"), digest: cats.Files[file], source: cats.Sources[file], json: b})
	}
	add(catalogs.FileClasses, cats.Classes)
	add(catalogs.FileRaces, cats.Races)
	add(catalogs.FileMissions, cats.Missions)
	add(catalogs.FileLoot, cats.Loot)
	add(catalogs.FileNames, cats.Names)
	add(catalogs.FileStaff, cats.Staff)

	// Tuning: store the values we actually apply (canonical JSON).
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), source: "applied", json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('catalog_digest',?)`, cats.Digest()); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,source,json,updated_at) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, r.source, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertWeek, _ := s.db.Prepare(`INSERT OR REPLACE INTO weeks(week,season,month,digest,commands,resolved,income,expenses,treasury,confidence,band,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(week,seq,type,target,ok,code,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertTx, _ := s.db.Prepare(`INSERT OR REPLACE INTO transactions(seq,week,amount,category,memo,link_kind,link_id) VALUES(?,?,?,?,?,?,?)`)
	insertMission, _ := s.db.Prepare(`INSERT OR REPLACE INTO missions(mission_id,week,name,outcome,gold,experience,party,deaths,loot_count,loot_value) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(week,season,path,seed,treasury,roster,agents,missions,loans) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertSeason, _ := s.db.Prepare(`INSERT OR REPLACE INTO seasons(season,end_week,seed,snapshot_path,treasury,confidence,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertWeek, insertCommand, insertTx, insertMission, insertSnapshot, insertSeason} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil || tx == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqWeek:
			s.writeWeek(r.week, exec, insertWeek, insertCommand, insertTx, insertMission)
		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, int64(sn.Week), sn.Season, sn.Path, sn.Seed, sn.Treasury, sn.Roster, sn.Agents, sn.Missions, sn.Loans)
		case reqSeason:
			se := r.season
			exec(insertSeason, se.Season, int64(se.EndWeek), se.Seed, se.Path, se.Treasury, se.Confidence, se.RecordedAt)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}

func (s *SQLiteIndex) writeWeek(w weekReq, exec func(*sql.Stmt, ...any) bool, insertWeek, insertCommand, insertTx, insertMission *sql.Stmt) {
	rep := w.Report
	raw, _ := json.Marshal(rep)
	season, month := weekPosition(rep.Week)
	if !exec(insertWeek, int64(rep.Week), season, month, rep.Digest, len(rep.Commands), len(rep.Resolved),
		rep.Income, rep.Expenses, rep.Treasury, rep.Confidence, rep.Band.String(), string(raw)) {
		return
	}
	for i, c := range rep.Commands {
		b, _ := json.Marshal(c)
		target := c.Command.ID
		if target == "" {
			target = c.Command.Facility + c.Command.Role
		}
		if !exec(insertCommand, int64(rep.Week), i, c.Command.Type, target, c.Result.OK, c.Result.Code, string(b)) {
			return
		}
	}
	for _, t := range w.Txs {
		kind, id := "", ""
		if t.Link != nil {
			kind, id = t.Link.Kind, t.Link.ID
		}
		if !exec(insertTx, int64(t.Seq), int64(t.Week), t.Amount, t.Category.String(), t.Memo, kind, id) {
			return
		}
	}
	for _, m := range rep.Resolved {
		if !exec(insertMission, m.MissionID, int64(rep.Week), m.Name, m.Outcome.String(), m.Gold, m.Experience,
			strings.Join(m.Party, ","), len(m.Deaths), m.LootCount, m.LootValue) {
			return
		}
	}
}

// weekPosition places an absolute week in its season and month.
func weekPosition(week uint64) (season, month int) {
	if week == 0 {
		return 1, 1
	}
	i := int(week - 1)
	perSeason := model.WeeksPerMonth * model.MonthsPerSeason
	return i/perSeason + 1, (i%perSeason)/model.WeeksPerMonth + 1
}
