package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"guildsim.dev/internal/config"
	"guildsim.dev/internal/sim/model"
)

type queryOpts struct {
	Limit    int
	Season   int
	Week     uint64
	Category string
	Outcome  string
}

func dbCmd(env config.Admin, args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", env.DataDir, "runtime data directory")
	guildID := fs.String("guild", env.GuildID, "guild id (ignored with -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	var o queryOpts
	fs.IntVar(&o.Limit, "limit", 20, "result limit")
	fs.IntVar(&o.Season, "season", 0, "season filter (weeks, ledger, missions)")
	fs.Uint64Var(&o.Week, "week", 0, "week filter (ledger, missions)")
	fs.StringVar(&o.Category, "category", "", "category filter (ledger)")
	fs.StringVar(&o.Outcome, "outcome", "", "outcome filter (missions)")
	_ = fs.Parse(args)

	q := "weeks"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "guilds", *guildID, "index", "guild.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runQuery(db, q, o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if strings.HasPrefix(err.Error(), "unknown query") {
			fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data] [-guild GUILD|-db PATH] [-limit N] [-season S] [-week W] [-category C] [-outcome O] weeks|ledger|missions|seasons|snapshots|commands")
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// runQuery prints one JSON object per row.
func runQuery(db *sql.DB, q string, o queryOpts, out io.Writer) error {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	switch q {
	case "weeks":
		type row struct {
			Week       int64  `json:"week"`
			Season     int    `json:"season"`
			Month      int    `json:"month"`
			Commands   int    `json:"commands"`
			Resolved   int    `json:"resolved"`
			Income     int    `json:"income"`
			Expenses   int    `json:"expenses"`
			Treasury   int    `json:"treasury"`
			Confidence int    `json:"confidence"`
			Band       string `json:"band"`
			Digest     string `json:"digest"`
		}
		stmt := `SELECT week,season,month,commands,resolved,income,expenses,treasury,confidence,band,digest FROM weeks`
		args := []any{}
		if o.Season > 0 {
			stmt += ` WHERE season=?`
			args = append(args, o.Season)
		}
		stmt += ` ORDER BY week DESC LIMIT ?`
		args = append(args, o.Limit)
		return each(db, out, stmt, args, func(rs *sql.Rows) (any, error) {
			var r row
			err := rs.Scan(&r.Week, &r.Season, &r.Month, &r.Commands, &r.Resolved, &r.Income, &r.Expenses, &r.Treasury, &r.Confidence, &r.Band, &r.Digest)
			return r, err
		})

	case "ledger":
		type row struct {
			Seq      int64  `json:"seq"`
			Week     int64  `json:"week"`
			Amount   int    `json:"amount"`
			Category string `json:"category"`
			Memo     string `json:"memo"`
			LinkKind string `json:"link_kind,omitempty"`
			LinkID   string `json:"link_id,omitempty"`
		}
		var where []string
		args := []any{}
		if o.Week > 0 {
			where = append(where, `week=?`)
			args = append(args, int64(o.Week))
		}
		if o.Season > 0 {
			first, last := seasonWeeks(o.Season)
			where = append(where, `week BETWEEN ? AND ?`)
			args = append(args, first, last)
		}
		if c := strings.TrimSpace(o.Category); c != "" {
			where = append(where, `category=?`)
			args = append(args, c)
		}
		stmt := `SELECT seq,week,amount,category,memo,link_kind,link_id FROM transactions` + whereClause(where) + ` ORDER BY seq DESC LIMIT ?`
		args = append(args, o.Limit)
		return each(db, out, stmt, args, func(rs *sql.Rows) (any, error) {
			var r row
			err := rs.Scan(&r.Seq, &r.Week, &r.Amount, &r.Category, &r.Memo, &r.LinkKind, &r.LinkID)
			return r, err
		})

	case "missions":
		type row struct {
			MissionID  string   `json:"mission_id"`
			Week       int64    `json:"week"`
			Name       string   `json:"name"`
			Outcome    string   `json:"outcome"`
			Gold       int      `json:"gold"`
			Experience int      `json:"experience"`
			Party      []string `json:"party"`
			Deaths     int      `json:"deaths"`
			LootCount  int      `json:"loot_count"`
			LootValue  int      `json:"loot_value"`
		}
		var where []string
		args := []any{}
		if o.Week > 0 {
			where = append(where, `week=?`)
			args = append(args, int64(o.Week))
		}
		if o.Season > 0 {
			first, last := seasonWeeks(o.Season)
			where = append(where, `week BETWEEN ? AND ?`)
			args = append(args, first, last)
		}
		if oc := strings.TrimSpace(o.Outcome); oc != "" {
			where = append(where, `outcome=?`)
			args = append(args, oc)
		}
		stmt := `SELECT mission_id,week,name,outcome,gold,experience,party,deaths,loot_count,loot_value FROM missions` + whereClause(where) + ` ORDER BY week DESC, mission_id LIMIT ?`
		args = append(args, o.Limit)
		return each(db, out, stmt, args, func(rs *sql.Rows) (any, error) {
			var r row
			var party string
			err := rs.Scan(&r.MissionID, &r.Week, &r.Name, &r.Outcome, &r.Gold, &r.Experience, &party, &r.Deaths, &r.LootCount, &r.LootValue)
			if party != "" {
				r.Party = strings.Split(party, ",")
			}
			return r, err
		})

	case "seasons":
		type row struct {
			Season     int    `json:"season"`
			EndWeek    int64  `json:"end_week"`
			Seed       int64  `json:"seed"`
			Snapshot   string `json:"snapshot_path"`
			Treasury   int    `json:"treasury"`
			Confidence int    `json:"confidence"`
			RecordedAt string `json:"recorded_at"`
		}
		stmt := `SELECT season,end_week,seed,snapshot_path,treasury,confidence,recorded_at FROM seasons ORDER BY season DESC LIMIT ?`
		return each(db, out, stmt, []any{o.Limit}, func(rs *sql.Rows) (any, error) {
			var r row
			err := rs.Scan(&r.Season, &r.EndWeek, &r.Seed, &r.Snapshot, &r.Treasury, &r.Confidence, &r.RecordedAt)
			return r, err
		})

	case "snapshots":
		type row struct {
			Week     int64  `json:"week"`
			Season   int    `json:"season"`
			Path     string `json:"path"`
			Seed     int64  `json:"seed"`
			Treasury int    `json:"treasury"`
			Roster   int    `json:"roster"`
			Agents   int    `json:"agents"`
			Missions int    `json:"missions"`
			Loans    int    `json:"loans"`
		}
		stmt := `SELECT week,season,path,seed,treasury,roster,agents,missions,loans FROM snapshots ORDER BY week DESC LIMIT ?`
		return each(db, out, stmt, []any{o.Limit}, func(rs *sql.Rows) (any, error) {
			var r row
			err := rs.Scan(&r.Week, &r.Season, &r.Path, &r.Seed, &r.Treasury, &r.Roster, &r.Agents, &r.Missions, &r.Loans)
			return r, err
		})

	case "commands":
		type row struct {
			Week   int64  `json:"week"`
			Seq    int    `json:"seq"`
			Type   string `json:"type"`
			Target string `json:"target"`
			OK     bool   `json:"ok"`
			Code   string `json:"code,omitempty"`
		}
		stmt := `SELECT week,seq,type,target,ok,code FROM commands`
		args := []any{}
		if o.Week > 0 {
			stmt += ` WHERE week=?`
			args = append(args, int64(o.Week))
		}
		stmt += ` ORDER BY week DESC, seq LIMIT ?`
		args = append(args, o.Limit)
		return each(db, out, stmt, args, func(rs *sql.Rows) (any, error) {
			var r row
			err := rs.Scan(&r.Week, &r.Seq, &r.Type, &r.Target, &r.OK, &r.Code)
			return r, err
		})

	default:
		return fmt.Errorf("unknown query: %s", q)
	}
}

func each(db *sql.DB, out io.Writer, stmt string, args []any, scan func(*sql.Rows) (any, error)) error {
	rows, err := db.Query(stmt, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// seasonWeeks is the inclusive week range of a season.
func seasonWeeks(season int) (int64, int64) {
	per := int64(model.WeeksPerMonth * model.MonthsPerSeason)
	first := int64(season-1)*per + 1
	return first, first + per - 1
}
