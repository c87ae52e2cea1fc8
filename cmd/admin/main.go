package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"guildsim.dev/internal/config"
	"guildsim.dev/internal/persistence/archive"
	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/model"
)

func main() {
	env, err := config.LoadAdmin()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(env, os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(env, os.Args[2:])
			return
		case "list":
			listCmd(env, os.Args[2:])
			return
		}
	}
	listCmd(env, os.Args[1:])
}

func listCmd(env config.Admin, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dataDir := fs.String("data", env.DataDir, "runtime data directory")
	guildID := fs.String("guild", "", "guild id (optional; lists its snapshots and archives)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "guilds")
	if *guildID == "" {
		entries, err := os.ReadDir(base)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if e.IsDir() {
				fmt.Println(e.Name())
			}
		}
		return
	}
	if err := listGuild(os.Stdout, filepath.Join(base, *guildID)); err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
}

// listGuild prints one line per snapshot followed by the archived seasons.
func listGuild(out io.Writer, guildDir string) error {
	snaps, err := snapshot.List(filepath.Join(guildDir, "snapshots"))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SNAPSHOT\tWEEK\tSEASON\tSIZE")
	for _, p := range snaps {
		h, err := snapshot.ReadHeader(p)
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t?\t%v\n", filepath.Base(p), err)
			continue
		}
		size := ""
		if fi, err := os.Stat(p); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", filepath.Base(p), h.Week, h.Season, size)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	dirs, err := filepath.Glob(filepath.Join(guildDir, "archives", "season_*"))
	if err != nil || len(dirs) == 0 {
		return nil
	}
	sort.Strings(dirs)
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEASON\tEND WEEK\tTREASURY\tDEBT\tCONFIDENCE\tROSTER\tFALLEN")
	for _, d := range dirs {
		var season int
		if _, err := fmt.Sscanf(filepath.Base(d), "season_%d", &season); err != nil {
			continue
		}
		meta, err := archive.ReadMeta(guildDir, season)
		if err != nil {
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%d\t%d\n", meta.Season, meta.EndWeek,
			gold(meta.Treasury), gold(meta.Debt), meta.Confidence, meta.Roster, meta.Fallen)
	}
	return tw.Flush()
}

func snapshotCmd(env config.Admin, args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	dataDir := fs.String("data", env.DataDir, "runtime data directory")
	guildID := fs.String("guild", env.GuildID, "guild id")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*snapPath)
	if path == "" {
		path = snapshot.Latest(filepath.Join(*dataDir, "guilds", *guildID, "snapshots"))
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found; provide -snapshot or run the server until it writes one")
		os.Exit(2)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	if err := summarize(os.Stdout, snap); err != nil {
		fmt.Fprintln(os.Stderr, "summarize:", err)
		os.Exit(1)
	}
}

// summarize prints the guild's books, roster, facilities and loans.
func summarize(out io.Writer, snap snapshot.SnapshotV1) error {
	g := snap.Guild
	cal := snap.Calendar
	fmt.Fprintf(out, "%s (%s) seed=%d difficulty=%s\n", g.Name, g.ID, snap.Seed, snap.Tuning.Difficulty)
	fmt.Fprintf(out, "week %d done; next: season %d, month %d, week %d\n", snap.Header.Week, cal.Season, cal.Month, cal.WeekOfMonth)
	fmt.Fprintf(out, "treasury %s  debt %s  season net %s of budget %s\n",
		gold(g.Finances.Treasury), gold(g.Debt()),
		gold(g.Finances.SeasonIncome-g.Finances.SeasonExpenses), gold(g.Finances.SeasonBudget))
	fmt.Fprintf(out, "council confidence %d (%s)", g.Council.Confidence, economy.Band(g.Council.Confidence))
	if u := g.Council.Ultimatum; u != nil {
		fmt.Fprintf(out, "; ultimatum: reach %d by week %d", u.Required, u.DeadlineWeek)
	}
	if g.Council.Dismissed {
		fmt.Fprint(out, "; DISMISSED")
	}
	fmt.Fprintln(out)

	agents := map[string]model.Agent{}
	for _, a := range snap.Agents {
		agents[a.ID] = a
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tNAME\tLEVEL\tCLASS\tCONDITION\tWAGE\tMISSIONS\tMISSION")
	for _, id := range g.Roster {
		a := agents[id]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n", a.ID, a.Name, a.Level, a.Class, a.Condition,
			gold(a.Wage), a.Stats.MissionsCompleted, a.OnMission)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FACILITY\tRATING\tCONDITION")
	for _, f := range g.Facilities {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", f.Kind, f.Rating, f.Condition)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(g.Staff) > 0 {
		fmt.Fprintln(out)
		for _, s := range g.Staff {
			fmt.Fprintf(out, "staff %s %s (%s/week since week %d)\n", s.Role, s.Name, gold(s.Salary), s.HiredWeek)
		}
	}
	if len(g.Loans) > 0 {
		fmt.Fprintln(out)
		for _, l := range g.Loans {
			fmt.Fprintf(out, "loan %s: %s left, %s/week\n", l.ID, gold(l.RemainingBalance), gold(l.WeeklyPayment))
		}
	}

	counts := map[model.MissionStatus]int{}
	for _, m := range snap.Missions {
		counts[m.Status]++
	}
	fmt.Fprintf(out, "\nmissions: %d available, %d in progress, %d locked; %s ledger entries\n",
		counts[model.StatusAvailable], counts[model.StatusInProgress], counts[model.StatusLocked],
		humanize.Comma(int64(ledgerLen(g.Ledger))))
	return nil
}

func ledgerLen(l *economy.Ledger) int {
	if l == nil {
		return 0
	}
	return l.Len()
}

func gold(n int) string {
	return humanize.Comma(int64(n)) + "g"
}
