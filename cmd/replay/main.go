package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"guildsim.dev/internal/config"
	persistlog "guildsim.dev/internal/persistence/log"
	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/world"
)

func main() {
	env, err := config.LoadAdmin()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	var (
		dataDir   = flag.String("data", env.DataDir, "runtime data directory")
		guildID   = flag.String("guild", env.GuildID, "guild id")
		snapPath  = flag.String("snapshot", "", "path to .snap.zst (default: <data>/guilds/<guild>/snapshots/0.snap.zst)")
		weeksDir  = flag.String("weeks", "", "dir containing weeks-*.jsonl.zst (default: <data>/guilds/<guild>/weeks)")
		configDir = flag.String("configs", "./configs", "catalog override directory")
		toWeek    = flag.Uint64("to_week", 0, "stop after this week (inclusive, optional)")
	)
	flag.Parse()

	guildDir := filepath.Join(*dataDir, "guilds", *guildID)
	if *snapPath == "" {
		*snapPath = filepath.Join(guildDir, "snapshots", snapshot.FileName(0))
	}
	if *weeksDir == "" {
		*weeksDir = filepath.Join(guildDir, "weeks")
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot v%d guild=%s week=%d season=%d seed=%d agents=%d missions=%d\n",
		snap.Header.Version, snap.Header.GuildID, snap.Header.Week, snap.Header.Season, snap.Seed,
		len(snap.Agents), len(snap.Missions))

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	w, err := world.FromSnapshot(world.WorldConfig{ID: *guildID}, cats, snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, "import snapshot:", err)
		os.Exit(1)
	}

	files, err := persistlog.ListWeekFiles(*weeksDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list week logs:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no week logs found in", *weeksDir)
		os.Exit(1)
	}

	checked, err := replay(w, files, *toWeek)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d weeks (from snapshot week=%d) digest=%s\n", checked, snap.Header.Week, w.StateDigest())
}
