package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"guildsim.dev/internal/config"
	"guildsim.dev/internal/persistence/indexdb"
	persistlog "guildsim.dev/internal/persistence/log"
	"guildsim.dev/internal/persistence/snapshot"
	"guildsim.dev/internal/sim/autopilot"
	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
	"guildsim.dev/internal/sim/world"
	"guildsim.dev/internal/transport/observer"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	env, err := config.LoadServer()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	var (
		dataDir    = flag.String("data", env.DataDir, "runtime data directory")
		configDir  = flag.String("configs", env.ConfigDir, "catalog override directory")
		tuningPath = flag.String("tuning", env.TuningPath, "path to tuning.yaml (default: <configs>/tuning.yaml)")
		guildID    = flag.String("guild", env.GuildID, "guild directory name under <data>/guilds")
		guildName  = flag.String("name", env.GuildName, "guild name (fresh guilds only; default: generated)")
		seed       = flag.Int64("seed", env.Seed, "world seed (used only when starting a fresh guild)")
		difficulty = flag.String("difficulty", env.Difficulty, "difficulty override (fresh guilds only)")
		weeks      = flag.Int("weeks", env.Weeks, "weeks to simulate (0 = until stopped or dismissed)")
		interval   = flag.Duration("interval", env.Interval, "wall-clock pause between weeks (0 = as fast as possible)")
		obsAddr    = flag.String("observer", env.ObserverAddr, "observer http listen address (empty to disable)")
		disableDB  = flag.Bool("disable_db", env.DisableDB, "disable the sqlite index")
		pilot      = flag.Bool("autopilot", env.Autopilot, "plan each week's commands automatically")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from the guild dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	guildDir := filepath.Join(*dataDir, "guilds", *guildID)
	if err := os.MkdirAll(guildDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(filepath.Join(guildDir, "snapshots"))
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		// Snapshots carry their own tuning; a fresh guild falls back to defaults.
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if d := strings.TrimSpace(*difficulty); d != "" {
		parsed, err := model.ParseDifficulty(d)
		if err != nil {
			logger.Fatalf("difficulty: %v", err)
		}
		tune.Difficulty = parsed
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(guildDir, "index", "guild.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	writer := snapshotWriter{guildDir: guildDir, idx: idx, logger: logger}

	cfg := world.WorldConfig{ID: *guildID, Seed: *seed, GuildName: *guildName, Tuning: tune}
	var w *world.World
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		w, err = world.FromSnapshot(cfg, cats, snap)
		if err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s week=%d", filepath.Base(snapshotToLoad), snap.Header.Week)
	} else {
		w, err = world.New(cfg, cats)
		if err != nil {
			logger.Fatalf("world: %v", err)
		}
		// Week 0 is the replay base for everything logged after it.
		path, err := writer.write(w.ExportSnapshot())
		if err != nil {
			logger.Fatalf("initial snapshot: %v", err)
		}
		logger.Printf("founded %s (%s) seed=%d snapshot=%s", w.Guild().Name, w.Guild().ID, *seed, filepath.Base(path))
	}

	if idx != nil {
		if err := idx.UpsertCatalogs(cats, w.Tuning()); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}

	weekLog := persistlog.NewWeekLogger(guildDir)
	defer weekLog.Close()
	w.SetWeekLogger(weekLog)

	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		writer.drain(snapCh)
	}()

	ctx, cancel := signalContext()
	defer cancel()

	r := &runner{w: w, idx: idx, logger: logger}
	if *pilot {
		p := autopilot.Default()
		r.policy = &p
	}

	var srv *http.Server
	if addr := strings.TrimSpace(*obsAddr); addr != "" {
		r.obs = observer.NewServer(logger)
		r.obs.SetBootstrap(w)
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
			rw.WriteHeader(200)
			_, _ = rw.Write([]byte("ok"))
		})
		mux.HandleFunc("/metrics", func(rw http.ResponseWriter, _ *http.Request) {
			writeMetrics(rw, *guildID, r.last(), r.obs.Sessions(), idx.Stats())
		})
		mux.HandleFunc("/admin/v1/observer/bootstrap", r.obs.BootstrapHandler())
		mux.HandleFunc("/v1/observer/ws", r.obs.WSHandler())
		srv = &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Printf("observer listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("observer: %v", err)
			}
		}()
	}

	run(ctx, r, *weeks, *interval)

	// Leave a snapshot of the last completed week so the next start resumes here.
	w.SetSnapshotSink(nil)
	close(snapCh)
	<-drained
	if r.last().Week != 0 {
		if _, err := writer.write(w.ExportSnapshot()); err != nil {
			logger.Printf("final snapshot: %v", err)
		}
	}

	if srv != nil {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}
	logger.Printf("stopped at week %d", w.CurrentWeek())
}

// run steps the world until n weeks pass, the context ends or the
// leadership is dismissed.
func run(ctx context.Context, r *runner, n int, interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}
	for i := 0; n <= 0 || i < n; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return
		}
		if rep := r.week(); rep.Dismissed {
			return
		}
	}
}

func writeMetrics(rw http.ResponseWriter, guildID string, rep world.WeekReport, observers int, s indexdb.Stats) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP guildsim_week Last completed week.\n")
	fmt.Fprintf(rw, "# TYPE guildsim_week gauge\n")
	fmt.Fprintf(rw, "guildsim_week{guild=%q} %d\n", guildID, rep.Week)

	fmt.Fprintf(rw, "# HELP guildsim_treasury Treasury after the last week.\n")
	fmt.Fprintf(rw, "# TYPE guildsim_treasury gauge\n")
	fmt.Fprintf(rw, "guildsim_treasury{guild=%q} %d\n", guildID, rep.Treasury)

	fmt.Fprintf(rw, "# HELP guildsim_confidence Council confidence after the last week.\n")
	fmt.Fprintf(rw, "# TYPE guildsim_confidence gauge\n")
	fmt.Fprintf(rw, "guildsim_confidence{guild=%q} %d\n", guildID, rep.Confidence)

	fmt.Fprintf(rw, "# HELP guildsim_observers Connected observers.\n")
	fmt.Fprintf(rw, "# TYPE guildsim_observers gauge\n")
	fmt.Fprintf(rw, "guildsim_observers{guild=%q} %d\n", guildID, observers)

	fmt.Fprintf(rw, "# HELP guildsim_index_queue_depth Index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE guildsim_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "guildsim_index_queue_depth{guild=%q} %d\n", guildID, s.QueueDepth)

	fmt.Fprintf(rw, "# HELP guildsim_index_dropped_total Index rows dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE guildsim_index_dropped_total counter\n")
	fmt.Fprintf(rw, "guildsim_index_dropped_total{guild=%q,kind=%q} %d\n", guildID, "week", s.DropWeekTotal)
	fmt.Fprintf(rw, "guildsim_index_dropped_total{guild=%q,kind=%q} %d\n", guildID, "snapshot", s.DropSnapshotTotal)
	fmt.Fprintf(rw, "guildsim_index_dropped_total{guild=%q,kind=%q} %d\n", guildID, "season", s.DropSeasonTotal)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
