package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"guildsim.dev/internal/config"
	"guildsim.dev/internal/observerproto"
)

func main() {
	logger := log.New(os.Stderr, "[watch] ", log.LstdFlags)

	env, err := config.LoadWatch()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	var (
		url    = flag.String("url", env.URL, "observer websocket url")
		events = flag.Bool("events", true, "include week events")
		types  = flag.String("types", "", "comma-separated event types to keep (default: all)")
		raw    = flag.Bool("json", false, "print raw WEEK messages")
	)
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial %s: %v", *url, err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		Events:          *events,
	}
	for _, t := range strings.Split(*types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			sub.EventTypes = append(sub.EventTypes, t)
		}
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("subscribe: %v", err)
	}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			logger.Printf("read: %v", err)
			return
		}
		if *raw {
			fmt.Println(string(msg))
			continue
		}
		var wm observerproto.WeekMsg
		if err := json.Unmarshal(msg, &wm); err != nil {
			logger.Printf("decode: %v", err)
			continue
		}
		printWeek(os.Stdout, wm)
	}
}

// printWeek renders one week as a short human-readable block.
func printWeek(out io.Writer, m observerproto.WeekMsg) {
	r := m.Report
	fmt.Fprintf(out, "week %d  treasury %s (%s in, %s out)  confidence %d %s\n",
		r.Week, gold(r.Treasury), gold(r.Income), gold(r.Expenses), r.Confidence, r.Band)
	for _, c := range r.Commands {
		status := "ok"
		if !c.Result.OK {
			status = c.Result.Code
		}
		fmt.Fprintf(out, "  %s %s: %s\n", c.Command.Type, target(c.Command.ID, c.Command.Facility, c.Command.Role), status)
	}
	for _, res := range r.Resolved {
		line := fmt.Sprintf("  %s: %s, %s, %s xp", res.Name, res.Outcome, gold(res.Gold), humanize.Comma(int64(res.Experience)))
		if len(res.Deaths) > 0 {
			line += fmt.Sprintf(", %d fallen", len(res.Deaths))
		}
		fmt.Fprintln(out, line)
	}
	for _, e := range r.Events {
		fmt.Fprintf(out, "  * %s %s\n", e.Type, e.Message)
	}
	if r.SeasonEnded {
		fmt.Fprintf(out, "  == season %d over; debt %s, %d on the roster\n", r.EndedSeason, gold(m.Summary.Debt), len(m.Roster))
	}
	if r.Dismissed {
		fmt.Fprintln(out, "  == the council has dismissed the leadership")
	}
}

func target(parts ...string) string {
	for _, p := range parts {
		if p != "" {
			return p
		}
	}
	return "-"
}

func gold(n int) string {
	return humanize.Comma(int64(n)) + "g"
}
