package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"guildsim.dev/internal/observerproto"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/world"
)

// Server fans week reports out to websocket observers. The simulation
// loop calls Publish after each week; handlers never touch the world.
type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu        sync.Mutex
	sessions  map[string]*session
	bootstrap observerproto.BootstrapResponse
	last      *observerproto.WeekMsg
}

type session struct {
	mu  sync.Mutex
	sub observerproto.SubscribeMsg
	out chan []byte
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log:      logger,
		sessions: map[string]*session{},
		bootstrap: observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Sessions is the number of connected observers.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetBootstrap records what a new observer is told before the first week.
func (s *Server) SetBootstrap(w *world.World) {
	b := bootstrapOf(w)
	s.mu.Lock()
	s.bootstrap = b
	s.mu.Unlock()
}

// Publish sends one week to every observer. Slow observers miss weeks
// rather than stall the simulation.
func (s *Server) Publish(w *world.World, rep world.WeekReport) {
	msg := observerproto.WeekMsg{
		Type:            observerproto.TypeWeek,
		ProtocolVersion: observerproto.Version,
		Report:          rep,
		Summary:         w.FinancialSummary(),
		Roster:          observerproto.RosterOf(w.Roster()),
	}
	b := bootstrapOf(w)

	s.mu.Lock()
	s.bootstrap = b
	s.last = &msg
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		out, err := encodeFor(sess.subscription(), msg)
		if err != nil {
			continue
		}
		select {
		case sess.out <- out:
		default:
		}
	}
}

func bootstrapOf(w *world.World) observerproto.BootstrapResponse {
	g := w.Guild()
	return observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		GuildID:         g.ID,
		GuildName:       g.Name,
		Seed:            w.Seed(),
		Difficulty:      w.Tuning().Difficulty.String(),
		Calendar:        w.Calendar(),
		Dismissed:       w.Dismissed(),
	}
}

func (s *session) subscription() observerproto.SubscribeMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub
}

func (s *session) subscribe(sub observerproto.SubscribeMsg) {
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
}

// encodeFor applies the observer's event filter to one week message.
func encodeFor(sub observerproto.SubscribeMsg, msg observerproto.WeekMsg) ([]byte, error) {
	switch {
	case !sub.Events:
		msg.Report.Events = nil
	case len(sub.EventTypes) > 0:
		keep := map[string]bool{}
		for _, t := range sub.EventTypes {
			keep[t] = true
		}
		var evs []model.Event
		for _, e := range msg.Report.Events {
			if keep[e.Type] {
				evs = append(evs, e)
			}
		}
		msg.Report.Events = evs
	}
	return json.Marshal(msg)
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		s.mu.Lock()
		resp := s.bootstrap
		s.mu.Unlock()

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, ok := parseSubscribe(msg)
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		sess := &session{sub: sub, out: make(chan []byte, 64)}
		s.mu.Lock()
		s.sessions[sid] = sess
		last := s.last
		s.mu.Unlock()
		if s.log != nil {
			s.log.Printf("observer %s connected from %s", sid, r.RemoteAddr)
		}
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sid)
			s.mu.Unlock()
			if s.log != nil {
				s.log.Printf("observer %s disconnected", sid)
			}
		}()

		if last != nil {
			if b, err := encodeFor(sub, *last); err == nil {
				sess.out <- b
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if sub, ok := parseSubscribe(msg); ok {
				sess.subscribe(sub)
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func parseSubscribe(msg []byte) (observerproto.SubscribeMsg, bool) {
	var sub observerproto.SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, false
	}
	if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
		return sub, false
	}
	if len(sub.EventTypes) > 64 {
		sub.EventTypes = sub.EventTypes[:64]
	}
	return sub, true
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
