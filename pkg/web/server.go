// Package web serves the maze dashboard: session status over REST and
// live run events over a websocket.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-mazerunner/internal/log"
	"github.com/teslashibe/go-mazerunner/pkg/hub"
	"github.com/teslashibe/go-mazerunner/pkg/maze"
	"github.com/teslashibe/go-mazerunner/pkg/protocol"
	"github.com/teslashibe/go-mazerunner/pkg/runstore"
)

// DefaultRecent is how many events the server keeps for /api/events.
const DefaultRecent = 500

const shutdownTimeout = 5 * time.Second

// Snapshotter reports session progress. *maze.Session implements it.
type Snapshotter interface {
	Snapshot() maze.Snapshot
}

// RunLister lists stored runs. *runstore.Book implements it.
type RunLister interface {
	List(label string) []runstore.Record
}

// Config controls the dashboard server.
type Config struct {
	Addr       string // listen address, e.g. ":8080"
	Recent     int    // events kept for /api/events
	AccessLogs bool   // log every HTTP request
}

// stats are counters exposed on /metrics.
type stats struct {
	events    atomic.Int64
	dropped   atomic.Int64
	junctions atomic.Int64
	sessions  atomic.Int64
}

// Server is the dashboard. It observes a session and fans its events out
// to websocket clients.
type Server struct {
	cfg Config
	app *fiber.App
	hub *hub.Hub
	log *slog.Logger

	mu     sync.RWMutex
	source Snapshotter
	runs   RunLister
	events []*protocol.Message
	seq    int64 // sequence number of events[0]

	stats stats
}

// NewServer creates a dashboard server.
func NewServer(cfg Config) *Server {
	if cfg.Recent <= 0 {
		cfg.Recent = DefaultRecent
	}
	s := &Server{
		cfg: cfg,
		hub: hub.New("events"),
		log: log.Component("web"),
	}
	s.hub.SetHandler(s.handleInbound)

	app := fiber.New(fiber.Config{
		AppName:               "mazerunner",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if cfg.AccessLogs {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", s.handleMetrics)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/events", s.handleEvents)
	api.Get("/history", s.handleHistory)
	api.Get("/path", s.handlePath)
	api.Get("/runs", s.handleRuns)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the event hub.
func (s *Server) Hub() *hub.Hub {
	return s.hub
}

// Track sets the session whose snapshot backs /api/status. Events from
// earlier sessions are discarded.
func (s *Server) Track(src Snapshotter) {
	s.mu.Lock()
	s.source = src
	s.seq += int64(len(s.events))
	s.events = nil
	s.mu.Unlock()
	s.stats.sessions.Add(1)
}

// SetRuns sets the run book served on /api/runs.
func (s *Server) SetRuns(runs RunLister) {
	s.mu.Lock()
	s.runs = runs
	s.mu.Unlock()
}

// Observe records a session event and broadcasts it. It implements
// maze.Observer and never blocks the control loop.
func (s *Server) Observe(e maze.Event) {
	msg, err := EventMessage(e)
	if err != nil {
		s.log.Warn("dropping event", "type", e.Type, "error", err)
		s.stats.dropped.Add(1)
		return
	}
	s.stats.events.Add(1)
	if e.Type == maze.EventDecision {
		s.stats.junctions.Add(1)
	}

	s.mu.Lock()
	s.events = append(s.events, msg)
	if over := len(s.events) - s.cfg.Recent; over > 0 {
		s.events = s.events[over:]
		s.seq += int64(over)
	}
	s.mu.Unlock()

	if err := s.hub.BroadcastMessage(msg); err != nil {
		s.log.Warn("broadcast failed", "type", e.Type, "error", err)
	}
}

var _ maze.Observer = (*Server)(nil)

// Status returns the tracked session's snapshot in wire form.
func (s *Server) Status() protocol.StatusData {
	s.mu.RLock()
	src := s.source
	s.mu.RUnlock()
	if src == nil {
		return protocol.StatusData{Phase: string(maze.PhaseIdle)}
	}
	return StatusData(src.Snapshot())
}

// Recent returns events with a sequence number of at least since, and the
// sequence number to pass next time.
func (s *Server) Recent(since int64) ([]*protocol.Message, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := since - s.seq
	if start < 0 {
		start = 0
	}
	if start > int64(len(s.events)) {
		start = int64(len(s.events))
	}
	out := make([]*protocol.Message, len(s.events)-int(start))
	copy(out, s.events[start:])
	return out, s.seq + int64(len(s.events))
}

// ListenAndServe listens on the configured address and serves until ctx
// is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	s.log.Info("dashboard listening", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- s.app.Listener(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	stopHub()
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
