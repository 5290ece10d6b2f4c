package maze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-mazerunner/internal/log"
	"github.com/teslashibe/go-mazerunner/pkg/decision"
	"github.com/teslashibe/go-mazerunner/pkg/export"
	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
	"github.com/teslashibe/go-mazerunner/pkg/robot"
)

// Phase is the coarse progress of a session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseExploring  Phase = "exploring"
	PhaseOptimizing Phase = "optimizing"
	PhaseReplaying  Phase = "replaying"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Option configures a Session.
type Option func(*Session)

// WithObserver adds an event observer.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, o)
	}
}

// WithExport writes the optimized path to w once it is computed.
func WithExport(w io.Writer) Option {
	return func(s *Session) {
		s.export = w
	}
}

// WithReplay enables or disables the replay run. Enabled by default.
func WithReplay(enabled bool) Option {
	return func(s *Session) {
		s.replay = enabled
	}
}

// WithBeforeReplay runs fn between exploration and replay, e.g. to put a
// simulated robot back on the start node.
func WithBeforeReplay(fn func(ctx context.Context) error) Option {
	return func(s *Session) {
		s.beforeReplay = fn
	}
}

// Result is the outcome of a completed session.
type Result struct {
	RunID    string              `json:"run_id"`
	History  []decision.Maneuver `json:"-"`
	Path     pathmem.Path        `json:"path"`
	Replay   *ReplayResult       `json:"replay,omitempty"`
	Duration time.Duration       `json:"duration"`
}

// Snapshot is a copy of session progress for readers on other goroutines.
type Snapshot struct {
	RunID     string             `json:"run_id"`
	Phase     Phase              `json:"phase"`
	Mode      Mode               `json:"mode,omitempty"`
	Rule      decision.Rule      `json:"rule"`
	Junctions int                `json:"junctions"`
	Last      *decision.Junction `json:"last_junction,omitempty"`
	Maneuver  decision.Maneuver  `json:"last_maneuver,omitempty"`
	History   string             `json:"history"`
	Path      string             `json:"path"`
	Error     string             `json:"error,omitempty"`
	Updated   time.Time          `json:"updated"`
}

// Session runs exploration, optimization and replay on one platform.
type Session struct {
	id     string
	cfg    Config
	runner *Runner
	state  *RunState
	log    *slog.Logger

	observers    observers
	export       io.Writer
	replay       bool
	beforeReplay func(ctx context.Context) error

	mu   sync.RWMutex
	snap Snapshot
}

// NewSession creates a session with a fresh run ID.
func NewSession(cfg Config, p robot.Platform, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		runner: NewRunner(cfg, p),
		state:  NewRunState(cfg),
		replay: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = log.Component("session").With("run_id", s.id)
	s.snap = Snapshot{RunID: s.id, Phase: PhaseIdle, Rule: cfg.Rule}

	s.runner.SetRunID(s.id)
	s.runner.SetObserver(ObserverFunc(s.observe))
	return s
}

// ID returns the run ID.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current progress.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// observe folds an event into the snapshot, then forwards it.
func (s *Session) observe(e Event) {
	s.mu.Lock()
	s.snap.Updated = e.Time
	s.snap.Mode = e.Mode
	switch e.Type {
	case EventStart:
		s.snap.Junctions = 0
	case EventJunction:
		s.snap.Last = e.Geometry
	case EventDecision:
		s.snap.Junctions = e.Junction
		s.snap.Maneuver = e.Maneuver
	case EventRecorded, EventGoal:
		s.snap.History = e.History
	case EventOptimized:
		s.snap.Path = e.Path
	case EventError:
		s.snap.Error = e.Error
	}
	s.mu.Unlock()

	s.observers.Observe(e)
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.snap.Phase = p
	s.snap.Updated = time.Now()
	s.mu.Unlock()
}

func (s *Session) failed(err error) error {
	s.mu.Lock()
	s.snap.Phase = PhaseFailed
	s.snap.Error = err.Error()
	s.mu.Unlock()
	return err
}

// Run explores the maze, optimizes the recorded decisions, exports the
// path and replays it. A path that still holds a U-turn after optimization
// cannot be replayed and fails the session.
func (s *Session) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{RunID: s.id}

	s.setPhase(PhaseExploring)
	h := pathmem.NewHistory(s.cfg.Capacity)
	if err := s.runner.Explore(ctx, s.state, h); err != nil {
		return res, s.failed(err)
	}
	res.History = h.Maneuvers()

	s.setPhase(PhaseOptimizing)
	path, err := pathmem.Optimize(res.History)
	res.Path = path
	s.observe(Event{
		Type:    EventOptimized,
		RunID:   s.id,
		Mode:    ModeExplore,
		Time:    time.Now(),
		History: h.String(),
		Path:    path.String(),
	})
	if err != nil {
		return res, s.failed(fmt.Errorf("optimize %s: %w", h, err))
	}
	s.log.Info("path optimized", "history", h.String(), "path", path.String())

	if s.export != nil {
		if err := export.WritePath(s.export, path); err != nil {
			return res, s.failed(err)
		}
	}

	if s.replay {
		s.setPhase(PhaseReplaying)
		if s.beforeReplay != nil {
			if err := s.beforeReplay(ctx); err != nil {
				return res, s.failed(fmt.Errorf("before replay: %w", err))
			}
		}
		rr, err := s.runner.Replay(ctx, s.state, path)
		if err != nil {
			return res, s.failed(err)
		}
		res.Replay = &rr
	}

	res.Duration = time.Since(start)
	s.setPhase(PhaseDone)
	s.observe(Event{Type: EventFinished, RunID: s.id, Mode: s.state.Mode, Time: time.Now(), Path: path.String()})
	return res, nil
}

// ReplayPath replays a path optimized by an earlier session, skipping
// exploration. The path must not contain a U-turn.
func (s *Session) ReplayPath(ctx context.Context, path pathmem.Path) (Result, error) {
	start := time.Now()
	res := Result{RunID: s.id, Path: path}

	for i, m := range path {
		if !m.Valid() || m == decision.UTurn {
			return res, s.failed(fmt.Errorf("%w: entry %d of %q", pathmem.ErrIrreducible, i, path))
		}
	}

	s.mu.Lock()
	s.snap.Path = path.String()
	s.mu.Unlock()
	s.setPhase(PhaseReplaying)

	rr, err := s.runner.Replay(ctx, s.state, path)
	if err != nil {
		return res, s.failed(err)
	}
	res.Replay = &rr
	res.Duration = time.Since(start)

	s.setPhase(PhaseDone)
	s.observe(Event{Type: EventFinished, RunID: s.id, Mode: ModeReplay, Time: time.Now(), Path: path.String()})
	return res, nil
}
