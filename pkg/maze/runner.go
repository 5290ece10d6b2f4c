// Package maze runs the solver: an exploration run that follows a wall
// rule and records its decisions, and a replay run that drives the
// optimized path.
package maze

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teslashibe/go-mazerunner/internal/log"
	"github.com/teslashibe/go-mazerunner/pkg/decision"
	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
	"github.com/teslashibe/go-mazerunner/pkg/robot"
	"github.com/teslashibe/go-mazerunner/pkg/steering"
)

// Runner executes runs against a platform. It is not safe for concurrent
// use; one run at a time.
type Runner struct {
	cfg      Config
	platform robot.Platform
	follower *steering.Follower
	actuator *decision.Actuator
	observer Observer
	log      *slog.Logger

	runID string
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg Config, p robot.Platform) *Runner {
	return &Runner{
		cfg:      cfg,
		platform: p,
		follower: steering.NewFollower(cfg.Steering, p, p, p),
		actuator: decision.NewActuator(cfg.Actuation, p, p),
		log:      log.Component("maze"),
	}
}

// Config returns the run configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// SetObserver routes events to o.
func (r *Runner) SetObserver(o Observer) {
	r.observer = o
}

// SetRunID tags emitted events.
func (r *Runner) SetRunID(id string) {
	r.runID = id
}

func (r *Runner) emit(st *RunState, e Event) {
	if r.observer == nil {
		return
	}
	e.RunID = r.runID
	e.Mode = st.Mode
	e.Time = time.Now()
	r.observer.Observe(e)
}

// Step follows the line to the next junction and samples it.
func (r *Runner) Step(ctx context.Context, st *RunState) (Sample, error) {
	trigger, err := r.follower.FollowSegment(ctx, &st.PD, st.Interpreter)
	if err != nil {
		return Sample{}, err
	}
	s, err := r.sample(ctx, st, trigger)
	if err != nil {
		return Sample{}, err
	}
	st.Last = s
	return s, nil
}

func (r *Runner) countdown(ctx context.Context, st *RunState) error {
	if err := robot.Stop(ctx, r.platform); err != nil {
		return err
	}
	r.log.Info("starting", "mode", st.Mode, "rule", st.Rule, "delay", r.cfg.StartDelay)
	r.emit(st, Event{Type: EventStart})
	r.platform.Sleep(ctx, r.cfg.StartDelay)
	return nil
}

// fail stops the wheels and wraps err with the run position.
func (r *Runner) fail(ctx context.Context, st *RunState, err error) error {
	if stopErr := robot.Stop(context.WithoutCancel(ctx), r.platform); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	if errors.Is(err, pathmem.ErrCapacityExceeded) {
		r.log.Error("decision history full", "mode", st.Mode, "junctions", st.Junctions, "error", err)
	} else {
		r.log.Warn("run aborted", "mode", st.Mode, "junctions", st.Junctions, "error", err)
	}
	r.emit(st, Event{Type: EventError, Junction: st.Junctions, Error: err.Error()})
	return &RunError{Mode: st.Mode, Junction: st.Junctions, Err: err}
}

// Explore runs the wall-following search until the goal, recording every
// meaningful decision into h. h is frozen on success.
//
// ctx is checked at each junction; a run is otherwise never interrupted.
// A maze with no reachable goal keeps the robot exploring.
func (r *Runner) Explore(ctx context.Context, st *RunState, h *pathmem.History) error {
	st.Reset(ModeExplore)
	if err := r.countdown(ctx, st); err != nil {
		return r.fail(ctx, st, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, st, err)
		}

		s, err := r.Step(ctx, st)
		if err != nil {
			return r.fail(ctx, st, err)
		}
		geometry := s.Junction
		r.emit(st, Event{Type: EventJunction, Junction: st.Junctions, Geometry: &geometry})

		if s.Goal {
			h.Freeze()
			r.log.Info("goal reached", "junctions", st.Junctions, "history", h.String())
			r.emit(st, Event{Type: EventGoal, Junction: st.Junctions, Goal: true, History: h.String()})
			return robot.Stop(ctx, r.platform)
		}

		m := decision.Decide(s.Junction, st.Rule)
		if err := r.actuator.Execute(ctx, m); err != nil {
			return r.fail(ctx, st, err)
		}
		st.Junctions++

		recorded := decision.ShouldRecord(s.Junction, m)
		r.log.Info("junction", "n", st.Junctions, "geometry", s.Junction, "maneuver", m, "recorded", recorded)
		r.emit(st, Event{Type: EventDecision, Junction: st.Junctions, Geometry: &geometry, Maneuver: m})

		if recorded {
			if err := h.Append(m); err != nil {
				return r.fail(ctx, st, err)
			}
			r.emit(st, Event{Type: EventRecorded, Junction: st.Junctions, Maneuver: m, History: h.String()})
		}
	}
}

// ReplayResult summarises a replay run.
type ReplayResult struct {
	Junctions int  `json:"junctions"`
	Consumed  int  `json:"consumed"`
	Goal      bool `json:"goal"`
}

// Replay drives path from the start. Forced single-branch forks come from
// live sensing; every other junction takes the next path entry. The run
// ends successfully at the goal or when the path is used up, whichever
// comes first.
func (r *Runner) Replay(ctx context.Context, st *RunState, path pathmem.Path) (ReplayResult, error) {
	st.Reset(ModeReplay)
	st.Cursor = pathmem.NewCursor(path)
	if err := r.countdown(ctx, st); err != nil {
		return ReplayResult{}, r.fail(ctx, st, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return ReplayResult{}, r.fail(ctx, st, err)
		}

		s, err := r.Step(ctx, st)
		if err != nil {
			return ReplayResult{}, r.fail(ctx, st, err)
		}
		geometry := s.Junction
		r.emit(st, Event{Type: EventJunction, Junction: st.Junctions, Geometry: &geometry})

		if s.Goal || st.Cursor.Done() {
			res := ReplayResult{Junctions: st.Junctions, Consumed: st.Cursor.Consumed(), Goal: s.Goal}
			r.log.Info("replay finished", "goal", res.Goal, "consumed", res.Consumed, "junctions", res.Junctions)
			r.emit(st, Event{Type: EventReplayEnd, Junction: st.Junctions, Goal: s.Goal, Path: path.String()})
			return res, robot.Stop(ctx, r.platform)
		}

		m, consumed, _ := decision.ReplayDecision(s.Junction, st.Cursor.Next)
		if err := r.actuator.Execute(ctx, m); err != nil {
			return ReplayResult{}, r.fail(ctx, st, err)
		}
		st.Junctions++

		r.log.Info("junction", "n", st.Junctions, "geometry", s.Junction, "maneuver", m, "from_path", consumed)
		r.emit(st, Event{Type: EventDecision, Junction: st.Junctions, Geometry: &geometry, Maneuver: m, Consumed: consumed})
	}
}
