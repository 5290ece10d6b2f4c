// Package steering keeps the robot centered on a line segment and detects
// arrival at a junction.
package steering

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-mazerunner/internal/log"
	"github.com/teslashibe/go-mazerunner/pkg/robot"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

// Status is the follower state.
type Status int

const (
	Tracking Status = iota
	AtJunction
)

func (s Status) String() string {
	switch s {
	case Tracking:
		return "TRACKING"
	case AtJunction:
		return "AT_JUNCTION"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Follower runs the TRACKING loop until a junction is detected.
type Follower struct {
	cfg    Config
	sensor robot.LineSensor
	drive  robot.Drive
	clock  robot.Clock
	log    *slog.Logger

	status Status
	cycles int
}

// NewFollower creates a follower over the given hardware.
func NewFollower(cfg Config, ls robot.LineSensor, drive robot.Drive, clock robot.Clock) *Follower {
	return &Follower{
		cfg:    cfg,
		sensor: ls,
		drive:  drive,
		clock:  clock,
		log:    log.Component("steering"),
	}
}

// Config returns the follower configuration.
func (f *Follower) Config() Config {
	return f.cfg
}

// Status returns the current state.
func (f *Follower) Status() Status {
	return f.status
}

// Cycles returns the number of control cycles in the last segment.
func (f *Follower) Cycles() int {
	return f.cycles
}

// FollowSegment steers along the line until a junction appears and returns
// the reading that triggered the hand-off. The wheels are left running at
// the last commanded speeds; the caller takes over from there.
//
// ctx is only checked before the segment starts. Once tracking, the loop
// runs until the line geometry ends it or the hardware fails.
func (f *Follower) FollowSegment(ctx context.Context, pd *PDController, in *sensor.Interpreter) (sensor.Reading, error) {
	if err := ctx.Err(); err != nil {
		return sensor.Reading{}, err
	}

	pd.Reset()
	f.status = Tracking
	f.cycles = 0
	base, min := f.cfg.BaseSpeed, f.cfg.MinSpeed()

	for {
		frame, err := f.sensor.ReadLine(ctx)
		if err != nil {
			return sensor.Reading{}, fmt.Errorf("read line: %w", err)
		}
		r := in.Interpret(frame)

		u := pd.Update(r.Position)
		left, right := WheelSpeeds(base, min, u)
		if err := f.drive.SetSpeeds(ctx, left, right); err != nil {
			return sensor.Reading{}, fmt.Errorf("set speeds: %w", err)
		}
		f.cycles++
		f.log.Debug("cycle", "pos", r.Position, "u", u, "left", left, "right", right)

		if f.junction(r) {
			f.status = AtJunction
			return r, nil
		}
		f.clock.Sleep(ctx, f.cfg.CyclePeriod)
	}
}

// junction reports whether tracking should hand off: the center line is
// gone and its neighbours are dim, or a side branch has appeared.
func (f *Follower) junction(r sensor.Reading) bool {
	if !r.Center &&
		r.Values[sensor.ChanCenterLeft] < f.cfg.LowThreshold &&
		r.Values[sensor.ChanCenterRight] < f.cfg.LowThreshold {
		return true
	}
	return r.Left || r.Right
}
