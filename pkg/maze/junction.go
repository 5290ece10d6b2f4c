package maze

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
	"github.com/teslashibe/go-mazerunner/pkg/robot"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

// Sample is the classified geometry of one junction.
type Sample struct {
	// Trigger is the reading that ended the segment.
	Trigger sensor.Reading
	// Probe is read after the short crawl; it decides Left and Right.
	Probe sensor.Reading
	// Aligned is read once the axle is over the junction; it decides Center.
	Aligned sensor.Reading

	Junction decision.Junction
	Goal     bool
}

// sample crawls over the junction and classifies it. The sensor bar trails
// behind the branches when the segment ends, so the sides are read after a
// short advance and the straight-on line once the robot has stopped over
// the junction. The goal patch lights every channel on both reads.
func (r *Runner) sample(ctx context.Context, st *RunState, trigger sensor.Reading) (Sample, error) {
	c := r.cfg.Crawl
	p := r.platform

	if err := robot.Hold(ctx, p, p, c.ProbeSpeed, c.ProbeSpeed, c.ProbeDuration); err != nil {
		return Sample{}, fmt.Errorf("probe crawl: %w", err)
	}
	probe, err := r.read(ctx, st)
	if err != nil {
		return Sample{}, err
	}

	if err := robot.Hold(ctx, p, p, c.AlignSpeed, c.AlignSpeed, c.AlignDuration); err != nil {
		return Sample{}, fmt.Errorf("align crawl: %w", err)
	}
	if err := robot.Stop(ctx, p); err != nil {
		return Sample{}, fmt.Errorf("stop over junction: %w", err)
	}
	p.Sleep(ctx, c.Settle)

	aligned, err := r.read(ctx, st)
	if err != nil {
		return Sample{}, err
	}

	j := decision.Junction{
		Left:   probe.Left,
		Center: aligned.CenterWide(),
		Right:  probe.Right,
	}
	return Sample{
		Trigger:  trigger,
		Probe:    probe,
		Aligned:  aligned,
		Junction: j,
		Goal:     j.Full() && aligned.Full(),
	}, nil
}

func (r *Runner) read(ctx context.Context, st *RunState) (sensor.Reading, error) {
	frame, err := r.platform.ReadLine(ctx)
	if err != nil {
		return sensor.Reading{}, fmt.Errorf("read line: %w", err)
	}
	return st.Interpreter.Interpret(frame), nil
}
