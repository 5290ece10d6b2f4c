package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/teslashibe/go-mazerunner/pkg/robot"
)

// ActuationConfig holds the timed pivot constants. They encode the turning
// radius of the platform and are calibrated empirically.
type ActuationConfig struct {
	DecisionPause time.Duration // before any motion
	TurnSpeed     int           // pivot wheel speed magnitude
	TurnDuration  time.Duration // quarter turn; a U-turn runs twice as long
	Settle        time.Duration // stopped after the maneuver
}

// DefaultActuationConfig returns the constants for the reference platform.
func DefaultActuationConfig() ActuationConfig {
	return ActuationConfig{
		DecisionPause: 50 * time.Millisecond,
		TurnSpeed:     96,
		TurnDuration:  200 * time.Millisecond,
		Settle:        100 * time.Millisecond,
	}
}

// Actuator performs maneuvers as fixed timed pivots.
type Actuator struct {
	cfg   ActuationConfig
	drive robot.Drive
	clock robot.Clock
}

// NewActuator creates an actuator over the given drive and clock.
func NewActuator(cfg ActuationConfig, drive robot.Drive, clock robot.Clock) *Actuator {
	return &Actuator{cfg: cfg, drive: drive, clock: clock}
}

// Pivot returns the wheel speeds and duration for m. Straight has zero
// duration. U-turns pivot the same way as a right turn for twice as long.
func (a *Actuator) Pivot(m Maneuver) (left, right int, d time.Duration) {
	s := a.cfg.TurnSpeed
	switch m {
	case Right:
		return s, -s, a.cfg.TurnDuration
	case Left:
		return -s, s, a.cfg.TurnDuration
	case UTurn:
		return s, -s, 2 * a.cfg.TurnDuration
	default:
		return 0, 0, 0
	}
}

// Execute performs m and leaves the robot stopped. It blocks for the whole
// maneuver; there is no feedback and no mid-turn cancellation.
func (a *Actuator) Execute(ctx context.Context, m Maneuver) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownManeuver, byte(m))
	}

	a.clock.Sleep(ctx, a.cfg.DecisionPause)

	if left, right, d := a.Pivot(m); d > 0 {
		if err := robot.Actuate(ctx, a.drive, a.clock, left, right, d); err != nil {
			return fmt.Errorf("%s turn: %w", m.Name(), err)
		}
	}

	if err := robot.Stop(ctx, a.drive); err != nil {
		return fmt.Errorf("stop after %s: %w", m.Name(), err)
	}
	a.clock.Sleep(ctx, a.cfg.Settle)
	return nil
}
