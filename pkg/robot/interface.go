// Package robot defines the hardware collaborators the maze solver drives:
// a calibrated line sensor, a differential drive and a blocking clock.
//
// Interfaces are kept small so each component depends only on what it uses.
// HTTPController implements all of them against the robot daemon; pkg/sim
// implements them in process.
package robot

import (
	"context"
	"time"

	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

// LineSensor returns one calibrated read of the line sensor array.
type LineSensor interface {
	ReadLine(ctx context.Context) (sensor.Frame, error)
}

// Drive sets signed wheel speeds. Speeds stay in effect until changed.
type Drive interface {
	SetSpeeds(ctx context.Context, left, right int) error
}

// Clock blocks the control loop for a fixed duration.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration)
}

// Platform is everything the control loop needs from the robot.
type Platform interface {
	LineSensor
	Drive
	Clock
}

// SystemClock sleeps on wall time.
type SystemClock struct{}

// Sleep blocks for d. A cancelled context does not shorten the wait: timed
// actuation always runs to completion.
func (SystemClock) Sleep(_ context.Context, d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

var _ Platform = (*HTTPController)(nil)
