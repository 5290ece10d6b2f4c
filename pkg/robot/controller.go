package robot

import (
	"context"
	"fmt"
	"time"
)

// MaxSpeed is the largest wheel speed magnitude the motor driver accepts.
const MaxSpeed = 400

// clamp restricts v to the range [min, max].
func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampSpeed limits a wheel speed to the driver range.
func ClampSpeed(v int) int {
	return clamp(v, -MaxSpeed, MaxSpeed)
}

// CheckSpeeds validates a speed pair against the driver range.
func CheckSpeeds(left, right int) error {
	if left < -MaxSpeed || left > MaxSpeed || right < -MaxSpeed || right > MaxSpeed {
		return fmt.Errorf("%w: (%d, %d)", ErrSpeedOutOfRange, left, right)
	}
	return nil
}

// Actuate runs the wheels at (left, right) for d, then stops them.
// The stop is issued even if starting the motion failed part way, so the
// robot never keeps driving after a timed command.
func Actuate(ctx context.Context, drive Drive, clock Clock, left, right int, d time.Duration) (err error) {
	defer func() {
		// Use a fresh context: the stop must go out even after cancellation.
		if stopErr := drive.SetSpeeds(context.WithoutCancel(ctx), 0, 0); err == nil {
			err = stopErr
		}
	}()

	if err := drive.SetSpeeds(ctx, left, right); err != nil {
		return err
	}
	clock.Sleep(ctx, d)
	return nil
}

// Hold sets (left, right) and blocks for d without stopping afterwards.
// Used for crawls that flow straight into the next command.
func Hold(ctx context.Context, drive Drive, clock Clock, left, right int, d time.Duration) error {
	if err := drive.SetSpeeds(ctx, left, right); err != nil {
		return err
	}
	clock.Sleep(ctx, d)
	return nil
}

// Stop halts both wheels.
func Stop(ctx context.Context, drive Drive) error {
	return drive.SetSpeeds(ctx, 0, 0)
}
