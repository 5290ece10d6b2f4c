package steering

import "time"

// Config holds the tunable parameters for segment following.
type Config struct {
	// PD gains in fixed point: u = (Kp*dev + Kd*(dev-last)) / Scale.
	Kp    int
	Kd    int
	Scale int

	// Nominal forward wheel speed while tracking.
	BaseSpeed int

	// Slowest a wheel may go, as a percentage of BaseSpeed.
	MinSpeedPercent int

	// The center-adjacent channels must both drop below this for a lost
	// center line to count as a junction.
	LowThreshold uint16

	// Wait between control cycles.
	CyclePeriod time.Duration
}

// DefaultConfig returns the gains tuned on the competition maze.
func DefaultConfig() Config {
	return Config{
		Kp:              64,  // 0.25
		Kd:              256, // 1.0
		Scale:           256,
		BaseSpeed:       60,
		MinSpeedPercent: 70,
		LowThreshold:    600,
		CyclePeriod:     2 * time.Millisecond,
	}
}

// CautiousConfig trades speed for stability on worn or glossy tracks.
func CautiousConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseSpeed = 40
	cfg.Kd = 320 // more damping
	return cfg
}

// MinSpeed returns the lower wheel speed bound.
func (c Config) MinSpeed() int {
	return c.BaseSpeed * c.MinSpeedPercent / 100
}
