package steering

import "github.com/teslashibe/go-mazerunner/pkg/sensor"

// PDController is the fixed-point proportional-derivative steering law.
// Its only state is the previous cycle's deviation.
type PDController struct {
	Kp    int
	Kd    int
	Scale int

	lastDeviation int
}

// NewPDController creates a controller from the config gains.
func NewPDController(cfg Config) PDController {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return PDController{Kp: cfg.Kp, Kd: cfg.Kd, Scale: scale}
}

// Reset clears the derivative memory.
func (c *PDController) Reset() {
	c.lastDeviation = 0
}

// LastDeviation returns the deviation seen on the previous cycle.
func (c *PDController) LastDeviation() int {
	return c.lastDeviation
}

// Update returns the correction for a line position and records the
// deviation for the next derivative term.
func (c *PDController) Update(position int) int {
	deviation := position - sensor.Midpoint
	u := deviation*c.Kp/c.Scale + (deviation-c.lastDeviation)*c.Kd/c.Scale
	c.lastDeviation = deviation
	return u
}

// WheelSpeeds turns a correction into left/right targets. Each wheel is
// clamped to [min, base] so tracking only ever slows a wheel.
func WheelSpeeds(base, min, u int) (left, right int) {
	return clamp(base+u, min, base), clamp(base-u, min, base)
}

// clamp limits a value to a range.
func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
