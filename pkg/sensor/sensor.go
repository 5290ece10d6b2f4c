// Package sensor interprets calibrated readings from the five-element line
// sensor array: polarity correction, a continuous line-position estimate and
// the left/center/right presence flags used to classify junctions.
package sensor

import (
	"fmt"
	"strings"
)

// Array geometry and scale.
const (
	// Count is the number of line sensors, ordered left to right.
	Count = 5

	// MaxValue is the top of the calibrated reading scale.
	MaxValue = 1000

	// Midpoint is the line position reported when the line sits under the
	// center sensor. Positions span 0 to 2*Midpoint.
	Midpoint = (Count - 1) * MaxValue / 2

	// PresenceThreshold is the level a channel must exceed to count as
	// seeing the line.
	PresenceThreshold = 700

	// onLineLevel is the level any channel must exceed for the position
	// estimate to trust the frame.
	onLineLevel = 200

	// noiseFloor excludes weak readings from the weighted average.
	noiseFloor = 50
)

// Channel indices.
const (
	ChanLeft        = 0
	ChanCenterLeft  = 1
	ChanCenter      = 2
	ChanCenterRight = 3
	ChanRight       = 4
)

// Frame is one calibrated read of the array, 0..MaxValue per channel.
type Frame [Count]uint16

// Polarity selects which line color is being followed.
type Polarity int

const (
	// DarkLine follows a black line on a light floor.
	DarkLine Polarity = iota
	// LightLine follows a white line on a dark floor.
	LightLine
)

func (p Polarity) String() string {
	switch p {
	case DarkLine:
		return "black"
	case LightLine:
		return "white"
	default:
		return fmt.Sprintf("Polarity(%d)", int(p))
	}
}

// ParsePolarity converts "black"/"dark" or "white"/"light" into a Polarity.
func ParsePolarity(value string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "black", "dark":
		return DarkLine, nil
	case "white", "light":
		return LightLine, nil
	default:
		return DarkLine, fmt.Errorf("unknown line polarity %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Polarity) UnmarshalText(b []byte) error {
	parsed, err := ParsePolarity(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Reading is the interpreted form of a Frame for one control cycle.
type Reading struct {
	Values   Frame // polarity-corrected
	Position int   // 0..2*Midpoint
	Left     bool
	Center   bool
	Right    bool
}

// Deviation returns the signed distance of the line from center.
func (r Reading) Deviation() int {
	return r.Position - Midpoint
}

// CenterWide reports whether any of the three middle channels sees the line.
// Used after the alignment crawl, where a narrow line may sit between
// sensors.
func (r Reading) CenterWide() bool {
	return r.Center ||
		r.Values[ChanCenterLeft] > PresenceThreshold ||
		r.Values[ChanCenterRight] > PresenceThreshold
}

// Full reports whether all three presence flags are set.
func (r Reading) Full() bool {
	return r.Left && r.Center && r.Right
}

func (r Reading) String() string {
	return fmt.Sprintf("%d%d%d pos=%d %v", b2i(r.Left), b2i(r.Center), b2i(r.Right), r.Position, r.Values)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
