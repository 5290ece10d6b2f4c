package sensor

// Interpreter converts frames into readings. It keeps the last trusted line
// position so a lost line saturates toward the side it was last seen on.
// An Interpreter belongs to a single control loop.
type Interpreter struct {
	polarity Polarity
	last     int
}

// NewInterpreter creates an interpreter for the given line polarity.
func NewInterpreter(p Polarity) *Interpreter {
	return &Interpreter{polarity: p, last: Midpoint}
}

// Polarity returns the configured line polarity.
func (in *Interpreter) Polarity() Polarity {
	return in.polarity
}

// Reset forgets the last seen line position.
func (in *Interpreter) Reset() {
	in.last = Midpoint
}

// Interpret corrects polarity, then derives position and presence flags.
// Every frame is valid input: an all-dark frame reads as a lost line, an
// all-lit frame as a full branch.
func (in *Interpreter) Interpret(raw Frame) Reading {
	values := Correct(raw, in.polarity)
	pos := in.position(values)
	return Reading{
		Values:   values,
		Position: pos,
		Left:     values[ChanLeft] > PresenceThreshold,
		Center:   values[ChanCenter] > PresenceThreshold,
		Right:    values[ChanRight] > PresenceThreshold,
	}
}

// Correct applies polarity inversion uniformly to every channel.
func Correct(raw Frame, p Polarity) Frame {
	if p != LightLine {
		return raw
	}
	var out Frame
	for i, v := range raw {
		if v > MaxValue {
			v = MaxValue
		}
		out[i] = MaxValue - v
	}
	return out
}

// position is the weighted centroid of the corrected channels.
func (in *Interpreter) position(values Frame) int {
	onLine := false
	var avg, sum uint32
	for i, v := range values {
		if v > onLineLevel {
			onLine = true
		}
		if v > noiseFloor {
			avg += uint32(v) * uint32(i*MaxValue)
			sum += uint32(v)
		}
	}

	if !onLine {
		if in.last < Midpoint {
			return 0
		}
		return 2 * Midpoint
	}

	in.last = int(avg / sum)
	return in.last
}
