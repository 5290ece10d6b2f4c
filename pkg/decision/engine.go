package decision

import (
	"fmt"

	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

// Junction is the branch geometry seen at an intersection.
type Junction struct {
	Left   bool `json:"left"`
	Center bool `json:"center"`
	Right  bool `json:"right"`
}

// JunctionOf builds a Junction from a sensor reading.
func JunctionOf(r sensor.Reading) Junction {
	return Junction{Left: r.Left, Center: r.Center, Right: r.Right}
}

// DeadEnd reports whether no branch is present.
func (j Junction) DeadEnd() bool {
	return !j.Left && !j.Center && !j.Right
}

// Full reports whether every branch is present.
func (j Junction) Full() bool {
	return j.Left && j.Center && j.Right
}

// RightOnly reports a fork where the only way on is right.
func (j Junction) RightOnly() bool {
	return !j.Left && !j.Center && j.Right
}

// LeftOnly reports a fork where the only way on is left.
func (j Junction) LeftOnly() bool {
	return j.Left && !j.Center && !j.Right
}

func (j Junction) String() string {
	return fmt.Sprintf("%c%c%c", flag(j.Left, 'L'), flag(j.Center, 'C'), flag(j.Right, 'R'))
}

func flag(on bool, c byte) byte {
	if on {
		return c
	}
	return '-'
}

// Choose applies the wall-following priority.
func Choose(j Junction, rule Rule) Maneuver {
	if rule == LeftHand {
		switch {
		case j.Left:
			return Left
		case j.Center:
			return Straight
		case j.Right:
			return Right
		default:
			return UTurn
		}
	}
	switch {
	case j.Right:
		return Right
	case j.Center:
		return Straight
	case j.Left:
		return Left
	default:
		return UTurn
	}
}

// Decide chooses a maneuver during exploration. On top of the rule, a
// right-only fork always turns right, and a U-turn is replaced by a right
// turn when a right branch is in fact present.
func Decide(j Junction, rule Rule) Maneuver {
	m := Choose(j, rule)
	if j.RightOnly() {
		m = Right
	}
	return correct(m, j)
}

// correct replaces a U-turn with a right turn when the right branch exists.
func correct(m Maneuver, j Junction) Maneuver {
	if m == UTurn && j.Right {
		return Right
	}
	return m
}

// ForcedManeuver returns the move for a single-branch fork, which needs no
// memory to replay. ok is false for every other geometry.
func ForcedManeuver(j Junction) (m Maneuver, ok bool) {
	switch {
	case j.RightOnly():
		return Right, true
	case j.LeftOnly():
		return Left, true
	default:
		return 0, false
	}
}

// ReplayDecision picks the replay move: forced forks come from live
// sensing, anything else from the next stored entry. next is only called
// when a stored entry is needed.
func ReplayDecision(j Junction, next func() (Maneuver, bool)) (m Maneuver, consumed, ok bool) {
	if forced, isForced := ForcedManeuver(j); isForced {
		return forced, false, true
	}
	m, ok = next()
	if !ok {
		return 0, false, false
	}
	return correct(m, j), true, true
}

// ShouldRecord reports whether a maneuver taken at j belongs in the
// decision history. Single-branch forks are left out because replay can
// re-derive them from the geometry.
func ShouldRecord(j Junction, m Maneuver) bool {
	switch {
	case m == UTurn:
		return true
	case j.Center && (j.Left || j.Right):
		return true
	case j.Left && j.Right && (m == Left || m == Right):
		return true
	default:
		return false
	}
}
