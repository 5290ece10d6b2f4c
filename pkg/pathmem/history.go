// Package pathmem records exploration decisions and reduces them to a
// backtrack-free path for the replay run.
package pathmem

import (
	"fmt"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
)

// DefaultCapacity is the history bound of the reference firmware.
const DefaultCapacity = 100

// History is the append-only record of meaningful decisions made during
// exploration. It is frozen once the goal is reached.
type History struct {
	entries  []decision.Maneuver
	capacity int
	frozen   bool
}

// NewHistory creates an empty history. A capacity below one uses
// DefaultCapacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{
		entries:  make([]decision.Maneuver, 0, capacity),
		capacity: capacity,
	}
}

// Append records m. It fails once the history is frozen or full.
func (h *History) Append(m decision.Maneuver) error {
	if h.frozen {
		return ErrFrozen
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %d", decision.ErrUnknownManeuver, byte(m))
	}
	if len(h.entries) >= h.capacity {
		return fmt.Errorf("%w: %d entries", ErrCapacityExceeded, h.capacity)
	}
	h.entries = append(h.entries, m)
	return nil
}

// Freeze marks the history final.
func (h *History) Freeze() { h.frozen = true }

// Frozen reports whether Freeze was called.
func (h *History) Frozen() bool { return h.frozen }

// Len returns the number of recorded decisions.
func (h *History) Len() int { return len(h.entries) }

// Cap returns the capacity bound.
func (h *History) Cap() int { return h.capacity }

// Maneuvers returns a copy of the recorded decisions.
func (h *History) Maneuvers() []decision.Maneuver {
	out := make([]decision.Maneuver, len(h.entries))
	copy(out, h.entries)
	return out
}

// String renders the history as a symbol string, e.g. "SSLUR".
func (h *History) String() string {
	return decision.FormatManeuvers(h.entries)
}
