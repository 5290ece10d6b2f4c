// Package decision classifies junction geometry, picks a branch with a
// wall-following rule and actuates the chosen maneuver.
package decision

import (
	"fmt"
	"strings"
)

// Maneuver is one of the four discrete moves taken at a junction.
type Maneuver byte

const (
	Straight Maneuver = 'S'
	Left     Maneuver = 'L'
	Right    Maneuver = 'R'
	UTurn    Maneuver = 'U'
)

// Valid reports whether m is one of the four maneuvers.
func (m Maneuver) Valid() bool {
	switch m {
	case Straight, Left, Right, UTurn:
		return true
	}
	return false
}

// Byte returns the single-character symbol used in exported paths.
func (m Maneuver) Byte() byte {
	return byte(m)
}

func (m Maneuver) String() string {
	if m.Valid() {
		return string(rune(m))
	}
	return fmt.Sprintf("Maneuver(%d)", byte(m))
}

// Name returns a human readable name.
func (m Maneuver) Name() string {
	switch m {
	case Straight:
		return "straight"
	case Left:
		return "left"
	case Right:
		return "right"
	case UTurn:
		return "u-turn"
	default:
		return m.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Maneuver) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownManeuver, byte(m))
	}
	return []byte{byte(m)}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Maneuver) UnmarshalText(b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("%w: %q", ErrUnknownManeuver, b)
	}
	parsed, err := ParseManeuver(b[0])
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseManeuver converts a symbol ('S', 'L', 'R', 'U', any case).
func ParseManeuver(c byte) (Maneuver, error) {
	m := Maneuver(c &^ 0x20) // upper-case ASCII letters
	if c < 'A' || !m.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownManeuver, c)
	}
	return m, nil
}

// ParseManeuvers converts a flat symbol string like "SLURS".
// Whitespace is ignored.
func ParseManeuvers(s string) ([]Maneuver, error) {
	out := make([]Maneuver, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		m, err := ParseManeuver(c)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// FormatManeuvers renders maneuvers as a flat symbol string.
func FormatManeuvers(ms []Maneuver) string {
	var b strings.Builder
	b.Grow(len(ms))
	for _, m := range ms {
		b.WriteByte(m.Byte())
	}
	return b.String()
}
