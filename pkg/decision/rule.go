package decision

import (
	"fmt"
	"strings"
)

// Rule is the wall-following priority used during exploration.
type Rule int

const (
	// RightHand prefers right, then straight, then left.
	RightHand Rule = iota
	// LeftHand prefers left, then straight, then right.
	LeftHand
)

func (r Rule) String() string {
	switch r {
	case RightHand:
		return "right"
	case LeftHand:
		return "left"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// ParseRule accepts "right", "right-hand", "left", "left-hand" (any case).
func ParseRule(value string) (Rule, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimSuffix(strings.TrimSuffix(v, "-hand"), "hand")
	switch strings.TrimSpace(v) {
	case "right", "r":
		return RightHand, nil
	case "left", "l":
		return LeftHand, nil
	default:
		return RightHand, fmt.Errorf("%w: %q", ErrUnknownRule, value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rule) UnmarshalText(b []byte) error {
	parsed, err := ParseRule(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
