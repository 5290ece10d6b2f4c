package decision

import "errors"

var (
	// ErrUnknownManeuver is returned when parsing a symbol that is not S, L, R or U.
	ErrUnknownManeuver = errors.New("decision: unknown maneuver")

	// ErrUnknownRule is returned when parsing an unrecognised wall-following rule.
	ErrUnknownRule = errors.New("decision: unknown rule")
)
