package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMaze is returned for mazes that cannot be driven.
	ErrInvalidMaze = errors.New("sim: invalid maze")

	// ErrStepLimit is returned by ReadLine once the configured read budget
	// is spent. It stands in for an operator picking the robot up.
	ErrStepLimit = errors.New("sim: step limit reached")
)

// SyntaxError reports a malformed maze drawing.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sim: maze line %d col %d: %s", e.Line, e.Col, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrInvalidMaze
}
