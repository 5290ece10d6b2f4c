package maze

import (
	"fmt"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
	"github.com/teslashibe/go-mazerunner/pkg/steering"
)

// Mode is the kind of run in progress.
type Mode int

const (
	ModeExplore Mode = iota + 1
	ModeReplay
)

func (m Mode) String() string {
	switch m {
	case ModeExplore:
		return "explore"
	case ModeReplay:
		return "replay"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// RunState is everything the control loop carries from one cycle to the
// next. It is owned by the goroutine running the loop.
type RunState struct {
	Mode        Mode
	Rule        decision.Rule
	Interpreter *sensor.Interpreter
	PD          steering.PDController

	// Cursor walks the optimized path during replay; nil while exploring.
	Cursor *pathmem.Cursor

	// Junctions counts junctions handled in the current run.
	Junctions int

	// Last is the most recent junction sample.
	Last Sample
}

// NewRunState builds the state for cfg.
func NewRunState(cfg Config) *RunState {
	return &RunState{
		Rule:        cfg.Rule,
		Interpreter: sensor.NewInterpreter(cfg.Polarity),
		PD:          steering.NewPDController(cfg.Steering),
	}
}

// Reset prepares the state for a new run in mode.
func (s *RunState) Reset(mode Mode) {
	s.Mode = mode
	s.Interpreter.Reset()
	s.PD.Reset()
	s.Cursor = nil
	s.Junctions = 0
	s.Last = Sample{}
}
