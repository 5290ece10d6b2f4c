package maze

import "fmt"

// RunError reports a run that was aborted.
type RunError struct {
	Mode     Mode
	Junction int // junctions completed before the failure
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("maze: %s run aborted after %d junctions: %v", e.Mode, e.Junction, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
