package pathmem

import "errors"

var (
	// ErrCapacityExceeded is returned when a run records more decisions than
	// the history can hold. It aborts the run.
	ErrCapacityExceeded = errors.New("pathmem: decision history capacity exceeded")

	// ErrFrozen is returned when appending to a history after the goal.
	ErrFrozen = errors.New("pathmem: history is frozen")

	// ErrIrreducible is returned when a U-turn remains that no rewrite rule
	// can remove.
	ErrIrreducible = errors.New("pathmem: path contains an irreducible u-turn")
)
