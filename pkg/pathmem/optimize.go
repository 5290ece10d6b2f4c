package pathmem

import (
	"fmt"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
)

type triplet struct {
	before, after decision.Maneuver
}

// rewrites maps (before, after) around a U-turn to the single equivalent
// maneuver.
var rewrites = map[triplet]decision.Maneuver{
	{decision.Straight, decision.Left}:     decision.Right,
	{decision.Straight, decision.Right}:    decision.Left,
	{decision.Left, decision.Straight}:     decision.Right,
	{decision.Right, decision.Straight}:    decision.Left,
	{decision.Left, decision.Left}:         decision.Straight,
	{decision.Right, decision.Right}:       decision.Straight,
	{decision.Right, decision.Left}:        decision.UTurn,
	{decision.Left, decision.Right}:        decision.UTurn,
	{decision.Straight, decision.Straight}: decision.UTurn,
}

// Rewrite returns the replacement for the triplet (a, U, b).
func Rewrite(a, b decision.Maneuver) (decision.Maneuver, bool) {
	m, ok := rewrites[triplet{a, b}]
	return m, ok
}

// Reduce performs one left-to-right pass. A matched triplet is replaced by
// its rewrite and the scan skips all three entries; anything else is
// copied. The input is never modified. n counts the rewrites applied.
func Reduce(in []decision.Maneuver) (out []decision.Maneuver, n int) {
	out = make([]decision.Maneuver, 0, len(in))
	for i := 0; i < len(in); {
		if i+2 < len(in) && in[i+1] == decision.UTurn {
			if m, ok := Rewrite(in[i], in[i+2]); ok {
				out = append(out, m)
				i += 3
				n++
				continue
			}
		}
		out = append(out, in[i])
		i++
	}
	return out, n
}

// Optimize reduces in until no U-turn remains. If a pass leaves a U-turn
// but rewrites nothing, the partial result is returned with ErrIrreducible.
func Optimize(in []decision.Maneuver) (Path, error) {
	cur := make([]decision.Maneuver, len(in))
	copy(cur, in)

	for pass := 1; ; pass++ {
		u := countUTurns(cur)
		if u == 0 {
			return Path(cur), nil
		}
		next, n := Reduce(cur)
		if n == 0 {
			return Path(cur), fmt.Errorf("%w: %d left after %d passes in %q",
				ErrIrreducible, u, pass-1, decision.FormatManeuvers(cur))
		}
		cur = next
	}
}

func countUTurns(ms []decision.Maneuver) int {
	n := 0
	for _, m := range ms {
		if m == decision.UTurn {
			n++
		}
	}
	return n
}
