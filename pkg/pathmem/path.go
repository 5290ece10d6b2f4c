package pathmem

import "github.com/teslashibe/go-mazerunner/pkg/decision"

// Path is an optimized, read-only decision sequence.
type Path []decision.Maneuver

// ParsePath reads a path from its symbol form.
func ParsePath(s string) (Path, error) {
	ms, err := decision.ParseManeuvers(s)
	if err != nil {
		return nil, err
	}
	return Path(ms), nil
}

func (p Path) String() string {
	return decision.FormatManeuvers(p)
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(b []byte) error {
	parsed, err := ParsePath(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Cursor walks a Path during replay.
type Cursor struct {
	path Path
	pos  int
}

// NewCursor positions a cursor at the start of p.
func NewCursor(p Path) *Cursor {
	return &Cursor{path: p}
}

// Next returns the next entry and advances. ok is false at the end.
func (c *Cursor) Next() (m decision.Maneuver, ok bool) {
	if c.pos >= len(c.path) {
		return 0, false
	}
	m = c.path[c.pos]
	c.pos++
	return m, true
}

// Done reports whether every entry has been consumed.
func (c *Cursor) Done() bool { return c.pos >= len(c.path) }

// Consumed returns how many entries Next has handed out.
func (c *Cursor) Consumed() int { return c.pos }

// Remaining returns how many entries are left.
func (c *Cursor) Remaining() int { return len(c.path) - c.pos }
