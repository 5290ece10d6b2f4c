package sim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Heading is a compass direction on the maze grid. Y grows downwards.
type Heading int

const (
	North Heading = iota
	East
	South
	West
)

// Right returns the heading after a clockwise quarter turn.
func (h Heading) Right() Heading { return h.Turn(1) }

// Left returns the heading after a counter-clockwise quarter turn.
func (h Heading) Left() Heading { return h.Turn(-1) }

// Turn rotates by q quarter turns, clockwise positive.
func (h Heading) Turn(q int) Heading {
	return Heading(((int(h)+q)%4 + 4) % 4)
}

func (h Heading) String() string {
	switch h {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return fmt.Sprintf("Heading(%d)", int(h))
	}
}

// Point is a node position in grid units.
type Point struct {
	X, Y int
}

// Step returns the neighbouring point in direction h.
func (p Point) Step(h Heading) Point {
	switch h {
	case North:
		return Point{p.X, p.Y - 1}
	case East:
		return Point{p.X + 1, p.Y}
	case South:
		return Point{p.X, p.Y + 1}
	default:
		return Point{p.X - 1, p.Y}
	}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Maze is a line maze on a square grid. Every line segment joins two
// adjacent nodes.
//
// The text form puts nodes on even rows and columns and segments between
// them:
//
//	G-+-+
//	  |
//	S-+
//
// '+' or 'o' is a node, 'S' the start, 'G' the goal (drawn as a filled
// patch that lights every sensor), '-' and '|' are segments. The start
// node must have exactly one segment, which sets the initial heading.
// Lines beginning with '#' are comments; leading and trailing blank lines
// are ignored.
type Maze struct {
	Start        Point
	StartHeading Heading
	Goal         Point

	nodes map[Point]bool
	links map[Point][4]bool
}

func newMaze() *Maze {
	return &Maze{
		nodes: make(map[Point]bool),
		links: make(map[Point][4]bool),
	}
}

// HasNode reports whether p is a node.
func (m *Maze) HasNode(p Point) bool {
	return m.nodes[p]
}

// HasEdge reports whether a segment leaves p in direction h.
func (m *Maze) HasEdge(p Point, h Heading) bool {
	return m.links[p][h]
}

// Degree counts the segments at p.
func (m *Maze) Degree(p Point) int {
	n := 0
	for _, ok := range m.links[p] {
		if ok {
			n++
		}
	}
	return n
}

// Nodes returns the number of nodes.
func (m *Maze) Nodes() int {
	return len(m.nodes)
}

func (m *Maze) link(a Point, h Heading) {
	b := a.Step(h)
	la, lb := m.links[a], m.links[b]
	la[h] = true
	lb[h.Turn(2)] = true
	m.links[a], m.links[b] = la, lb
}

// ParseString parses a maze drawing.
func ParseString(s string) (*Maze, error) {
	return Parse(strings.NewReader(s))
}

// LoadFile parses the maze drawing in path.
func LoadFile(path string) (*Maze, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maze: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a maze drawing.
func Parse(r io.Reader) (*Maze, error) {
	var rows []string
	var lineNo []int

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, line)
		lineNo = append(lineNo, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read maze: %w", err)
	}
	for len(rows) > 0 && rows[0] == "" {
		rows, lineNo = rows[1:], lineNo[1:]
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows, lineNo = rows[:len(rows)-1], lineNo[:len(lineNo)-1]
	}

	m := newMaze()
	at := func(row, col int) byte {
		if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
			return ' '
		}
		return rows[row][col]
	}

	starts, goals := 0, 0
	for row, line := range rows {
		for col := 0; col < len(line); col++ {
			c := line[col]
			if c == ' ' {
				continue
			}
			bad := func(msg string) error {
				return &SyntaxError{Line: lineNo[row], Col: col + 1, Msg: msg}
			}
			nodeCell := row%2 == 0 && col%2 == 0

			switch c {
			case '+', 'o', 'S', 'G':
				if !nodeCell {
					return nil, bad(fmt.Sprintf("node %q off the node grid", c))
				}
				p := Point{col / 2, row / 2}
				m.nodes[p] = true
				if c == 'S' {
					m.Start = p
					starts++
				}
				if c == 'G' {
					m.Goal = p
					goals++
				}
			case '-':
				if row%2 != 0 || col%2 != 1 {
					return nil, bad("'-' must sit between two nodes on a row")
				}
				if !isNode(at(row, col-1)) || !isNode(at(row, col+1)) {
					return nil, bad("'-' does not join two nodes")
				}
			case '|':
				if row%2 != 1 || col%2 != 0 {
					return nil, bad("'|' must sit between two nodes in a column")
				}
				if !isNode(at(row-1, col)) || !isNode(at(row+1, col)) {
					return nil, bad("'|' does not join two nodes")
				}
			default:
				return nil, bad(fmt.Sprintf("unexpected %q", c))
			}
		}
	}

	for row, line := range rows {
		for col := 0; col < len(line); col++ {
			switch line[col] {
			case '-':
				m.link(Point{(col - 1) / 2, row / 2}, East)
			case '|':
				m.link(Point{col / 2, (row - 1) / 2}, South)
			}
		}
	}

	switch {
	case starts != 1:
		return nil, fmt.Errorf("%w: want one start, found %d", ErrInvalidMaze, starts)
	case goals != 1:
		return nil, fmt.Errorf("%w: want one goal, found %d", ErrInvalidMaze, goals)
	case m.Degree(m.Start) != 1:
		return nil, fmt.Errorf("%w: start %v must have exactly one segment", ErrInvalidMaze, m.Start)
	}
	for h := North; h <= West; h++ {
		if m.HasEdge(m.Start, h) {
			m.StartHeading = h
		}
	}
	return m, nil
}

func isNode(c byte) bool {
	return c == '+' || c == 'o' || c == 'S' || c == 'G'
}
