// Package sim is an in-process line maze for running the solver without
// hardware. It implements the robot interfaces with a simple kinematic
// model: the robot rides the drawn line, wheel speed differences drift it
// sideways or pivot it about the axle, and the sensor bar sits a fixed
// distance ahead of the axle.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/teslashibe/go-mazerunner/pkg/robot"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

// Config describes the simulated track and platform. Distances are in the
// same units as wheel speed: a wheel at speed v covers v units per second.
type Config struct {
	EdgeLength   float64 // between adjacent nodes
	SensorLead   float64 // sensor bar ahead of the axle
	CrossbarHalf float64 // side branches are seen within this of a node
	LineOverhang float64 // a line that ends runs this far past its node
	GoalRadius   float64 // half size of the goal patch
	SnapRadius   float64 // a pivot this close to a node turns onto it

	// QuarterTurn is the (left-right)*milliseconds product of a 90 degree
	// pivot.
	QuarterTurn float64

	// SteerGain is the lateral shift per (left-right)*millisecond while
	// driving forward. Drift is the lateral shift per unit travelled.
	SteerGain float64
	Drift     float64

	// InitialOffset is the lateral line offset at the start, positive
	// with the line to the right of the bar center.
	InitialOffset float64

	Polarity sensor.Polarity

	// MaxReads bounds ReadLine calls per run; 0 means unlimited.
	MaxReads int
}

// DefaultConfig matches the reference platform's turn and crawl timings.
func DefaultConfig() Config {
	return Config{
		EdgeLength:   30,
		SensorLead:   6,
		CrossbarHalf: 1.5,
		LineOverhang: 0.5,
		GoalRadius:   8,
		SnapRadius:   4,
		QuarterTurn:  192 * 200,
		SteerGain:    0.0005,
		Polarity:     sensor.DarkLine,
		MaxReads:     500000,
	}
}

// Pose locates the axle: Along units from Node in direction Heading, and
// Lateral units off the line.
type Pose struct {
	Node    Point
	Heading Heading
	Along   float64
	Lateral float64
	Lost    bool
}

// channel offsets across the sensor bar, left to right
var channelX = [sensor.Count]float64{-4, -1, 0, 1, 4}

// Simulator drives a robot around a Maze.
type Simulator struct {
	mu   sync.Mutex
	maze *Maze
	cfg  Config

	pose        Pose
	left, right int
	spin        float64
	elapsed     time.Duration
	reads       int
	commands    int
}

// New places a robot at the maze start.
func New(m *Maze, cfg Config) *Simulator {
	s := &Simulator{maze: m, cfg: cfg}
	s.reset()
	return s
}

var _ robot.Platform = (*Simulator)(nil)

// Maze returns the simulated maze.
func (s *Simulator) Maze() *Maze {
	return s.maze
}

// Reset puts the robot back on the start node, stopped, and clears the
// counters. It is the operator carrying the robot back for another run.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Simulator) reset() {
	s.pose = Pose{
		Node:    s.maze.Start,
		Heading: s.maze.StartHeading,
		Lateral: s.cfg.InitialOffset,
	}
	s.left, s.right = 0, 0
	s.spin = 0
	s.elapsed = 0
	s.reads = 0
	s.commands = 0
}

// Pose returns the current axle pose.
func (s *Simulator) Pose() Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	return s.pose
}

// AtGoal reports whether the axle is on the goal patch.
func (s *Simulator) AtGoal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	node, dist, ok := s.nearestNode(s.pose.Along)
	return ok && node == s.maze.Goal && dist <= s.cfg.GoalRadius
}

// Elapsed returns simulated time since the last reset.
func (s *Simulator) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Reads returns the number of ReadLine calls since the last reset.
func (s *Simulator) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Commands returns the number of SetSpeeds calls since the last reset.
func (s *Simulator) Commands() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commands
}

// Speeds returns the last commanded wheel speeds.
func (s *Simulator) Speeds() (left, right int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.left, s.right
}

// ReadLine implements robot.LineSensor.
func (s *Simulator) ReadLine(ctx context.Context) (sensor.Frame, error) {
	if err := ctx.Err(); err != nil {
		return sensor.Frame{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.cfg.MaxReads > 0 && s.reads > s.cfg.MaxReads {
		return sensor.Frame{}, ErrStepLimit
	}
	s.settle()
	return s.frame(), nil
}

// SetSpeeds implements robot.Drive.
func (s *Simulator) SetSpeeds(_ context.Context, left, right int) error {
	if err := robot.CheckSpeeds(left, right); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settle()
	s.left, s.right = left, right
	s.commands++
	return nil
}

// Sleep implements robot.Clock. Simulated time passes instantly.
func (s *Simulator) Sleep(_ context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed += d
	ms := float64(d) / float64(time.Millisecond)
	l, r := float64(s.left), float64(s.right)

	if s.left == -s.right {
		s.spin += (l - r) * ms
		return
	}

	dist := (l + r) / 2 * ms / 1000
	s.pose.Lateral += s.cfg.Drift*math.Abs(dist) - s.cfg.SteerGain*(l-r)*ms
	s.pose.Lateral = math.Max(-1.5, math.Min(1.5, s.pose.Lateral))
	s.advance(dist)
}

// advance moves the axle along the line, carrying over straight through
// nodes. At a node with no straight continuation the axle keeps counting
// past it.
func (s *Simulator) advance(dist float64) {
	p := &s.pose
	p.Along = math.Max(0, p.Along+dist)
	L := s.cfg.EdgeLength
	for p.Along > L && s.maze.HasEdge(p.Node, p.Heading) {
		next := p.Node.Step(p.Heading)
		if !s.maze.HasEdge(next, p.Heading) {
			return
		}
		p.Node = next
		p.Along -= L
	}
}

// settle applies a finished pivot. A pivot near a node turns the robot
// onto the node's branches; a half turn elsewhere reverses along the
// segment; anything else leaves the robot lost.
func (s *Simulator) settle() {
	if s.spin == 0 {
		return
	}
	spin := s.spin
	s.spin = 0

	quarters := math.Round(spin / s.cfg.QuarterTurn)
	if math.Abs(spin-quarters*s.cfg.QuarterTurn) > s.cfg.QuarterTurn/3 {
		s.pose.Lost = true
		return
	}
	q := int(quarters) % 4
	if q == 0 {
		return
	}

	p := &s.pose
	if node, dist, ok := s.nearestNode(p.Along); ok && dist <= s.cfg.SnapRadius {
		*p = Pose{Node: node, Heading: p.Heading.Turn(q), Lost: p.Lost}
		return
	}
	if q%2 == 0 && s.maze.HasEdge(p.Node, p.Heading) && p.Along <= s.cfg.EdgeLength {
		*p = Pose{
			Node:    p.Node.Step(p.Heading),
			Heading: p.Heading.Turn(2),
			Along:   s.cfg.EdgeLength - p.Along,
			Lateral: -p.Lateral,
			Lost:    p.Lost,
		}
		return
	}
	p.Lost = true
}

// nearestNode finds the node closest to distance d ahead of the pose
// origin, following the line straight ahead only.
func (s *Simulator) nearestNode(d float64) (Point, float64, bool) {
	L := s.cfg.EdgeLength
	node, best := s.pose.Node, math.Abs(d)
	cur, off := s.pose.Node, 0.0
	for s.maze.HasEdge(cur, s.pose.Heading) && off <= d {
		cur = cur.Step(s.pose.Heading)
		off += L
		if dist := math.Abs(d - off); dist < best {
			node, best = cur, dist
		}
	}
	return node, best, s.maze.HasNode(node)
}

// lineAt reports whether the straight-ahead line covers distance d.
func (s *Simulator) lineAt(d float64) bool {
	L := s.cfg.EdgeLength
	cur, rem := s.pose.Node, d
	for {
		if !s.maze.HasEdge(cur, s.pose.Heading) {
			return rem <= s.cfg.LineOverhang
		}
		if rem <= L {
			return true
		}
		cur = cur.Step(s.pose.Heading)
		rem -= L
	}
}

// frame renders what the sensor bar sees.
func (s *Simulator) frame() sensor.Frame {
	var v [sensor.Count]float64
	if !s.pose.Lost {
		d := s.pose.Along + s.cfg.SensorLead
		if s.lineAt(d) {
			for i, x := range channelX {
				v[i] = lineProfile(math.Abs(x - s.pose.Lateral))
			}
		}
		if node, dist, ok := s.nearestNode(d); ok {
			switch {
			case node == s.maze.Goal && dist <= s.cfg.GoalRadius:
				for i := range v {
					v[i] = sensor.MaxValue
				}
			case dist <= s.cfg.CrossbarHalf:
				if s.maze.HasEdge(node, s.pose.Heading.Left()) {
					v[sensor.ChanLeft], v[sensor.ChanCenterLeft] = sensor.MaxValue, sensor.MaxValue
				}
				if s.maze.HasEdge(node, s.pose.Heading.Right()) {
					v[sensor.ChanCenterRight], v[sensor.ChanRight] = sensor.MaxValue, sensor.MaxValue
				}
			}
		}
	}

	var f sensor.Frame
	for i, x := range v {
		f[i] = uint16(math.Round(x))
	}
	// The sensor reports raw reflectance; the interpreter undoes this.
	return sensor.Correct(f, s.cfg.Polarity)
}

// lineProfile is the reading of a channel d units from the line center.
func lineProfile(d float64) float64 {
	switch {
	case d <= 0.5:
		return sensor.MaxValue
	case d >= 1.5:
		return 0
	default:
		return sensor.MaxValue * (1.5 - d)
	}
}
