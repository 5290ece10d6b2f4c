// Package config loads mazerunner settings from a JSON file and the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
	"github.com/teslashibe/go-mazerunner/pkg/maze"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
	"github.com/teslashibe/go-mazerunner/pkg/steering"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// MaxBaseSpeed is the top of the firmware's speed menu and of the drive range.
const MaxBaseSpeed = 400

// DefaultRobotPort is the daemon port used when only ROBOT_IP is set.
const DefaultRobotPort = "8000"

// Duration is a time.Duration written as "100ms" in JSON.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Steering mirrors steering.Config.
type Steering struct {
	Kp              int      `json:"kp"`
	Kd              int      `json:"kd"`
	Scale           int      `json:"scale"`
	BaseSpeed       int      `json:"base_speed"`
	MinSpeedPercent int      `json:"min_speed_percent"`
	LowThreshold    uint16   `json:"low_threshold"`
	CyclePeriod     Duration `json:"cycle_period"`
}

// Dashboard configures the web dashboard. Port 0 disables it.
type Dashboard struct {
	Port       int  `json:"port"`
	AccessLogs bool `json:"access_logs"`
}

// Config is the on-disk configuration.
type Config struct {
	RobotURL   string          `json:"robot_url"`
	Rule       decision.Rule   `json:"rule"`
	Line       sensor.Polarity `json:"line"`
	Steering   Steering        `json:"steering"`
	StartDelay Duration        `json:"start_delay"`
	Capacity   int             `json:"capacity"`
	Dashboard  Dashboard       `json:"dashboard"`
	Export     string          `json:"export"` // see export.Open
	Store      string          `json:"store"`  // run book file, empty disables
	Replay     bool            `json:"replay"`
	LogLevel   string          `json:"log_level"`
}

// Default returns the reference platform settings.
func Default() Config {
	mc := maze.DefaultConfig()
	sc := mc.Steering
	return Config{
		RobotURL: "http://localhost:" + DefaultRobotPort,
		Rule:     mc.Rule,
		Line:     mc.Polarity,
		Steering: Steering{
			Kp:              sc.Kp,
			Kd:              sc.Kd,
			Scale:           sc.Scale,
			BaseSpeed:       sc.BaseSpeed,
			MinSpeedPercent: sc.MinSpeedPercent,
			LowThreshold:    sc.LowThreshold,
			CyclePeriod:     Duration(sc.CyclePeriod),
		},
		StartDelay: Duration(mc.StartDelay),
		Capacity:   mc.Capacity,
		Dashboard:  Dashboard{Port: 8080},
		Replay:     true,
		LogLevel:   "info",
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv applies MAZE_* overrides read through getenv. ROBOT_IP is
// honored when MAZE_ROBOT_URL is unset.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("MAZE_ROBOT_URL"); v != "" {
		c.RobotURL = v
	} else if ip := getenv("ROBOT_IP"); ip != "" {
		c.RobotURL = fmt.Sprintf("http://%s:%s", ip, DefaultRobotPort)
	}
	if v := getenv("MAZE_RULE"); v != "" {
		if err := c.Rule.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("MAZE_RULE: %w", err)
		}
	}
	if v := getenv("MAZE_LINE"); v != "" {
		if err := c.Line.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("MAZE_LINE: %w", err)
		}
	}
	if v := getenv("MAZE_DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAZE_DASHBOARD_PORT: %w", err)
		}
		c.Dashboard.Port = port
	}
	if v := getenv("MAZE_BASE_SPEED"); v != "" {
		speed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAZE_BASE_SPEED: %w", err)
		}
		c.Steering.BaseSpeed = speed
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks ranges. All problems are reported together.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	s := c.Steering
	if s.BaseSpeed < 0 || s.BaseSpeed > MaxBaseSpeed {
		bad("base_speed %d outside 0..%d", s.BaseSpeed, MaxBaseSpeed)
	}
	if s.Kp < 0 || s.Kd < 0 {
		bad("gains must be non-negative (kp=%d kd=%d)", s.Kp, s.Kd)
	}
	if s.Scale <= 0 {
		bad("scale %d must be positive", s.Scale)
	}
	if s.MinSpeedPercent < 0 || s.MinSpeedPercent > 100 {
		bad("min_speed_percent %d outside 0..100", s.MinSpeedPercent)
	}
	if s.CyclePeriod < 0 {
		bad("cycle_period must be non-negative")
	}
	if c.Capacity <= 0 {
		bad("capacity %d must be positive", c.Capacity)
	}
	if c.StartDelay < 0 {
		bad("start_delay must be non-negative")
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		bad("dashboard port %d out of range", c.Dashboard.Port)
	}
	return errors.Join(errs...)
}

// Maze converts the file settings into the snapshot a run starts with.
func (c Config) Maze() maze.Config {
	mc := maze.DefaultConfig()
	mc.Rule = c.Rule
	mc.Polarity = c.Line
	mc.Steering = steering.Config{
		Kp:              c.Steering.Kp,
		Kd:              c.Steering.Kd,
		Scale:           c.Steering.Scale,
		BaseSpeed:       c.Steering.BaseSpeed,
		MinSpeedPercent: c.Steering.MinSpeedPercent,
		LowThreshold:    c.Steering.LowThreshold,
		CyclePeriod:     time.Duration(c.Steering.CyclePeriod),
	}
	mc.StartDelay = time.Duration(c.StartDelay)
	mc.Capacity = c.Capacity
	return mc
}
