package maze

import (
	"time"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
)

// EventType names a point of interest in a session.
type EventType string

const (
	EventStart     EventType = "start"
	EventJunction  EventType = "junction"
	EventDecision  EventType = "decision"
	EventRecorded  EventType = "recorded"
	EventGoal      EventType = "goal"
	EventOptimized EventType = "optimized"
	EventReplayEnd EventType = "replay_end"
	EventFinished  EventType = "finished"
	EventError     EventType = "error"
)

// Event is a telemetry record emitted by the control loop. Fields that do
// not apply to a type are left zero.
type Event struct {
	Type     EventType          `json:"type"`
	RunID    string             `json:"run_id"`
	Mode     Mode               `json:"mode"`
	Time     time.Time          `json:"time"`
	Junction int                `json:"junction,omitempty"`
	Geometry *decision.Junction `json:"geometry,omitempty"`
	Maneuver decision.Maneuver  `json:"maneuver,omitempty"`
	Consumed bool               `json:"consumed,omitempty"`
	History  string             `json:"history,omitempty"`
	Path     string             `json:"path,omitempty"`
	Goal     bool               `json:"goal,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Observer receives events synchronously on the control loop goroutine.
// Implementations must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

type observers []Observer

func (os observers) Observe(e Event) {
	for _, o := range os {
		o.Observe(e)
	}
}
