package web

import (
	"github.com/teslashibe/go-mazerunner/pkg/maze"
	"github.com/teslashibe/go-mazerunner/pkg/protocol"
)

// EventMessage converts a control loop event to its wire form. The message
// timestamp is the event time.
func EventMessage(e maze.Event) (*protocol.Message, error) {
	data := protocol.EventData{
		RunID:    e.RunID,
		Junction: e.Junction,
		Consumed: e.Consumed,
		History:  e.History,
		Path:     e.Path,
		Goal:     e.Goal,
		Error:    e.Error,
	}
	if e.Mode != 0 {
		data.Mode = e.Mode.String()
	}
	if e.Geometry != nil {
		g := protocol.JunctionData(*e.Geometry)
		data.Geometry = &g
	}
	if e.Maneuver.Valid() {
		data.Maneuver = e.Maneuver.String()
	}

	msg, err := protocol.NewEventMessage(protocol.MessageType(e.Type), data)
	if err != nil {
		return nil, err
	}
	if !e.Time.IsZero() {
		msg.Timestamp = e.Time.UnixMilli()
	}
	return msg, nil
}

// StatusData converts a session snapshot to its wire form.
func StatusData(s maze.Snapshot) protocol.StatusData {
	st := protocol.StatusData{
		RunID:     s.RunID,
		Phase:     string(s.Phase),
		Rule:      s.Rule.String(),
		Junctions: s.Junctions,
		History:   s.History,
		Path:      s.Path,
		Error:     s.Error,
	}
	if s.Mode != 0 {
		st.Mode = s.Mode.String()
	}
	if s.Last != nil {
		g := protocol.JunctionData(*s.Last)
		st.Last = &g
	}
	return st
}
