// Package protocol defines the WebSocket messages the maze dashboard sends
// to its clients. It is shared between the dashboard server and the tail
// client and depends on nothing else in the module.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Run progress, one per control loop event
	TypeStart     MessageType = "start"      // Countdown before a run
	TypeJunction  MessageType = "junction"   // Junction sampled
	TypeDecision  MessageType = "decision"   // Maneuver executed
	TypeRecorded  MessageType = "recorded"   // Decision appended to history
	TypeGoal      MessageType = "goal"       // Exploration reached the goal
	TypeOptimized MessageType = "optimized"  // History reduced to a path
	TypeReplayEnd MessageType = "replay_end" // Replay finished
	TypeFinished  MessageType = "finished"   // Session complete
	TypeError     MessageType = "error"      // Run aborted

	// Session snapshot, sent on connect
	TypeStatus MessageType = "status"

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// IsEvent reports whether t is a run progress type.
func (t MessageType) IsEvent() bool {
	switch t {
	case TypeStart, TypeJunction, TypeDecision, TypeRecorded, TypeGoal,
		TypeOptimized, TypeReplayEnd, TypeFinished, TypeError:
		return true
	}
	return false
}

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// Time returns the message timestamp.
func (m *Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Payloads
// =============================================================================

// JunctionData is the branch geometry at a junction
type JunctionData struct {
	Left   bool `json:"left"`
	Center bool `json:"center"`
	Right  bool `json:"right"`
}

func (j JunctionData) String() string {
	b := []byte("---")
	if j.Left {
		b[0] = 'L'
	}
	if j.Center {
		b[1] = 'C'
	}
	if j.Right {
		b[2] = 'R'
	}
	return string(b)
}

// EventData carries one run progress event
type EventData struct {
	RunID    string        `json:"run_id"`
	Mode     string        `json:"mode,omitempty"`     // "explore", "replay"
	Junction int           `json:"junction,omitempty"` // Junctions completed
	Geometry *JunctionData `json:"geometry,omitempty"`
	Maneuver string        `json:"maneuver,omitempty"` // "S", "L", "R", "U"
	Consumed bool          `json:"consumed,omitempty"` // Replay took it from the path
	History  string        `json:"history,omitempty"`
	Path     string        `json:"path,omitempty"`
	Goal     bool          `json:"goal,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// StatusData is a session snapshot
type StatusData struct {
	RunID     string        `json:"run_id"`
	Phase     string        `json:"phase"`
	Mode      string        `json:"mode,omitempty"`
	Rule      string        `json:"rule"`
	Junctions int           `json:"junctions"`
	Last      *JunctionData `json:"last_junction,omitempty"`
	History   string        `json:"history"`
	Path      string        `json:"path"`
	Error     string        `json:"error,omitempty"`
}

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
