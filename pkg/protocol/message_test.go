package protocol

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    any
		wantErr bool
	}{
		{
			name:    "event message",
			msgType: TypeDecision,
			data:    EventData{RunID: "r1", Maneuver: "R"},
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeStatus,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("Type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("Timestamp should be set")
			}
			if tt.data == nil && msg.Data != nil {
				t.Errorf("Data = %s, want nil", msg.Data)
			}
		})
	}
}

func TestEventMessage(t *testing.T) {
	msg, err := NewEventMessage(TypeDecision, EventData{
		RunID:    "run-1",
		Mode:     "explore",
		Junction: 4,
		Geometry: &JunctionData{Left: true, Right: true},
		Maneuver: "L",
	})
	if err != nil {
		t.Fatalf("NewEventMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	for _, want := range []string{`"type":"decision"`, `"ts":`, `"maneuver":"L"`, `"junction":4`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("encoded message %s missing %s", raw, want)
		}
	}
	// Zero-valued fields stay off the wire.
	for _, absent := range []string{`"goal"`, `"error"`, `"path"`} {
		if strings.Contains(string(raw), absent) {
			t.Errorf("encoded message %s should not contain %s", raw, absent)
		}
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	data, err := parsed.GetEventData()
	if err != nil {
		t.Fatalf("GetEventData() error = %v", err)
	}
	if data.Geometry == nil || data.Geometry.String() != "L-R" {
		t.Errorf("Geometry = %v, want L-R", data.Geometry)
	}
	if data.Junction != 4 || data.Maneuver != "L" {
		t.Errorf("data = %+v", data)
	}
}

func TestEventMessageRejectsNonEvent(t *testing.T) {
	if _, err := NewEventMessage(TypeStatus, EventData{}); err == nil {
		t.Error("NewEventMessage(status) should fail")
	}

	msg, _ := NewStatusMessage(StatusData{Phase: "idle"})
	if _, err := msg.GetEventData(); err == nil {
		t.Error("GetEventData() on status should fail")
	}
}

func TestStatusMessage(t *testing.T) {
	msg, err := NewStatusMessage(StatusData{
		RunID:     "run-2",
		Phase:     "done",
		Rule:      "right",
		Junctions: 5,
		History:   "RRUSS",
		Path:      "RLS",
	})
	if err != nil {
		t.Fatalf("NewStatusMessage() error = %v", err)
	}
	if msg.Type != TypeStatus {
		t.Errorf("Type = %v, want %v", msg.Type, TypeStatus)
	}

	data, err := msg.GetStatusData()
	if err != nil {
		t.Fatalf("GetStatusData() error = %v", err)
	}
	if data.History != "RRUSS" || data.Path != "RLS" || data.Junctions != 5 {
		t.Errorf("data = %+v", data)
	}
	if data.Last != nil {
		t.Errorf("Last = %v, want nil", data.Last)
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage("test-123")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pingData.ID)
	}

	now := time.Now().UnixMilli()
	pongMsg, err := NewPongMessage("test-123", pingData.Timestamp, now)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}
	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.LatencyMs != now-pingData.Timestamp {
		t.Errorf("LatencyMs = %v, want %v", pongData.LatencyMs, now-pingData.Timestamp)
	}
}

func TestJunctionDataString(t *testing.T) {
	tests := []struct {
		j    JunctionData
		want string
	}{
		{JunctionData{}, "---"},
		{JunctionData{Left: true, Center: true, Right: true}, "LCR"},
		{JunctionData{Center: true}, "-C-"},
		{JunctionData{Right: true}, "--R"},
	}
	for _, tt := range tests {
		if got := tt.j.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsEvent(t *testing.T) {
	for _, mt := range []MessageType{TypeStart, TypeJunction, TypeGoal, TypeReplayEnd, TypeError} {
		if !mt.IsEvent() {
			t.Errorf("%s.IsEvent() = false", mt)
		}
	}
	for _, mt := range []MessageType{TypeStatus, TypePing, TypePong, "bogus"} {
		if mt.IsEvent() {
			t.Errorf("%s.IsEvent() = true", mt)
		}
	}
}

func TestParseInvalidMessage(t *testing.T) {
	tests := []string{
		"",
		"not json",
		`{"type": 5}`,
	}
	for _, input := range tests {
		if _, err := ParseMessage([]byte(input)); err == nil {
			t.Errorf("ParseMessage(%q) should fail", input)
		}
	}
}

func TestParseDataEmpty(t *testing.T) {
	msg := &Message{Type: TypePing}
	var data PingData
	if err := msg.ParseData(&data); err != nil {
		t.Errorf("ParseData() error = %v", err)
	}

	msg.Data = json.RawMessage(`{"id":`)
	if err := msg.ParseData(&data); err == nil {
		t.Error("ParseData() on truncated data should fail")
	}
}
