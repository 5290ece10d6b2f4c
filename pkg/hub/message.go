// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import "github.com/teslashibe/go-mazerunner/pkg/protocol"

// Message is one encoded text frame queued for clients
type Message struct {
	Type protocol.MessageType
	Data []byte
}

// Encode serializes a protocol message for broadcast
func Encode(m *protocol.Message) (Message, error) {
	data, err := m.Bytes()
	if err != nil {
		return Message{}, err
	}
	return Message{Type: m.Type, Data: data}, nil
}
