// Package hub provides a websocket broadcast hub using channel-based fan-out.
package hub

// Message is one broadcast payload, sent to clients as a text frame
type Message struct {
	Data []byte
}

// NewJSONMessage creates a message from pre-encoded JSON bytes
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}
